// Package filestore is the file-share equivalent: named files grouped under a
// directory, uploaded and downloaded whole.
package filestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/abcretail/storefront/pkg/models"
)

var ErrNotFound = errors.New("file not found")

type Store interface {
	Upload(ctx context.Context, dir, name string, content []byte) error
	Download(ctx context.Context, dir, name string) ([]byte, error)
	List(ctx context.Context, dir string) ([]models.FileInfo, error)
	// Delete reports whether a file was actually removed; deleting a
	// missing file is false, not an error.
	Delete(ctx context.Context, dir, name string) (bool, error)
}

type Client struct {
	db *sql.DB
}

func NewClient(db *sql.DB) *Client {
	return &Client{db: db}
}

func (c *Client) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS files (
			directory VARCHAR(255) NOT NULL,
			name      VARCHAR(255) NOT NULL,
			data      BYTEA        NOT NULL,
			modified  TIMESTAMP    NOT NULL,
			PRIMARY KEY (directory, name)
		)
	`
	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create files table: %w", err)
	}
	return nil
}

func (c *Client) Upload(ctx context.Context, dir, name string, content []byte) error {
	if len(content) == 0 {
		return errors.New("file content is empty")
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO files (directory, name, data, modified)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (directory, name) DO UPDATE SET data = EXCLUDED.data, modified = EXCLUDED.modified
	`, dir, name, content, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	return nil
}

func (c *Client) Download(ctx context.Context, dir, name string) ([]byte, error) {
	var data []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT data FROM files WHERE directory = $1 AND name = $2`, dir, name).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	return data, nil
}

func (c *Client) List(ctx context.Context, dir string) ([]models.FileInfo, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT name, length(data), modified FROM files WHERE directory = $1 ORDER BY name`, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []models.FileInfo
	for rows.Next() {
		var info models.FileInfo
		if err := rows.Scan(&info.FileName, &info.FileSize, &info.LastModified); err != nil {
			return nil, err
		}
		files = append(files, info)
	}
	return files, rows.Err()
}

func (c *Client) Delete(ctx context.Context, dir, name string) (bool, error) {
	result, err := c.db.ExecContext(ctx,
		`DELETE FROM files WHERE directory = $1 AND name = $2`, dir, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete file: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
