// Package blobstore holds product images. Blobs are addressed by name and
// served back through the storefront's /images/{name} route, so Upload returns
// the public URL that gets written onto the product record.
package blobstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("blob not found")

type Store interface {
	Upload(ctx context.Context, name, contentType string, data []byte) (string, error)
	Get(ctx context.Context, name string) ([]byte, string, error)
	Delete(ctx context.Context, blobURL string) error
}

// Client stores blobs in Postgres. Image volumes here are small enough that a
// bytea column beats running a separate object store.
type Client struct {
	db      *sql.DB
	baseURL string
}

func NewClient(db *sql.DB, baseURL string) *Client {
	return &Client{db: db, baseURL: strings.TrimRight(baseURL, "/")}
}

func (c *Client) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS blobs (
			name         VARCHAR(255) PRIMARY KEY,
			content_type VARCHAR(127) NOT NULL,
			data         BYTEA        NOT NULL,
			created_at   TIMESTAMP    NOT NULL
		)
	`
	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create blobs table: %w", err)
	}
	return nil
}

func (c *Client) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("blob content is empty")
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO blobs (name, content_type, data, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET content_type = EXCLUDED.content_type, data = EXCLUDED.data
	`, name, contentType, data, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to upload blob: %w", err)
	}
	return c.baseURL + "/images/" + name, nil
}

func (c *Client) Get(ctx context.Context, name string) ([]byte, string, error) {
	var data []byte
	var contentType string
	err := c.db.QueryRowContext(ctx,
		`SELECT data, content_type FROM blobs WHERE name = $1`, name).Scan(&data, &contentType)
	if err == sql.ErrNoRows {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get blob: %w", err)
	}
	return data, contentType, nil
}

// Delete removes the blob named by the final segment of blobURL. Deleting a
// blob that is already gone is not an error.
func (c *Client) Delete(ctx context.Context, blobURL string) error {
	name := BlobName(blobURL)
	if name == "" {
		return errors.New("blob URL has no name segment")
	}
	if _, err := c.db.ExecContext(ctx, `DELETE FROM blobs WHERE name = $1`, name); err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// BlobName extracts the blob name from a blob URL.
func BlobName(blobURL string) string {
	idx := strings.LastIndex(blobURL, "/")
	if idx < 0 {
		return blobURL
	}
	return blobURL[idx+1:]
}
