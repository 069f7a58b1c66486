package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/abcretail/storefront/pkg/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserStore holds login accounts, separate from the customer entities in
// table storage.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (int, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// PostgresUsers is the production UserStore.
type PostgresUsers struct {
	db *sql.DB
}

func NewPostgresUsers(db *sql.DB) *PostgresUsers {
	return &PostgresUsers{db: db}
}

func (s *PostgresUsers) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id         SERIAL PRIMARY KEY,
			first_name VARCHAR(255) NOT NULL,
			last_name  VARCHAR(255) NOT NULL,
			email      VARCHAR(255) NOT NULL UNIQUE,
			phone      VARCHAR(64)  NOT NULL DEFAULT '',
			password   VARCHAR(255) NOT NULL,
			role       VARCHAR(32)  NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

func (s *PostgresUsers) CreateUser(ctx context.Context, user *models.User) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (first_name, last_name, email, phone, password, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, user.FirstName, user.LastName, user.Email, user.Phone, user.Password, user.Role).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	return id, nil
}

func (s *PostgresUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, phone, password, role
		FROM users WHERE email = $1
	`, email).Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email,
		&user.Phone, &user.Password, &user.Role)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// MemoryUsers is the in-process UserStore used by tests.
type MemoryUsers struct {
	mu     sync.Mutex
	users  map[string]models.User
	nextID int
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[string]models.User), nextID: 1}
}

func (s *MemoryUsers) CreateUser(ctx context.Context, user *models.User) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(user.Email)
	if _, exists := s.users[key]; exists {
		return 0, fmt.Errorf("user %s already exists", user.Email)
	}
	user.ID = s.nextID
	s.nextID++
	s.users[key] = *user
	return user.ID, nil
}

func (s *MemoryUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}
