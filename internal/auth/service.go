package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/abcretail/storefront/internal/tablestore"
	"github.com/abcretail/storefront/pkg/models"
)

// Hardcoded admin credentials. Hardening the admin login is out of scope.
const (
	adminEmail    = "admin1@gmail.com"
	adminPassword = "admin123"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAdminReserved      = errors.New("admin users are hardcoded and cannot be registered")
)

// Service handles registration and login. Registration writes the account to
// the user store and mirrors a Customer entity into table storage with the
// next incremental CustomerID.
type Service struct {
	users  UserStore
	tables tablestore.Store
	secret []byte
	logger *logrus.Logger
}

func NewService(users UserStore, tables tablestore.Store, secret []byte, logger *logrus.Logger) *Service {
	return &Service{users: users, tables: tables, secret: secret, logger: logger}
}

func (s *Service) Register(ctx context.Context, user *models.User, password string) (*models.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(user.Email))
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}
	if email == adminEmail {
		return nil, ErrAdminReserved
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.Email = email
	user.Password = hash
	user.Role = models.RoleCustomer

	if _, err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	nextID, err := tablestore.NextCustomerID(ctx, s.tables)
	if err != nil {
		return nil, err
	}
	customer := &models.Customer{
		CustomerID: strconv.Itoa(nextID),
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Email:      user.Email,
		Phone:      user.Phone,
	}
	if err := s.tables.UpsertCustomer(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to store customer record: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"email":       user.Email,
		"customer_id": customer.CustomerID,
	}).Info("User registered")

	return customer, nil
}

// Login checks the hardcoded admin first, then the user store, and returns a
// signed session token.
func (s *Service) Login(ctx context.Context, email, password string) (token, role string, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", "", ErrInvalidCredentials
	}

	if email == adminEmail && password == adminPassword {
		token, err = NewToken(s.secret, email, models.RoleAdmin)
		return token, models.RoleAdmin, err
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", err
	}
	if !CheckPassword(user.Password, password) {
		return "", "", ErrInvalidCredentials
	}

	token, err = NewToken(s.secret, user.Email, user.Role)
	return token, user.Role, err
}
