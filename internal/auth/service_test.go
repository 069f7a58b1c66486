package auth

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abcretail/storefront/internal/tablestore"
	"github.com/abcretail/storefront/pkg/models"
)

var testSecret = []byte("test-secret")

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func newTestService() (*Service, *MemoryUsers, *tablestore.Memory) {
	users := NewMemoryUsers()
	tables := tablestore.NewMemory()
	return NewService(users, tables, testSecret, testLogger()), users, tables
}

func TestRegisterMirrorsCustomer(t *testing.T) {
	ctx := context.Background()
	service, users, tables := newTestService()

	user := &models.User{
		FirstName: "Thandi",
		LastName:  "Nkosi",
		Email:     "Thandi@Example.com",
		Phone:     "0821234567",
	}
	customer, err := service.Register(ctx, user, "s3cret")
	require.NoError(t, err)

	assert.Equal(t, "1", customer.CustomerID)
	assert.Equal(t, "thandi@example.com", customer.Email, "email is normalized")
	assert.Equal(t, "Thandi", customer.FirstName)

	stored, err := users.GetUserByEmail(ctx, "thandi@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, stored.Role)
	assert.NotEqual(t, "s3cret", stored.Password, "password is stored hashed")
	assert.True(t, CheckPassword(stored.Password, "s3cret"))

	mirrored, err := tables.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, mirrored, 1)
	assert.Equal(t, "1", mirrored[0].CustomerID)
}

func TestRegisterAssignsIncrementalIDs(t *testing.T) {
	ctx := context.Background()
	service, _, tables := newTestService()

	require.NoError(t, tables.UpsertCustomer(ctx, &models.Customer{CustomerID: "3"}))

	customer, err := service.Register(ctx, &models.User{Email: "new@example.com"}, "pw")
	require.NoError(t, err)
	assert.Equal(t, "4", customer.CustomerID)
}

func TestRegisterAdminReserved(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.Register(context.Background(),
		&models.User{Email: "admin1@gmail.com"}, "whatever")
	assert.ErrorIs(t, err, ErrAdminReserved)
}

func TestLoginAdmin(t *testing.T) {
	service, _, _ := newTestService()

	token, role, err := service.Login(context.Background(), "admin1@gmail.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "admin1@gmail.com", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLoginCustomer(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService()

	_, err := service.Register(ctx, &models.User{Email: "thandi@example.com"}, "s3cret")
	require.NoError(t, err)

	token, role, err := service.Login(ctx, "thandi@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, role)
	assert.NotEmpty(t, token)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService()

	_, err := service.Register(ctx, &models.User{Email: "thandi@example.com"}, "s3cret")
	require.NoError(t, err)

	_, _, err = service.Login(ctx, "thandi@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = service.Login(ctx, "nobody@example.com", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = service.Login(ctx, "admin1@gmail.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := NewToken(testSecret, "thandi@example.com", models.RoleCustomer)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "thandi@example.com", claims.Email)
	assert.Equal(t, models.RoleCustomer, claims.Role)

	_, err = ParseToken([]byte("other-secret"), token)
	assert.Error(t, err, "tokens signed with another secret are rejected")
}
