package customers

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abcretail/storefront/internal/tablestore"
	"github.com/abcretail/storefront/pkg/models"
)

func newTestService() (*Service, *tablestore.Memory) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	store := tablestore.NewMemory()
	return NewService(store, logger), store
}

func TestAddAssignsID(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService()

	require.NoError(t, store.UpsertCustomer(ctx, &models.Customer{CustomerID: "4"}))

	customer := &models.Customer{FirstName: "Thandi", LastName: "Nkosi"}
	require.NoError(t, service.Add(ctx, customer))
	assert.Equal(t, "5", customer.CustomerID)
	assert.Equal(t, models.CustomersPartition, customer.PartitionKey)
	assert.NotEmpty(t, customer.RowKey)
}

func TestAddKeepsExplicitID(t *testing.T) {
	service, _ := newTestService()

	customer := &models.Customer{CustomerID: "42", FirstName: "Sipho"}
	require.NoError(t, service.Add(context.Background(), customer))
	assert.Equal(t, "42", customer.CustomerID)
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService()

	customer := &models.Customer{FirstName: "Thandi"}
	require.NoError(t, service.Add(ctx, customer))

	customer.Phone = "0821234567"
	require.NoError(t, service.Update(ctx, customer))

	got, err := store.GetCustomer(ctx, customer.PartitionKey, customer.RowKey)
	require.NoError(t, err)
	assert.Equal(t, "0821234567", got.Phone)

	require.NoError(t, service.Delete(ctx, customer.PartitionKey, customer.RowKey))
	assert.ErrorIs(t, service.Delete(ctx, customer.PartitionKey, customer.RowKey), tablestore.ErrNotFound)
}
