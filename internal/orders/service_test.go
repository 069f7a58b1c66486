package orders

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abcretail/storefront/internal/tablestore"
	"github.com/abcretail/storefront/pkg/models"
)

type fakeNotifier struct {
	created  []*models.Order
	messages []string
	err      error
}

func (f *fakeNotifier) PublishOrderCreated(order *models.Order) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, order)
	return nil
}

func (f *fakeNotifier) PublishText(message string) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message)
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func seedCatalog(t *testing.T, store tablestore.Store) {
	t.Helper()
	ctx := context.Background()
	products := []models.Product{
		{ProductID: "P1", Name: "Notebook", Price: 10},
		{ProductID: "P2", Name: "Backpack", Price: 5},
	}
	for i := range products {
		require.NoError(t, store.UpsertProduct(ctx, &products[i]))
	}
}

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()
	store := tablestore.NewMemory()
	notifier := &fakeNotifier{}
	service := NewService(store, notifier, testLogger())
	seedCatalog(t, store)

	customer := &models.Customer{CustomerID: "7", Email: "thandi@example.com"}
	items := []models.CartItem{
		{ProductID: "P1", Quantity: 2},
		{ProductID: "P2", Quantity: 3},
	}

	before := time.Now().UTC()
	order, err := service.PlaceOrder(ctx, customer, items)
	require.NoError(t, err)

	assert.Equal(t, 1, order.OrderID)
	assert.Equal(t, 7, order.CustomerID)
	assert.Equal(t, "P1,P2", order.ProductID)
	assert.Equal(t, 5, order.Quantity, "quantity is the sum of every cart line")
	assert.Equal(t, 35.0, order.OrderTotal, "total is the cart subtotal")
	assert.Equal(t, "Pending", order.OrderStatus)
	assert.Equal(t, models.OrdersPartition, order.PartitionKey)
	assert.NotEmpty(t, order.RowKey)
	assert.False(t, order.OrderDate.Before(before))
	assert.WithinDuration(t, order.OrderDate.Add(24*time.Hour), order.DeliveryDate, time.Second)

	// Exactly one order record exists.
	stored, err := store.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	require.Len(t, notifier.created, 1)
	assert.Equal(t, order.OrderID, notifier.created[0].OrderID)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	store := tablestore.NewMemory()
	service := NewService(store, &fakeNotifier{}, testLogger())

	_, err := service.PlaceOrder(context.Background(), &models.Customer{CustomerID: "1"}, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)

	orders, listErr := store.ListOrders(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, orders, "an empty cart never creates an order")
}

func TestPlaceOrderNonNumericCustomer(t *testing.T) {
	store := tablestore.NewMemory()
	service := NewService(store, &fakeNotifier{}, testLogger())
	seedCatalog(t, store)

	_, err := service.PlaceOrder(context.Background(),
		&models.Customer{CustomerID: "not-a-number"},
		[]models.CartItem{{ProductID: "P1", Quantity: 1}})
	assert.Error(t, err)
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	ctx := context.Background()
	store := tablestore.NewMemory()
	service := NewService(store, &fakeNotifier{}, testLogger())
	seedCatalog(t, store)

	// Lines for products no longer in the catalog still count toward the
	// quantity but contribute nothing to the total or product list.
	items := []models.CartItem{
		{ProductID: "P1", Quantity: 1},
		{ProductID: "GONE", Quantity: 4},
	}
	order, err := service.PlaceOrder(ctx, &models.Customer{CustomerID: "1"}, items)
	require.NoError(t, err)
	assert.Equal(t, 5, order.Quantity)
	assert.Equal(t, "P1", order.ProductID)
	assert.Equal(t, 10.0, order.OrderTotal)
}

func TestPlaceOrderIncrementsID(t *testing.T) {
	ctx := context.Background()
	store := tablestore.NewMemory()
	service := NewService(store, &fakeNotifier{}, testLogger())
	seedCatalog(t, store)

	require.NoError(t, store.UpsertOrder(ctx, &models.Order{OrderID: 4}))

	order, err := service.PlaceOrder(ctx, &models.Customer{CustomerID: "1"},
		[]models.CartItem{{ProductID: "P1", Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, 5, order.OrderID)
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	store := tablestore.NewMemory()
	notifier := &fakeNotifier{}
	service := NewService(store, notifier, testLogger())
	seedCatalog(t, store)

	order := &models.Order{
		CustomerID:      3,
		ProductID:       "P2",
		DeliveryAddress: "12 Long Street",
	}
	require.NoError(t, service.CreateOrder(ctx, order, 4))

	assert.Equal(t, 1, order.OrderID)
	assert.Equal(t, 4, order.Quantity)
	assert.Equal(t, 20.0, order.OrderTotal, "total is price times quantity")
	assert.Equal(t, "Pending", order.OrderStatus)

	require.Len(t, notifier.messages, 1)
	assert.Equal(t,
		"New Order Created: ID=1, Customer=3, Product=P2, Quantity=4, Total=20.00, Status=Pending",
		notifier.messages[0])
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	store := tablestore.NewMemory()
	service := NewService(store, &fakeNotifier{}, testLogger())
	seedCatalog(t, store)

	err := service.CreateOrder(context.Background(), &models.Order{ProductID: "GONE"}, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCreateOrderClampsQuantity(t *testing.T) {
	store := tablestore.NewMemory()
	service := NewService(store, &fakeNotifier{}, testLogger())
	seedCatalog(t, store)

	order := &models.Order{ProductID: "P1"}
	require.NoError(t, service.CreateOrder(context.Background(), order, 0))
	assert.Equal(t, 1, order.Quantity)
	assert.Equal(t, 10.0, order.OrderTotal)
}

func TestPlaceOrderSurvivesNotifierFailure(t *testing.T) {
	ctx := context.Background()
	store := tablestore.NewMemory()
	service := NewService(store, &fakeNotifier{err: assert.AnError}, testLogger())
	seedCatalog(t, store)

	order, err := service.PlaceOrder(ctx, &models.Customer{CustomerID: "1"},
		[]models.CartItem{{ProductID: "P1", Quantity: 1}})
	require.NoError(t, err, "a failed notification never fails the order")

	stored, err := store.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, order.OrderID, stored[0].OrderID)
}

func TestListSortsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := tablestore.NewMemory()
	service := NewService(store, &fakeNotifier{}, testLogger())

	for _, id := range []int{2, 5, 1} {
		require.NoError(t, store.UpsertOrder(ctx, &models.Order{OrderID: id}))
	}

	orders, err := service.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, []int{5, 2, 1}, []int{orders[0].OrderID, orders[1].OrderID, orders[2].OrderID})
}

func TestListSearch(t *testing.T) {
	ctx := context.Background()
	store := tablestore.NewMemory()
	service := NewService(store, &fakeNotifier{}, testLogger())
	seedCatalog(t, store)

	require.NoError(t, store.UpsertOrder(ctx, &models.Order{OrderID: 1, CustomerID: 7, ProductID: "P1"}))
	require.NoError(t, store.UpsertOrder(ctx, &models.Order{OrderID: 2, CustomerID: 8, ProductID: "P1,P2"}))

	// By order ID.
	orders, err := service.List(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	// By customer ID.
	orders, err = service.List(ctx, "8")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 2, orders[0].OrderID)

	// By product name, case-insensitive, inside a multi-product order.
	orders, err = service.List(ctx, "backpack")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 2, orders[0].OrderID)

	// No match.
	orders, err = service.List(ctx, "no-such-thing")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	store := tablestore.NewMemory()
	notifier := &fakeNotifier{}
	service := NewService(store, notifier, testLogger())

	seed := &models.Order{OrderID: 9, OrderStatus: "Pending"}
	require.NoError(t, store.UpsertOrder(ctx, seed))

	order, err := service.UpdateStatus(ctx, seed.PartitionKey, seed.RowKey, "Shipped")
	require.NoError(t, err)
	assert.Equal(t, "Shipped", order.OrderStatus)

	stored, err := store.GetOrder(ctx, seed.PartitionKey, seed.RowKey)
	require.NoError(t, err)
	assert.Equal(t, "Shipped", stored.OrderStatus)

	require.Len(t, notifier.messages, 1)
	assert.Equal(t, "Order 9 status updated to Shipped.", notifier.messages[0])
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := tablestore.NewMemory()
	notifier := &fakeNotifier{}
	service := NewService(store, notifier, testLogger())

	seed := &models.Order{OrderID: 4, CustomerID: 2, ProductID: "P1,P2"}
	require.NoError(t, store.UpsertOrder(ctx, seed))

	require.NoError(t, service.Delete(ctx, seed.PartitionKey, seed.RowKey))

	_, err := store.GetOrder(ctx, seed.PartitionKey, seed.RowKey)
	assert.ErrorIs(t, err, tablestore.ErrNotFound)

	require.Len(t, notifier.messages, 1)
	assert.Equal(t, "Order Deleted: ID=4, Customer=2, Product=P1,P2", notifier.messages[0])
}

func TestDeleteMissingOrder(t *testing.T) {
	store := tablestore.NewMemory()
	service := NewService(store, &fakeNotifier{}, testLogger())

	err := service.Delete(context.Background(), models.OrdersPartition, "missing")
	assert.ErrorIs(t, err, tablestore.ErrNotFound)
}
