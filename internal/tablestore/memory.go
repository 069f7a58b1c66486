package tablestore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/abcretail/storefront/pkg/models"
)

// Memory implements Store with mutex-protected maps. Used by tests and as a
// dev fallback when no database is configured.
type Memory struct {
	mu        sync.RWMutex
	customers map[string]models.Customer
	products  map[string]models.Product
	orders    map[string]models.Order
}

func NewMemory() *Memory {
	return &Memory{
		customers: make(map[string]models.Customer),
		products:  make(map[string]models.Product),
		orders:    make(map[string]models.Order),
	}
}

func entityKey(partitionKey, rowKey string) string {
	return partitionKey + "/" + rowKey
}

func (m *Memory) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	customers := make([]models.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		customers = append(customers, c)
	}
	return customers, nil
}

func (m *Memory) GetCustomer(ctx context.Context, partitionKey, rowKey string) (*models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.customers[entityKey(partitionKey, rowKey)]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *Memory) UpsertCustomer(ctx context.Context, customer *models.Customer) error {
	if customer.PartitionKey == "" {
		customer.PartitionKey = models.CustomersPartition
	}
	if customer.RowKey == "" {
		customer.RowKey = uuid.New().String()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[entityKey(customer.PartitionKey, customer.RowKey)] = *customer
	return nil
}

func (m *Memory) DeleteCustomer(ctx context.Context, partitionKey, rowKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := entityKey(partitionKey, rowKey)
	if _, ok := m.customers[key]; !ok {
		return ErrNotFound
	}
	delete(m.customers, key)
	return nil
}

func (m *Memory) ListProducts(ctx context.Context) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	products := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		products = append(products, p)
	}
	return products, nil
}

func (m *Memory) GetProduct(ctx context.Context, partitionKey, rowKey string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[entityKey(partitionKey, rowKey)]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *Memory) UpsertProduct(ctx context.Context, product *models.Product) error {
	if product.PartitionKey == "" {
		product.PartitionKey = models.ProductsPartition
	}
	if product.RowKey == "" {
		product.RowKey = uuid.New().String()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[entityKey(product.PartitionKey, product.RowKey)] = *product
	return nil
}

func (m *Memory) DeleteProduct(ctx context.Context, partitionKey, rowKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := entityKey(partitionKey, rowKey)
	if _, ok := m.products[key]; !ok {
		return ErrNotFound
	}
	delete(m.products, key)
	return nil
}

func (m *Memory) ListOrders(ctx context.Context) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	orders := make([]models.Order, 0, len(m.orders))
	for _, o := range m.orders {
		orders = append(orders, o)
	}
	return orders, nil
}

func (m *Memory) GetOrder(ctx context.Context, partitionKey, rowKey string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[entityKey(partitionKey, rowKey)]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (m *Memory) UpsertOrder(ctx context.Context, order *models.Order) error {
	if order.PartitionKey == "" {
		order.PartitionKey = models.OrdersPartition
	}
	if order.RowKey == "" {
		order.RowKey = uuid.New().String()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[entityKey(order.PartitionKey, order.RowKey)] = *order
	return nil
}

func (m *Memory) DeleteOrder(ctx context.Context, partitionKey, rowKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := entityKey(partitionKey, rowKey)
	if _, ok := m.orders[key]; !ok {
		return ErrNotFound
	}
	delete(m.orders, key)
	return nil
}
