package tablestore

import (
	"context"
	"errors"
	"strconv"

	"github.com/abcretail/storefront/pkg/models"
)

// ErrNotFound is returned by Get and Delete when no entity exists under the
// given partition/row key pair.
var ErrNotFound = errors.New("entity not found")

// Store is the table storage boundary. Every entity type gets the same four
// operations: a full list scan, a point lookup by partition/row key, an
// idempotent upsert and a delete.
type Store interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	GetCustomer(ctx context.Context, partitionKey, rowKey string) (*models.Customer, error)
	UpsertCustomer(ctx context.Context, customer *models.Customer) error
	DeleteCustomer(ctx context.Context, partitionKey, rowKey string) error

	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, partitionKey, rowKey string) (*models.Product, error)
	UpsertProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, partitionKey, rowKey string) error

	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, partitionKey, rowKey string) (*models.Order, error)
	UpsertOrder(ctx context.Context, order *models.Order) error
	DeleteOrder(ctx context.Context, partitionKey, rowKey string) error
}

// NextID computes the next incremental identifier from existing numeric-string
// identifiers: one more than the largest parseable value, or 1 when none
// parse. Identifiers that are not numeric are skipped, never an error.
//
// This is a full scan with no reservation, so two concurrent callers can
// compute the same identifier. Callers accept that window; record identity is
// the (partition, row) key pair, so a duplicate never overwrites anything.
func NextID(ids []string) int {
	maxID := 0
	for _, id := range ids {
		if n, err := strconv.Atoi(id); err == nil && n > maxID {
			maxID = n
		}
	}
	return maxID + 1
}

// NextOrderID scans all existing orders and returns one more than the highest
// order ID, or 1 when there are no orders. Same race caveat as NextID.
func NextOrderID(ctx context.Context, s Store) (int, error) {
	orders, err := s.ListOrders(ctx)
	if err != nil {
		return 0, err
	}
	maxID := 0
	for _, o := range orders {
		if o.OrderID > maxID {
			maxID = o.OrderID
		}
	}
	return maxID + 1, nil
}

// NextCustomerID scans all customers and returns the next numeric CustomerID.
func NextCustomerID(ctx context.Context, s Store) (int, error) {
	customers, err := s.ListCustomers(ctx)
	if err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(customers))
	for _, c := range customers {
		ids = append(ids, c.CustomerID)
	}
	return NextID(ids), nil
}

// NextProductID scans all products and returns the next numeric ProductID.
func NextProductID(ctx context.Context, s Store) (int, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ProductID)
	}
	return NextID(ids), nil
}
