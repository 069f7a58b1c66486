// Package customers manages customer entities in table storage.
package customers

import (
	"context"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/abcretail/storefront/internal/tablestore"
	"github.com/abcretail/storefront/pkg/models"
)

type Service struct {
	store  tablestore.Store
	logger *logrus.Logger
}

func NewService(store tablestore.Store, logger *logrus.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]models.Customer, error) {
	return s.store.ListCustomers(ctx)
}

func (s *Service) Get(ctx context.Context, partitionKey, rowKey string) (*models.Customer, error) {
	return s.store.GetCustomer(ctx, partitionKey, rowKey)
}

// Add assigns the next incremental CustomerID unless one is already set, then
// persists the customer.
func (s *Service) Add(ctx context.Context, customer *models.Customer) error {
	if customer.CustomerID == "" {
		nextID, err := tablestore.NextCustomerID(ctx, s.store)
		if err != nil {
			return err
		}
		customer.CustomerID = strconv.Itoa(nextID)
	}
	if err := s.store.UpsertCustomer(ctx, customer); err != nil {
		return err
	}
	s.logger.WithField("customer_id", customer.CustomerID).Info("Customer added")
	return nil
}

func (s *Service) Update(ctx context.Context, customer *models.Customer) error {
	return s.store.UpsertCustomer(ctx, customer)
}

func (s *Service) Delete(ctx context.Context, partitionKey, rowKey string) error {
	return s.store.DeleteCustomer(ctx, partitionKey, rowKey)
}
