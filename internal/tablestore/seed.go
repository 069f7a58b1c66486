package tablestore

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/abcretail/storefront/pkg/models"
)

// Seed inserts a default customer and product when the respective tables are
// empty, so a fresh deployment has something to browse.
func Seed(ctx context.Context, s Store, logger *logrus.Logger) error {
	customers, err := s.ListCustomers(ctx)
	if err != nil {
		return err
	}
	if len(customers) == 0 {
		customer := &models.Customer{
			CustomerID: "1",
			FirstName:  "Default Customer",
			Email:      "customer@example.com",
		}
		if err := s.UpsertCustomer(ctx, customer); err != nil {
			return err
		}
		logger.WithField("customer_id", customer.CustomerID).Info("Seeded default customer")
	}

	products, err := s.ListProducts(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		product := &models.Product{
			ProductID: "1",
			Name:      "Default Product",
			Price:     100,
		}
		if err := s.UpsertProduct(ctx, product); err != nil {
			return err
		}
		logger.WithField("product_id", product.ProductID).Info("Seeded default product")
	}

	return nil
}
