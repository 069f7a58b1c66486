// Package products manages the catalog: product records in table storage and
// their images in the blob store.
package products

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/abcretail/storefront/internal/blobstore"
	"github.com/abcretail/storefront/internal/tablestore"
	"github.com/abcretail/storefront/pkg/models"
)

var ErrInvalidProduct = errors.New("invalid product")

type Service struct {
	store  tablestore.Store
	blobs  blobstore.Store
	logger *logrus.Logger
}

func NewService(store tablestore.Store, blobs blobstore.Store, logger *logrus.Logger) *Service {
	return &Service{store: store, blobs: blobs, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	return s.store.ListProducts(ctx)
}

func (s *Service) Get(ctx context.Context, partitionKey, rowKey string) (*models.Product, error) {
	return s.store.GetProduct(ctx, partitionKey, rowKey)
}

// FindByProductID scans the catalog for the first product with the given ID.
func (s *Service) FindByProductID(ctx context.Context, productID string) (*models.Product, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ProductID == productID {
			return &products[i], nil
		}
	}
	return nil, tablestore.ErrNotFound
}

// Add validates the product, assigns the next incremental ProductID, stores
// the optional image in the blob store and persists the record.
func (s *Service) Add(ctx context.Context, product *models.Product, imageName string, image []byte, contentType string) error {
	if product.Name == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidProduct)
	}
	if product.Price < 0 {
		return fmt.Errorf("%w: price must be a non-negative number", ErrInvalidProduct)
	}
	if product.Quantity < 0 {
		return fmt.Errorf("%w: quantity must be a non-negative number", ErrInvalidProduct)
	}

	nextID, err := tablestore.NextProductID(ctx, s.store)
	if err != nil {
		return err
	}
	product.ProductID = strconv.Itoa(nextID)

	if len(image) > 0 {
		url, err := s.blobs.Upload(ctx, product.ProductID+"-"+imageName, contentType, image)
		if err != nil {
			return fmt.Errorf("failed to upload product image: %w", err)
		}
		product.ImageUrl = url
	}

	if err := s.store.UpsertProduct(ctx, product); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ProductID,
		"name":       product.Name,
	}).Info("Product added")
	return nil
}

func (s *Service) Update(ctx context.Context, product *models.Product) error {
	if product.Price < 0 || product.Quantity < 0 {
		return fmt.Errorf("%w: price and quantity must be non-negative", ErrInvalidProduct)
	}
	return s.store.UpsertProduct(ctx, product)
}

// Delete removes the product and, when it carries an image, the blob behind
// it. A failed image delete is logged but does not fail the request.
func (s *Service) Delete(ctx context.Context, partitionKey, rowKey string) error {
	product, err := s.store.GetProduct(ctx, partitionKey, rowKey)
	if err != nil {
		return err
	}
	if err := s.store.DeleteProduct(ctx, partitionKey, rowKey); err != nil {
		return err
	}
	if product.ImageUrl != "" {
		if err := s.blobs.Delete(ctx, product.ImageUrl); err != nil {
			s.logger.WithError(err).WithField("product_id", product.ProductID).Warn("Failed to delete product image")
		}
	}
	s.logger.WithField("product_id", product.ProductID).Info("Product deleted")
	return nil
}
