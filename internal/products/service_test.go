package products

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abcretail/storefront/internal/blobstore"
	"github.com/abcretail/storefront/internal/tablestore"
	"github.com/abcretail/storefront/pkg/models"
)

func newTestService() (*Service, *tablestore.Memory, *blobstore.Memory) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	tables := tablestore.NewMemory()
	blobs := blobstore.NewMemory("http://localhost:8080")
	return NewService(tables, blobs, logger), tables, blobs
}

func TestAddAssignsIncrementalID(t *testing.T) {
	ctx := context.Background()
	service, tables, _ := newTestService()

	require.NoError(t, tables.UpsertProduct(ctx, &models.Product{ProductID: "2", Name: "Existing"}))

	product := &models.Product{Name: "Notebook", Price: 49.99, Quantity: 10}
	require.NoError(t, service.Add(ctx, product, "", nil, ""))
	assert.Equal(t, "3", product.ProductID)
	assert.Empty(t, product.ImageUrl, "no image was uploaded")
}

func TestAddWithImage(t *testing.T) {
	ctx := context.Background()
	service, _, blobs := newTestService()

	product := &models.Product{Name: "Notebook", Price: 49.99}
	require.NoError(t, service.Add(ctx, product, "cover.png", []byte{0x89, 0x50}, "image/png"))

	assert.Equal(t, "http://localhost:8080/images/1-cover.png", product.ImageUrl)
	assert.Equal(t, 1, blobs.Len())

	data, contentType, err := blobs.Get(ctx, "1-cover.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, []byte{0x89, 0x50}, data)
}

func TestAddValidation(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService()

	err := service.Add(ctx, &models.Product{Price: 10}, "", nil, "")
	assert.ErrorIs(t, err, ErrInvalidProduct)

	err = service.Add(ctx, &models.Product{Name: "X", Price: -1}, "", nil, "")
	assert.ErrorIs(t, err, ErrInvalidProduct)

	err = service.Add(ctx, &models.Product{Name: "X", Quantity: -1}, "", nil, "")
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestDeleteRemovesImage(t *testing.T) {
	ctx := context.Background()
	service, tables, blobs := newTestService()

	product := &models.Product{Name: "Notebook", Price: 10}
	require.NoError(t, service.Add(ctx, product, "cover.png", []byte{0x1}, "image/png"))
	require.Equal(t, 1, blobs.Len())

	require.NoError(t, service.Delete(ctx, product.PartitionKey, product.RowKey))

	_, err := tables.GetProduct(ctx, product.PartitionKey, product.RowKey)
	assert.ErrorIs(t, err, tablestore.ErrNotFound)
	assert.Equal(t, 0, blobs.Len())
}

func TestFindByProductID(t *testing.T) {
	ctx := context.Background()
	service, tables, _ := newTestService()

	require.NoError(t, tables.UpsertProduct(ctx, &models.Product{ProductID: "5", Name: "Backpack"}))

	product, err := service.FindByProductID(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, "Backpack", product.Name)

	_, err = service.FindByProductID(ctx, "99")
	assert.ErrorIs(t, err, tablestore.ErrNotFound)
}
