package tablestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/abcretail/storefront/pkg/models"
)

const (
	customersTable = "customers"
	productsTable  = "products"
	ordersTable    = "orders"
)

// Client is the Postgres-backed table store. All entities live in a single
// entities table addressed by (table_name, partition_key, row_key) with the
// record body as JSONB, so list operations are plain linear scans.
type Client struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewClient(db *sql.DB, logger *logrus.Logger) *Client {
	return &Client{db: db, logger: logger}
}

// EnsureSchema creates the entities table if it does not exist yet.
func (c *Client) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS entities (
			table_name    VARCHAR(64)  NOT NULL,
			partition_key VARCHAR(255) NOT NULL,
			row_key       VARCHAR(255) NOT NULL,
			body          JSONB        NOT NULL,
			PRIMARY KEY (table_name, partition_key, row_key)
		)
	`
	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create entities table: %w", err)
	}
	return nil
}

func (c *Client) listRaw(ctx context.Context, table string) ([][]byte, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT body FROM entities WHERE table_name = $1`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	var bodies [][]byte
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
	}
	return bodies, rows.Err()
}

func (c *Client) getRaw(ctx context.Context, table, partitionKey, rowKey string) ([]byte, error) {
	var body []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT body FROM entities WHERE table_name = $1 AND partition_key = $2 AND row_key = $3`,
		table, partitionKey, rowKey).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entity from %s: %w", table, err)
	}
	return body, nil
}

func (c *Client) upsertRaw(ctx context.Context, table, partitionKey, rowKey string, entity interface{}) error {
	body, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO entities (table_name, partition_key, row_key, body)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (table_name, partition_key, row_key)
		DO UPDATE SET body = EXCLUDED.body
	`, table, partitionKey, rowKey, body)
	if err != nil {
		return fmt.Errorf("failed to upsert entity into %s: %w", table, err)
	}
	return nil
}

func (c *Client) deleteRaw(ctx context.Context, table, partitionKey, rowKey string) error {
	result, err := c.db.ExecContext(ctx,
		`DELETE FROM entities WHERE table_name = $1 AND partition_key = $2 AND row_key = $3`,
		table, partitionKey, rowKey)
	if err != nil {
		return fmt.Errorf("failed to delete entity from %s: %w", table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Client) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	bodies, err := c.listRaw(ctx, customersTable)
	if err != nil {
		return nil, err
	}
	customers := make([]models.Customer, 0, len(bodies))
	for _, body := range bodies {
		var customer models.Customer
		if err := json.Unmarshal(body, &customer); err != nil {
			return nil, fmt.Errorf("failed to unmarshal customer: %w", err)
		}
		customers = append(customers, customer)
	}
	return customers, nil
}

func (c *Client) GetCustomer(ctx context.Context, partitionKey, rowKey string) (*models.Customer, error) {
	body, err := c.getRaw(ctx, customersTable, partitionKey, rowKey)
	if err != nil {
		return nil, err
	}
	var customer models.Customer
	if err := json.Unmarshal(body, &customer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal customer: %w", err)
	}
	return &customer, nil
}

func (c *Client) UpsertCustomer(ctx context.Context, customer *models.Customer) error {
	if customer.PartitionKey == "" {
		customer.PartitionKey = models.CustomersPartition
	}
	if customer.RowKey == "" {
		customer.RowKey = uuid.New().String()
	}
	return c.upsertRaw(ctx, customersTable, customer.PartitionKey, customer.RowKey, customer)
}

func (c *Client) DeleteCustomer(ctx context.Context, partitionKey, rowKey string) error {
	return c.deleteRaw(ctx, customersTable, partitionKey, rowKey)
}

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	bodies, err := c.listRaw(ctx, productsTable)
	if err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(bodies))
	for _, body := range bodies {
		var product models.Product
		if err := json.Unmarshal(body, &product); err != nil {
			return nil, fmt.Errorf("failed to unmarshal product: %w", err)
		}
		products = append(products, product)
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, partitionKey, rowKey string) (*models.Product, error) {
	body, err := c.getRaw(ctx, productsTable, partitionKey, rowKey)
	if err != nil {
		return nil, err
	}
	var product models.Product
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}
	return &product, nil
}

func (c *Client) UpsertProduct(ctx context.Context, product *models.Product) error {
	if product.PartitionKey == "" {
		product.PartitionKey = models.ProductsPartition
	}
	if product.RowKey == "" {
		product.RowKey = uuid.New().String()
	}
	return c.upsertRaw(ctx, productsTable, product.PartitionKey, product.RowKey, product)
}

func (c *Client) DeleteProduct(ctx context.Context, partitionKey, rowKey string) error {
	return c.deleteRaw(ctx, productsTable, partitionKey, rowKey)
}

func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	bodies, err := c.listRaw(ctx, ordersTable)
	if err != nil {
		return nil, err
	}
	orders := make([]models.Order, 0, len(bodies))
	for _, body := range bodies {
		var order models.Order
		if err := json.Unmarshal(body, &order); err != nil {
			return nil, fmt.Errorf("failed to unmarshal order: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, partitionKey, rowKey string) (*models.Order, error) {
	body, err := c.getRaw(ctx, ordersTable, partitionKey, rowKey)
	if err != nil {
		return nil, err
	}
	var order models.Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order: %w", err)
	}
	return &order, nil
}

func (c *Client) UpsertOrder(ctx context.Context, order *models.Order) error {
	if order.PartitionKey == "" {
		order.PartitionKey = models.OrdersPartition
	}
	if order.RowKey == "" {
		order.RowKey = uuid.New().String()
	}
	return c.upsertRaw(ctx, ordersTable, order.PartitionKey, order.RowKey, order)
}

func (c *Client) DeleteOrder(ctx context.Context, partitionKey, rowKey string) error {
	return c.deleteRaw(ctx, ordersTable, partitionKey, rowKey)
}
