// Package functions is the HTTP client for the function app, which handles
// queue publishing and storage writes out of band of the storefront.
package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abcretail/storefront/pkg/models"
)

type Client struct {
	baseURL     string
	functionKey string
	httpClient  *http.Client
	logger      *logrus.Logger
}

// NewClient builds a client for the function app. functionKey may be empty;
// when set it is sent as the x-functions-key header on every request.
func NewClient(baseURL, functionKey string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:     baseURL,
		functionKey: functionKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// QueueOrder forwards a freshly placed order so the function app can publish
// the queue notification.
func (c *Client) QueueOrder(ctx context.Context, order *models.Order) error {
	c.logger.WithField("order_id", order.OrderID).Info("Forwarding order to function app")

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := c.post(ctx, "/api/orders/send", order, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("function app rejected order: %s", resp.Message)
	}
	return nil
}

// AddCustomer stores a customer through the function app.
func (c *Client) AddCustomer(ctx context.Context, customer *models.Customer) error {
	c.logger.WithField("email", customer.Email).Info("Sending customer to function app")
	return c.post(ctx, "/api/customers/add", customer, nil)
}

// UploadFile pushes a file into the share through the function app.
func (c *Client) UploadFile(ctx context.Context, upload *models.FileUpload) error {
	c.logger.WithField("file_name", upload.FileName).Info("Sending file to function app")
	return c.post(ctx, "/api/files/upload", upload, nil)
}

// UploadProduct stores a product, image included, through the function app.
func (c *Client) UploadProduct(ctx context.Context, upload *models.ProductUpload) error {
	c.logger.WithField("name", upload.Name).Info("Sending product to function app")
	return c.post(ctx, "/api/products/upload", upload, nil)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.functionKey != "" {
		req.Header.Set("x-functions-key", c.functionKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to function app: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("function app returned error status: %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode function app response: %w", err)
		}
	}
	return nil
}
