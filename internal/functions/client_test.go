package functions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abcretail/storefront/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestQueueOrder(t *testing.T) {
	var gotPath, gotKey string
	var gotOrder models.Order

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-functions-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotOrder))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "message": "queued"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "key-123", testLogger())
	err := client.QueueOrder(context.Background(), &models.Order{OrderID: 7, CustomerID: 2})
	require.NoError(t, err)

	assert.Equal(t, "/api/orders/send", gotPath)
	assert.Equal(t, "key-123", gotKey)
	assert.Equal(t, 7, gotOrder.OrderID)
}

func TestQueueOrderRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "broker down"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", testLogger())
	err := client.QueueOrder(context.Background(), &models.Order{OrderID: 7})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestQueueOrderErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", testLogger())
	err := client.QueueOrder(context.Background(), &models.Order{OrderID: 7})
	assert.Error(t, err)
}

func TestNoFunctionKeyHeaderWhenUnset(t *testing.T) {
	var hasKey bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasKey = r.Header["X-Functions-Key"]
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", testLogger())
	err := client.AddCustomer(context.Background(), &models.Customer{FirstName: "Thandi", LastName: "Nkosi"})
	require.NoError(t, err)
	assert.False(t, hasKey)
}

func TestUploadFile(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", testLogger())
	err := client.UploadFile(context.Background(), &models.FileUpload{
		FileName:    "report.pdf",
		FileContent: "aGVsbG8=",
	})
	require.NoError(t, err)
	assert.Equal(t, "/api/files/upload", gotPath)
}
