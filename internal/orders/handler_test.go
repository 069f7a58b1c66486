package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abcretail/storefront/internal/auth"
	"github.com/abcretail/storefront/internal/cart"
	"github.com/abcretail/storefront/internal/session"
	"github.com/abcretail/storefront/internal/tablestore"
	"github.com/abcretail/storefront/pkg/models"
)

var handlerSecret = []byte("handler-test-secret")

type checkoutFixture struct {
	router *mux.Router
	store  *tablestore.Memory
	carts  *cart.Store
	token  string
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	ctx := context.Background()

	store := tablestore.NewMemory()
	sessions := session.NewMemoryStore()
	carts := cart.NewStore(sessions)
	service := NewService(store, &fakeNotifier{}, testLogger())
	handler := NewHandler(service, store, carts, sessions, testLogger())

	require.NoError(t, store.UpsertCustomer(ctx, &models.Customer{
		CustomerID: "7",
		FirstName:  "Thandi",
		Email:      "thandi@example.com",
	}))
	require.NoError(t, store.UpsertProduct(ctx, &models.Product{
		ProductID: "P1", Name: "Notebook", Price: 10,
	}))
	require.NoError(t, store.UpsertProduct(ctx, &models.Product{
		ProductID: "P2", Name: "Backpack", Price: 15,
	}))

	token, err := auth.NewToken(handlerSecret, "thandi@example.com", models.RoleCustomer)
	require.NoError(t, err)

	router := mux.NewRouter()
	authed := router.NewRoute().Subrouter()
	authed.Use(auth.RequireAuth(handlerSecret))
	authed.HandleFunc("/checkout", handler.Checkout).Methods("POST")
	authed.HandleFunc("/checkout/receipt", handler.Receipt).Methods("GET")

	return &checkoutFixture{router: router, store: store, carts: carts, token: token}
}

func (f *checkoutFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+f.token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(t)

	require.NoError(t, f.carts.Save(ctx, "thandi@example.com", []models.CartItem{
		{ProductID: "P1", Quantity: 2},
		{ProductID: "P2", Quantity: 1},
	}))

	rec := f.do(t, http.MethodPost, "/checkout", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp models.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Order)
	assert.Equal(t, 35.0, resp.Order.OrderTotal)
	assert.Equal(t, "P1,P2", resp.Order.ProductID)

	// The cart is cleared after checkout.
	items, err := f.carts.Get(ctx, "thandi@example.com")
	require.NoError(t, err)
	assert.Empty(t, items)

	// The receipt holds the placed order.
	rec = f.do(t, http.MethodGet, "/checkout/receipt", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var receipt models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))
	assert.Equal(t, resp.Order.OrderID, receipt.OrderID)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)

	rec := f.do(t, http.MethodPost, "/checkout", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Your cart is empty.")
}

func TestCheckoutWithoutCustomerRecord(t *testing.T) {
	f := newCheckoutFixture(t)

	// A login without a matching customer entity cannot check out.
	token, err := auth.NewToken(handlerSecret, "ghost@example.com", models.RoleCustomer)
	require.NoError(t, err)
	f.token = token

	require.NoError(t, f.carts.Save(context.Background(), "ghost@example.com",
		[]models.CartItem{{ProductID: "P1", Quantity: 1}}))

	rec := f.do(t, http.MethodPost, "/checkout", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Customer record not found.")
}

func TestCheckoutRequiresAuth(t *testing.T) {
	f := newCheckoutFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReceiptBeforeAnyOrder(t *testing.T) {
	f := newCheckoutFixture(t)

	rec := f.do(t, http.MethodGet, "/checkout/receipt", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No recent order found.")
}
