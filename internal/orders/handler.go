package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/abcretail/storefront/internal/auth"
	"github.com/abcretail/storefront/internal/cart"
	"github.com/abcretail/storefront/internal/session"
	"github.com/abcretail/storefront/internal/tablestore"
	"github.com/abcretail/storefront/pkg/models"
)

// FunctionsClient is the optional HTTP bridge to the function app; the order
// is forwarded there after placement, best-effort.
type FunctionsClient interface {
	QueueOrder(ctx context.Context, order *models.Order) error
}

type Handler struct {
	service   *Service
	store     tablestore.Store
	carts     *cart.Store
	sessions  session.Store
	functions FunctionsClient
	logger    *logrus.Logger
}

func NewHandler(service *Service, store tablestore.Store, carts *cart.Store, sessions session.Store, logger *logrus.Logger) *Handler {
	return &Handler{
		service:  service,
		store:    store,
		carts:    carts,
		sessions: sessions,
		logger:   logger,
	}
}

func (h *Handler) SetFunctionsClient(client FunctionsClient) {
	h.functions = client
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list orders")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get orders")
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"orders":  orders,
		"count":   len(orders),
	})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	partitionKey := r.URL.Query().Get("partitionKey")
	rowKey := r.URL.Query().Get("rowKey")
	if partitionKey == "" || rowKey == "" {
		h.respondWithError(w, http.StatusBadRequest, "Invalid order keys.")
		return
	}

	order, err := h.store.GetOrder(r.Context(), partitionKey, rowKey)
	if err != nil {
		if errors.Is(err, tablestore.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get order")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get order")
		return
	}
	h.respondWithJSON(w, http.StatusOK, order)
}

type createOrderRequest struct {
	models.Order
	RequestedQuantity int `json:"requestedQuantity"`
}

// CreateOrder is the admin add-order endpoint: one product, explicit quantity.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CustomerID == 0 {
		h.respondWithError(w, http.StatusBadRequest, "Please select a customer.")
		return
	}
	if req.ProductID == "" {
		h.respondWithError(w, http.StatusBadRequest, "Please select a product.")
		return
	}
	if req.DeliveryAddress == "" {
		h.respondWithError(w, http.StatusBadRequest, "Please enter the delivery address.")
		return
	}

	order := req.Order
	if err := h.service.CreateOrder(r.Context(), &order, req.RequestedQuantity); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			h.respondWithError(w, http.StatusBadRequest, "Selected product not found.")
			return
		}
		h.logger.WithError(err).Error("Failed to create order")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	h.forwardToFunctions(r.Context(), &order)

	h.respondWithJSON(w, http.StatusCreated, models.OrderResponse{
		Success: true,
		Message: fmt.Sprintf("Order %d created successfully.", order.OrderID),
		Order:   &order,
	})
}

type updateStatusRequest struct {
	PartitionKey string `json:"partitionKey"`
	RowKey       string `json:"rowKey"`
	NewStatus    string `json:"newStatus"`
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PartitionKey == "" || req.RowKey == "" {
		h.respondWithError(w, http.StatusBadRequest, "Invalid order keys.")
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), req.PartitionKey, req.RowKey, req.NewStatus)
	if err != nil {
		if errors.Is(err, tablestore.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.WithError(err).Error("Failed to update order status")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to update order status")
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Order %d status updated to %s.", order.OrderID, req.NewStatus),
		"order":   order,
	})
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	partitionKey := r.URL.Query().Get("partitionKey")
	rowKey := r.URL.Query().Get("rowKey")
	if partitionKey == "" || rowKey == "" {
		h.respondWithError(w, http.StatusBadRequest, "Invalid order keys.")
		return
	}

	if err := h.service.Delete(r.Context(), partitionKey, rowKey); err != nil {
		if errors.Is(err, tablestore.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete order")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to delete order")
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Order deleted",
	})
}

// Checkout turns the caller's session cart into one order, saves it for the
// receipt page and clears the cart.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		h.respondWithError(w, http.StatusUnauthorized, "You must be logged in to place an order.")
		return
	}

	items, err := h.carts.Get(r.Context(), claims.Email)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load cart")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}
	if len(items) == 0 {
		h.respondWithError(w, http.StatusBadRequest, "Your cart is empty.")
		return
	}

	customer, err := h.findCustomerByEmail(r.Context(), claims.Email)
	if err != nil {
		h.logger.WithError(err).Error("Failed to look up customer")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to look up customer")
		return
	}
	if customer == nil {
		h.respondWithError(w, http.StatusNotFound, "Customer record not found.")
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), customer, items)
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			h.respondWithError(w, http.StatusBadRequest, "Your cart is empty.")
			return
		}
		h.logger.WithError(err).Error("Failed to place order")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to place order")
		return
	}

	h.forwardToFunctions(r.Context(), order)

	if err := h.sessions.Set(r.Context(), receiptKey(claims.Email), order); err != nil {
		h.logger.WithError(err).Warn("Failed to save receipt")
	}
	if err := h.carts.Clear(r.Context(), claims.Email); err != nil {
		h.logger.WithError(err).Warn("Failed to clear cart after checkout")
	}

	h.respondWithJSON(w, http.StatusCreated, models.OrderResponse{
		Success: true,
		Message: fmt.Sprintf("Order %d created successfully.", order.OrderID),
		Order:   order,
	})
}

// Receipt returns the caller's most recent order.
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		h.respondWithError(w, http.StatusUnauthorized, "You must be logged in.")
		return
	}

	var order models.Order
	err := h.sessions.Get(r.Context(), receiptKey(claims.Email), &order)
	if errors.Is(err, session.ErrNoSession) {
		h.respondWithError(w, http.StatusNotFound, "No recent order found.")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to load receipt")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to load receipt")
		return
	}
	h.respondWithJSON(w, http.StatusOK, order)
}

func (h *Handler) findCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	customers, err := h.store.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range customers {
		if customers[i].Email == email {
			return &customers[i], nil
		}
	}
	return nil, nil
}

func (h *Handler) forwardToFunctions(ctx context.Context, order *models.Order) {
	if h.functions == nil {
		return
	}
	if err := h.functions.QueueOrder(ctx, order); err != nil {
		h.logger.WithError(err).WithField("order_id", order.OrderID).Error("Failed to forward order to functions app")
	}
}

func receiptKey(email string) string {
	return "lastorder:" + email
}

func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func (h *Handler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
