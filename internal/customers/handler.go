package customers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/abcretail/storefront/internal/tablestore"
	"github.com/abcretail/storefront/pkg/models"
)

type Handler struct {
	service *Service
	logger  *logrus.Logger
}

func NewHandler(service *Service, logger *logrus.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.List(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list customers")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get customers")
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"customers": customers,
		"count":     len(customers),
	})
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	partitionKey := r.URL.Query().Get("partitionKey")
	rowKey := r.URL.Query().Get("rowKey")
	if partitionKey == "" || rowKey == "" {
		h.respondWithError(w, http.StatusBadRequest, "Invalid customer keys.")
		return
	}

	customer, err := h.service.Get(r.Context(), partitionKey, rowKey)
	if err != nil {
		if errors.Is(err, tablestore.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Customer not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get customer")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get customer")
		return
	}
	h.respondWithJSON(w, http.StatusOK, customer)
}

func (h *Handler) AddCustomer(w http.ResponseWriter, r *http.Request) {
	var customer models.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if customer.FirstName == "" || customer.LastName == "" {
		h.respondWithError(w, http.StatusBadRequest, "First name and last name are required.")
		return
	}

	if err := h.service.Add(r.Context(), &customer); err != nil {
		h.logger.WithError(err).Error("Failed to add customer")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to add customer")
		return
	}
	h.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"message":  "Customer added successfully",
		"customer": customer,
	})
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var customer models.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if customer.PartitionKey == "" || customer.RowKey == "" {
		h.respondWithError(w, http.StatusBadRequest, "Invalid customer keys.")
		return
	}

	if err := h.service.Update(r.Context(), &customer); err != nil {
		h.logger.WithError(err).Error("Failed to update customer")
		h.respondWithError(w, http.StatusInternalServerError, "Could not update customer")
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"customer": customer,
	})
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	partitionKey := r.URL.Query().Get("partitionKey")
	rowKey := r.URL.Query().Get("rowKey")
	if partitionKey == "" || rowKey == "" {
		h.respondWithError(w, http.StatusBadRequest, "Invalid customer keys.")
		return
	}

	if err := h.service.Delete(r.Context(), partitionKey, rowKey); err != nil {
		if errors.Is(err, tablestore.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Customer not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete customer")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to delete customer")
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Customer deleted",
	})
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
