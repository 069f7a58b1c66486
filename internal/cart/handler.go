package cart

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/abcretail/storefront/internal/auth"
	"github.com/abcretail/storefront/internal/tablestore"
)

type Handler struct {
	carts  *Store
	tables tablestore.Store
	logger *logrus.Logger
}

func NewHandler(carts *Store, tables tablestore.Store, logger *logrus.Logger) *Handler {
	return &Handler{carts: carts, tables: tables, logger: logger}
}

type cartItemRequest struct {
	ProductID string `json:"ProductID"`
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		h.respondWithError(w, http.StatusUnauthorized, "You must be logged in.")
		return
	}

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		h.respondWithError(w, http.StatusBadRequest, "ProductID is required.")
		return
	}

	items, err := h.carts.Get(r.Context(), claims.Email)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load cart")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}

	items = Add(items, req.ProductID)
	if err := h.carts.Save(r.Context(), claims.Email, items); err != nil {
		h.logger.WithError(err).Error("Failed to save cart")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to save cart")
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Product successfully added to cart.",
		"items":   items,
	})
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		h.respondWithError(w, http.StatusUnauthorized, "You must be logged in.")
		return
	}

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		h.respondWithError(w, http.StatusBadRequest, "ProductID is required.")
		return
	}

	items, err := h.carts.Get(r.Context(), claims.Email)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load cart")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}

	items = Remove(items, req.ProductID)
	if err := h.carts.Save(r.Context(), claims.Email, items); err != nil {
		h.logger.WithError(err).Error("Failed to save cart")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to save cart")
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Product successfully removed from cart.",
		"items":   items,
	})
}

// ViewCart joins the session cart against the catalog and returns display
// lines with the running subtotal.
func (h *Handler) ViewCart(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		h.respondWithError(w, http.StatusUnauthorized, "You must be logged in.")
		return
	}

	items, err := h.carts.Get(r.Context(), claims.Email)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load cart")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}

	catalog, err := h.tables.ListProducts(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load catalog")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to load catalog")
		return
	}

	h.respondWithJSON(w, http.StatusOK, Summarize(items, catalog))
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
