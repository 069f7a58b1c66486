package products

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/abcretail/storefront/internal/blobstore"
	"github.com/abcretail/storefront/internal/tablestore"
	"github.com/abcretail/storefront/pkg/models"
)

type Handler struct {
	service *Service
	blobs   blobstore.Store
	logger  *logrus.Logger
}

func NewHandler(service *Service, blobs blobstore.Store, logger *logrus.Logger) *Handler {
	return &Handler{service: service, blobs: blobs, logger: logger}
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list products")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get products")
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"products": products,
		"count":    len(products),
	})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	partitionKey := r.URL.Query().Get("partitionKey")
	rowKey := r.URL.Query().Get("rowKey")
	if partitionKey == "" || rowKey == "" {
		h.respondWithError(w, http.StatusBadRequest, "Invalid product keys.")
		return
	}

	product, err := h.service.Get(r.Context(), partitionKey, rowKey)
	if err != nil {
		if errors.Is(err, tablestore.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get product")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get product")
		return
	}
	h.respondWithJSON(w, http.StatusOK, product)
}

type addProductRequest struct {
	models.Product
	ImageName   string `json:"ImageName,omitempty"`
	ImageBase64 string `json:"ImageBase64,omitempty"`
}

func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req addProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var image []byte
	if req.ImageBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			h.respondWithError(w, http.StatusBadRequest, "Invalid image encoding")
			return
		}
		image = decoded
	}
	imageName := req.ImageName
	if imageName == "" {
		imageName = "image"
	}

	product := req.Product
	if err := h.service.Add(r.Context(), &product, imageName, image, "application/octet-stream"); err != nil {
		if errors.Is(err, ErrInvalidProduct) {
			h.respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to add product")
		h.respondWithError(w, http.StatusInternalServerError, "An error occurred while saving the product.")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Product added successfully",
		"product": product,
	})
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if product.PartitionKey == "" || product.RowKey == "" {
		h.respondWithError(w, http.StatusBadRequest, "Invalid product keys.")
		return
	}

	if err := h.service.Update(r.Context(), &product); err != nil {
		if errors.Is(err, ErrInvalidProduct) {
			h.respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to update product")
		h.respondWithError(w, http.StatusInternalServerError, "Could not update product")
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"product": product,
	})
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	partitionKey := r.URL.Query().Get("partitionKey")
	rowKey := r.URL.Query().Get("rowKey")
	if partitionKey == "" || rowKey == "" {
		h.respondWithError(w, http.StatusBadRequest, "Invalid product keys.")
		return
	}

	if err := h.service.Delete(r.Context(), partitionKey, rowKey); err != nil {
		if errors.Is(err, tablestore.ErrNotFound) {
			h.respondWithError(w, http.StatusNotFound, "Product not found.")
			return
		}
		h.logger.WithError(err).Error("Failed to delete product")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Product deleted",
	})
}

// ServeImage streams a product image out of the blob store.
func (h *Handler) ServeImage(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	data, contentType, err := h.blobs.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.logger.WithError(err).Error("Failed to serve image")
		http.Error(w, "Failed to serve image", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
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
