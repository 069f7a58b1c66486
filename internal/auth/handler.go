package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/abcretail/storefront/pkg/models"
)

// CartStore is the subset of the cart store the auth handler needs. It is
// declared here rather than importing the cart package, which would create an
// import cycle (cart imports auth for session claims).
type CartStore interface {
	Clear(ctx context.Context, sessionID string) error
}

type Handler struct {
	service *Service
	carts   CartStore
	logger  *logrus.Logger
}

func NewHandler(service *Service, carts CartStore, logger *logrus.Logger) *Handler {
	return &Handler{service: service, carts: carts, logger: logger}
}

type registerRequest struct {
	FirstName string `json:"FirstName"`
	LastName  string `json:"LastName"`
	Email     string `json:"Email"`
	Phone     string `json:"Phone"`
	Password  string `json:"Password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.FirstName == "" || req.LastName == "" {
		h.respondWithError(w, http.StatusBadRequest, "First name and last name are required.")
		return
	}

	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	}
	customer, err := h.service.Register(r.Context(), user, req.Password)
	if err != nil {
		if errors.Is(err, ErrAdminReserved) {
			h.respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to register user")
		h.respondWithError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"message":  "Registration successful",
		"customer": customer,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, role, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.respondWithError(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		h.logger.WithError(err).Error("Login failed")
		h.respondWithError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
		"role":    role,
	})
}

// Logout clears the caller's session cart. Tokens themselves expire on their
// own; there is no server-side revocation list.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if claims != nil {
		if err := h.carts.Clear(r.Context(), claims.Email); err != nil {
			h.logger.WithError(err).Warn("Failed to clear cart on logout")
		}
	}
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out",
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
