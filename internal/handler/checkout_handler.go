package handler

import (
	"net/http"
	"strings"

	"tienda-api/internal/model"
	"tienda-api/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CheckoutRequest is the body of POST /api/checkout/mercadopago.
type CheckoutRequest struct {
	OrderID string `json:"orderId"`
}

// CheckoutHandler opens provider checkouts for orders.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// CreatePreference handles POST /api/checkout/mercadopago requests.
func (h *CheckoutHandler) CreatePreference(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", model.ErrCodeInvalidJSON, h.logger)
		return
	}

	raw := strings.TrimSpace(req.OrderID)
	if raw == "" {
		writeError(w, http.StatusBadRequest, "orderId is required", model.ErrCodeMissingField, h.logger)
		return
	}

	orderID, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "orderId is not a valid id", model.ErrCodeInvalidField, h.logger)
		return
	}

	pref, err := h.service.CreatePreference(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, pref)
}
