package handler

import (
	"net/http"

	"tienda-api/internal/mercadopago"
	"tienda-api/internal/model"
	"tienda-api/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WebhookResponse acknowledges a provider notification.
type WebhookResponse struct {
	Status        string            `json:"status"`
	OrderID       *uuid.UUID        `json:"orderId,omitempty"`
	PaymentStatus string            `json:"paymentStatus,omitempty"`
	OrderStatus   model.OrderStatus `json:"orderStatus,omitempty"`
	Outcome       service.Outcome   `json:"outcome,omitempty"`
}

// WebhookHandler receives Mercado Pago notifications.
type WebhookHandler struct {
	service service.ReconciliationService
	logger  zerolog.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(service service.ReconciliationService, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		logger:  logger.With().Str("handler", "webhook").Logger(),
	}
}

// MercadoPago handles POST /api/webhooks/mercadopago requests.
func (h *WebhookHandler) MercadoPago(w http.ResponseWriter, r *http.Request) {
	var event mercadopago.Event
	if err := decodeJSON(w, r, &event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification body", model.ErrCodeInvalidJSON, h.logger)
		return
	}

	// The signed manifest uses the id from the query string when present.
	query := r.URL.Query()
	dataID := query.Get("data.id")
	if dataID == "" {
		dataID = event.Data.ID.String()
	}
	eventType := event.Type
	if eventType == "" {
		eventType = query.Get("type")
	}

	requestID := r.Header.Get("x-request-id")
	result, err := h.service.HandleNotification(r.Context(), service.Notification{
		Type:      eventType,
		DataID:    dataID,
		Signature: r.Header.Get("x-signature"),
		RequestID: requestID,
	})
	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("type", eventType).
			Str("payment_id", dataID).
			Str("request_id", requestID).
			Msg("notification not processed")
		writeServiceError(w, err, h.logger)
		return
	}

	if result.Outcome == service.OutcomeIgnored {
		writeJSON(w, http.StatusOK, WebhookResponse{Status: "ignored"})
		return
	}

	writeJSON(w, http.StatusOK, WebhookResponse{
		Status:        "success",
		OrderID:       &result.OrderID,
		PaymentStatus: result.PaymentStatus,
		OrderStatus:   result.OrderStatus,
		Outcome:       result.Outcome,
	})
}
