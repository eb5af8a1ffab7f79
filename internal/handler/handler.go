package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"tienda-api/internal/model"
	"tienda-api/internal/payment"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, message and code.
func writeError(w http.ResponseWriter, status int, message, code string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("error", message).Str("code", code).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: message, Code: code})
}

// domainStatus maps domain error codes to HTTP statuses.
var domainStatus = map[string]int{
	model.ErrCodeEmptyOrder:           http.StatusBadRequest,
	model.ErrCodeInvalidQuantity:      http.StatusBadRequest,
	model.ErrCodeInvalidCoupon:        http.StatusBadRequest,
	model.ErrCodeCouponMinimum:        http.StatusBadRequest,
	model.ErrCodeInvalidStatus:        http.StatusBadRequest,
	model.ErrCodeInvalidPaymentID:     http.StatusBadRequest,
	model.ErrCodeMissingReference:     http.StatusBadRequest,
	model.ErrCodeInvalidSignature:     http.StatusUnauthorized,
	model.ErrCodeOrderNotFound:        http.StatusNotFound,
	model.ErrCodeProductNotFound:      http.StatusNotFound,
	model.ErrCodePaymentNotFound:      http.StatusNotFound,
	model.ErrCodeProductUnavailable:   http.StatusConflict,
	model.ErrCodeTotalsMismatch:       http.StatusConflict,
	model.ErrCodeInvalidTransition:    http.StatusConflict,
	model.ErrCodeOrderNotPayable:      http.StatusConflict,
	model.ErrCodeOrderNumberConflict:  http.StatusServiceUnavailable,
	model.ErrCodeOrderNumberExhausted: http.StatusServiceUnavailable,
}

// writeServiceError maps a service error onto a status and a client-safe body.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, validationErr.Error(), model.ErrCodeInvalidField, logger)
		return
	}

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		if status, ok := domainStatus[domainErr.Code]; ok {
			writeError(w, status, domainErr.Message, domainErr.Code, logger)
			return
		}
	}

	var providerErr *payment.ProviderError
	if errors.As(err, &providerErr) {
		logger.Error().Err(err).Msg("payment provider failure")
		writeError(w, http.StatusInternalServerError, "payment provider unavailable, please retry", model.ErrCodeProviderFailure, logger)
		return
	}

	logger.Error().Err(err).Msg("unexpected service error")
	writeError(w, http.StatusInternalServerError, "internal server error", model.ErrCodeInternalError, logger)
}

// decodeJSON decodes a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// pathUUID parses the named chi URL parameter as a uuid.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, model.NewValidationError(name, "is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, model.NewValidationError(name, "is not a valid id")
	}
	return id, nil
}
