package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tienda-api/internal/model"
	"tienda-api/internal/payment"
	"tienda-api/internal/pricing"
	"tienda-api/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Outcome describes what a notification did to its order.
type Outcome string

const (
	// OutcomeIgnored marks notifications for topics other than payments.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeApplied marks a status change.
	OutcomeApplied Outcome = "applied"
	// OutcomeUnchanged marks a replay or a status the order already has.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeStale marks a status that would move the order backwards.
	OutcomeStale Outcome = "stale"
	// OutcomeUnknownStatus marks a provider status outside the known set.
	OutcomeUnknownStatus Outcome = "unknown_status"
)

// Notification is an inbound provider webhook reduced to what is verified
// and reconciled.
type Notification struct {
	Type      string
	DataID    string
	Signature string
	RequestID string
}

// ReconciliationResult reports the state of the order after a notification.
type ReconciliationResult struct {
	Outcome       Outcome
	OrderID       uuid.UUID
	PaymentID     string
	PaymentStatus string
	OrderStatus   model.OrderStatus
}

// reconciliationService implements ReconciliationService.
type reconciliationService struct {
	orderRepo repository.OrderRepository
	gateway   payment.Gateway
	verifier  payment.Verifier
	now       func() time.Time
	logger    zerolog.Logger
}

// NewReconciliationService creates a new reconciliation service.
func NewReconciliationService(
	orderRepo repository.OrderRepository,
	gateway payment.Gateway,
	verifier payment.Verifier,
	logger zerolog.Logger,
) ReconciliationService {
	return &reconciliationService{
		orderRepo: orderRepo,
		gateway:   gateway,
		verifier:  verifier,
		now:       time.Now,
		logger:    logger.With().Str("service", "reconciliation").Logger(),
	}
}

// HandleNotification verifies n, fetches the payment it names and applies the
// payment's status to the referenced order. Delivering the same notification
// any number of times leaves the order as a single delivery would.
func (s *reconciliationService) HandleNotification(ctx context.Context, n Notification) (*ReconciliationResult, error) {
	if n.Type != payment.EventTypePayment {
		s.logger.Debug().Str("type", n.Type).Msg("ignoring non-payment notification")
		return &ReconciliationResult{Outcome: OutcomeIgnored}, nil
	}

	if n.DataID == "" {
		return nil, model.NewValidationError("data.id", "is required")
	}

	if !s.verifier.Verify(n.Signature, n.RequestID, n.DataID) {
		s.logger.Warn().
			Str("payment_id", n.DataID).
			Str("request_id", n.RequestID).
			Msg("webhook signature rejected")
		return nil, model.ErrInvalidSignature
	}

	details, err := s.gateway.GetPayment(ctx, n.DataID)
	if err != nil {
		return nil, err
	}

	if details.ExternalReference == "" {
		s.logger.Warn().Str("payment_id", details.ID).Msg("payment has no external reference")
		return nil, model.ErrMissingOrderReference
	}

	orderID, err := uuid.Parse(details.ExternalReference)
	if err != nil {
		s.logger.Warn().
			Str("payment_id", details.ID).
			Str("external_reference", details.ExternalReference).
			Msg("external reference is not an order id")
		return nil, model.NewValidationError("external_reference", "is not an order id")
	}

	result := &ReconciliationResult{
		OrderID:       orderID,
		PaymentID:     details.ID,
		PaymentStatus: details.RawStatus,
	}

	target, known := payment.TargetStatus(details.Status)
	if !known {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("payment_id", details.ID).
			Str("payment_status", details.RawStatus).
			Msg("unknown payment status, order left untouched")
		result.Outcome = OutcomeUnknownStatus
		return result, nil
	}

	if err := s.reconcile(ctx, details, target, result); err != nil {
		return nil, err
	}

	return result, nil
}

// reconcile applies target to the order under a row lock.
func (s *reconciliationService) reconcile(ctx context.Context, details *payment.Details, target model.OrderStatus, result *ReconciliationResult) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to reconcile payment: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	order, err := s.orderRepo.GetForUpdate(ctx, tx, result.OrderID)
	if err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			s.logger.Warn().
				Str("order_id", result.OrderID.String()).
				Str("payment_id", details.ID).
				Msg("payment references an unknown order")
		}
		return err
	}

	log := s.logger.With().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("payment_id", details.ID).
		Str("payment_status", details.RawStatus).
		Str("from_status", string(order.Status)).
		Str("to_status", string(target)).
		Logger()

	switch {
	case order.Status == target && alreadyRecorded(order, details):
		result.Outcome = OutcomeUnchanged
		result.OrderStatus = order.Status
		err = tx.Commit(ctx)
		return err
	case order.Status == target:
		result.Outcome = OutcomeUnchanged
	case model.CanReconcile(order.Status, target):
		result.Outcome = OutcomeApplied
	default:
		log.Warn().Msg("stale payment status, order left untouched")
		result.Outcome = OutcomeStale
		result.OrderStatus = order.Status
		err = tx.Commit(ctx)
		return err
	}

	if target == model.OrderStatusPaid {
		s.checkAmount(log, order, details)
	}

	err = s.orderRepo.ApplyPayment(ctx, tx, model.PaymentUpdate{
		OrderID:       order.ID,
		Status:        target,
		PaymentID:     details.ID,
		PaymentStatus: details.RawStatus,
		At:            s.now(),
		LinkPayment:   result.Outcome == OutcomeApplied,
	})
	if err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to reconcile payment: %w", err)
	}

	result.OrderStatus = target
	if result.Outcome == OutcomeApplied {
		log.Info().Msg("payment reconciled")
	} else {
		log.Debug().Msg("payment already reconciled")
	}

	return nil
}

// checkAmount logs a payment whose amount differs from the order total.
func (s *reconciliationService) checkAmount(log zerolog.Logger, order *model.Order, details *payment.Details) {
	if amountMatches(order.Total, details.TransactionAmount) {
		return
	}
	log.Warn().
		Str("transaction_amount", details.TransactionAmount.String()).
		Int64("transaction_amount_centavos", pricing.FromMajor(details.TransactionAmount)).
		Int64("order_total", order.Total).
		Msg("payment amount differs from order total")
}

// amountMatches compares a provider amount in pesos with a total in centavos.
// A zero amount means the provider did not report one.
func amountMatches(total int64, amount decimal.Decimal) bool {
	return amount.IsZero() || pricing.FromMajor(amount) == total
}

// alreadyRecorded reports whether the order already carries this payment in
// this provider status.
func alreadyRecorded(order *model.Order, details *payment.Details) bool {
	return order.PaymentID != nil && *order.PaymentID == details.ID &&
		order.PaymentStatus != nil && *order.PaymentStatus == details.RawStatus
}
