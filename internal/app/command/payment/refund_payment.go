package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/staybook/payments/internal/domain/payment"
	"github.com/staybook/payments/internal/port/outbound"
)

// RefundPaymentCommand represents a command to refund a payment.
type RefundPaymentCommand struct {
	PaymentID uuid.UUID
	Amount    *int64 // nil for full refund
	Reason    string
}

// RefundPaymentResult is the result of refunding a payment.
type RefundPaymentResult struct {
	Payment        *payment.Payment
	RefundID       string
	RefundedAmount int64
}

// RefundPaymentHandler handles RefundPaymentCommand.
type RefundPaymentHandler struct {
	repo     outbound.PaymentDatabasePort
	gateway  outbound.PaymentGatewayPort
	locker   outbound.PaymentLockerPort
	outcomes *Outcomes
	logger   *zap.Logger
}

// NewRefundPaymentHandler creates a new handler.
func NewRefundPaymentHandler(
	repo outbound.PaymentDatabasePort,
	gateway outbound.PaymentGatewayPort,
	locker outbound.PaymentLockerPort,
	outcomes *Outcomes,
	logger *zap.Logger,
) *RefundPaymentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefundPaymentHandler{
		repo:     repo,
		gateway:  gateway,
		locker:   locker,
		outcomes: outcomes,
		logger:   logger,
	}
}

// Handle executes the command.
func (h *RefundPaymentHandler) Handle(ctx context.Context, cmd RefundPaymentCommand) (*RefundPaymentResult, error) {
	unlock, err := lockPayment(ctx, h.locker, cmd.PaymentID.String())
	if err != nil {
		return nil, err
	}
	defer unlock()

	p, err := h.repo.FindByID(ctx, cmd.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}

	if p.Status() != payment.StatusSucceeded {
		return nil, payment.NewInvalidStateError(p.Status().String(), "can only refund succeeded payments")
	}
	if p.ProviderIntentID() == "" {
		return nil, payment.NewInvalidStateError(p.Status().String(), "payment has no provider intent")
	}

	amount := p.Amount()
	if cmd.Amount != nil {
		if *cmd.Amount <= 0 || *cmd.Amount > p.Amount() {
			return nil, payment.NewValidationError("amount", "must be positive and not exceed the payment amount")
		}
		amount = *cmd.Amount
	}

	result, err := h.gateway.CreateRefund(ctx, outbound.RefundInput{
		IntentID: p.ProviderIntentID(),
		Amount:   cmd.Amount,
		Reason:   cmd.Reason,
	})
	if err != nil {
		return nil, fmt.Errorf("create refund: %w", err)
	}

	if result.Status != payment.ProviderStatusSucceeded && result.Status != payment.ProviderStatusPending {
		msg := result.Message
		if msg == "" {
			msg = fmt.Sprintf("refund status %s", result.Status)
		}
		return nil, payment.NewProviderError(result.Status, msg, nil)
	}

	previous := p.Status()
	if err := p.Refund(amount); err != nil {
		return nil, err
	}
	if err := h.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}

	h.logger.Info("payment refunded",
		zap.String("payment_id", p.ID().String()),
		zap.String("refund_id", result.RefundID),
		zap.String("refund_status", result.Status),
		zap.Int64("amount", amount),
	)

	h.outcomes.Applied(ctx, p, previous, SourceCommand)

	return &RefundPaymentResult{
		Payment:        p,
		RefundID:       result.RefundID,
		RefundedAmount: amount,
	}, nil
}
