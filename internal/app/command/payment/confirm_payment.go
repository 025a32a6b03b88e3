package payment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/staybook/payments/internal/domain/payment"
	"github.com/staybook/payments/internal/port/outbound"
)

// ConfirmPaymentCommand represents a command to confirm an intent with a payment method.
type ConfirmPaymentCommand struct {
	IntentID        string
	PaymentMethodID string
}

// ConfirmPaymentResult is the result of confirming a payment.
type ConfirmPaymentResult struct {
	Payment *payment.Payment
	// ProviderStatus is the intent status reported by the processor.
	ProviderStatus string
}

// ConfirmPaymentHandler handles ConfirmPaymentCommand.
type ConfirmPaymentHandler struct {
	repo     outbound.PaymentDatabasePort
	gateway  outbound.PaymentGatewayPort
	locker   outbound.PaymentLockerPort
	outcomes *Outcomes
	logger   *zap.Logger
}

// NewConfirmPaymentHandler creates a new handler.
func NewConfirmPaymentHandler(
	repo outbound.PaymentDatabasePort,
	gateway outbound.PaymentGatewayPort,
	locker outbound.PaymentLockerPort,
	outcomes *Outcomes,
	logger *zap.Logger,
) *ConfirmPaymentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfirmPaymentHandler{
		repo:     repo,
		gateway:  gateway,
		locker:   locker,
		outcomes: outcomes,
		logger:   logger,
	}
}

// Handle executes the command.
func (h *ConfirmPaymentHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (*ConfirmPaymentResult, error) {
	if cmd.IntentID == "" {
		return nil, payment.NewValidationError("payment_intent_id", "is required")
	}
	if cmd.PaymentMethodID == "" {
		return nil, payment.NewValidationError("payment_method_id", "is required")
	}

	found, err := h.repo.FindByProviderIntentID(ctx, cmd.IntentID)
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}

	unlock, err := lockPayment(ctx, h.locker, found.ID().String())
	if err != nil {
		return nil, err
	}
	defer unlock()

	p, err := h.repo.FindByID(ctx, found.ID())
	if err != nil {
		return nil, fmt.Errorf("reload payment: %w", err)
	}
	if !p.Status().IsConfirmable() {
		return nil, payment.NewInvalidStateError(p.Status().String(), "payment cannot be confirmed")
	}

	result, err := h.gateway.Confirm(ctx, cmd.IntentID, cmd.PaymentMethodID)
	if err != nil {
		return nil, fmt.Errorf("confirm intent: %w", err)
	}

	previous := p.Status()
	switch result.Status {
	case payment.ProviderStatusSucceeded:
		p.MarkSucceeded(result.ChargeID)
	case payment.ProviderStatusRequiresAction:
		p.RequireAction()
	default:
		// Anything else, including processing, is treated as a failure here.
		// Webhooks and sync move the payment to its real state later.
		code, msg := result.ErrorCode, result.ErrorMessage
		if code == "" {
			code = result.Status
		}
		if msg == "" {
			msg = fmt.Sprintf("payment intent is %s", result.Status)
		}
		p.MarkFailed(code, msg)
	}

	if err := h.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}

	h.logger.Info("payment confirmed",
		zap.String("payment_id", p.ID().String()),
		zap.String("intent_id", cmd.IntentID),
		zap.String("provider_status", result.Status),
		zap.String("status", p.Status().String()),
	)

	h.outcomes.Applied(ctx, p, previous, SourceCommand)

	return &ConfirmPaymentResult{Payment: p, ProviderStatus: result.Status}, nil
}
