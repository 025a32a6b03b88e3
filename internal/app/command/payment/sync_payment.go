package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/staybook/payments/internal/domain/payment"
	"github.com/staybook/payments/internal/port/outbound"
)

// SyncPaymentCommand represents a command to pull the intent state from the provider.
type SyncPaymentCommand struct {
	PaymentID uuid.UUID
}

// SyncPaymentResult is the result of a sync.
type SyncPaymentResult struct {
	Payment        *payment.Payment
	ProviderStatus string
	Changed        bool
}

// SyncPaymentHandler handles SyncPaymentCommand.
type SyncPaymentHandler struct {
	repo     outbound.PaymentDatabasePort
	gateway  outbound.PaymentGatewayPort
	locker   outbound.PaymentLockerPort
	outcomes *Outcomes
	logger   *zap.Logger
}

// NewSyncPaymentHandler creates a new handler.
func NewSyncPaymentHandler(
	repo outbound.PaymentDatabasePort,
	gateway outbound.PaymentGatewayPort,
	locker outbound.PaymentLockerPort,
	outcomes *Outcomes,
	logger *zap.Logger,
) *SyncPaymentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncPaymentHandler{
		repo:     repo,
		gateway:  gateway,
		locker:   locker,
		outcomes: outcomes,
		logger:   logger,
	}
}

// Handle executes the command.
func (h *SyncPaymentHandler) Handle(ctx context.Context, cmd SyncPaymentCommand) (*SyncPaymentResult, error) {
	unlock, err := lockPayment(ctx, h.locker, cmd.PaymentID.String())
	if err != nil {
		return nil, err
	}
	defer unlock()

	p, err := h.repo.FindByID(ctx, cmd.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}
	if p.ProviderIntentID() == "" {
		return nil, payment.NewInvalidStateError(p.Status().String(), "payment has no provider intent")
	}

	intent, err := h.gateway.GetIntent(ctx, p.ProviderIntentID())
	if err != nil {
		return nil, fmt.Errorf("get intent: %w", err)
	}

	previous := p.Status()
	// A refunded payment's intent still reads succeeded at the provider.
	if previous == payment.StatusRefunded || !applyIntentStatus(p, intent) {
		return &SyncPaymentResult{Payment: p, ProviderStatus: intent.Status}, nil
	}

	if err := h.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}

	h.logger.Info("payment synced",
		zap.String("payment_id", p.ID().String()),
		zap.String("provider_status", intent.Status),
		zap.String("from", previous.String()),
		zap.String("to", p.Status().String()),
	)

	h.outcomes.Applied(ctx, p, previous, SourceSync)

	return &SyncPaymentResult{Payment: p, ProviderStatus: intent.Status, Changed: true}, nil
}

// applyIntentStatus moves p to the state the provider reports for its intent.
// Returns false when the provider status carries no transition or p already has it.
func applyIntentStatus(p *payment.Payment, intent *outbound.IntentResult) bool {
	switch intent.Status {
	case payment.ProviderStatusSucceeded:
		if p.Status() == payment.StatusSucceeded &&
			(intent.ChargeID == "" || intent.ChargeID == p.ProviderChargeID()) {
			return false
		}
		p.MarkSucceeded(intent.ChargeID)
	case payment.ProviderStatusProcessing:
		if p.Status() == payment.StatusProcessing {
			return false
		}
		p.MarkProcessing()
	case payment.ProviderStatusRequiresAction:
		if p.Status() == payment.StatusRequiresAction {
			return false
		}
		p.RequireAction()
	case payment.ProviderStatusCanceled:
		if p.Status() == payment.StatusCanceled {
			return false
		}
		p.MarkCanceled()
	case payment.ProviderStatusRequiresPaymentMethod:
		if intent.ErrorCode == "" {
			return false
		}
		if p.Status() == payment.StatusFailed && p.ErrorCode() == intent.ErrorCode {
			return false
		}
		p.MarkFailed(intent.ErrorCode, intent.ErrorMessage)
	default:
		return false
	}
	return true
}
