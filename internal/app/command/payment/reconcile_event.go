package payment

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/staybook/payments/internal/domain/payment"
	"github.com/staybook/payments/internal/port/outbound"
	"github.com/staybook/payments/internal/utils/metrics"
)

// Webhook outcomes recorded in metrics.
const (
	webhookProcessed = "processed"
	webhookDuplicate = "duplicate"
	webhookIgnored   = "ignored"
	webhookFailed    = "failed"
	webhookRejected  = "rejected"
)

// ReconcileEventCommand carries a raw provider webhook delivery.
type ReconcileEventCommand struct {
	Payload   []byte
	Signature string
}

// ReconcileEventResult is the result of reconciling a webhook event.
type ReconcileEventResult struct {
	EventID   string
	EventType string
	// Duplicate is set when the event was already applied and nothing changed.
	Duplicate bool
	// Ignored is set for event types the service does not act on.
	Ignored bool
}

// ReconcileEventHandler verifies provider webhooks and applies them to payments.
type ReconcileEventHandler struct {
	repo     outbound.PaymentDatabasePort
	events   outbound.WebhookEventDatabasePort
	gateway  outbound.PaymentGatewayPort
	locker   outbound.PaymentLockerPort
	archive  outbound.WebhookArchivePort
	outcomes *Outcomes
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewReconcileEventHandler creates a new handler. locker, archive and m may be nil.
func NewReconcileEventHandler(
	repo outbound.PaymentDatabasePort,
	events outbound.WebhookEventDatabasePort,
	gateway outbound.PaymentGatewayPort,
	locker outbound.PaymentLockerPort,
	archive outbound.WebhookArchivePort,
	outcomes *Outcomes,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ReconcileEventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileEventHandler{
		repo:     repo,
		events:   events,
		gateway:  gateway,
		locker:   locker,
		archive:  archive,
		outcomes: outcomes,
		metrics:  m,
		logger:   logger,
	}
}

// Handle executes the command. Any returned error other than a signature
// failure should make the provider retry the delivery.
func (h *ReconcileEventHandler) Handle(ctx context.Context, cmd ReconcileEventCommand) (*ReconcileEventResult, error) {
	ev, err := h.gateway.ParseEvent(cmd.Payload, cmd.Signature)
	if err != nil {
		h.metrics.RecordWebhookEvent("", webhookRejected)
		h.logger.Warn("webhook rejected", zap.Error(err))
		return nil, err
	}

	log := h.logger.With(zap.String("event_id", ev.ID), zap.String("event_type", ev.Type))
	result := &ReconcileEventResult{EventID: ev.ID, EventType: ev.Type}
	provider := h.gateway.Name()

	if h.archive != nil {
		if err := h.archive.Archive(ctx, provider, ev.ID, cmd.Payload); err != nil {
			log.Warn("failed to archive webhook payload", zap.Error(err))
		}
	}

	entry, err := h.events.FindByEventID(ctx, provider, ev.ID)
	switch {
	case err == nil:
		if entry.Done() {
			log.Info("webhook event already processed")
			h.metrics.RecordWebhookEvent(ev.Type, webhookDuplicate)
			result.Duplicate = true
			return result, nil
		}
	case errors.Is(err, payment.ErrNotFound):
		entry = payment.NewWebhookEvent(provider, ev.ID, ev.Type)
		if err := h.events.Create(ctx, entry); err != nil {
			return nil, fmt.Errorf("record webhook event: %w", err)
		}
	default:
		return nil, fmt.Errorf("find webhook event: %w", err)
	}

	switch {
	case !ev.IsHandled():
		log.Info("ignoring unhandled webhook event")
		result.Ignored = true
	case ev.IntentID == "":
		// Charges created outside a payment intent can never be matched.
		log.Warn("ignoring webhook event without payment intent")
		result.Ignored = true
	}

	var procErr error
	if !result.Ignored {
		result.Duplicate, procErr = h.apply(ctx, ev)
	}

	entry.MarkProcessed(procErr)
	if err := h.events.MarkProcessed(ctx, entry); err != nil {
		log.Error("failed to mark webhook event processed", zap.Error(err))
	}

	switch {
	case procErr != nil:
		h.metrics.RecordWebhookEvent(ev.Type, webhookFailed)
		log.Error("webhook processing failed", zap.Error(procErr))
		return nil, procErr
	case result.Ignored:
		h.metrics.RecordWebhookEvent(ev.Type, webhookIgnored)
	case result.Duplicate:
		h.metrics.RecordWebhookEvent(ev.Type, webhookDuplicate)
	default:
		h.metrics.RecordWebhookEvent(ev.Type, webhookProcessed)
	}
	return result, nil
}

// apply moves the payment behind ev. Returns true when the payment had
// already applied this event or the event carries an outdated refund total.
func (h *ReconcileEventHandler) apply(ctx context.Context, ev *payment.ProviderEvent) (bool, error) {
	found, err := h.repo.FindByProviderIntentID(ctx, ev.IntentID)
	if err != nil {
		return false, fmt.Errorf("find payment for intent %s: %w", ev.IntentID, err)
	}

	unlock, err := lockPayment(ctx, h.locker, found.ID().String())
	if err != nil {
		return false, err
	}
	defer unlock()

	p, err := h.repo.FindByID(ctx, found.ID())
	if err != nil {
		return false, fmt.Errorf("reload payment: %w", err)
	}
	if p.HasAppliedEvent(ev.ID) {
		return true, nil
	}

	previous := p.Status()
	refundedBefore := p.AmountRefunded()
	stale := false
	switch ev.Type {
	case payment.EventIntentSucceeded:
		p.MarkSucceeded(ev.ChargeID)
	case payment.EventIntentPaymentFailed:
		p.MarkFailed(ev.ErrorCode, ev.ErrorMessage)
	case payment.EventIntentCanceled:
		p.MarkCanceled()
	case payment.EventIntentProcessing:
		p.MarkProcessing()
	case payment.EventIntentRequiresAction:
		p.RequireAction()
	case payment.EventChargeRefunded:
		// amount_refunded is cumulative; a smaller total is an older event.
		if ev.AmountRefunded < refundedBefore {
			stale = true
			break
		}
		if err := p.Refund(ev.AmountRefunded); err != nil {
			return false, err
		}
	}
	p.UpdateProviderEventID(ev.ID)

	if err := h.repo.Update(ctx, p); err != nil {
		return false, fmt.Errorf("update payment: %w", err)
	}

	if stale {
		h.logger.Info("stale refund total skipped",
			zap.String("event_id", ev.ID),
			zap.String("payment_id", p.ID().String()),
			zap.Int64("event_amount_refunded", ev.AmountRefunded),
			zap.Int64("amount_refunded", refundedBefore),
		)
		return true, nil
	}

	h.logger.Info("webhook applied",
		zap.String("event_id", ev.ID),
		zap.String("payment_id", p.ID().String()),
		zap.String("from", previous.String()),
		zap.String("to", p.Status().String()),
	)

	switch {
	case ev.Type != payment.EventChargeRefunded || previous != payment.StatusRefunded:
		h.outcomes.Applied(ctx, p, previous, SourceWebhook)
	case p.AmountRefunded() != refundedBefore:
		h.outcomes.Refunded(ctx, p, SourceWebhook)
	}
	// A provider echo of a refund made through the API changes nothing further.
	return false, nil
}
