package payment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/staybook/payments/internal/domain/payment"
	"github.com/staybook/payments/internal/port/outbound"
	"github.com/staybook/payments/internal/utils/metrics"
)

// Transition sources recorded in metrics.
const (
	SourceCommand = "command"
	SourceWebhook = "webhook"
	SourceSync    = "sync"
)

// Reservation notification operations.
const (
	notifyConfirm          = "confirm"
	notifyCanceledRefunded = "mark_canceled_refunded"
)

// Outcomes performs the side effects that follow a persisted transition:
// reservation notification, outcome event publishing and transition metrics.
// None of them fail the caller.
type Outcomes struct {
	reservations outbound.ReservationPort
	publisher    outbound.PaymentEventPublisherPort
	metrics      *metrics.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewOutcomes creates the outcome side-effect runner. publisher and m may be nil.
func NewOutcomes(
	reservations outbound.ReservationPort,
	publisher outbound.PaymentEventPublisherPort,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Outcomes {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Outcomes{
		reservations: reservations,
		publisher:    publisher,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

// Applied reports a status transition that has just been persisted.
func (o *Outcomes) Applied(ctx context.Context, p *payment.Payment, previous payment.Status, source string) {
	if o == nil || p.Status() == previous {
		return
	}
	o.metrics.RecordTransition(p.Status().String(), source)

	switch p.Status() {
	case payment.StatusSucceeded:
		o.notify(ctx, p, notifyConfirm)
		o.publish(ctx, p, "payment.succeeded")
	case payment.StatusFailed:
		o.publish(ctx, p, "payment.failed")
	case payment.StatusCanceled:
		o.publish(ctx, p, "payment.canceled")
	case payment.StatusRefunded:
		o.notify(ctx, p, notifyCanceledRefunded)
		o.publish(ctx, p, "payment.refunded")
	}
}

// Refunded reports a refund that did not change the status, e.g. a second
// partial refund. The booking service is still told about it.
func (o *Outcomes) Refunded(ctx context.Context, p *payment.Payment, source string) {
	if o == nil {
		return
	}
	o.metrics.RecordTransition(p.Status().String(), source)
	o.notify(ctx, p, notifyCanceledRefunded)
	o.publish(ctx, p, "payment.refunded")
}

func (o *Outcomes) notify(ctx context.Context, p *payment.Payment, operation string) {
	if o.reservations == nil {
		return
	}

	var err error
	switch operation {
	case notifyConfirm:
		err = o.reservations.Confirm(ctx, p.ReservationID())
	case notifyCanceledRefunded:
		err = o.reservations.MarkCanceledRefunded(ctx, p.ReservationID())
	}
	if err != nil {
		o.metrics.RecordReservationNotifyFailure(operation)
		o.logger.Warn("reservation notification failed",
			zap.String("operation", operation),
			zap.Int64("reservation_id", p.ReservationID()),
			zap.String("payment_id", p.ID().String()),
			zap.Error(err),
		)
	}
}

func (o *Outcomes) publish(ctx context.Context, p *payment.Payment, eventType string) {
	if o.publisher == nil {
		return
	}

	event := outbound.PaymentOutcomeEvent{
		Type:          eventType,
		PaymentID:     p.ID().String(),
		ReservationID: p.ReservationID(),
		Amount:        p.Amount(),
		Currency:      p.Currency(),
		Status:        p.Status().String(),
		OccurredAt:    o.now().UTC(),
	}
	if err := o.publisher.Publish(ctx, event); err != nil {
		o.logger.Warn("failed to publish payment outcome",
			zap.String("type", eventType),
			zap.String("payment_id", p.ID().String()),
			zap.Error(err),
		)
	}
}

// lockPayment acquires the per-payment lock, falling back to no locking.
func lockPayment(ctx context.Context, locker outbound.PaymentLockerPort, id string) (func(), error) {
	if locker == nil {
		return func() {}, nil
	}
	return locker.Lock(ctx, id)
}
