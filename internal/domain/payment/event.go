package payment

// Provider event types handled by the reconciler.
const (
	EventIntentSucceeded      = "payment_intent.succeeded"
	EventIntentPaymentFailed  = "payment_intent.payment_failed"
	EventIntentCanceled       = "payment_intent.canceled"
	EventIntentProcessing     = "payment_intent.processing"
	EventIntentRequiresAction = "payment_intent.requires_action"
	EventChargeRefunded       = "charge.refunded"
)

// ProviderEvent is a verified provider notification reduced to the fields
// the reconciler needs.
type ProviderEvent struct {
	ID       string
	Type     string
	IntentID string

	// Set for payment_intent.succeeded (latest charge) and charge.refunded.
	ChargeID string

	// Cumulative refunded total for charge.refunded.
	AmountRefunded int64

	// last_payment_error for payment_intent.payment_failed.
	ErrorCode    string
	ErrorMessage string
}

// IsIntentEvent reports whether the event concerns a payment intent lifecycle change.
func (e *ProviderEvent) IsIntentEvent() bool {
	switch e.Type {
	case EventIntentSucceeded, EventIntentPaymentFailed, EventIntentCanceled,
		EventIntentProcessing, EventIntentRequiresAction:
		return true
	}
	return false
}

// IsHandled reports whether the reconciler acts on this event type.
func (e *ProviderEvent) IsHandled() bool {
	return e.IsIntentEvent() || e.Type == EventChargeRefunded
}
