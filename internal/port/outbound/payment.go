package outbound

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/staybook/payments/internal/domain/payment"
)

// PaymentDatabasePort defines payment persistence operations.
type PaymentDatabasePort interface {
	// Create inserts a new payment, assigning an id when it has none.
	Create(ctx context.Context, p *payment.Payment) error

	// FindByID finds a payment by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error)

	// FindByReservationID returns every payment of a reservation, newest first.
	FindByReservationID(ctx context.Context, reservationID int64) ([]*payment.Payment, error)

	// FindByProviderIntentID finds a payment by the processor's intent id.
	FindByProviderIntentID(ctx context.Context, intentID string) (*payment.Payment, error)

	// Update persists the payment if its version still matches the stored row.
	// Returns payment.ErrConcurrentUpdate otherwise.
	Update(ctx context.Context, p *payment.Payment) error
}

// WebhookEventDatabasePort defines webhook ledger persistence operations.
type WebhookEventDatabasePort interface {
	// FindByEventID returns the ledger row for a provider event, or payment.ErrNotFound.
	FindByEventID(ctx context.Context, provider, eventID string) (*payment.WebhookEvent, error)

	// Create records a received event.
	Create(ctx context.Context, event *payment.WebhookEvent) error

	// MarkProcessed stores the processing outcome.
	MarkProcessed(ctx context.Context, event *payment.WebhookEvent) error
}

// CreateIntentInput is the request to open a provider payment intent.
type CreateIntentInput struct {
	Amount      int64
	Currency    string
	ReferenceID string
	Metadata    map[string]string
}

// IntentResult is the provider's view of a payment intent.
type IntentResult struct {
	IntentID     string
	ClientSecret string
	Status       string
	ChargeID     string
	ErrorCode    string
	ErrorMessage string
}

// RefundInput is the request to refund a captured intent.
type RefundInput struct {
	IntentID string
	// Amount nil refunds the full captured amount.
	Amount *int64
	Reason string
}

// RefundResult is the provider's answer to a refund request.
type RefundResult struct {
	RefundID string
	Status   string
	Amount   int64
	Message  string
}

// PaymentGatewayPort defines the payment processor operations.
// Transport and API failures are returned as *payment.ProviderError. A declined
// confirmation is a result with an error code, not an error.
type PaymentGatewayPort interface {
	// Name returns the provider name used in the webhook ledger.
	Name() string

	// CreateIntent opens a payment intent.
	CreateIntent(ctx context.Context, in CreateIntentInput) (*IntentResult, error)

	// Confirm confirms an intent with a payment method.
	Confirm(ctx context.Context, intentID, paymentMethodID string) (*IntentResult, error)

	// GetIntent fetches the current state of an intent.
	GetIntent(ctx context.Context, intentID string) (*IntentResult, error)

	// CreateRefund refunds an intent, fully or partially.
	CreateRefund(ctx context.Context, in RefundInput) (*RefundResult, error)

	// ParseEvent verifies the signature of a webhook payload and decodes it.
	// A bad signature returns payment.ErrAuthentication.
	ParseEvent(payload []byte, signature string) (*payment.ProviderEvent, error)
}

// PaymentLockerPort serializes load-mutate-save cycles on one payment.
type PaymentLockerPort interface {
	// Lock acquires the lock for key. Returns payment.ErrPaymentLocked when held elsewhere.
	// The returned func releases the lock.
	Lock(ctx context.Context, key string) (func(), error)
}

// PaymentOutcomeEvent is published when a payment reaches an outcome.
type PaymentOutcomeEvent struct {
	Type          string    `json:"type"`
	PaymentID     string    `json:"payment_id"`
	ReservationID int64     `json:"reservation_id"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// PaymentEventPublisherPort publishes payment outcome events.
type PaymentEventPublisherPort interface {
	Publish(ctx context.Context, event PaymentOutcomeEvent) error
}

// WebhookArchivePort stores raw webhook payloads.
type WebhookArchivePort interface {
	Archive(ctx context.Context, provider, eventID string, payload []byte) error
}
