package payment

import (
	"time"

	"github.com/google/uuid"
)

// WebhookEvent is the ledger record of one received provider notification.
type WebhookEvent struct {
	id          uuid.UUID
	provider    string
	eventID     string
	eventType   string
	processed   bool
	processedAt *time.Time
	err         *string
	createdAt   time.Time
}

// NewWebhookEvent records a freshly received event.
func NewWebhookEvent(provider, eventID, eventType string) *WebhookEvent {
	return &WebhookEvent{
		id:        uuid.New(),
		provider:  provider,
		eventID:   eventID,
		eventType: eventType,
		createdAt: time.Now(),
	}
}

// RestoreWebhookEvent recreates a WebhookEvent from persisted data.
func RestoreWebhookEvent(
	id uuid.UUID,
	provider, eventID, eventType string,
	processed bool,
	processedAt *time.Time,
	err *string,
	createdAt time.Time,
) *WebhookEvent {
	return &WebhookEvent{
		id:          id,
		provider:    provider,
		eventID:     eventID,
		eventType:   eventType,
		processed:   processed,
		processedAt: processedAt,
		err:         err,
		createdAt:   createdAt,
	}
}

func (e *WebhookEvent) ID() uuid.UUID           { return e.id }
func (e *WebhookEvent) Provider() string        { return e.provider }
func (e *WebhookEvent) EventID() string         { return e.eventID }
func (e *WebhookEvent) EventType() string       { return e.eventType }
func (e *WebhookEvent) Processed() bool         { return e.processed }
func (e *WebhookEvent) ProcessedAt() *time.Time { return e.processedAt }
func (e *WebhookEvent) Error() *string          { return e.err }
func (e *WebhookEvent) CreatedAt() time.Time    { return e.createdAt }

// Done reports whether the event was processed without error.
// Events that failed are replayed when the provider retries.
func (e *WebhookEvent) Done() bool {
	return e.processed && e.err == nil
}

// MarkProcessed records the outcome of processing.
func (e *WebhookEvent) MarkProcessed(err error) {
	now := time.Now()
	e.processed = true
	e.processedAt = &now
	e.err = nil
	if err != nil {
		msg := err.Error()
		e.err = &msg
	}
}
