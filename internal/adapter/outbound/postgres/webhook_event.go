package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/staybook/payments/internal/domain/payment"
	"github.com/staybook/payments/internal/model"
	"github.com/staybook/payments/internal/port/outbound"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// webhookEventAdapter implements outbound.WebhookEventDatabasePort.
type webhookEventAdapter struct {
	db *gorm.DB
}

// NewWebhookEventAdapter creates a new webhook event database adapter.
func NewWebhookEventAdapter(db *gorm.DB) outbound.WebhookEventDatabasePort {
	return &webhookEventAdapter{db: db}
}

func (a *webhookEventAdapter) FindByEventID(ctx context.Context, provider, eventID string) (*payment.WebhookEvent, error) {
	var row model.WebhookEvent
	err := a.db.WithContext(ctx).
		Where("provider = ? AND event_id = ?", provider, eventID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, payment.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find webhook event: %w", err)
	}
	return payment.RestoreWebhookEvent(
		row.ID, row.Provider, row.EventID, row.EventType,
		row.Processed, row.ProcessedAt, row.Error, row.CreatedAt,
	), nil
}

// Create inserts the ledger row. A concurrent delivery of the same event is
// absorbed by the unique (provider, event_id) index.
func (a *webhookEventAdapter) Create(ctx context.Context, event *payment.WebhookEvent) error {
	row := &model.WebhookEvent{
		ID:          event.ID(),
		Provider:    event.Provider(),
		EventID:     event.EventID(),
		EventType:   event.EventType(),
		Processed:   event.Processed(),
		ProcessedAt: event.ProcessedAt(),
		Error:       event.Error(),
		CreatedAt:   event.CreatedAt(),
	}
	err := a.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}, {Name: "event_id"}},
			DoNothing: true,
		}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("create webhook event: %w", err)
	}
	return nil
}

func (a *webhookEventAdapter) MarkProcessed(ctx context.Context, event *payment.WebhookEvent) error {
	err := a.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("provider = ? AND event_id = ?", event.Provider(), event.EventID()).
		Updates(map[string]interface{}{
			"processed":    event.Processed(),
			"processed_at": event.ProcessedAt(),
			"error":        event.Error(),
		}).Error
	if err != nil {
		return fmt.Errorf("mark webhook event processed: %w", err)
	}
	return nil
}

// Compile-time check
var _ outbound.WebhookEventDatabasePort = (*webhookEventAdapter)(nil)
