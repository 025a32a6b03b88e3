package model

import (
	"time"

	"github.com/google/uuid"
)

// Payment is the persisted payment row.
type Payment struct {
	ID                  uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ReservationID       int64      `json:"reservation_id" gorm:"not null;index"`
	Amount              int64      `json:"amount" gorm:"not null"`
	Currency            string     `json:"currency" gorm:"size:3;not null"`
	Status              string     `json:"status" gorm:"size:32;not null;index"`
	ProviderIntentID    string     `json:"provider_intent_id,omitempty" gorm:"size:255;uniqueIndex:idx_payments_provider_intent,where:provider_intent_id <> ''"`
	ClientSecret        string     `json:"-" gorm:"size:255"`
	ProviderChargeID    string     `json:"provider_charge_id,omitempty" gorm:"size:255"`
	AmountRefunded      int64      `json:"amount_refunded" gorm:"not null"`
	PaidAt              *time.Time `json:"paid_at,omitempty"`
	RefundedAt          *time.Time `json:"refunded_at,omitempty"`
	IsActive            bool       `json:"is_active" gorm:"not null"`
	LastProviderEventID string     `json:"last_provider_event_id,omitempty" gorm:"size:255"`
	ErrorCode           string     `json:"error_code,omitempty" gorm:"size:255"`
	ErrorMessage        string     `json:"error_message,omitempty" gorm:"type:text"`
	Version             int64      `json:"version" gorm:"not null"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Payment) TableName() string {
	return "payments"
}

// WebhookEvent is the persisted ledger row of a received provider event.
type WebhookEvent struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Provider    string     `json:"provider" gorm:"size:32;not null;uniqueIndex:idx_provider_event"`
	EventID     string     `json:"event_id" gorm:"size:255;not null;uniqueIndex:idx_provider_event"`
	EventType   string     `json:"event_type" gorm:"size:128;not null"`
	Processed   bool       `json:"processed" gorm:"not null"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	Error       *string    `json:"error,omitempty" gorm:"type:text"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TableName returns the table name for GORM.
func (WebhookEvent) TableName() string {
	return "payment_webhook_events"
}
