package payment

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Payment is the payment aggregate root. One reservation may accumulate several
// payments over retries; they are never deleted.
//
// Transition methods do not check the current status. Sequencing rules (only
// succeeded payments may be refunded, and so on) belong to the command handlers.
type Payment struct {
	id                  uuid.UUID
	reservationID       int64
	amount              int64
	currency            string
	status              Status
	providerIntentID    string
	clientSecret        string
	providerChargeID    string
	amountRefunded      int64
	paidAt              *time.Time
	refundedAt          *time.Time
	isActive            bool
	lastProviderEventID string
	errorCode           string
	errorMessage        string
	version             int64
	createdAt           time.Time
	updatedAt           time.Time
}

// NewPayment creates a payment in requires_payment.
func NewPayment(reservationID int64, amount int64, currency string) (*Payment, error) {
	if reservationID <= 0 {
		return nil, NewValidationError("reservation_id", "must be positive")
	}
	if amount <= 0 {
		return nil, NewValidationError("amount", "must be greater than zero")
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return nil, NewValidationError("currency", "must be a three-letter ISO 4217 code")
	}

	now := time.Now()
	return &Payment{
		reservationID: reservationID,
		amount:        amount,
		currency:      currency,
		status:        StatusRequiresPayment,
		isActive:      true,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Snapshot is the persisted form of a Payment.
type Snapshot struct {
	ID                  uuid.UUID
	ReservationID       int64
	Amount              int64
	Currency            string
	Status              Status
	ProviderIntentID    string
	ClientSecret        string
	ProviderChargeID    string
	AmountRefunded      int64
	PaidAt              *time.Time
	RefundedAt          *time.Time
	IsActive            bool
	LastProviderEventID string
	ErrorCode           string
	ErrorMessage        string
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Restore recreates a Payment from persisted data.
func Restore(s Snapshot) *Payment {
	return &Payment{
		id:                  s.ID,
		reservationID:       s.ReservationID,
		amount:              s.Amount,
		currency:            s.Currency,
		status:              s.Status,
		providerIntentID:    s.ProviderIntentID,
		clientSecret:        s.ClientSecret,
		providerChargeID:    s.ProviderChargeID,
		amountRefunded:      s.AmountRefunded,
		paidAt:              s.PaidAt,
		refundedAt:          s.RefundedAt,
		isActive:            s.IsActive,
		lastProviderEventID: s.LastProviderEventID,
		errorCode:           s.ErrorCode,
		errorMessage:        s.ErrorMessage,
		version:             s.Version,
		createdAt:           s.CreatedAt,
		updatedAt:           s.UpdatedAt,
	}
}

// Snapshot returns the persisted form of the payment.
func (p *Payment) Snapshot() Snapshot {
	return Snapshot{
		ID:                  p.id,
		ReservationID:       p.reservationID,
		Amount:              p.amount,
		Currency:            p.currency,
		Status:              p.status,
		ProviderIntentID:    p.providerIntentID,
		ClientSecret:        p.clientSecret,
		ProviderChargeID:    p.providerChargeID,
		AmountRefunded:      p.amountRefunded,
		PaidAt:              p.paidAt,
		RefundedAt:          p.refundedAt,
		IsActive:            p.isActive,
		LastProviderEventID: p.lastProviderEventID,
		ErrorCode:           p.errorCode,
		ErrorMessage:        p.errorMessage,
		Version:             p.version,
		CreatedAt:           p.createdAt,
		UpdatedAt:           p.updatedAt,
	}
}

// --- Getters ---

func (p *Payment) ID() uuid.UUID               { return p.id }
func (p *Payment) ReservationID() int64        { return p.reservationID }
func (p *Payment) Amount() int64               { return p.amount }
func (p *Payment) Currency() string            { return p.currency }
func (p *Payment) Status() Status              { return p.status }
func (p *Payment) ProviderIntentID() string    { return p.providerIntentID }
func (p *Payment) ClientSecret() string        { return p.clientSecret }
func (p *Payment) ProviderChargeID() string    { return p.providerChargeID }
func (p *Payment) AmountRefunded() int64       { return p.amountRefunded }
func (p *Payment) PaidAt() *time.Time          { return p.paidAt }
func (p *Payment) RefundedAt() *time.Time      { return p.refundedAt }
func (p *Payment) IsActive() bool              { return p.isActive }
func (p *Payment) LastProviderEventID() string { return p.lastProviderEventID }
func (p *Payment) ErrorCode() string           { return p.errorCode }
func (p *Payment) ErrorMessage() string        { return p.errorMessage }
func (p *Payment) Version() int64              { return p.version }
func (p *Payment) CreatedAt() time.Time        { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time        { return p.updatedAt }

// IsSucceeded returns true if the payment succeeded.
func (p *Payment) IsSucceeded() bool {
	return p.status == StatusSucceeded
}

// HasAppliedEvent reports whether eventID is the last provider event applied.
func (p *Payment) HasAppliedEvent(eventID string) bool {
	return eventID != "" && p.lastProviderEventID == eventID
}

// --- Persistence hooks ---

// AssignID sets the identity. Called by the store on insert.
func (p *Payment) AssignID(id uuid.UUID) {
	if p.id == uuid.Nil {
		p.id = id
	}
}

// SetVersion records the concurrency token after a successful write.
func (p *Payment) SetVersion(v int64) {
	p.version = v
}

// --- Transitions ---

// SetProviderIntent records the processor's intent id and client secret.
// The intent id is write-once; the status is left untouched.
func (p *Payment) SetProviderIntent(intentID, clientSecret string) error {
	if intentID == "" {
		return NewValidationError("provider_intent_id", "must not be empty")
	}
	if p.providerIntentID == intentID {
		return nil
	}
	if p.providerIntentID != "" {
		return NewValidationError("provider_intent_id", "already assigned")
	}
	p.providerIntentID = intentID
	if clientSecret != "" {
		p.clientSecret = clientSecret
	}
	p.touch()
	return nil
}

// MarkProcessing moves the payment to processing.
func (p *Payment) MarkProcessing() {
	p.status = StatusProcessing
	p.touch()
}

// RequireAction moves the payment to requires_action.
func (p *Payment) RequireAction() {
	p.status = StatusRequiresAction
	p.touch()
}

// MarkSucceeded moves the payment to succeeded and clears any previous error.
func (p *Payment) MarkSucceeded(chargeID string) {
	now := time.Now()
	p.status = StatusSucceeded
	if chargeID != "" {
		p.providerChargeID = chargeID
	}
	if p.paidAt == nil {
		p.paidAt = &now
	}
	p.errorCode = ""
	p.errorMessage = ""
	p.updatedAt = now
}

// MarkFailed moves the payment to failed and deactivates it.
func (p *Payment) MarkFailed(code, message string) {
	p.status = StatusFailed
	p.errorCode = code
	p.errorMessage = message
	p.isActive = false
	p.touch()
}

// MarkCanceled moves the payment to canceled and deactivates it.
func (p *Payment) MarkCanceled() {
	p.status = StatusCanceled
	p.isActive = false
	p.touch()
}

// Refund moves the payment to refunded with amountRefunded set to amount.
// Successive refunds overwrite the refunded total rather than adding to it.
func (p *Payment) Refund(amount int64) error {
	if amount <= 0 {
		return NewValidationError("amount", "refund amount must be greater than zero")
	}
	if amount > p.amount {
		return NewValidationError("amount", "refund amount exceeds payment amount")
	}

	now := time.Now()
	p.status = StatusRefunded
	p.amountRefunded = amount
	if p.refundedAt == nil {
		p.refundedAt = &now
	}
	p.updatedAt = now
	return nil
}

// UpdateProviderEventID records the last applied provider event.
func (p *Payment) UpdateProviderEventID(eventID string) {
	p.lastProviderEventID = eventID
	p.touch()
}

func (p *Payment) touch() {
	p.updatedAt = time.Now()
}
