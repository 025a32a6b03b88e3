package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/staybook/payments/internal/domain/payment"
	"github.com/staybook/payments/internal/model"
	"github.com/staybook/payments/internal/port/outbound"
	"gorm.io/gorm"
)

// paymentAdapter implements outbound.PaymentDatabasePort.
type paymentAdapter struct {
	db *gorm.DB
}

// NewPaymentAdapter creates a new payment database adapter.
func NewPaymentAdapter(db *gorm.DB) outbound.PaymentDatabasePort {
	return &paymentAdapter{db: db}
}

func (a *paymentAdapter) Create(ctx context.Context, p *payment.Payment) error {
	id := p.ID()
	if id == uuid.Nil {
		id = uuid.New()
	}

	// The entity only takes its identity once the row exists.
	row := toPaymentRow(p)
	row.ID = id
	row.Version = 1
	if err := a.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// provider_intent_id is unique: the intent is already recorded.
			return fmt.Errorf("create payment: %w", payment.ErrConcurrentUpdate)
		}
		return fmt.Errorf("create payment: %w", err)
	}

	p.AssignID(id)
	p.SetVersion(1)
	return nil
}

func (a *paymentAdapter) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	var row model.Payment
	err := a.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, payment.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find payment by id: %w", err)
	}
	return fromPaymentRow(&row), nil
}

func (a *paymentAdapter) FindByReservationID(ctx context.Context, reservationID int64) ([]*payment.Payment, error) {
	var rows []*model.Payment
	err := a.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find payments by reservation: %w", err)
	}

	payments := make([]*payment.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, fromPaymentRow(row))
	}
	return payments, nil
}

func (a *paymentAdapter) FindByProviderIntentID(ctx context.Context, intentID string) (*payment.Payment, error) {
	var row model.Payment
	err := a.db.WithContext(ctx).First(&row, "provider_intent_id = ?", intentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, payment.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find payment by provider intent id: %w", err)
	}
	return fromPaymentRow(&row), nil
}

func (a *paymentAdapter) Update(ctx context.Context, p *payment.Payment) error {
	next := p.Version() + 1
	row := toPaymentRow(p)

	result := a.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ? AND version = ?", p.ID(), p.Version()).
		Updates(map[string]interface{}{
			"status":                 row.Status,
			"provider_intent_id":     row.ProviderIntentID,
			"client_secret":          row.ClientSecret,
			"provider_charge_id":     row.ProviderChargeID,
			"amount_refunded":        row.AmountRefunded,
			"paid_at":                row.PaidAt,
			"refunded_at":            row.RefundedAt,
			"is_active":              row.IsActive,
			"last_provider_event_id": row.LastProviderEventID,
			"error_code":             row.ErrorCode,
			"error_message":          row.ErrorMessage,
			"version":                next,
			"updated_at":             row.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return payment.ErrConcurrentUpdate
	}

	p.SetVersion(next)
	return nil
}

func toPaymentRow(p *payment.Payment) *model.Payment {
	s := p.Snapshot()
	return &model.Payment{
		ID:                  s.ID,
		ReservationID:       s.ReservationID,
		Amount:              s.Amount,
		Currency:            s.Currency,
		Status:              s.Status.String(),
		ProviderIntentID:    s.ProviderIntentID,
		ClientSecret:        s.ClientSecret,
		ProviderChargeID:    s.ProviderChargeID,
		AmountRefunded:      s.AmountRefunded,
		PaidAt:              s.PaidAt,
		RefundedAt:          s.RefundedAt,
		IsActive:            s.IsActive,
		LastProviderEventID: s.LastProviderEventID,
		ErrorCode:           s.ErrorCode,
		ErrorMessage:        s.ErrorMessage,
		Version:             s.Version,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}

func fromPaymentRow(row *model.Payment) *payment.Payment {
	return payment.Restore(payment.Snapshot{
		ID:                  row.ID,
		ReservationID:       row.ReservationID,
		Amount:              row.Amount,
		Currency:            row.Currency,
		Status:              payment.Status(row.Status),
		ProviderIntentID:    row.ProviderIntentID,
		ClientSecret:        row.ClientSecret,
		ProviderChargeID:    row.ProviderChargeID,
		AmountRefunded:      row.AmountRefunded,
		PaidAt:              row.PaidAt,
		RefundedAt:          row.RefundedAt,
		IsActive:            row.IsActive,
		LastProviderEventID: row.LastProviderEventID,
		ErrorCode:           row.ErrorCode,
		ErrorMessage:        row.ErrorMessage,
		Version:             row.Version,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	})
}

// Compile-time check
var _ outbound.PaymentDatabasePort = (*paymentAdapter)(nil)
