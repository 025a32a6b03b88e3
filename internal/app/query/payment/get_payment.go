package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/staybook/payments/internal/app/query"
	"github.com/staybook/payments/internal/domain/payment"
	"github.com/staybook/payments/internal/port/outbound"
)

// GetPaymentQuery represents a query to get a payment.
type GetPaymentQuery struct {
	PaymentID uuid.UUID
}

// GetPaymentResult is the result of getting a payment.
type GetPaymentResult struct {
	Payment *payment.Payment
}

// GetPaymentHandler handles GetPaymentQuery.
type GetPaymentHandler struct {
	repo outbound.PaymentDatabasePort
}

// NewGetPaymentHandler creates a new handler.
func NewGetPaymentHandler(repo outbound.PaymentDatabasePort) *GetPaymentHandler {
	return &GetPaymentHandler{repo: repo}
}

// Handle executes the query.
func (h *GetPaymentHandler) Handle(ctx context.Context, query GetPaymentQuery) (*GetPaymentResult, error) {
	p, err := h.repo.FindByID(ctx, query.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &GetPaymentResult{Payment: p}, nil
}

// ListByReservationQuery represents a query to list payments for a reservation.
type ListByReservationQuery struct {
	ReservationID int64
}

// ListByReservationResult is the result of listing payments, newest first.
type ListByReservationResult struct {
	Payments []*payment.Payment
}

// ListByReservationHandler handles ListByReservationQuery.
type ListByReservationHandler struct {
	repo outbound.PaymentDatabasePort
}

// NewListByReservationHandler creates a new handler.
func NewListByReservationHandler(repo outbound.PaymentDatabasePort) *ListByReservationHandler {
	return &ListByReservationHandler{repo: repo}
}

// Handle executes the query.
func (h *ListByReservationHandler) Handle(ctx context.Context, query ListByReservationQuery) (*ListByReservationResult, error) {
	if query.ReservationID <= 0 {
		return nil, payment.NewValidationError("reservation_id", "must be positive")
	}
	payments, err := h.repo.FindByReservationID(ctx, query.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	if payments == nil {
		payments = []*payment.Payment{}
	}
	return &ListByReservationResult{Payments: payments}, nil
}

var (
	_ query.Handler[GetPaymentQuery, *GetPaymentResult]               = (*GetPaymentHandler)(nil)
	_ query.Handler[ListByReservationQuery, *ListByReservationResult] = (*ListByReservationHandler)(nil)
)
