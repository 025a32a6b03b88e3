package outbound

import (
	"context"
	"strings"
	"time"
)

// Reservation statuses that matter to payments.
const (
	ReservationStatusPending          = "pending"
	ReservationStatusHeld             = "held"
	ReservationStatusConfirmed        = "confirmed"
	ReservationStatusCanceled         = "canceled"
	ReservationStatusCanceledRefunded = "canceled_refunded"
)

// ReservationInfo is a slim view of reservation data needed by payments.
type ReservationInfo struct {
	ID        int64
	OwnerID   int64
	RoomID    int64
	StartDate time.Time
	EndDate   time.Time
	Status    string
}

// IsPayable returns true if the reservation can still be paid for.
func (r *ReservationInfo) IsPayable() bool {
	return strings.EqualFold(r.Status, ReservationStatusPending) ||
		strings.EqualFold(r.Status, ReservationStatusHeld)
}

// ReservationPort is the booking service as seen from payments.
type ReservationPort interface {
	// GetReservation returns a reservation or payment.ErrNotFound.
	GetReservation(ctx context.Context, id int64) (*ReservationInfo, error)

	// Confirm tells the booking service the reservation was paid.
	Confirm(ctx context.Context, id int64) error

	// MarkCanceledRefunded tells the booking service the payment was refunded.
	MarkCanceledRefunded(ctx context.Context, id int64) error
}
