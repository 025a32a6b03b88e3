package payment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staybook/payments/internal/domain/payment"
	"github.com/staybook/payments/internal/port/outbound"
	"github.com/staybook/payments/internal/utils/metrics"
)

const testReservationID int64 = 42

type fixture struct {
	store        *memoryPayments
	ledger       *memoryLedger
	archive      *recordingArchive
	gateway      *MockGateway
	reservations *MockReservations
	metrics      *metrics.Metrics
	outcomes     *Outcomes
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:        newMemoryPayments(),
		ledger:       newMemoryLedger(),
		archive:      &recordingArchive{},
		gateway:      new(MockGateway),
		reservations: new(MockReservations),
		metrics:      metrics.NewWithRegisterer("test", prometheus.NewRegistry()),
	}
	f.outcomes = NewOutcomes(f.reservations, nil, f.metrics, zap.NewNop())
	return f
}

func (f *fixture) createIntent() *CreateIntentHandler {
	return NewCreateIntentHandler(f.store, f.gateway, f.reservations, zap.NewNop())
}

func (f *fixture) confirm() *ConfirmPaymentHandler {
	return NewConfirmPaymentHandler(f.store, f.gateway, nil, f.outcomes, zap.NewNop())
}

func (f *fixture) refund() *RefundPaymentHandler {
	return NewRefundPaymentHandler(f.store, f.gateway, nil, f.outcomes, zap.NewNop())
}

func (f *fixture) sync() *SyncPaymentHandler {
	return NewSyncPaymentHandler(f.store, f.gateway, nil, f.outcomes, zap.NewNop())
}

func (f *fixture) reconcile() *ReconcileEventHandler {
	return NewReconcileEventHandler(f.store, f.ledger, f.gateway, nil, f.archive, f.outcomes, f.metrics, zap.NewNop())
}

// seedPayment stores a 350.00 EUR payment for reservation 42 in the given status.
func (f *fixture) seedPayment(t *testing.T, status payment.Status, intentID string) uuid.UUID {
	t.Helper()
	p, err := payment.NewPayment(testReservationID, 35000, "EUR")
	require.NoError(t, err)
	if intentID != "" {
		require.NoError(t, p.SetProviderIntent(intentID, "sec_1"))
	}

	switch status {
	case payment.StatusRequiresPayment:
	case payment.StatusRequiresAction:
		p.RequireAction()
	case payment.StatusProcessing:
		p.MarkProcessing()
	case payment.StatusSucceeded:
		p.MarkSucceeded("ch_1")
	case payment.StatusFailed:
		p.MarkFailed("card_declined", "Your card was declined.")
	case payment.StatusCanceled:
		p.MarkCanceled()
	case payment.StatusRefunded:
		p.MarkSucceeded("ch_1")
		require.NoError(t, p.Refund(5000))
	}
	return f.store.seed(p)
}

func pendingReservation() *outbound.ReservationInfo {
	return &outbound.ReservationInfo{
		ID:        testReservationID,
		OwnerID:   7,
		RoomID:    3,
		StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 4, 0, 0, 0, 0, time.UTC),
		Status:    outbound.ReservationStatusPending,
	}
}

func int64Ptr(v int64) *int64 { return &v }
