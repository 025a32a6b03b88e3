package payment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staybook/payments/internal/domain/payment"
	"github.com/staybook/payments/internal/port/outbound"
)

func TestRefundPaymentHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("full refund", func(t *testing.T) {
		f := newFixture(t)
		id := f.seedPayment(t, payment.StatusSucceeded, "pi_1")
		f.gateway.On("CreateRefund", mock.Anything, outbound.RefundInput{IntentID: "pi_1"}).
			Return(&outbound.RefundResult{RefundID: "re_1", Status: "succeeded", Amount: 35000}, nil)
		f.reservations.On("MarkCanceledRefunded", mock.Anything, testReservationID).Return(nil)

		res, err := f.refund().Handle(ctx, RefundPaymentCommand{PaymentID: id})
		require.NoError(t, err)
		assert.Equal(t, "re_1", res.RefundID)
		assert.Equal(t, int64(35000), res.RefundedAmount)

		stored := f.store.get(id)
		assert.Equal(t, payment.StatusRefunded, stored.Status())
		assert.Equal(t, int64(35000), stored.AmountRefunded())
		assert.NotNil(t, stored.RefundedAt())
		f.reservations.AssertNumberOfCalls(t, "MarkCanceledRefunded", 1)
	})

	t.Run("partial refund pending at provider", func(t *testing.T) {
		f := newFixture(t)
		id := f.seedPayment(t, payment.StatusSucceeded, "pi_1")
		f.gateway.On("CreateRefund", mock.Anything, outbound.RefundInput{IntentID: "pi_1", Amount: int64Ptr(5000), Reason: "requested_by_customer"}).
			Return(&outbound.RefundResult{RefundID: "re_1", Status: "pending", Amount: 5000}, nil)
		f.reservations.On("MarkCanceledRefunded", mock.Anything, testReservationID).Return(nil)

		_, err := f.refund().Handle(ctx, RefundPaymentCommand{PaymentID: id, Amount: int64Ptr(5000), Reason: "requested_by_customer"})
		require.NoError(t, err)
		assert.Equal(t, int64(5000), f.store.get(id).AmountRefunded())
		assert.Equal(t, payment.StatusRefunded, f.store.get(id).Status())
	})

	t.Run("only succeeded payments", func(t *testing.T) {
		for _, status := range []payment.Status{payment.StatusRequiresPayment, payment.StatusFailed, payment.StatusRefunded} {
			f := newFixture(t)
			id := f.seedPayment(t, status, "pi_1")

			_, err := f.refund().Handle(ctx, RefundPaymentCommand{PaymentID: id})
			assert.ErrorIs(t, err, payment.ErrInvalidState, status)
			assert.Contains(t, err.Error(), "can only refund succeeded payments")
			f.gateway.AssertNotCalled(t, "CreateRefund", mock.Anything, mock.Anything)
		}
	})

	t.Run("no provider intent", func(t *testing.T) {
		f := newFixture(t)
		id := f.seedPayment(t, payment.StatusSucceeded, "")

		_, err := f.refund().Handle(ctx, RefundPaymentCommand{PaymentID: id})
		assert.ErrorIs(t, err, payment.ErrInvalidState)
		f.gateway.AssertNotCalled(t, "CreateRefund", mock.Anything, mock.Anything)
	})

	t.Run("amount out of range", func(t *testing.T) {
		for _, amount := range []int64{0, -1, 35001} {
			f := newFixture(t)
			id := f.seedPayment(t, payment.StatusSucceeded, "pi_1")

			_, err := f.refund().Handle(ctx, RefundPaymentCommand{PaymentID: id, Amount: int64Ptr(amount)})
			assert.ErrorIs(t, err, payment.ErrValidation)
			assert.Equal(t, payment.StatusSucceeded, f.store.get(id).Status())
			f.gateway.AssertNotCalled(t, "CreateRefund", mock.Anything, mock.Anything)
		}
	})

	t.Run("provider rejects refund", func(t *testing.T) {
		f := newFixture(t)
		id := f.seedPayment(t, payment.StatusSucceeded, "pi_1")
		f.gateway.On("CreateRefund", mock.Anything, mock.Anything).
			Return(&outbound.RefundResult{RefundID: "re_1", Status: "failed", Message: "charge already refunded"}, nil)

		_, err := f.refund().Handle(ctx, RefundPaymentCommand{PaymentID: id})
		require.ErrorIs(t, err, payment.ErrProvider)
		assert.Contains(t, err.Error(), "charge already refunded")
		assert.Equal(t, payment.StatusSucceeded, f.store.get(id).Status())
		f.reservations.AssertNotCalled(t, "MarkCanceledRefunded", mock.Anything, mock.Anything)
	})

	t.Run("provider error", func(t *testing.T) {
		f := newFixture(t)
		id := f.seedPayment(t, payment.StatusSucceeded, "pi_1")
		f.gateway.On("CreateRefund", mock.Anything, mock.Anything).
			Return(nil, payment.NewProviderError("circuit_open", "provider unavailable", nil))

		_, err := f.refund().Handle(ctx, RefundPaymentCommand{PaymentID: id})
		assert.ErrorIs(t, err, payment.ErrProvider)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.refund().Handle(ctx, RefundPaymentCommand{PaymentID: uuid.New()})
		assert.ErrorIs(t, err, payment.ErrNotFound)
	})

	t.Run("publishes outcome", func(t *testing.T) {
		f := newFixture(t)
		id := f.seedPayment(t, payment.StatusSucceeded, "pi_1")
		f.gateway.On("CreateRefund", mock.Anything, mock.Anything).
			Return(&outbound.RefundResult{RefundID: "re_1", Status: "succeeded"}, nil)
		f.reservations.On("MarkCanceledRefunded", mock.Anything, testReservationID).Return(nil)

		publisher := new(MockPublisher)
		publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e outbound.PaymentOutcomeEvent) bool {
			return e.Type == "payment.refunded" &&
				e.PaymentID == id.String() &&
				e.ReservationID == testReservationID &&
				e.Status == "refunded" &&
				e.Currency == "eur"
		})).Return(nil).Once()

		outcomes := NewOutcomes(f.reservations, publisher, nil, zap.NewNop())
		h := NewRefundPaymentHandler(f.store, f.gateway, nil, outcomes, zap.NewNop())
		_, err := h.Handle(ctx, RefundPaymentCommand{PaymentID: id})
		require.NoError(t, err)
		publisher.AssertExpectations(t)
	})
}
