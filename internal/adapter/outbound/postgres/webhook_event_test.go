package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staybook/payments/internal/domain/payment"
)

var webhookEventColumns = []string{
	"id", "provider", "event_id", "event_type", "processed", "processed_at", "error", "created_at",
}

func TestWebhookEventAdapter_FindByEventID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		gormDB, mock := setupMockDB(t)
		adapter := NewWebhookEventAdapter(gormDB)

		now := time.Now()
		rows := sqlmock.NewRows(webhookEventColumns).
			AddRow(uuid.New(), "stripe", "evt_1", payment.EventIntentSucceeded, true, now, nil, now)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payment_webhook_events" WHERE provider = $1 AND event_id = $2`)).
			WillReturnRows(rows)

		event, err := adapter.FindByEventID(context.Background(), "stripe", "evt_1")
		require.NoError(t, err)
		assert.Equal(t, "evt_1", event.EventID())
		assert.True(t, event.Done())
	})

	t.Run("not found", func(t *testing.T) {
		gormDB, mock := setupMockDB(t)
		adapter := NewWebhookEventAdapter(gormDB)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payment_webhook_events"`)).
			WillReturnRows(sqlmock.NewRows(webhookEventColumns))

		event, err := adapter.FindByEventID(context.Background(), "stripe", "evt_missing")
		assert.ErrorIs(t, err, payment.ErrNotFound)
		assert.Nil(t, event)
	})

	t.Run("database error", func(t *testing.T) {
		gormDB, mock := setupMockDB(t)
		adapter := NewWebhookEventAdapter(gormDB)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "payment_webhook_events"`)).
			WillReturnError(errors.New("connection reset"))

		_, err := adapter.FindByEventID(context.Background(), "stripe", "evt_1")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, payment.ErrNotFound)
	})
}

func TestWebhookEventAdapter_Create(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	adapter := NewWebhookEventAdapter(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "payment_webhook_events"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	event := payment.NewWebhookEvent("stripe", "evt_1", payment.EventChargeRefunded)
	require.NoError(t, adapter.Create(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookEventAdapter_MarkProcessed(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	adapter := NewWebhookEventAdapter(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "payment_webhook_events" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	event := payment.NewWebhookEvent("stripe", "evt_1", payment.EventIntentSucceeded)
	event.MarkProcessed(errors.New("payment not found"))
	require.NoError(t, adapter.MarkProcessed(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}
