package stripegateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staybook/payments/internal/domain/payment"
	"github.com/staybook/payments/internal/infra/breaker"
	"github.com/staybook/payments/internal/port/outbound"
)

const testWebhookSecret = "whsec_test"

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewGateway(Config{
		SecretKey:     "sk_test_123",
		WebhookSecret: testWebhookSecret,
		APIURL:        srv.URL,
		Breaker:       breaker.Config{FailureThreshold: 2},
	}, srv.Client(), nil, zap.NewNop())
}

func sign(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts.Unix(), payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestGateway_CreateIntent(t *testing.T) {
	var gotPath, gotMethod string
	var gotForm map[string][]string
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"pi_1","object":"payment_intent","client_secret":"sec_1","status":"requires_payment_method","amount":35000,"currency":"eur"}`)
	})

	res, err := gw.CreateIntent(context.Background(), outbound.CreateIntentInput{
		Amount:      35000,
		Currency:    "eur",
		ReferenceID: "42",
		Metadata:    map[string]string{"reservation_id": "42", "owner_id": "7"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/v1/payment_intents", gotPath)
	assert.Equal(t, []string{"35000"}, gotForm["amount"])
	assert.Equal(t, []string{"eur"}, gotForm["currency"])
	assert.Equal(t, []string{"42"}, gotForm["metadata[reservation_id]"])
	assert.Equal(t, []string{"7"}, gotForm["metadata[owner_id]"])

	assert.Equal(t, "pi_1", res.IntentID)
	assert.Equal(t, "sec_1", res.ClientSecret)
	assert.Equal(t, "requires_payment_method", res.Status)
}

func TestGateway_Confirm(t *testing.T) {
	t.Run("succeeded", func(t *testing.T) {
		gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/payment_intents/pi_1/confirm", r.URL.Path)
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "pm_1", r.PostForm.Get("payment_method"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"pi_1","object":"payment_intent","status":"succeeded","latest_charge":"ch_1"}`)
		})

		res, err := gw.Confirm(context.Background(), "pi_1", "pm_1")
		require.NoError(t, err)
		assert.Equal(t, "succeeded", res.Status)
		assert.Equal(t, "ch_1", res.ChargeID)
	})

	t.Run("card decline is a result", func(t *testing.T) {
		gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusPaymentRequired)
			fmt.Fprint(w, `{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined.","payment_intent":{"id":"pi_1","object":"payment_intent","status":"requires_payment_method"}}}`)
		})

		res, err := gw.Confirm(context.Background(), "pi_1", "pm_1")
		require.NoError(t, err)
		assert.Equal(t, "requires_payment_method", res.Status)
		assert.Equal(t, "card_declined", res.ErrorCode)
		assert.Equal(t, "Your card was declined.", res.ErrorMessage)
	})

	t.Run("api failure is a provider error", func(t *testing.T) {
		gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":{"type":"api_error","message":"Something went wrong"}}`)
		})

		_, err := gw.Confirm(context.Background(), "pi_1", "pm_1")
		require.Error(t, err)
		assert.ErrorIs(t, err, payment.ErrProvider)

		var pErr *payment.ProviderError
		require.True(t, errors.As(err, &pErr))
		assert.Equal(t, "Something went wrong", pErr.Message)
	})

	t.Run("breaker opens after repeated failures", func(t *testing.T) {
		calls := 0
		gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"error":{"type":"api_error","message":"unavailable"}}`)
		})

		for i := 0; i < 3; i++ {
			_, err := gw.Confirm(context.Background(), "pi_1", "pm_1")
			assert.ErrorIs(t, err, payment.ErrProvider)
		}
		assert.Equal(t, 2, calls)

		_, err := gw.GetIntent(context.Background(), "pi_1")
		var pErr *payment.ProviderError
		require.True(t, errors.As(err, &pErr))
		assert.Equal(t, "circuit_open", pErr.Code)
	})
}

func TestGateway_GetIntent(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payment_intents/pi_1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"pi_1","object":"payment_intent","status":"requires_payment_method","last_payment_error":{"code":"card_declined","message":"declined"}}`)
	})

	res, err := gw.GetIntent(context.Background(), "pi_1")
	require.NoError(t, err)
	assert.Equal(t, "requires_payment_method", res.Status)
	assert.Equal(t, "card_declined", res.ErrorCode)
	assert.Equal(t, "declined", res.ErrorMessage)
}

func TestGateway_CreateRefund(t *testing.T) {
	t.Run("partial refund with custom reason", func(t *testing.T) {
		gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/refunds", r.URL.Path)
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "pi_1", r.PostForm.Get("payment_intent"))
			assert.Equal(t, "5000", r.PostForm.Get("amount"))
			assert.Empty(t, r.PostForm.Get("reason"))
			assert.Equal(t, "guest moved dates", r.PostForm.Get("metadata[reason]"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"re_1","object":"refund","status":"succeeded","amount":5000}`)
		})

		amount := int64(5000)
		res, err := gw.CreateRefund(context.Background(), outbound.RefundInput{
			IntentID: "pi_1",
			Amount:   &amount,
			Reason:   "guest moved dates",
		})
		require.NoError(t, err)
		assert.Equal(t, "re_1", res.RefundID)
		assert.Equal(t, "succeeded", res.Status)
		assert.Equal(t, int64(5000), res.Amount)
	})

	t.Run("full refund with stripe reason", func(t *testing.T) {
		gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Empty(t, r.PostForm.Get("amount"))
			assert.Equal(t, "requested_by_customer", r.PostForm.Get("reason"))
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"re_2","object":"refund","status":"failed","amount":35000,"failure_reason":"expired_or_canceled_card"}`)
		})

		res, err := gw.CreateRefund(context.Background(), outbound.RefundInput{
			IntentID: "pi_1",
			Reason:   "requested_by_customer",
		})
		require.NoError(t, err)
		assert.Equal(t, "failed", res.Status)
		assert.Equal(t, "expired_or_canceled_card", res.Message)
	})
}

func TestGateway_ParseEvent(t *testing.T) {
	gw := NewGateway(Config{SecretKey: "sk_test_123", WebhookSecret: testWebhookSecret}, nil, nil, nil)

	t.Run("payment intent succeeded", func(t *testing.T) {
		payload := []byte(`{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","object":"payment_intent","status":"succeeded","latest_charge":"ch_1"}}}`)

		ev, err := gw.ParseEvent(payload, sign(payload, testWebhookSecret, time.Now()))
		require.NoError(t, err)
		assert.Equal(t, "evt_1", ev.ID)
		assert.Equal(t, payment.EventIntentSucceeded, ev.Type)
		assert.Equal(t, "pi_1", ev.IntentID)
		assert.Equal(t, "ch_1", ev.ChargeID)
	})

	t.Run("payment failed carries last error", func(t *testing.T) {
		payload := []byte(`{"id":"evt_2","object":"event","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_1","object":"payment_intent","status":"requires_payment_method","last_payment_error":{"code":"card_declined","message":"Your card was declined."}}}}`)

		ev, err := gw.ParseEvent(payload, sign(payload, testWebhookSecret, time.Now()))
		require.NoError(t, err)
		assert.Equal(t, "card_declined", ev.ErrorCode)
		assert.Equal(t, "Your card was declined.", ev.ErrorMessage)
	})

	t.Run("charge refunded", func(t *testing.T) {
		payload := []byte(`{"id":"evt_3","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1","object":"charge","payment_intent":"pi_1","amount":35000,"amount_refunded":10000}}}`)

		ev, err := gw.ParseEvent(payload, sign(payload, testWebhookSecret, time.Now()))
		require.NoError(t, err)
		assert.Equal(t, "pi_1", ev.IntentID)
		assert.Equal(t, "ch_1", ev.ChargeID)
		assert.Equal(t, int64(10000), ev.AmountRefunded)
	})

	t.Run("unknown type is passed through", func(t *testing.T) {
		payload := []byte(`{"id":"evt_4","object":"event","type":"customer.created","data":{"object":{"id":"cus_1","object":"customer"}}}`)

		ev, err := gw.ParseEvent(payload, sign(payload, testWebhookSecret, time.Now()))
		require.NoError(t, err)
		assert.Equal(t, "customer.created", ev.Type)
		assert.False(t, ev.IsHandled())
		assert.Empty(t, ev.IntentID)
	})

	t.Run("wrong secret", func(t *testing.T) {
		payload := []byte(`{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`)

		_, err := gw.ParseEvent(payload, sign(payload, "whsec_other", time.Now()))
		assert.ErrorIs(t, err, payment.ErrAuthentication)
	})

	t.Run("missing signature", func(t *testing.T) {
		payload := []byte(`{"id":"evt_1","object":"event","type":"payment_intent.succeeded"}`)

		_, err := gw.ParseEvent(payload, "")
		assert.ErrorIs(t, err, payment.ErrAuthentication)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		payload := []byte(`{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`)

		_, err := gw.ParseEvent(payload, sign(payload, testWebhookSecret, time.Now().Add(-time.Hour)))
		assert.ErrorIs(t, err, payment.ErrAuthentication)
	})

	t.Run("tampered payload", func(t *testing.T) {
		payload := []byte(`{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1"}}}`)
		sig := sign(payload, testWebhookSecret, time.Now())
		tampered := []byte(`{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_2"}}}`)

		_, err := gw.ParseEvent(tampered, sig)
		assert.ErrorIs(t, err, payment.ErrAuthentication)
	})
}

func TestIsCountedAsSuccess(t *testing.T) {
	assert.True(t, isCountedAsSuccess(nil))
	assert.False(t, isCountedAsSuccess(errors.New("dial tcp: connection refused")))
}
