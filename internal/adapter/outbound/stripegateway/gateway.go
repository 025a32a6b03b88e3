package stripegateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"github.com/staybook/payments/internal/domain/payment"
	"github.com/staybook/payments/internal/infra/breaker"
	"github.com/staybook/payments/internal/port/outbound"
	"github.com/staybook/payments/internal/utils/metrics"
)

// ProviderName is the provider name recorded in the webhook ledger.
const ProviderName = "stripe"

// Refund reasons Stripe accepts as-is. Other reasons go to metadata.
var stripeRefundReasons = map[string]bool{
	string(stripe.RefundReasonDuplicate):           true,
	string(stripe.RefundReasonFraudulent):          true,
	string(stripe.RefundReasonRequestedByCustomer): true,
}

// Config holds Stripe configuration.
type Config struct {
	SecretKey        string
	WebhookSecret    string
	WebhookTolerance time.Duration
	// APIURL overrides the Stripe API base URL (stripe-mock, tests).
	APIURL            string
	MaxNetworkRetries int64
	Breaker           breaker.Config
}

// Gateway implements outbound.PaymentGatewayPort on top of a per-instance Stripe client.
type Gateway struct {
	sc            *client.API
	webhookSecret string
	tolerance     time.Duration
	cb            *gobreaker.CircuitBreaker[any]
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewGateway creates a new Stripe gateway. httpClient, m and logger may be nil.
func NewGateway(cfg Config, httpClient *http.Client, m *metrics.Metrics, logger *zap.Logger) *Gateway {
	backendCfg := &stripe.BackendConfig{
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(cfg.MaxNetworkRetries),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(cfg.APIURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)

	if logger == nil {
		logger = zap.NewNop()
	}

	tolerance := cfg.WebhookTolerance
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}

	return &Gateway{
		sc: client.New(cfg.SecretKey, &stripe.Backends{
			API:     backend,
			Connect: backend,
			Uploads: backend,
		}),
		webhookSecret: cfg.WebhookSecret,
		tolerance:     tolerance,
		cb:            breaker.New("stripe", cfg.Breaker, isCountedAsSuccess),
		metrics:       m,
		logger:        logger,
	}
}

// Name returns the provider name.
func (g *Gateway) Name() string {
	return ProviderName
}

// --- Payment Intents ---

func (g *Gateway) CreateIntent(ctx context.Context, in outbound.CreateIntentInput) (*outbound.IntentResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(in.Amount),
		Currency: stripe.String(in.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	if in.ReferenceID != "" {
		params.Description = stripe.String("reservation " + in.ReferenceID)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := call(g, "create_intent", func() (*stripe.PaymentIntent, error) {
		return g.sc.PaymentIntents.New(params)
	})
	if err != nil {
		return nil, toProviderError("create payment intent", err)
	}
	return toIntentResult(pi), nil
}

// Confirm confirms the intent server-side. A card decline comes back from Stripe
// as an error carrying the intent; it is reported as a result.
func (g *Gateway) Confirm(ctx context.Context, intentID, paymentMethodID string) (*outbound.IntentResult, error) {
	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(paymentMethodID),
	}
	params.Context = ctx

	res, err := call(g, "confirm", func() (*outbound.IntentResult, error) {
		pi, err := g.sc.PaymentIntents.Confirm(intentID, params)
		if err != nil {
			var se *stripe.Error
			if errors.As(err, &se) && se.PaymentIntent != nil {
				declined := toIntentResult(se.PaymentIntent)
				declined.ErrorCode = string(se.Code)
				declined.ErrorMessage = se.Msg
				return declined, nil
			}
			return nil, err
		}
		return toIntentResult(pi), nil
	})
	if err != nil {
		return nil, toProviderError("confirm payment intent", err)
	}
	return res, nil
}

func (g *Gateway) GetIntent(ctx context.Context, intentID string) (*outbound.IntentResult, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := call(g, "get_intent", func() (*stripe.PaymentIntent, error) {
		return g.sc.PaymentIntents.Get(intentID, params)
	})
	if err != nil {
		return nil, toProviderError("get payment intent", err)
	}
	return toIntentResult(pi), nil
}

// --- Refunds ---

func (g *Gateway) CreateRefund(ctx context.Context, in outbound.RefundInput) (*outbound.RefundResult, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(in.IntentID),
	}
	params.Context = ctx
	if in.Amount != nil {
		params.Amount = stripe.Int64(*in.Amount)
	}
	if in.Reason != "" {
		if stripeRefundReasons[in.Reason] {
			params.Reason = stripe.String(in.Reason)
		} else {
			params.AddMetadata("reason", in.Reason)
		}
	}

	r, err := call(g, "create_refund", func() (*stripe.Refund, error) {
		return g.sc.Refunds.New(params)
	})
	if err != nil {
		return nil, toProviderError("create refund", err)
	}
	return &outbound.RefundResult{
		RefundID: r.ID,
		Status:   string(r.Status),
		Amount:   r.Amount,
		Message:  string(r.FailureReason),
	}, nil
}

// --- Webhooks ---

// ParseEvent verifies the Stripe-Signature header and reduces the event to a
// payment.ProviderEvent.
func (g *Gateway) ParseEvent(payload []byte, signature string) (*payment.ProviderEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		Tolerance:                g.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if isSignatureError(err) {
			return nil, fmt.Errorf("%w: %v", payment.ErrAuthentication, err)
		}
		return nil, payment.NewValidationError("payload", err.Error())
	}

	ev := &payment.ProviderEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}
	if event.Data == nil || !ev.IsHandled() {
		return ev, nil
	}

	if ev.IsIntentEvent() {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, payment.NewValidationError("data.object", fmt.Sprintf("decode payment intent: %v", err))
		}
		ev.IntentID = pi.ID
		if pi.LatestCharge != nil {
			ev.ChargeID = pi.LatestCharge.ID
		}
		if pi.LastPaymentError != nil {
			ev.ErrorCode = string(pi.LastPaymentError.Code)
			ev.ErrorMessage = pi.LastPaymentError.Msg
		}
		return ev, nil
	}

	var ch stripe.Charge
	if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
		return nil, payment.NewValidationError("data.object", fmt.Sprintf("decode charge: %v", err))
	}
	ev.ChargeID = ch.ID
	ev.AmountRefunded = ch.AmountRefunded
	if ch.PaymentIntent != nil {
		ev.IntentID = ch.PaymentIntent.ID
	}
	return ev, nil
}

// --- Helpers ---

// call runs fn through the circuit breaker and records the call.
func call[T any](g *Gateway, op string, fn func() (T, error)) (T, error) {
	start := time.Now()
	res, err := breaker.Execute(g.cb, fn)

	result := "ok"
	switch {
	case breaker.IsOpen(err):
		result = "open"
	case err != nil:
		result = "error"
	}
	g.metrics.RecordProviderCall(ProviderName, op, result, time.Since(start))

	if err != nil {
		g.logger.Warn("Stripe call failed",
			zap.String("operation", op),
			zap.String("result", result),
			zap.Error(err),
		)
	}
	return res, err
}

func toIntentResult(pi *stripe.PaymentIntent) *outbound.IntentResult {
	res := &outbound.IntentResult{
		IntentID:     pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}
	if pi.LatestCharge != nil {
		res.ChargeID = pi.LatestCharge.ID
	}
	if pi.LastPaymentError != nil {
		res.ErrorCode = string(pi.LastPaymentError.Code)
		res.ErrorMessage = pi.LastPaymentError.Msg
	}
	return res
}

func toProviderError(op string, err error) error {
	if breaker.IsOpen(err) {
		return payment.NewProviderError("circuit_open", op+": payment provider unavailable", err)
	}
	var se *stripe.Error
	if errors.As(err, &se) {
		return payment.NewProviderError(string(se.Code), se.Msg, err)
	}
	return payment.NewProviderError("", fmt.Sprintf("%s: %v", op, err), err)
}

// isCountedAsSuccess keeps client-side Stripe errors (bad request, declines)
// from tripping the breaker.
func isCountedAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var se *stripe.Error
	if errors.As(err, &se) {
		return se.HTTPStatusCode >= 400 && se.HTTPStatusCode < 500 && se.HTTPStatusCode != http.StatusTooManyRequests
	}
	return false
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}

// Compile-time check
var _ outbound.PaymentGatewayPort = (*Gateway)(nil)
