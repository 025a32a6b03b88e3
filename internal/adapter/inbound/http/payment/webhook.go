package paymenthttp

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/staybook/payments/internal/app/command"
	cmdpayment "github.com/staybook/payments/internal/app/command/payment"
	"github.com/staybook/payments/internal/port/inbound"
	apperrors "github.com/staybook/payments/internal/utils/errors"
)

// DefaultMaxWebhookBytes bounds the webhook body when no limit is configured.
const DefaultMaxWebhookBytes int64 = 64 << 10

// StripeSignatureHeader carries the webhook signature.
const StripeSignatureHeader = "Stripe-Signature"

// WebhookHandler handles payment webhook HTTP requests.
type WebhookHandler struct {
	reconcile    command.Handler[cmdpayment.ReconcileEventCommand, *cmdpayment.ReconcileEventResult]
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(
	reconcile command.Handler[cmdpayment.ReconcileEventCommand, *cmdpayment.ReconcileEventResult],
	maxBodyBytes int64,
	logger *zap.Logger,
) *WebhookHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxWebhookBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{reconcile: reconcile, maxBodyBytes: maxBodyBytes, logger: logger}
}

// RegisterRoutes registers webhook routes.
func (h *WebhookHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/webhooks/stripe", h.HandleStripeWebhook)
}

// HandleStripeWebhook handles POST /webhooks/stripe.
// The raw body must reach signature verification unmodified.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			appErr := apperrors.NewAppError("PAYLOAD_TOO_LARGE", "webhook body too large", http.StatusRequestEntityTooLarge, err)
			c.JSON(appErr.StatusCode, appErr.ToResponse())
			return
		}
		badRequest(c, errors.New("failed to read request body"))
		return
	}

	res, err := h.reconcile.Handle(c.Request.Context(), cmdpayment.ReconcileEventCommand{
		Payload:   payload,
		Signature: c.GetHeader(StripeSignatureHeader),
	})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"received":  true,
		"event_id":  res.EventID,
		"duplicate": res.Duplicate,
		"ignored":   res.Ignored,
	})
}

// Compile-time check
var _ inbound.WebhookHttpPort = (*WebhookHandler)(nil)
