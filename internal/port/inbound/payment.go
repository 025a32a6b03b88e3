package inbound

import "github.com/gin-gonic/gin"

// PaymentHttpPort defines HTTP handler interface for payment operations.
type PaymentHttpPort interface {
	// CreateIntent handles POST /payments/intents
	// Opens a provider payment intent for a reservation.
	CreateIntent(c *gin.Context)

	// ConfirmPayment handles POST /payments/confirm
	ConfirmPayment(c *gin.Context)

	// GetPayment handles GET /payments/:id
	GetPayment(c *gin.Context)

	// SyncPayment handles POST /payments/:id/sync
	// Pulls the intent state from the provider.
	SyncPayment(c *gin.Context)

	// ListReservationPayments handles GET /reservations/:id/payments
	ListReservationPayments(c *gin.Context)
}

// RefundHttpPort defines HTTP handler interface for refund operations.
type RefundHttpPort interface {
	// CreateRefund handles POST /payments/:id/refund
	CreateRefund(c *gin.Context)
}

// WebhookHttpPort defines HTTP handler interface for webhook operations.
type WebhookHttpPort interface {
	// HandleStripeWebhook handles POST /webhooks/stripe
	// Verifies and reconciles Stripe webhook events.
	HandleStripeWebhook(c *gin.Context)
}
