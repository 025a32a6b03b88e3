package paymenthttp

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/staybook/payments/internal/app/command"
	cmdpayment "github.com/staybook/payments/internal/app/command/payment"
	"github.com/staybook/payments/internal/app/query"
	qrypayment "github.com/staybook/payments/internal/app/query/payment"
	"github.com/staybook/payments/internal/domain/payment"
	"github.com/staybook/payments/internal/port/inbound"
)

// PaymentHandler handles payment HTTP requests.
type PaymentHandler struct {
	createIntent      command.Handler[cmdpayment.CreateIntentCommand, *cmdpayment.CreateIntentResult]
	confirm           command.Handler[cmdpayment.ConfirmPaymentCommand, *cmdpayment.ConfirmPaymentResult]
	sync              command.Handler[cmdpayment.SyncPaymentCommand, *cmdpayment.SyncPaymentResult]
	getPayment        query.Handler[qrypayment.GetPaymentQuery, *qrypayment.GetPaymentResult]
	listByReservation query.Handler[qrypayment.ListByReservationQuery, *qrypayment.ListByReservationResult]
	logger            *zap.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(
	createIntent command.Handler[cmdpayment.CreateIntentCommand, *cmdpayment.CreateIntentResult],
	confirm command.Handler[cmdpayment.ConfirmPaymentCommand, *cmdpayment.ConfirmPaymentResult],
	sync command.Handler[cmdpayment.SyncPaymentCommand, *cmdpayment.SyncPaymentResult],
	getPayment query.Handler[qrypayment.GetPaymentQuery, *qrypayment.GetPaymentResult],
	listByReservation query.Handler[qrypayment.ListByReservationQuery, *qrypayment.ListByReservationResult],
	logger *zap.Logger,
) *PaymentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentHandler{
		createIntent:      createIntent,
		confirm:           confirm,
		sync:              sync,
		getPayment:        getPayment,
		listByReservation: listByReservation,
		logger:            logger,
	}
}

// RegisterRoutes registers payment routes.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")
	{
		payments.POST("/intents", h.CreateIntent)
		payments.POST("/confirm", h.ConfirmPayment)
		payments.GET("/:id", h.GetPayment)
		payments.POST("/:id/sync", h.SyncPayment)
	}
	r.GET("/reservations/:id/payments", h.ListReservationPayments)
}

// CreateIntent handles POST /payments/intents.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.createIntent.Handle(c.Request.Context(), cmdpayment.CreateIntentCommand{
		ReservationID: req.ReservationID,
		Amount:        req.Amount,
		Currency:      req.Currency,
	})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, CreateIntentResponse{
		PaymentID:       res.PaymentID.String(),
		PaymentIntentID: res.IntentID,
		ClientSecret:    res.ClientSecret,
		Amount:          res.Amount,
		Currency:        res.Currency,
	})
}

// ConfirmPayment handles POST /payments/confirm.
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.confirm.Handle(c.Request.Context(), cmdpayment.ConfirmPaymentCommand{
		IntentID:        req.PaymentIntentID,
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, ConfirmResponse{
		Payment:        toPaymentResponse(res.Payment),
		ProviderStatus: res.ProviderStatus,
		RequiresAction: res.Payment.Status() == payment.StatusRequiresAction,
	})
}

// GetPayment handles GET /payments/:id.
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	id, ok := parsePaymentID(c)
	if !ok {
		return
	}

	res, err := h.getPayment.Handle(c.Request.Context(), qrypayment.GetPaymentQuery{PaymentID: id})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toPaymentResponse(res.Payment))
}

// SyncPayment handles POST /payments/:id/sync.
func (h *PaymentHandler) SyncPayment(c *gin.Context) {
	id, ok := parsePaymentID(c)
	if !ok {
		return
	}

	res, err := h.sync.Handle(c.Request.Context(), cmdpayment.SyncPaymentCommand{PaymentID: id})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, SyncResponse{
		Payment:        toPaymentResponse(res.Payment),
		ProviderStatus: res.ProviderStatus,
		Changed:        res.Changed,
	})
}

// ListReservationPayments handles GET /reservations/:id/payments.
func (h *PaymentHandler) ListReservationPayments(c *gin.Context) {
	reservationID, ok := parseReservationID(c)
	if !ok {
		return
	}

	res, err := h.listByReservation.Handle(c.Request.Context(), qrypayment.ListByReservationQuery{ReservationID: reservationID})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, PaymentListResponse{Data: toPaymentResponses(res.Payments)})
}

// Compile-time check
var _ inbound.PaymentHttpPort = (*PaymentHandler)(nil)
