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
)

// RefundHandler handles refund HTTP requests.
type RefundHandler struct {
	refund command.Handler[cmdpayment.RefundPaymentCommand, *cmdpayment.RefundPaymentResult]
	logger *zap.Logger
}

// NewRefundHandler creates a new refund handler.
func NewRefundHandler(
	refund command.Handler[cmdpayment.RefundPaymentCommand, *cmdpayment.RefundPaymentResult],
	logger *zap.Logger,
) *RefundHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefundHandler{refund: refund, logger: logger}
}

// RegisterRoutes registers refund routes.
func (h *RefundHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/payments/:id/refund", h.CreateRefund)
}

// CreateRefund handles POST /payments/:id/refund.
func (h *RefundHandler) CreateRefund(c *gin.Context) {
	id, ok := parsePaymentID(c)
	if !ok {
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	res, err := h.refund.Handle(c.Request.Context(), cmdpayment.RefundPaymentCommand{
		PaymentID: id,
		Amount:    req.Amount,
		Reason:    req.Reason,
	})
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, RefundResponse{
		Payment:        toPaymentResponse(res.Payment),
		RefundID:       res.RefundID,
		RefundedAmount: res.RefundedAmount,
	})
}

// Compile-time check
var _ inbound.RefundHttpPort = (*RefundHandler)(nil)
