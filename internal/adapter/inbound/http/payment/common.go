package paymenthttp

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/staybook/payments/internal/domain/payment"
	apperrors "github.com/staybook/payments/internal/utils/errors"
	"github.com/staybook/payments/internal/utils/logger"
)

// handleError maps payment domain errors to HTTP responses.
func handleError(c *gin.Context, log *zap.Logger, err error) {
	appErr := toAppError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		logger.WithRequest(c.Request.Context(), log).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.JSON(appErr.StatusCode, appErr.ToResponse())
}

func toAppError(err error) *apperrors.AppError {
	var (
		stateErr    *payment.InvalidStateError
		providerErr *payment.ProviderError
		validErr    *payment.ValidationError
	)

	switch {
	case errors.Is(err, payment.ErrAuthentication):
		return apperrors.NewAppError("INVALID_SIGNATURE", "webhook signature verification failed", http.StatusBadRequest, err)

	case errors.Is(err, payment.ErrNotFound):
		return apperrors.NotFound("resource")

	case errors.Is(err, payment.ErrAlreadyPaid):
		return apperrors.Conflict("ALREADY_PAID", "reservation already paid")

	case errors.As(err, &stateErr):
		return apperrors.Conflict("INVALID_STATE", stateErr.Error()).
			WithDetails(map[string]any{"status": stateErr.Status})

	case errors.As(err, &validErr):
		return apperrors.ValidationError(validErr.Error())

	case errors.Is(err, payment.ErrConcurrentUpdate):
		return apperrors.Conflict("CONCURRENT_UPDATE", "payment was modified concurrently, retry")

	case errors.Is(err, payment.ErrPaymentLocked):
		return apperrors.Conflict("PAYMENT_LOCKED", "payment is being processed, retry")

	case errors.As(err, &providerErr):
		msg := providerErr.Message
		if msg == "" {
			msg = "payment provider error"
		}
		return apperrors.BadGateway(providerErr.Code, msg)

	default:
		return apperrors.Internal("internal server error", err)
	}
}

// parsePaymentID reads the :id path parameter as a payment id.
func parsePaymentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		appErr := apperrors.BadRequest("invalid payment id")
		c.JSON(appErr.StatusCode, appErr.ToResponse())
		return uuid.Nil, false
	}
	return id, true
}

// parseReservationID reads the :id path parameter as a reservation id.
func parseReservationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		appErr := apperrors.BadRequest("invalid reservation id")
		c.JSON(appErr.StatusCode, appErr.ToResponse())
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, err error) {
	appErr := apperrors.BadRequest(err.Error())
	c.JSON(appErr.StatusCode, appErr.ToResponse())
}
