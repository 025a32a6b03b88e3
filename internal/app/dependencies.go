package app

import (
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	paymenthttp "github.com/staybook/payments/internal/adapter/inbound/http/payment"
	"github.com/staybook/payments/internal/infra/config"
	"github.com/staybook/payments/internal/utils/metrics"
)

// Dependencies holds all injected dependencies.
type Dependencies struct {
	Config    *config.Config
	DB        *gorm.DB
	Redis     goredis.UniversalClient
	ZapLogger *zap.Logger
	Metrics   *metrics.Metrics

	// HTTP Handlers
	PaymentHandler *paymenthttp.PaymentHandler
	RefundHandler  *paymenthttp.RefundHandler
	WebhookHandler *paymenthttp.WebhookHandler
}
