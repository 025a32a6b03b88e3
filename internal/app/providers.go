package app

import (
	"context"
	"net/http"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	// Inbound adapters
	paymenthttp "github.com/staybook/payments/internal/adapter/inbound/http/payment"

	// Application
	cmdpayment "github.com/staybook/payments/internal/app/command/payment"
	qrypayment "github.com/staybook/payments/internal/app/query/payment"

	// Ports
	"github.com/staybook/payments/internal/port/outbound"

	// Outbound adapters
	awsadapter "github.com/staybook/payments/internal/adapter/outbound/aws"
	"github.com/staybook/payments/internal/adapter/outbound/postgres"
	redisadapter "github.com/staybook/payments/internal/adapter/outbound/redis"
	"github.com/staybook/payments/internal/adapter/outbound/reservation"
	"github.com/staybook/payments/internal/adapter/outbound/stripegateway"

	// Infrastructure
	"github.com/staybook/payments/internal/infra/cache"
	"github.com/staybook/payments/internal/infra/config"
	"github.com/staybook/payments/internal/infra/database"
	"github.com/staybook/payments/internal/infra/httpclient"

	// Utils
	"github.com/staybook/payments/internal/utils/logger"
	"github.com/staybook/payments/internal/utils/metrics"
)

const awsLoadTimeout = 10 * time.Second

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideZapLogger,
	ProvideDatabase,
	ProvideRedisClient,
	ProvideHTTPClient,
	ProvideMetrics,
	ProvideAWSConfig,
)

// ProvideZapLogger creates a zap logger instance.
func ProvideZapLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}

// ProvideDatabase opens the database and runs migrations when enabled.
func ProvideDatabase(cfg *config.Config, zapLog *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			database.Close(db, zapLog)
			return nil, nil, err
		}
	}
	return db, func() { database.Close(db, zapLog) }, nil
}

// ProvideRedisClient creates a Redis client. Redis is optional: without it the
// service runs with a no-op payment lock and no idempotency replay.
func ProvideRedisClient(cfg *config.Config, zapLog *zap.Logger) (goredis.UniversalClient, func()) {
	if cfg.Redis.Address == "" {
		return nil, func() {}
	}
	client, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		zapLog.Warn("Redis connection failed, continuing without locks and idempotency", zap.Error(err))
		return nil, func() {}
	}
	return client, func() { _ = client.Close() }
}

// ProvideHTTPClient creates a shared HTTP client with connection pooling.
func ProvideHTTPClient(cfg *config.Config) *http.Client {
	return httpclient.New(cfg.HTTPClient)
}

// ProvideMetrics creates a metrics instance.
func ProvideMetrics() *metrics.Metrics {
	return metrics.New("payments")
}

// ProvideAWSConfig loads the AWS SDK configuration when the archive or the
// outcome topic is configured.
func ProvideAWSConfig(cfg *config.Config) (sdkaws.Config, error) {
	if cfg.AWS.ArchiveBucket == "" && cfg.AWS.EventsTopicARN == "" {
		return sdkaws.Config{}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), awsLoadTimeout)
	defer cancel()
	return awsadapter.LoadConfig(ctx, awsadapter.Config{
		Region:          cfg.AWS.Region,
		Endpoint:        cfg.AWS.Endpoint,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
	})
}

// ===== Payment Providers =====

// PaymentSet provides payment dependencies.
var PaymentSet = wire.NewSet(
	postgres.NewPaymentAdapter,
	postgres.NewWebhookEventAdapter,
	ProvidePaymentGateway,
	ProvideReservationClient,
	ProvidePaymentLocker,
	ProvideEventPublisher,
	ProvideWebhookArchive,
	cmdpayment.NewOutcomes,
	cmdpayment.NewCreateIntentHandler,
	cmdpayment.NewConfirmPaymentHandler,
	cmdpayment.NewRefundPaymentHandler,
	cmdpayment.NewSyncPaymentHandler,
	cmdpayment.NewReconcileEventHandler,
	qrypayment.NewGetPaymentHandler,
	qrypayment.NewListByReservationHandler,
)

// ProvidePaymentGateway creates the Stripe gateway.
func ProvidePaymentGateway(cfg *config.Config, client *http.Client, m *metrics.Metrics, zapLog *zap.Logger) outbound.PaymentGatewayPort {
	return stripegateway.NewGateway(stripegateway.Config{
		SecretKey:         cfg.Stripe.SecretKey,
		WebhookSecret:     cfg.Stripe.WebhookSecret,
		WebhookTolerance:  cfg.Stripe.WebhookTolerance,
		APIURL:            cfg.Stripe.APIURL,
		MaxNetworkRetries: cfg.Stripe.MaxNetworkRetries,
		Breaker:           cfg.Stripe.Breaker,
	}, client, m, zapLog)
}

// ProvideReservationClient creates the booking service client.
func ProvideReservationClient(cfg *config.Config, client *http.Client, zapLog *zap.Logger) outbound.ReservationPort {
	return reservation.NewClient(reservation.Config{
		BaseURL: cfg.Reservation.BaseURL,
		Timeout: cfg.Reservation.Timeout,
		Breaker: cfg.Reservation.Breaker,
	}, httpclient.WithTimeout(client, cfg.Reservation.Timeout), zapLog)
}

// ProvidePaymentLocker creates the per-payment lock. Nil without Redis.
func ProvidePaymentLocker(cfg *config.Config, redis goredis.UniversalClient, zapLog *zap.Logger) outbound.PaymentLockerPort {
	if redis == nil {
		return nil
	}
	return redisadapter.NewPaymentLocker(redis, cfg.Lock.TTL, zapLog)
}

// ProvideEventPublisher creates the SNS outcome publisher. Nil when no topic is configured.
func ProvideEventPublisher(cfg *config.Config, awsCfg sdkaws.Config) outbound.PaymentEventPublisherPort {
	if cfg.AWS.EventsTopicARN == "" {
		return nil
	}
	return awsadapter.NewEventPublisher(awsadapter.NewSNSClient(awsCfg, cfg.AWS.Endpoint), cfg.AWS.EventsTopicARN)
}

// ProvideWebhookArchive creates the S3 webhook archive. Nil when no bucket is configured.
func ProvideWebhookArchive(cfg *config.Config, awsCfg sdkaws.Config) outbound.WebhookArchivePort {
	if cfg.AWS.ArchiveBucket == "" {
		return nil
	}
	return awsadapter.NewWebhookArchive(awsadapter.NewS3Client(awsCfg, cfg.AWS.Endpoint), cfg.AWS.ArchiveBucket, cfg.AWS.ArchivePrefix)
}

// ===== HTTP Handler Providers =====

// HTTPSet provides the inbound HTTP handlers.
var HTTPSet = wire.NewSet(
	ProvidePaymentHTTPHandler,
	ProvideRefundHTTPHandler,
	ProvideWebhookHTTPHandler,
)

// ProvidePaymentHTTPHandler creates the payment HTTP handler.
func ProvidePaymentHTTPHandler(
	createIntent *cmdpayment.CreateIntentHandler,
	confirm *cmdpayment.ConfirmPaymentHandler,
	sync *cmdpayment.SyncPaymentHandler,
	getPayment *qrypayment.GetPaymentHandler,
	listByReservation *qrypayment.ListByReservationHandler,
	zapLog *zap.Logger,
) *paymenthttp.PaymentHandler {
	return paymenthttp.NewPaymentHandler(createIntent, confirm, sync, getPayment, listByReservation, zapLog)
}

// ProvideRefundHTTPHandler creates the refund HTTP handler.
func ProvideRefundHTTPHandler(refund *cmdpayment.RefundPaymentHandler, zapLog *zap.Logger) *paymenthttp.RefundHandler {
	return paymenthttp.NewRefundHandler(refund, zapLog)
}

// ProvideWebhookHTTPHandler creates the Stripe webhook HTTP handler.
func ProvideWebhookHTTPHandler(
	cfg *config.Config,
	reconcile *cmdpayment.ReconcileEventHandler,
	zapLog *zap.Logger,
) *paymenthttp.WebhookHandler {
	return paymenthttp.NewWebhookHandler(reconcile, cfg.Webhook.MaxBodyBytes, zapLog)
}

// AppSet is the complete provider set.
var AppSet = wire.NewSet(
	InfraSet,
	PaymentSet,
	HTTPSet,
)
