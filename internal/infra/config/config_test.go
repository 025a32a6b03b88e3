package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("PAYMENTS_STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("PAYMENTS_STRIPE_WEBHOOK_SECRET", "whsec_123")
	t.Setenv("PAYMENTS_RESERVATION_BASE_URL", "http://reservations.local")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "payments", cfg.Database.Database)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 24*time.Hour, cfg.RateLimit.IdempotencyTTL)
	assert.Equal(t, 5*time.Minute, cfg.Stripe.WebhookTolerance)
	assert.Equal(t, uint32(5), cfg.Stripe.Breaker.FailureThreshold)
	assert.Equal(t, 5*time.Second, cfg.Reservation.Timeout)
	assert.Equal(t, 15*time.Second, cfg.Lock.TTL)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.AWS.ArchiveBucket)
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PAYMENTS_DB_PASSWORD", "s3cret")
	t.Setenv("PAYMENTS_REDIS_PASSWORD", "r3dis")
	t.Setenv("PAYMENTS_LOG_LEVEL", "debug")
	t.Setenv("PAYMENTS_AWS_ARCHIVE_BUCKET", "payments-webhooks")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sk_test_123", cfg.Stripe.SecretKey)
	assert.Equal(t, "whsec_123", cfg.Stripe.WebhookSecret)
	assert.Equal(t, "http://reservations.local", cfg.Reservation.BaseURL)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "r3dis", cfg.Redis.Password)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "payments-webhooks", cfg.AWS.ArchiveBucket)
	assert.Contains(t, cfg.Database.DSN(), "password=s3cret")
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		Stripe:      StripeConfig{SecretKey: "sk", WebhookSecret: "whsec"},
		Reservation: ReservationConfig{BaseURL: "http://reservations.local"},
	}
	assert.NoError(t, valid.Validate())

	noKey := valid
	noKey.Stripe.SecretKey = ""
	assert.Error(t, noKey.Validate())

	noSecret := valid
	noSecret.Stripe.WebhookSecret = ""
	assert.Error(t, noSecret.Validate())

	noReservation := valid
	noReservation.Reservation.BaseURL = ""
	assert.Error(t, noReservation.Validate())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, User: "app", Database: "payments", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=app dbname=payments sslmode=disable", cfg.DSN())
}
