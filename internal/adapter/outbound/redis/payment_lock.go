package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/staybook/payments/internal/domain/payment"
	"github.com/staybook/payments/internal/port/outbound"
)

const (
	paymentLockKeyPrefix = "lock:payment:"
	defaultLockTTL       = 15 * time.Second
	releaseTimeout       = 2 * time.Second
)

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// paymentLocker implements outbound.PaymentLockerPort.
type paymentLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewPaymentLocker creates a new Redis-backed payment locker.
func NewPaymentLocker(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) outbound.PaymentLockerPort {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &paymentLocker{client: client, ttl: ttl, logger: logger}
}

func (l *paymentLocker) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := paymentLockKeyPrefix + key
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire payment lock: %w", err)
	}
	if !ok {
		return nil, payment.ErrPaymentLocked
	}

	release := func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if err := releaseScript.Run(rctx, l.client, []string{fullKey}, token).Err(); err != nil {
			l.logger.Warn("Failed to release payment lock",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
	return release, nil
}

// Compile-time check
var _ outbound.PaymentLockerPort = (*paymentLocker)(nil)
