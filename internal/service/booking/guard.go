package booking

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrInFlight means another delivery of the same session is still finalizing.
var ErrInFlight = errors.New("finalization already in progress")

type Cache interface {
	AcquireFinalization(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseFinalization(ctx context.Context, key string) error
	StoreOutcome(ctx context.Context, key, text string, ttl time.Duration) error
	Outcome(ctx context.Context, key string) (string, bool, error)
}

// Guard runs a finalization at most once per idempotency key and replays the
// stored reply for redelivered callbacks. Without a cache it runs fn directly
// and relies on the data store's session uniqueness.
type Guard struct {
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewGuard(cache Cache, ttl time.Duration, logger *zap.Logger) *Guard {
	return &Guard{cache: cache, ttl: ttl, logger: logger}
}

func (g *Guard) Once(ctx context.Context, key string, fn func(context.Context) (string, error)) (string, error) {
	if g == nil || g.cache == nil || key == "" {
		return fn(ctx)
	}

	if text, ok, err := g.cache.Outcome(ctx, key); err != nil {
		g.logger.Warn("outcome lookup failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		g.logger.Info("replaying stored outcome", zap.String("key", key))
		return text, nil
	}

	acquired, err := g.cache.AcquireFinalization(ctx, key, g.ttl)
	if err != nil {
		g.logger.Warn("finalization lock unavailable", zap.String("key", key), zap.Error(err))
		return fn(ctx)
	}
	if !acquired {
		return "", ErrInFlight
	}

	text, err := fn(ctx)
	if err != nil {
		if relErr := g.cache.ReleaseFinalization(ctx, key); relErr != nil {
			g.logger.Warn("release finalization failed", zap.String("key", key), zap.Error(relErr))
		}
		return "", err
	}

	if err := g.cache.StoreOutcome(ctx, key, text, g.ttl); err != nil {
		g.logger.Warn("store outcome failed", zap.String("key", key), zap.Error(err))
	}
	return text, nil
}
