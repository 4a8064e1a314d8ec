package api

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxTracked bounds the limiter table; it is reset when full.
const maxTracked = 10000

// CallerLimiter keeps one token bucket per caller phone number.
type CallerLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewCallerLimiter allows perMinute requests per caller. A non-positive
// perMinute disables limiting.
func NewCallerLimiter(perMinute int) *CallerLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &CallerLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}
}

func (l *CallerLimiter) Allow(caller string) bool {
	if l == nil || caller == "" {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[caller]
	if !ok {
		if len(l.limiters) >= maxTracked {
			l.limiters = make(map[string]*rate.Limiter)
		}
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[caller] = limiter
	}
	return limiter.Allow()
}

// Middleware rejects callers over their budget. field names the form value
// that identifies the caller; reject writes the gateway-specific refusal.
func (l *CallerLimiter) Middleware(field string, logger *zap.Logger, reject func(c *gin.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.PostForm(field)
		if !l.Allow(caller) {
			logger.Warn("rate limit exceeded", zap.String("phone", caller), zap.String("path", c.FullPath()))
			reject(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
