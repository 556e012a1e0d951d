package http

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL    = time.Hour
	limiterSweepEvery = 5 * time.Minute
)

// clientLimiters keeps one token bucket per client IP. Idle buckets are
// swept during lookups, so no background goroutine is needed.
type clientLimiters struct {
	mu        sync.Mutex
	buckets   map[string]*clientBucket
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiters(rps float64, burst int) *clientLimiters {
	return &clientLimiters{
		buckets: make(map[string]*clientBucket),
		limit:   rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// reserve takes a token for client and returns how long it must wait when
// none is available. A zero delay means the request may proceed.
func (l *clientLimiters) reserve(client string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= limiterSweepEvery {
		l.sweep(now.Add(-limiterIdleTTL))
		l.lastSweep = now
	}

	bucket, ok := l.buckets[client]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[client] = bucket
	}
	bucket.lastSeen = now

	r := bucket.limiter.ReserveN(now, 1)
	if !r.OK() {
		return limiterIdleTTL
	}
	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
	}
	return delay
}

// sweep drops buckets not seen since threshold. Callers hold mu.
func (l *clientLimiters) sweep(threshold time.Time) {
	for client, bucket := range l.buckets {
		if bucket.lastSeen.Before(threshold) {
			delete(l.buckets, client)
		}
	}
}

// RateLimitMiddleware enforces per-IP rate limiting on the asset API.
//
// Download and chat requests each trigger a ledger or analyzer call, so the
// limit protects those upstreams as much as this service. The client is
// c.ClientIP(), which honors X-Forwarded-For and X-Real-IP.
func RateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	limiters := newClientLimiters(rps, burst)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		delay := limiters.reserve(clientIP)
		if delay == 0 {
			c.Next()
			return
		}

		retryAfter := int(math.Ceil(delay.Seconds()))
		logger.Debug("rate limit exceeded",
			slog.String("client_ip", clientIP),
			slog.Int("retry_after", retryAfter))

		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":   "rate_limit_exceeded",
			"message": "Too many requests from this IP. Please retry after the specified delay.",
		})
	}
}
