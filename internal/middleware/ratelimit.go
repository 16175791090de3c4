package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mgltickets/api/internal/helpers"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client key.
type RateLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*limiterEntry
	perMinute   int
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewRateLimiter allows perMinute requests per client with a burst of the
// same size. A non-positive perMinute disables limiting.
func NewRateLimiter(perMinute int) *RateLimiter {
	limiter := &RateLimiter{
		limiters:    make(map[string]*limiterEntry),
		perMinute:   perMinute,
		stopCleanup: make(chan struct{}),
	}
	if perMinute > 0 {
		go limiter.cleanupLoop()
	}
	return limiter
}

func (l *RateLimiter) allow(key string) bool {
	if l.perMinute <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[key]
	if !ok {
		interval := time.Minute / time.Duration(l.perMinute)
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Every(interval), l.perMinute)}
		l.limiters[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

func (l *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup(15 * time.Minute)
		case <-l.stopCleanup:
			return
		}
	}
}

func (l *RateLimiter) cleanup(ttl time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > ttl {
			delete(l.limiters, key)
		}
	}
}

func (l *RateLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCleanup) })
}

// Middleware limits by client IP and answers 429 with Retry-After.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	retryAfter := "60"
	if l.perMinute > 0 {
		seconds := int(time.Minute/time.Duration(l.perMinute)/time.Second) + 1
		retryAfter = strconv.Itoa(seconds)
	}
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			zerolog.Ctx(c.Request.Context()).Warn().Str("client_ip", c.ClientIP()).Msg("rate limit exceeded")
			c.Header("Retry-After", retryAfter)
			helpers.RespondWithError(c, http.StatusTooManyRequests, "Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}
