package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medmitra/api/internal/platform/auth"
)

// RateLimitConfig tunes the per-caller request budget.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		BurstSize:         200,
	}
}

// limiter is one caller's remaining budget. The allowance refills
// continuously at the configured rate up to the burst ceiling.
type limiter struct {
	allowance float64
	last      time.Time
}

// limiterPool tracks budgets per caller under one lock. Callers are keyed by
// authenticated staff id when there is one, otherwise by remote IP, so two
// clinic desks behind one NAT do not share a budget once logged in.
type limiterPool struct {
	mu      sync.Mutex
	callers map[string]*limiter
	rate    float64
	burst   float64
	swept   time.Time
}

func newLimiterPool(cfg RateLimitConfig) *limiterPool {
	return &limiterPool{
		callers: make(map[string]*limiter),
		rate:    cfg.RequestsPerSecond,
		burst:   float64(cfg.BurstSize),
		swept:   time.Now(),
	}
}

// take spends one request from the caller's budget. When the budget is
// empty it reports the whole seconds until one request fits again.
func (p *limiterPool) take(key string, now time.Time) (bool, int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if now.Sub(p.swept) > time.Minute {
		p.sweepLocked(now)
	}

	l, ok := p.callers[key]
	if !ok {
		l = &limiter{allowance: p.burst, last: now}
		p.callers[key] = l
	}

	l.allowance += now.Sub(l.last).Seconds() * p.rate
	if l.allowance > p.burst {
		l.allowance = p.burst
	}
	l.last = now

	if l.allowance < 1 {
		wait := 1
		if p.rate > 0 {
			wait = int((1-l.allowance)/p.rate) + 1
		}
		return false, wait
	}
	l.allowance--
	return true, 0
}

// sweepLocked drops callers idle long enough to be back at a full budget,
// keeping the pool from growing with every IP ever seen.
func (p *limiterPool) sweepLocked(now time.Time) {
	idle := time.Minute
	if p.rate > 0 {
		if refill := time.Duration(p.burst / p.rate * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	for key, l := range p.callers {
		if now.Sub(l.last) > idle {
			delete(p.callers, key)
		}
	}
	p.swept = now
}

// RateLimit rejects requests over the per-caller budget with 429 and a
// Retry-After hint.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	pool := newLimiterPool(cfg)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := auth.UserIDFromContext(c.Request().Context())
			if key == "" {
				key = c.RealIP()
			}
			ok, wait := pool.take(key, time.Now())
			if !ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(wait))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
