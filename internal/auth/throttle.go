package auth

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	throttleSweepSize = 10000
	throttleIdleAfter = 10 * time.Minute
)

// LoginThrottle limits login attempts per client IP.
type LoginThrottle struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	visitors map[string]*visitor
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginThrottle allows perMinute attempts per IP. perMinute <= 0 disables it.
func NewLoginThrottle(perMinute int) *LoginThrottle {
	if perMinute <= 0 {
		return nil
	}
	return &LoginThrottle{
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

// Allow reports whether key may attempt another login now.
func (t *LoginThrottle) Allow(key string) bool {
	if t == nil {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if len(t.visitors) >= throttleSweepSize {
		for k, v := range t.visitors {
			if now.Sub(v.lastSeen) > throttleIdleAfter {
				delete(t.visitors, k)
			}
		}
	}
	v, ok := t.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Handler rejects requests from clients over their budget.
func (t *LoginThrottle) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !t.Allow(c.IP()) {
			return apperrors.NewRateLimited("too many login attempts")
		}
		return c.Next()
	}
}
