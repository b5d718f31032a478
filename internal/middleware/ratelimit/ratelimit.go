package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/AditRobertho/eshop-backend/internal/logging"
)

const cleanupEvery = 5 * time.Minute

type Config struct {
	// PerMinute is the sustained number of requests a single key may make.
	PerMinute int
	Burst     int
	// KeyFunc groups requests; defaults to the client IP.
	KeyFunc func(echo.Context) string
}

type limiter struct {
	limiters    sync.Map // key -> *rate.Limiter
	limit       rate.Limit
	burst       int
	mu          sync.Mutex
	lastCleanup time.Time
}

func (l *limiter) get(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}
	v, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.limit, l.burst))
	l.maybeCleanup()
	return v.(*rate.Limiter)
}

// maybeCleanup drops limiters whose bucket is full again, i.e. idle keys.
func (l *limiter) maybeCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if time.Since(l.lastCleanup) < cleanupEvery {
		return
	}
	l.lastCleanup = time.Now()
	l.limiters.Range(func(k, v any) bool {
		if v.(*rate.Limiter).Tokens() >= float64(l.burst) {
			l.limiters.Delete(k)
		}
		return true
	})
}

func Middleware(cfg Config) echo.MiddlewareFunc {
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.PerMinute
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c echo.Context) string { return c.RealIP() }
	}

	rl := &limiter{
		limit:       rate.Limit(float64(cfg.PerMinute) / time.Minute.Seconds()),
		burst:       cfg.Burst,
		lastCleanup: time.Now(),
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := cfg.KeyFunc(c)
			if key == "" {
				return next(c)
			}

			lim := rl.get(key)
			if lim.Allow() {
				return next(c)
			}

			r := lim.Reserve()
			delay := r.Delay()
			r.Cancel()
			retryAfter := max(int(delay.Seconds()), 1)

			c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
			logging.FromContext(c.Request().Context()).Warn("rate_limited",
				"status", 429, "key", key, "endpoint", c.Path(), "retry_after", retryAfter)
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, try again later")
		}
	}
}
