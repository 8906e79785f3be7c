// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/reqinfo"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"
)

// Limiter counts requests per key in fixed windows held in process memory.
// It is safe for concurrent use.
type Limiter struct {
	lim *limiter.Limiter
}

// New creates a limiter allowing limit requests per key per period.
func New(limit int, period time.Duration) *Limiter {
	rate := limiter.Rate{Period: period, Limit: int64(limit)}
	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "placementhub",
		CleanUpInterval: period,
	})
	return &Limiter{lim: limiter.New(store, rate)}
}

// Allow counts one request for key and reports whether it fits in the
// current window, plus the wait until the window resets.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	c, err := l.lim.Get(ctx, key)
	if err != nil {
		return true, 0, err
	}
	return !c.Reached, retryAfter(c, time.Now()), nil
}

// Remaining returns how many requests key has left in its current window
// without counting one.
func (l *Limiter) Remaining(ctx context.Context, key string) (int64, error) {
	c, err := l.lim.Peek(ctx, key)
	if err != nil {
		return 0, err
	}
	return c.Remaining, nil
}

// retryAfter rounds the time to reset up to whole seconds, at least one.
func retryAfter(c limiter.Context, now time.Time) time.Duration {
	wait := time.Unix(c.Reset, 0).Sub(now)
	secs := max(int64((wait+time.Second-1)/time.Second), 1)
	return time.Duration(secs) * time.Second
}

// key identifies the caller: the signed-in user, else the client address.
func key(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok {
		return "user:" + u.ID.Hex()
	}
	ip := reqinfo.From(r.Context()).IP
	if ip == "" {
		ip = reqinfo.ClientIP(r)
	}
	return "ip:" + ip
}

// Middleware rejects callers over their allowance with RATE_LIMITED.
// A nil limiter disables limiting. Store failures let the request through.
func Middleware(l *Limiter, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			ok, wait, err := l.Allow(r.Context(), k)
			if err != nil {
				log.Warn("rate limit store failed", zap.Error(err), zap.String("key", k))
			}
			if !ok {
				log.Info("rate limited", zap.String("key", k), zap.String("path", r.URL.Path))
				w.Header().Set("Retry-After", strconv.FormatInt(int64(wait/time.Second), 10))
				respond.Error(w, r, log, apperr.RateLimited(""))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
