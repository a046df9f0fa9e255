package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/focusflow/focusapi/internal/apperr"
	"github.com/focusflow/focusapi/internal/presenter"
	"github.com/focusflow/focusapi/internal/telemetry"
)

// Rate limit response headers.
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

const defaultLimiterKeys = 10000

// RateLimiter counts requests per client in fixed windows. Counters live in
// an expirable LRU, so an evicted client starts a fresh count.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu     sync.Mutex
	counts *expirable.LRU[string, int]
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	Reset      time.Time
	RetryAfter time.Duration
}

// RateLimiterOption configures a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithLimiterClock overrides the limiter's clock.
func WithLimiterClock(now func() time.Time) RateLimiterOption {
	return func(l *RateLimiter) { l.now = now }
}

// WithLimiterSize bounds the number of tracked client windows.
func WithLimiterSize(size int) RateLimiterOption {
	return func(l *RateLimiter) {
		if size > 0 {
			l.counts = expirable.NewLRU[string, int](size, nil, 2*l.window)
		}
	}
}

// NewRateLimiter allows limit requests per client per window.
func NewRateLimiter(limit int, window time.Duration, opts ...RateLimiterOption) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	l := &RateLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		counts: expirable.NewLRU[string, int](defaultLimiterKeys, nil, 2*window),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow counts one request from client. Rejected requests are not counted.
func (l *RateLimiter) Allow(client string) Decision {
	now := l.now()
	index := now.UnixNano() / l.window.Nanoseconds()
	reset := time.Unix(0, (index+1)*l.window.Nanoseconds())
	key := client + "|" + strconv.FormatInt(index, 10)

	l.mu.Lock()
	defer l.mu.Unlock()

	count, _ := l.counts.Get(key)
	d := Decision{Limit: l.limit, Reset: reset}
	if count >= l.limit {
		d.RetryAfter = reset.Sub(now)
		return d
	}
	l.counts.Add(key, count+1)
	d.Allowed = true
	d.Remaining = l.limit - count - 1
	return d
}

// RateLimit rejects clients over the limit with 429 and annotates every
// limited response with X-RateLimit-* headers. Paths in exempt bypass the limiter.
func RateLimit(l *RateLimiter, m *telemetry.Metrics, exempt ...string) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(exempt))
	for _, p := range exempt {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[RoutePath(r)] {
				next.ServeHTTP(w, r)
				return
			}

			d := l.Allow(ClientAddress(r))
			h := w.Header()
			h.Set(HeaderRateLimitLimit, strconv.Itoa(d.Limit))
			h.Set(HeaderRateLimitRemaining, strconv.Itoa(d.Remaining))
			h.Set(HeaderRateLimitReset, strconv.FormatInt(d.Reset.Unix(), 10))

			if !d.Allowed {
				m.RecordRateLimited()
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
				presenter.Error(w, r, apperr.RateLimited("Too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
