package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/railmadad/portal/internal/metrics"
)

const idleBucketTTL = 10 * time.Minute

// RateLimiter hands out one token bucket per client key. Buckets idle for
// longer than idleBucketTTL are dropped on the next sweep.
type RateLimiter struct {
	name    string
	limit   rate.Limit
	burst   int
	mu      sync.Mutex
	buckets map[string]*bucket
	swept   time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perSecond requests per key with the given burst.
// name labels rejections in the rate-limit metric.
func NewRateLimiter(name string, perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		name:    name,
		limit:   rate.Limit(perSecond),
		burst:   burst,
		buckets: make(map[string]*bucket),
	}
}

func (l *RateLimiter) bucketFor(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.swept) > idleBucketTTL {
		l.swept = now
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > idleBucketTTL {
				delete(l.buckets, k)
			}
		}
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// wait reports how long the caller must back off, or zero when the request
// may proceed.
func (l *RateLimiter) wait(key string) time.Duration {
	now := time.Now()
	res := l.bucketFor(key, now).ReserveN(now, 1)
	if !res.OK() {
		return time.Minute
	}
	delay := res.DelayFrom(now)
	if delay > 0 {
		res.CancelAt(now)
	}
	return delay
}

func (l *RateLimiter) limitBy(next http.Handler, keyOf func(*http.Request) string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := keyOf(r)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		if delay := l.wait(key); delay > 0 {
			metrics.RateLimited.WithLabelValues(l.name).Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			writeError(w, http.StatusTooManyRequests, "RATE_LIMIT", "Too many requests, please slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IPRateLimit limits anonymous traffic per client address.
func IPRateLimit(l *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return l.limitBy(next, realIPFromRequest)
	}
}

// UserRateLimit limits authenticated traffic per token subject. Requests
// without a subject pass.
func UserRateLimit(l *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return l.limitBy(next, func(r *http.Request) string {
			return GetSubject(r.Context())
		})
	}
}

// realIPFromRequest prefers proxy headers over the socket address; chi's
// RealIP middleware usually rewrote RemoteAddr already.
func realIPFromRequest(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
