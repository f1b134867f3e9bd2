package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/crucial707/studybuddy/internal/metrics"
	"golang.org/x/time/rate"
)

// idleBucketTTL is how long an untouched client bucket is kept.
const idleBucketTTL = 10 * time.Minute

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter throttles login and sign-up posts with one token bucket per client IP.
// Buckets idle for longer than idleBucketTTL are swept on the next new client.
type IPRateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     rate.Limit
	burst     int
	lastSweep time.Time

	now func() time.Time
}

// NewIPRateLimiter creates a per-IP limiter. limit is tokens per second; for N per minute
// use rate.Limit(float64(N)/60.0). burst is the bucket size.
func NewIPRateLimiter(limit rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		burst:   burst,
		now:     time.Now,
	}
}

func (l *IPRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[ip]
	if !ok {
		l.sweep(now)
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = now
	return b.lim.AllowN(now, 1)
}

// sweep drops idle buckets at most once per idleBucketTTL. Caller holds mu.
func (l *IPRateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < idleBucketTTL {
		return
	}
	l.lastSweep = now
	for ip, b := range l.buckets {
		if now.Sub(b.lastSeen) > idleBucketTTL {
			delete(l.buckets, ip)
		}
	}
}

// tracked returns the number of live buckets.
func (l *IPRateLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// clientIP is the peer address. Forwarding headers are client-controlled and ignored
// here; behind a trusted proxy the router installs chi's RealIP to rewrite RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// Middleware answers 429 once a client runs out of tokens. Only POSTs spend tokens, so
// the login and sign-up forms always render. Rejections count as "throttled" auth attempts.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}
		if !l.allow(clientIP(r)) {
			metrics.IncAuthAttempt(strings.Trim(r.URL.Path, "/"), "throttled")
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("Too many attempts. Please wait a minute and try again.\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AuthRateLimiter allows 10 login or sign-up posts per minute per IP, burst 5.
func AuthRateLimiter() *IPRateLimiter {
	return NewIPRateLimiter(rate.Limit(10.0/60.0), 5)
}
