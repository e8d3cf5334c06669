package middleware

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	h "eventboard/internal/delivery/http/helpers"
)

// RateLimiter gates requests per client IP. The redis-backed limiter uses a
// fixed window shared across instances; without redis it falls back to
// per-process token buckets.
type RateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewRateLimiter allows limit requests per window per client IP. rdb may be
// nil.
func NewRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		rdb:     rdb,
		limit:   limit,
		window:  window,
		buckets: make(map[string]*rate.Limiter),
	}
}

// Wrap applies the limit to the handler. Over-limit requests get 429; a
// failing redis lets the request through rather than taking the API down.
func (l *RateLimiter) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)
		allowed, err := l.allow(r, ip)
		if err == nil && !allowed {
			h.WriteJSONError(w, http.StatusTooManyRequests, h.ErrCodeTooMany, "rate limit exceeded")
			return
		}
		next(w, r)
	}
}

func (l *RateLimiter) allow(r *http.Request, ip string) (bool, error) {
	if l.rdb == nil {
		return l.bucket(ip).Allow(), nil
	}
	ctx := r.Context()
	key := fmt.Sprintf("ratelimit:%s:%d", ip, time.Now().Unix()/int64(l.window.Seconds()))
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return true, err
	}
	if count == 1 {
		l.rdb.Expire(ctx, key, l.window)
	}
	return count <= int64(l.limit), nil
}

func (l *RateLimiter) bucket(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.buckets[ip]; ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Limit(float64(l.limit)/l.window.Seconds()), l.limit)
	l.buckets[ip] = lim
	return lim
}

// ClientIP extracts the client address, preferring X-Forwarded-For.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for i := 0; i < len(fwd); i++ {
			if fwd[i] == ',' {
				return fwd[:i]
			}
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
