package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"

	"golang.org/x/time/rate"

	"github.com/GregMSThompson/findash-backend/internal/response"
	"github.com/GregMSThompson/findash-backend/pkg/logger"
)

// maxLimiters bounds the limiter map; it is reset when exceeded.
const maxLimiters = 10000

// RateLimiter applies a token bucket per user, falling back to the remote
// address for unauthenticated requests.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	resp     response.ResponseHandler
}

func NewRateLimiter(perSecond float64, burst int, resp response.ResponseHandler) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		resp:     resp,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.limiters[key]
	if !ok {
		if len(rl.limiters) >= maxLimiters {
			rl.limiters = make(map[string]*rate.Limiter)
		}
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = l
	}
	return l
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := UID(r.Context())
		if key == "" {
			key = r.RemoteAddr
		}
		if !rl.limiter(key).Allow() {
			logger.FromContext(r.Context()).Warn("rate limit exceeded", "key", key)
			w.Header().Set("Retry-After", retryAfter(rl.rate))
			rl.resp.WriteError(w, r, http.StatusTooManyRequests, "rate_limited", "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func retryAfter(l rate.Limit) string {
	if l <= 0 {
		return "60"
	}
	return strconv.Itoa(int(math.Ceil(1 / float64(l))))
}
