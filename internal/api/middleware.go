package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// SecurityLoggingMiddleware logs requests without exposing sensitive
// data; seeds and tokens never appear in request logs.
func (s *Server) SecurityLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Printf(
			"request method=%s path=%s status=%d duration=%v request_id=%s remote_addr=%s bytes_written=%d",
			r.Method,
			r.URL.Path,
			ww.Status(),
			time.Since(start),
			requestID,
			r.RemoteAddr,
			ww.BytesWritten(),
		)
	})
}

// rateLimits keeps one token bucket per key. Keys are user IDs when a
// request identifies one, remote addresses otherwise. Buckets are
// never evicted; key cardinality is bounded by the active user count.
type rateLimits struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

func newRateLimits(perMinute int) *rateLimits {
	return &rateLimits{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   perMinute,
	}
}

// allow reports whether the key has budget for one more request.
func (rl *rateLimits) allow(key string) bool {
	rl.mu.Lock()
	lim, ok := rl.buckets[key]
	if !ok {
		lim = rate.NewLimiter(rl.limit, rl.burst)
		rl.buckets[key] = lim
	}
	rl.mu.Unlock()
	return lim.Allow()
}
