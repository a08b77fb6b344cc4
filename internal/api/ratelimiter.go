package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter meters the routes that run the engine or parse uploads.
type rateLimiter interface {
	Allow() bool
}

// planBudget is a token bucket shared by all metered routes.
type planBudget struct {
	bucket *rate.Limiter
}

func newPlanBudget(runsPerSecond float64, burst int) *planBudget {
	limit := rate.Limit(runsPerSecond)
	if runsPerSecond <= 0 {
		limit = 1
	}
	return &planBudget{bucket: rate.NewLimiter(limit, max(burst, 1))}
}

func (b *planBudget) Allow() bool {
	return b.bucket.Allow()
}

// retryAfter is the refill time of one token, rounded up to whole seconds.
func retryAfter(runsPerSecond float64) time.Duration {
	if runsPerSecond <= 0 {
		return time.Second
	}
	secs := math.Ceil(1 / runsPerSecond)
	return time.Duration(secs) * time.Second
}

// metered rejects a planning request with 429 and a Retry-After header once
// the budget is spent.
func metered(limiter rateLimiter, wait time.Duration, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.Header().Set("Retry-After", strconv.Itoa(int(wait/time.Second)))
			writeError(w, http.StatusTooManyRequests, "Too many planning requests",
				"planning budget exhausted", "Retry after the interval in the Retry-After header")
			return
		}
		next.ServeHTTP(w, r)
	})
}
