package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/weatherdash/weatherdash/internal/api/models"
)

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration
}

var (
	// TriggerRateLimit applies to endpoints that fan out to the backend:
	// ingest, preset seeding and bulk refresh (10 req/min).
	TriggerRateLimit = RateLimitConfig{
		RequestLimit: 10,
		WindowLength: time.Minute,
	}

	// StandardRateLimit applies to everything else under /v1 (300 req/min).
	StandardRateLimit = RateLimitConfig{
		RequestLimit: 300,
		WindowLength: time.Minute,
	}
)

// RateLimitByIP limits requests per client IP. Behind a proxy, chi's RealIP
// must run first.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(math.Ceil(cfg.WindowLength.Seconds())))

	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			problem := models.NewTooManyRequests(GetRequestID(r.Context()), "Rate limit exceeded. Please try again later.")
			problem.Instance = r.URL.Path
			w.Header().Set("Retry-After", retryAfter)
			problem.Write(w)
		}),
	)
}
