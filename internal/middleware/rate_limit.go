package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	pkghttp "github.com/securepulses/gatekeeper/pkg/http"
)

// PerimeterRateLimitConfig holds the outer per-IP rate limit configuration.
// This is the blunt layer that shields the pipeline from floods; the precise
// sliding-window limiter inside the contact service handles per-client policy.
type PerimeterRateLimitConfig struct {
	RequestsPerMinute int
	IPConfig          *pkghttp.IPConfig
}

// RateLimitByIP creates a middleware that rate limits requests by client IP.
// The key comes from the trusted-proxy-aware extraction, never from a raw
// forwarding header: a direct client must not be able to pick its own bucket.
func RateLimitByIP(config PerimeterRateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return pkghttp.ExtractClientIP(r, config.IPConfig), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate_limit_exceeded","message":"Too many requests"}`))
		}),
	)
}
