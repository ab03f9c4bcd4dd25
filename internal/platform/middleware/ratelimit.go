package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimit limits each client IP to perMinute requests in a sliding one-minute
// window. A non-positive limit disables limiting. Place it after chi's RealIP.
func RateLimit(perMinute int, onLimited http.HandlerFunc) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	opts := []httprate.Option{httprate.WithKeyFuncs(httprate.KeyByIP)}
	if onLimited != nil {
		opts = append(opts, httprate.WithLimitHandler(onLimited))
	}
	return httprate.Limit(perMinute, time.Minute, opts...)
}
