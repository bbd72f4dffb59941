// Package requesttime pins one "now" per HTTP request so stored references,
// audit events and prompts of the same request share a timestamp.
package requesttime

import (
	"net/http"
	"time"

	"profileguard/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
