package testutil

import (
	"context"
	"net/http"

	id "profileguard/pkg/domain"
	"profileguard/pkg/requestcontext"
)

// WithAccount adds an account ID to the request context.
// This simulates what the auth middleware would do for authenticated requests.
// An invalid accountID leaves the request unauthenticated.
func WithAccount(req *http.Request, accountID string) *http.Request {
	parsed, err := id.ParseAccountID(accountID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithAccountID(req.Context(), parsed))
}

// WithAuth adds both account ID and session ID to the request context.
// This is the typical state for an authenticated request.
func WithAuth(req *http.Request, accountID, sessionID string) *http.Request {
	req = WithAccount(req, accountID)
	if sessionID != "" {
		req = req.WithContext(requestcontext.WithSessionID(req.Context(), sessionID))
	}
	return req
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
