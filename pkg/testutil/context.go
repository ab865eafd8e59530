package testutil

import (
	"net/http"
	"time"

	"registrar/pkg/requestcontext"
)

// WithRequestID adds a request ID to the request context.
// This simulates what the request ID middleware would do.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	ctx := requestcontext.WithRequestID(req.Context(), requestID)
	return req.WithContext(ctx)
}

// WithRequestTime pins the request-scoped clock so tests get deterministic
// enrollment dates and timestamps.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	ctx := requestcontext.WithTime(req.Context(), now)
	return req.WithContext(ctx)
}

// WithClientMetadata adds client IP and user agent to the request context.
func WithClientMetadata(req *http.Request, clientIP, userAgent string) *http.Request {
	ctx := requestcontext.WithClientMetadata(req.Context(), clientIP, userAgent)
	return req.WithContext(ctx)
}
