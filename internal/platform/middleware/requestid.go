// Package middleware provides the HTTP middleware chain for the service.
//
// Request-scoped values (request ID, request time, client metadata) are
// stored through pkg/requestcontext so services can read them without
// importing net/http.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"registrar/pkg/requestcontext"
)

// RequestIDHeader is the header that carries the request ID in and out.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns every request an ID, honoring one supplied by the
// caller. The ID is echoed on the response so clients can correlate logs.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
