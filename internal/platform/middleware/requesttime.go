package middleware

import (
	"net/http"
	"time"

	"registrar/pkg/requestcontext"
)

// RequestTime captures the current time at the start of the request and
// stores it in the context. All operations within a single request share the
// same "now", so enrollment dates, timestamps, and audit events agree.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
