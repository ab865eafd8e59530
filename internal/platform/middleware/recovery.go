package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/httputil"
)

// Recovery converts handler panics into 500 responses and logs the stack.
// http.ErrAbortHandler is re-raised; net/http uses it to abort the response
// without logging.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.ErrorContext(r.Context(), "panic recovered",
						"error", fmt.Sprint(rec),
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "internal server error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
