// Package httputil provides shared helpers for JSON HTTP surfaces.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "registrar/pkg/domain-errors"
)

// ErrorResponse is the wire shape for error responses written by WriteError.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to its HTTP response. Internal errors are reported
// without a description; their details belong in the logs, not on the wire.
// Errors without a code are treated as internal.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: string(dErrors.CodeInternal)})
		return
	}

	resp := ErrorResponse{Error: string(de.Code)}
	if de.Code != dErrors.CodeInternal {
		resp.ErrorDescription = de.Message
	}
	WriteJSON(w, StatusForCode(de.Code), resp)
}

// StatusForCode returns the HTTP status for a domain error code. Handlers
// with their own response envelope use this directly instead of WriteError.
func StatusForCode(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeBadRequest, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusBadRequest
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
