package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"modelcore/internal/audit"
	"modelcore/internal/gateway"
	"modelcore/internal/registry"
	"modelcore/pkg/types"
)

// statusClientClosed is logged, never written, when the caller hangs up
// before a response is ready.
const statusClientClosed = 499

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case registry.IsAlreadyLoaded(err):
		return http.StatusConflict
	case registry.IsNotFound(err):
		return http.StatusNotFound
	case registry.IsInvalidIdentifier(err):
		return http.StatusBadRequest
	case registry.IsClosed(err):
		return http.StatusServiceUnavailable
	case gateway.IsNotImplemented(err):
		return http.StatusNotImplemented
	case gateway.IsUpstream(err):
		return http.StatusBadGateway
	case audit.IsResourceExhausted(err):
		return http.StatusInsufficientStorage
	}
	return http.StatusInternalServerError
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
