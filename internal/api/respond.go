// Package api defines the JSON envelope shared by every data endpoint and
// the mapping from failure kinds to HTTP status codes. The envelope lets the
// dashboard tell live data, fresh cache hits, stale fallbacks and hard
// failures apart.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mkelaidis/spyglass/internal/upstream"
)

// Response is the wire envelope for all data endpoints.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Cached  bool   `json:"cached,omitempty"`
	Stale   bool   `json:"stale,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WriteData writes a successful payload with its cache provenance. Empty
// payloads are legitimate successes and serialize as-is.
func WriteData(w http.ResponseWriter, log zerolog.Logger, data any, cached, stale bool) {
	writeJSON(w, log, http.StatusOK, Response{
		Success: true,
		Data:    data,
		Cached:  cached,
		Stale:   stale,
	})
}

// WriteValidationError rejects a request with a missing or malformed
// parameter. No cache or upstream interaction has happened at this point.
func WriteValidationError(w http.ResponseWriter, log zerolog.Logger, message string) {
	writeJSON(w, log, http.StatusBadRequest, Response{
		Success: false,
		Error:   message,
	})
}

// WriteNotFound rejects a request for a resource that does not exist, such
// as an unregistered cache store name.
func WriteNotFound(w http.ResponseWriter, log zerolog.Logger, message string) {
	writeJSON(w, log, http.StatusNotFound, Response{
		Success: false,
		Error:   message,
	})
}

// WriteError maps a failure to the envelope. Typed upstream errors surface
// their own message and reflect the upstream status when one is known;
// anything else is reported as a plain internal error so transport internals
// never leak to callers.
func WriteError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var upErr *upstream.Error
	if errors.As(err, &upErr) {
		status = statusFor(upErr)
		message = upErr.Provider + ": " + upErr.Message
	}

	writeJSON(w, log, status, Response{
		Success: false,
		Error:   message,
	})
}

func statusFor(err *upstream.Error) int {
	switch err.Kind {
	case upstream.KindNotConfigured:
		return http.StatusInternalServerError
	case upstream.KindRateLimited:
		return http.StatusTooManyRequests
	case upstream.KindStatus:
		if err.StatusCode >= 400 && err.StatusCode < 600 {
			return err.StatusCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, log zerolog.Logger, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
