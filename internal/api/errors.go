package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/gray-logic-audio/internal/sound"
)

// Error represents a structured error response. SoundCode carries the
// engine outcome when a command failed.
type Error struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	SoundCode string `json:"sound_code,omitempty"`
}

// Common error codes.
const (
	ErrCodeBadRequest         = "bad_request"
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodeInternal           = "internal_error"
	ErrCodeValidation         = "validation_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeConflict writes a 409 error response.
func writeConflict(w http.ResponseWriter, message string) {
	writeError(w, http.StatusConflict, ErrCodeConflict, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeServiceUnavailable writes a 503 error response.
func writeServiceUnavailable(w http.ResponseWriter, message string) {
	writeError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message)
}

// statusForCode maps a failed sound.Code to an HTTP status and error code.
func statusForCode(code sound.Code) (int, string) {
	err := code.Err()
	switch {
	case errors.Is(err, sound.ErrDoesNotExist), errors.Is(err, sound.ErrMissingMixerGroup):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, sound.ErrAlreadyExists), errors.Is(err, sound.ErrAlreadySubscribed):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, sound.ErrNotInitialized):
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable
	default:
		return http.StatusBadRequest, ErrCodeValidation
	}
}

// writeCode writes the error response for a failed command.
func writeCode(w http.ResponseWriter, code sound.Code) {
	status, errCode := statusForCode(code)
	writeJSON(w, status, Error{
		Status:    status,
		Code:      errCode,
		Message:   code.Err().Error(),
		SoundCode: code.String(),
	})
}
