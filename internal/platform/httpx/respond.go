// Package httpx provides the unified response envelope shared by every
// endpoint: success responses are {code:200,data:...}, error responses are
// {code,message,timestamp} with the HTTP status derived from the error kind.
package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/praxis-crm/praxis/internal/apperr"
)

// Envelope is the success wire shape.
type Envelope struct {
	Code int `json:"code"`
	Data any `json:"data,omitempty"`
}

// ErrorEnvelope is the error wire shape. Code is the application code, not
// the HTTP status.
type ErrorEnvelope struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK wraps a payload in the success envelope with HTTP 200.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Code: http.StatusOK, Data: data})
}

// NoContent emits an empty success envelope for void results.
func NoContent(w http.ResponseWriter) {
	JSON(w, http.StatusOK, Envelope{Code: http.StatusOK})
}

// Error normalizes err through apperr.From and writes the error envelope.
// Internal detail wrapped inside the error is never serialized.
func Error(w http.ResponseWriter, err error) {
	appErr := apperr.From(err)
	JSON(w, appErr.Kind.HTTPStatus(), ErrorEnvelope{
		Code:      appErr.Code,
		Message:   appErr.Message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// DecodeJSON decodes a JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
