// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"

	"gustito/backend/internal/domain"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
// Codigo carries the business-rule reason when there is one, so clients can
// branch without parsing the human message.
type APIError struct {
	Detail string `json:"detail"`
	Codigo string `json:"codigo,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// FromDomain maps a service-layer error to its HTTP status and envelope.
// Unexpected causes never reach the client; their opaque message does.
func FromDomain(err error) (int, *APIError) {
	var de *domain.Error
	status := http.StatusInternalServerError
	switch domain.KindOf(err) {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindBusinessRule:
		status = http.StatusConflict
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindTransient:
		status = http.StatusServiceUnavailable
	}

	out := &APIError{Detail: "Error interno del servidor"}
	if errors.As(err, &de) {
		out.Detail = de.Msg
		out.Codigo = string(de.Reason)
	}
	return status, out
}
