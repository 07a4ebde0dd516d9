package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when every provider came back empty and the caller
// cannot work without the value.
var ErrNotFound = errors.New("not found")

// APIError is a caller-facing failure carrying the label of the component
// that produced it and an HTTP-style status.
type APIError struct {
	Message  string `json:"message"`
	Provider string `json:"provider"`
	Status   int    `json:"status"`
	Err      error  `json:"-"`
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s, %d): %v", e.Message, e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s (%s, %d)", e.Message, e.Provider, e.Status)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// InvalidParam builds a 400 APIError.
func InvalidParam(format string, args ...any) *APIError {
	return &APIError{Message: fmt.Sprintf(format, args...), Provider: "API", Status: http.StatusBadRequest}
}

// NotFound builds a 404 APIError wrapping ErrNotFound.
func NotFound(format string, args ...any) *APIError {
	return &APIError{Message: fmt.Sprintf(format, args...), Provider: "API", Status: http.StatusNotFound, Err: ErrNotFound}
}
