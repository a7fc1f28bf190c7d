package srvadm

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bcnelson/srvadm-console/internal/domain"
)

// RequestError describes a failed call to the backend.
// StatusCode is 0 when no response was received.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	default:
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
}

// Unwrap returns the underlying transport or decoding error.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is maps the response status onto the domain errors.
func (e *RequestError) Is(target error) bool {
	switch target {
	case domain.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case domain.ErrConflict:
		return e.StatusCode == http.StatusConflict
	case domain.ErrInvalidInput:
		return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
	case domain.ErrBackend:
		return e.StatusCode >= 500
	case domain.ErrUnavailable:
		return e.StatusCode == 0
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode
	}
	return 0
}

// Method returns the HTTP method carried by err, or "".
func Method(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Method
	}
	return ""
}
