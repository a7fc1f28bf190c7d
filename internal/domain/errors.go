package domain

import "errors"

// Common errors used throughout the application.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrBackend      = errors.New("backend error")
	ErrUnavailable  = errors.New("backend unavailable")
)

// Envelope is the response body of every srvadm list endpoint.
type Envelope[T any] struct {
	Result T `json:"result"`
}

// ErrorBody is the error response body returned by the srvadm backend.
type ErrorBody struct {
	Message string `json:"message"`
}
