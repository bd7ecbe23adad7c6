package adapter

import "fmt"

// BackendError is a failure reported by a data source's backend.
type BackendError struct {
	Code    int
	Message string
	Cause   error
}

// Error renders the backend failure as "[code] message".
func (e *BackendError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *BackendError) Unwrap() error {
	return e.Cause
}

// NewBackendError wraps a backend failure.
func NewBackendError(code int, message string, cause error) error {
	return &BackendError{Code: code, Message: message, Cause: cause}
}
