package backend

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL      = errors.New("backend: invalid url")
	ErrInvalidResponse = errors.New("backend: invalid response")
	ErrInvalidJSON     = errors.New("backend: invalid json")
	ErrTransport       = errors.New("backend: transport failure")
)

// BackendError is a non-2xx answer that carried a readable message.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend: %d: %s", e.Status, e.Message)
}
