package patients

import (
	"errors"
	"fmt"
)

// Validation errors for preload requests.
var (
	ErrEmptyKey          = errors.New("variant key is required")
	ErrUnknownTechnology = errors.New("unknown technology")
	ErrUnknownFilter     = errors.New("unknown filter")
)

// NetworkError is a failed preload: a transport failure, a non-2xx status,
// or an error body from the server.
type NetworkError struct {
	Technology Technology
	Key        string
	Status     int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("preload %s %s: %v", e.Technology, e.Key, e.Err)
	case e.Message != "":
		return fmt.Sprintf("preload %s %s: %s", e.Technology, e.Key, e.Message)
	default:
		return fmt.Sprintf("preload %s %s: unexpected status %d", e.Technology, e.Key, e.Status)
	}
}

// Unwrap returns the transport error, if any.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown inline in the popup.
func (e *NetworkError) UserMessage() string {
	if e.Message != "" {
		return "Error loading patient data: " + e.Message
	}
	return "Error loading patient data."
}
