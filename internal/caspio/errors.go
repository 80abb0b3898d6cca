package caspio

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when Caspio rejects the bearer token twice in a row.
	ErrUnauthorized = errors.New("caspio: unauthorized")
	// ErrNotConfigured is returned when neither client credentials nor a token are set.
	ErrNotConfigured = errors.New("caspio: not configured")
)

// APIError is a non-2xx Caspio response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("caspio returned %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("caspio returned %d: %s", e.Status, e.Message)
}
