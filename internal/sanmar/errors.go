package sanmar

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponse is returned when SanMar answers without any usable rows.
	ErrEmptyResponse = errors.New("sanmar: empty response")
	// ErrNoCredentials is returned before any call when the username or password is missing.
	ErrNoCredentials = errors.New("sanmar: credentials not configured")
)

// ServiceError is an application-level error reported inside a successful SOAP response
// (errorOccurred / ServiceMessage / ErrorMessage).
type ServiceError struct {
	Operation string
	Code      string
	Message   string
}

func (e *ServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("sanmar %s: %s (code %s)", e.Operation, e.Message, e.Code)
	}
	return fmt.Sprintf("sanmar %s: %s", e.Operation, e.Message)
}

// FaultError is a SOAP 1.1 fault.
type FaultError struct {
	Code    string
	Message string
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("sanmar soap fault %s: %s", e.Code, e.Message)
}
