package application

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized is returned when no valid session backs a request.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested employee does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidCredentials is returned when login details do not match a user.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrSessionExpired is returned for tokens past their expiry.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrFetchFailed is returned when the remote directory cannot supply employees.
	ErrFetchFailed = errors.New("application: failed to fetch employees")
	// ErrStaleLoad is returned when a newer roster load superseded this one.
	ErrStaleLoad = errors.New("application: superseded by a newer load")
)

// FetchErrorMessage is the user-facing text recorded when a roster load fails.
const FetchErrorMessage = "Failed to fetch employees"

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records the first message reported for field.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, exists := v.FieldErrors[field]; exists {
		return
	}
	v.FieldErrors[field] = message
}

// errOrNil returns v as an error only when it holds field errors.
func (v *ValidationError) errOrNil() error {
	if v.HasErrors() {
		return v
	}
	return nil
}
