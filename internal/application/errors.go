package application

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a resource with the same identity already exists.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrInvalidCredentials is returned when login credentials do not match.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrSessionExpired is returned when a presented session token has expired.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrSessionRevoked is returned when a presented session token was revoked.
	ErrSessionRevoked = errors.New("application: session revoked")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

// CollisionError reports that an event would double-book displays. The event
// is not saved. Message returns the wire text sent to the console.
type CollisionError struct {
	Displays []string
}

// Error implements the error interface.
func (c *CollisionError) Error() string {
	return "event time collision"
}

// Message renders the collision in the format the console parses, one line
// per affected display.
func (c *CollisionError) Message() string {
	if c == nil || len(c.Displays) == 0 {
		return "Event time collides. Event not saved."
	}
	if len(c.Displays) == 1 {
		return fmt.Sprintf("Event time collides for display %s. Event not saved.", c.Displays[0])
	}
	lines := make([]string, 0, len(c.Displays)+1)
	lines = append(lines, "Event conflicts detected:")
	for _, mac := range c.Displays {
		lines = append(lines, fmt.Sprintf("Event time collides for display %s. Event not saved.", mac))
	}
	return strings.Join(lines, "\n")
}

// WakeupWarning signals that an event was saved although no display wake is
// scheduled early enough to show it on time. It is a soft failure: callers
// persist the event and surface the text to the operator.
type WakeupWarning struct {
	Display string
	Text    string
}
