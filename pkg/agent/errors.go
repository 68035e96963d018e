package agent

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	ErrIdentityMissing       ErrorKind = "identity_missing"
	ErrNoActiveInterview     ErrorKind = "no_active_interview"
	ErrMalformedMetadata     ErrorKind = "malformed_metadata"
	ErrGenerationRejected    ErrorKind = "generation_rejected"
	ErrGenerationUnreachable ErrorKind = "generation_unreachable"
	ErrPersistenceFailure    ErrorKind = "persistence_failure"
	ErrSessionClosed         ErrorKind = "session_closed"
	ErrBadInput              ErrorKind = "bad_input"
)

// Error is the canonical failure returned by every tool operation. Kind is
// stable and machine-readable; Detail carries diagnostic payloads such as a
// rejecting endpoint's response body.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if strings.TrimSpace(e.Detail) == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Detail)
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of err, or "" when err carries no *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e.Kind
	}
	return ""
}
