package rules

import (
	"errors"
	"fmt"
)

// ErrorKind classifies setup and use-case failures.
type ErrorKind int

const (
	ErrorKindInvalidState ErrorKind = iota
	ErrorKindInvalidConfiguration
	ErrorKindUnsupportedConfiguration
	ErrorKindRange
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindInvalidState:
		return "InvalidState"
	case ErrorKindInvalidConfiguration:
		return "InvalidConfiguration"
	case ErrorKindUnsupportedConfiguration:
		return "UnsupportedConfiguration"
	case ErrorKindRange:
		return "RangeError"
	default:
		return "unknown"
	}
}

// Error is returned when a game rule rejects an operation.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// InvalidState returns an error for an operation attempted in the wrong game state.
func InvalidState(format string, args ...interface{}) error {
	return newError(ErrorKindInvalidState, format, args...)
}

func isKind(err error, kind ErrorKind) bool {
	var ruleErr *Error
	if !errors.As(err, &ruleErr) {
		return false
	}
	return ruleErr.Kind == kind
}

func IsInvalidState(err error) bool {
	return isKind(err, ErrorKindInvalidState)
}

func IsInvalidConfiguration(err error) bool {
	return isKind(err, ErrorKindInvalidConfiguration)
}

func IsUnsupportedConfiguration(err error) bool {
	return isKind(err, ErrorKindUnsupportedConfiguration)
}

func IsRangeError(err error) bool {
	return isKind(err, ErrorKindRange)
}
