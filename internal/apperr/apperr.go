// Package apperr implements the error taxonomy of the build sequencer: every
// error carries a Kind and an origin stack that each layer extends as the
// error ascends, so the adapter at the boundary can render where a failure
// actually originated.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for propagation and HTTP status mapping.
type Kind string

const (
	KindConfigMissing    Kind = "config/missing"
	KindConfigNotConform Kind = "config/not-conform"
	KindValidationBody   Kind = "validation/body-invalid"
	KindValidationURL    Kind = "validation/url-invalid"
	KindDBNotReachable   Kind = "db/not-reachable"
	KindModelParseError  Kind = "model/parse-error"
	KindSolverInfinite   Kind = "solver/infinite-resolution"
	KindSolverNoRepair   Kind = "solver/no-repair-action"
)

// Error is the shared error type for every layer of the sequencer. Stack is
// ordered inner-to-outer: the first tag is the layer closest to the failure,
// later tags are added by callers as the error is returned up the stack.
type Error struct {
	Kind    Kind
	Stack   []string
	Message string
	cause   error
}

// New creates an Error rooted at the given origin stack.
func New(kind Kind, stack []string, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Stack:   append([]string(nil), stack...),
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap extends err's origin stack with tag, preserving Kind and Message. If
// err is not an *Error, it is wrapped as-is with an unknown kind so that the
// stack is still meaningful to the caller rendering the response.
func Wrap(tag string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		wrapped := &Error{
			Kind:    e.Kind,
			Stack:   append(append([]string(nil), e.Stack...), tag),
			Message: e.Message,
			cause:   e.cause,
		}
		return wrapped
	}
	return &Error{
		Kind:    "internal",
		Stack:   []string{tag},
		Message: err.Error(),
		cause:   err,
	}
}

func (e *Error) Error() string {
	if len(e.Stack) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", strings.Join(e.Stack, "."), e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// HTTPStatus maps a Kind to the status code the adapter should render.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidationBody, KindValidationURL:
		return 400
	case KindDBNotReachable:
		return 503
	case KindConfigMissing, KindConfigNotConform:
		return 500
	case KindModelParseError, KindSolverInfinite, KindSolverNoRepair:
		return 500
	default:
		return 500
	}
}
