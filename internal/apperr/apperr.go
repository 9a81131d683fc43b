// Package apperr defines the error taxonomy shared by the validator, the
// Graph collaborators and the HTTP surface.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors. Wrap them with fmt.Errorf("...: %w", ErrX) and classify
// with errors.Is.
var (
	ErrConfiguration     = errors.New("configuration error")
	ErrAuth              = errors.New("authentication failed")
	ErrNotFound          = errors.New("not found")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrRule              = errors.New("invalid rule")
	ErrAICorrector       = errors.New("ai corrector failed")
	ErrBadRequest        = errors.New("bad request")
)

// OpError adds the failing operation to an underlying error.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }

// Wrap returns err annotated with op and kind. A nil err yields nil.
func Wrap(op string, kind error, err error) error {
	if err == nil {
		return nil
	}
	if kind != nil && !errors.Is(err, kind) {
		err = fmt.Errorf("%w: %w", kind, err)
	}
	return &OpError{Op: op, Err: err}
}

// TypeName maps err onto the public error type reported to callers.
func TypeName(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "ConfigurationError"
	case errors.Is(err, ErrAuth):
		return "AuthError"
	case errors.Is(err, ErrNotFound):
		return "NotFoundError"
	case errors.Is(err, ErrUnsupportedFormat):
		return "UnsupportedFormatError"
	case errors.Is(err, ErrRule):
		return "ValidationRuleError"
	case errors.Is(err, ErrAICorrector):
		return "AICorrectorError"
	case errors.Is(err, ErrBadRequest):
		return "BadRequestError"
	default:
		return "InternalError"
	}
}

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrBadRequest) || errors.Is(err, ErrUnsupportedFormat)
}
