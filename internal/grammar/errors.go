package grammar

import (
	"errors"
	"fmt"
)

// Error kinds callers key off of. ParseError wraps one of the parse kinds.
var (
	ErrUnknownRoot      = errors.New("unknown root")
	ErrInvalidDuration  = errors.New("invalid duration")
	ErrMalformedToken   = errors.New("malformed token")
	ErrMalformedGrid    = errors.New("malformed grid")
	ErrEmptyProgression = errors.New("empty progression")
	ErrInvalidDepth     = errors.New("invalid depth")
	ErrUnknownKey       = errors.New("unknown key")
	ErrGridOverflow     = errors.New("grid subdivision overflow")
)

// ParseError reports the offending token and why it was rejected.
type ParseError struct {
	Token  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Reason)
	}
	return fmt.Sprintf("%v: %s (token %q)", e.Err, e.Reason, e.Token)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErr(kind error, token, reason string) *ParseError {
	return &ParseError{Token: token, Reason: reason, Err: kind}
}

// Kind returns a stable snake_case identifier for err, used by the API and
// CLI when reporting failures.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrEmptyProgression):
		return "empty_progression"
	case errors.Is(err, ErrInvalidDepth):
		return "invalid_depth"
	case errors.Is(err, ErrUnknownKey):
		return "unknown_key"
	case errors.Is(err, ErrGridOverflow):
		return "grid_overflow"
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return "parse_error"
	}
	return "internal"
}
