package errs

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is wrapped by every missing_credential OpError.
var ErrMissingCredential = errors.New("missing credential")

// Kind is a coarse-grained categorization for errors.
type Kind string

const (
	KindInvalidConfig     Kind = "invalid_config"
	KindMissingCredential Kind = "missing_credential"
	KindNotFound          Kind = "not_found"
)

// OpError wraps an underlying error with operation context and a kind.
type OpError struct {
	Op   string
	Kind Kind
	Path string // Optional: relevant file path
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err, or anything it wraps, is an OpError of kind.
func IsKind(err error, kind Kind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}
