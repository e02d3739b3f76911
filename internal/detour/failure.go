package detour

import (
	"context"
	"encoding/json"
	"errors"
	"net"
)

// FailureKind categorizes a failed collaborator call (price lookup,
// geolocation, advisory text) for display. None of them is fatal.
type FailureKind string

const (
	FailurePermissionDenied FailureKind = "permission-denied"
	FailureTimeout          FailureKind = "timeout"
	FailureUnsupported      FailureKind = "unsupported-capability"
	FailureParse            FailureKind = "parse-failure"
	FailureGeneric          FailureKind = "generic-failure"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnsupported      = errors.New("capability not supported")
	ErrParse            = errors.New("unable to parse")
)

// Failure is a classified collaborator error.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	return string(f.Kind) + ": " + f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// NewFailure wraps err with its classification. It returns nil for a nil
// error and err itself when it is already a Failure.
func NewFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Kind: Classify(err), Err: err}
}

// Classify maps an error returned by a collaborator to a FailureKind.
func Classify(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}

	var netErr net.Error
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return FailurePermissionDenied
	case errors.Is(err, ErrUnsupported):
		return FailureUnsupported
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return FailureTimeout
	case errors.Is(err, ErrParse), errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return FailureParse
	}
	return FailureGeneric
}
