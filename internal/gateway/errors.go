package gateway

import "errors"

var (
	// ErrNotImplemented is returned by the default compute step.
	ErrNotImplemented = errors.New("inference not implemented")
	// ErrUpstream signals a failed call to an external compute backend.
	ErrUpstream = errors.New("compute backend failed")
)

// IsNotImplemented reports whether err comes from an unimplemented compute step.
func IsNotImplemented(err error) bool { return errors.Is(err, ErrNotImplemented) }

// IsUpstream reports whether err comes from an external compute backend.
func IsUpstream(err error) bool { return errors.Is(err, ErrUpstream) }
