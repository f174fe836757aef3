package registry

import "errors"

var (
	// ErrAlreadyLoaded is returned by Load when the name is taken and
	// replacement was not requested.
	ErrAlreadyLoaded = errors.New("model already loaded")
	// ErrNotFound is returned when no record matches a name.
	ErrNotFound = errors.New("model not found")
	// ErrInvalidIdentifier is returned for empty, oversized or malformed names.
	ErrInvalidIdentifier = errors.New("invalid model identifier")
	// ErrClosed is returned by Load after Close.
	ErrClosed = errors.New("registry closed")
)

// IsAlreadyLoaded reports whether err indicates a duplicate load.
func IsAlreadyLoaded(err error) bool { return errors.Is(err, ErrAlreadyLoaded) }

// IsNotFound reports whether err indicates a missing model.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidIdentifier reports whether err indicates a rejected name.
func IsInvalidIdentifier(err error) bool { return errors.Is(err, ErrInvalidIdentifier) }

// IsClosed reports whether err indicates the registry was torn down.
func IsClosed(err error) bool { return errors.Is(err, ErrClosed) }
