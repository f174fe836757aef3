package registry

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// MaxNameLen is the longest accepted model name in bytes.
const MaxNameLen = 31

// ValidateName checks that name can identify a model. Names appear as the
// first field of the listing view, so whitespace is not allowed.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidIdentifier)
	}
	if len(name) > MaxNameLen {
		return fmt.Errorf("%w: name is %d bytes, max %d", ErrInvalidIdentifier, len(name), MaxNameLen)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: name is not valid UTF-8", ErrInvalidIdentifier)
	}
	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: name contains %q", ErrInvalidIdentifier, r)
		}
	}
	return nil
}
