package registry

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"gpt-mini", true},
		{"/srv/models/a.gguf", true},
		{strings.Repeat("x", MaxNameLen), true},
		{strings.Repeat("x", MaxNameLen+1), false},
		{"", false},
		{"a b", false},
		{"a\nb", false},
		{"bad\xff", false},
	}
	for _, c := range cases {
		err := ValidateName(c.in)
		if (err == nil) != c.ok {
			t.Fatalf("ValidateName(%q) err=%v, want ok=%v", c.in, err, c.ok)
		}
		if err != nil && !IsInvalidIdentifier(err) {
			t.Fatalf("ValidateName(%q) returned untyped error %v", c.in, err)
		}
	}
}
