package pages

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPath is returned when a string is not a valid page path.
var ErrInvalidPath = errors.New("invalid page path")

// Path is a validated, absolute page path such as "/" or "/docs/intro".
// The zero value is not a valid path; use ParsePath to construct one.
// Paths are immutable and comparable, so they can be used as map keys.
type Path struct {
	value string
}

// Root is the path "/".
var Root = Path{value: "/"}

// ParsePath validates s and returns it as a Path.
// A valid path starts with "/", contains no empty, "." or ".." segments
// (a single trailing slash is allowed) and no control characters.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	if s[0] != '/' {
		return Path{}, fmt.Errorf("%w: %q must start with a slash", ErrInvalidPath, s)
	}
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x20 || c == 0x7f {
			return Path{}, fmt.Errorf("%w: %q contains a control character at %d", ErrInvalidPath, s, i)
		}
	}
	if s == "/" {
		return Root, nil
	}
	segments := strings.Split(strings.TrimSuffix(s[1:], "/"), "/")
	for _, segment := range segments {
		switch segment {
		case "":
			return Path{}, fmt.Errorf("%w: %q contains an empty segment", ErrInvalidPath, s)
		case ".", "..":
			return Path{}, fmt.Errorf("%w: %q contains a relative segment %q", ErrInvalidPath, s, segment)
		}
	}
	return Path{value: s}, nil
}

// MustParsePath is like ParsePath but panics on invalid input.
// It is intended for constants and tests.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Path) String() string {
	return p.value
}

// IsZero reports whether p is the zero value.
func (p Path) IsZero() bool {
	return p.value == ""
}

// IsRoot reports whether p is "/".
func (p Path) IsRoot() bool {
	return p.value == "/"
}

// HasTrailingSlash reports whether p ends in a slash and is not the root.
func (p Path) HasTrailingSlash() bool {
	return len(p.value) > 1 && strings.HasSuffix(p.value, "/")
}

// Canonical strips the trailing slash of p, except for the root path.
// Stripping never renders a valid path invalid.
func (p Path) Canonical() Path {
	if !p.HasTrailingSlash() {
		return p
	}
	return Path{value: strings.TrimSuffix(p.value, "/")}
}

// Segments returns the slash separated segments of p without the leading
// slash. The root path has no segments.
func (p Path) Segments() []string {
	trimmed := strings.Trim(p.value, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// WithPrefix prepends prefix to p. The prefix is a canonical mount point
// without trailing slash, "" standing for the root.
func (p Path) WithPrefix(prefix string) (Path, error) {
	if prefix == "" {
		return p, nil
	}
	return ParsePath(prefix + p.value)
}

func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.value), nil
}

func (p *Path) UnmarshalText(text []byte) error {
	parsed, err := ParsePath(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
