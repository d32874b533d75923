package pages

import (
	"fmt"
	"strings"
)

// CaptureLevel describes how much of a page must be materialized by a lookup.
// Levels are ordered: a repository asked for a level may always return more.
type CaptureLevel int

const (
	// CaptureLevelPage only establishes that the page exists and carries its
	// path.
	CaptureLevelPage CaptureLevel = iota
	// CaptureLevelMeta adds the title and the page properties.
	CaptureLevelMeta
	// CaptureLevelBody adds the full content and its digest.
	CaptureLevelBody
)

var captureLevelNames = []string{"page", "meta", "body"}

// CaptureLevelNames returns the textual names of all capture levels in
// ascending order.
func CaptureLevelNames() []string {
	return append([]string(nil), captureLevelNames...)
}

func (l CaptureLevel) String() string {
	if l < CaptureLevelPage || l > CaptureLevelBody {
		return fmt.Sprintf("CaptureLevel(%d)", int(l))
	}
	return captureLevelNames[l]
}

// Includes reports whether l materializes at least other.
func (l CaptureLevel) Includes(other CaptureLevel) bool {
	return l >= other
}

// ParseCaptureLevel parses the textual form produced by CaptureLevel.String.
func ParseCaptureLevel(s string) (CaptureLevel, error) {
	for i, name := range captureLevelNames {
		if strings.EqualFold(s, name) {
			return CaptureLevel(i), nil
		}
	}
	return 0, fmt.Errorf("invalid capture level %q, must be one of %s", s, strings.Join(captureLevelNames, ", "))
}
