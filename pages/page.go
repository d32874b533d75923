package pages

import (
	"maps"

	"github.com/opencontainers/go-digest"
)

// Page is the result of a repository lookup.
// Fields beyond Path are only populated when the requested CaptureLevel
// includes them.
type Page struct {
	Path       Path              `json:"path"`
	Title      string            `json:"title,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	Content    []byte            `json:"content,omitempty"`
	Digest     digest.Digest     `json:"digest,omitempty"`
	// Repository is the description of the repository the page was read from.
	Repository string `json:"repository,omitempty"`
}

// Truncate returns a copy of the page reduced to the fields the given
// capture level materializes. Stores that always read whole pages use it to
// honor the requested level.
func (p *Page) Truncate(level CaptureLevel) *Page {
	if p == nil {
		return nil
	}
	out := &Page{Path: p.Path, Repository: p.Repository}
	if level.Includes(CaptureLevelMeta) {
		out.Title = p.Title
		out.Properties = maps.Clone(p.Properties)
	}
	if level.Includes(CaptureLevelBody) {
		out.Content = append([]byte(nil), p.Content...)
		out.Digest = p.Digest
		if out.Digest == "" && len(out.Content) > 0 {
			out.Digest = digest.FromBytes(out.Content)
		}
	}
	return out
}
