// Package v1 provides a page repository held entirely in memory.
// It is mostly useful for tests and for small, generated page sets that are
// layered over persistent repositories.
package v1

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/opencontainers/go-digest"
	slogcontext "github.com/veqryn/slog-context"

	"github.com/ao-apps/semanticcms-core-pages-union/pages"
	"github.com/ao-apps/semanticcms-core-pages-union/runtime"
)

const Realm = "repositories/inmemory"

var Type = runtime.NewVersionedType("inmemory", "v1")

// Spec describes an in-memory repository and its initial pages.
type Spec struct {
	Type  runtime.Type `json:"type"`
	Name  string       `json:"name,omitempty"`
	Pages []PageSpec   `json:"pages,omitempty"`
}

type PageSpec struct {
	Path       string            `json:"path"`
	Title      string            `json:"title,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	Content    string            `json:"content,omitempty"`
}

func (s *Spec) GetType() runtime.Type  { return s.Type }
func (s *Spec) SetType(t runtime.Type) { s.Type = t }

// Repository is a concurrency safe in-memory page repository.
type Repository struct {
	name string

	mu    sync.RWMutex
	pages map[pages.Path]*pages.Page
}

var (
	_ pages.Repository       = (*Repository)(nil)
	_ pages.ExistenceChecker = (*Repository)(nil)
)

// New creates an empty repository. name only shows up in descriptions.
func New(name string) *Repository {
	return &Repository{
		name:  name,
		pages: make(map[pages.Path]*pages.Page),
	}
}

// NewFromSpec creates a repository holding the pages listed in spec.
func NewFromSpec(spec *Spec) (*Repository, error) {
	repo := New(spec.Name)
	for _, p := range spec.Pages {
		path, err := pages.ParsePath(p.Path)
		if err != nil {
			return nil, err
		}
		repo.Put(&pages.Page{
			Path:       path,
			Title:      p.Title,
			Properties: p.Properties,
			Content:    []byte(p.Content),
		})
	}
	return repo, nil
}

// Put stores a copy of page under its canonical path, replacing any page
// stored there before.
func (r *Repository) Put(page *pages.Page) {
	stored := &pages.Page{
		Path:       page.Path.Canonical(),
		Title:      page.Title,
		Properties: maps.Clone(page.Properties),
		Content:    slices.Clone(page.Content),
		Digest:     page.Digest,
	}
	if stored.Digest == "" {
		stored.Digest = digest.FromBytes(stored.Content)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages[stored.Path] = stored
}

// Delete removes the page at path, if any.
func (r *Repository) Delete(path pages.Path) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pages, path.Canonical())
}

// Len returns the number of stored pages.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pages)
}

func (r *Repository) Describe() string {
	return "inmemory:" + r.name
}

func (r *Repository) String() string {
	return r.Describe()
}

func (r *Repository) IsAvailable(context.Context) bool {
	return true
}

func (r *Repository) Exists(_ context.Context, path pages.Path) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.pages[path.Canonical()]
	return ok, nil
}

func (r *Repository) GetPage(ctx context.Context, path pages.Path, level pages.CaptureLevel) (*pages.Page, bool, error) {
	r.mu.RLock()
	stored, ok := r.pages[path.Canonical()]
	r.mu.RUnlock()
	if !ok {
		slogcontext.FromCtx(ctx).With(slog.String("realm", Realm)).Log(ctx, slog.LevelDebug, "page not found", slog.String("repository", r.Describe()), slog.String("path", path.String()))
		return nil, false, nil
	}
	page := stored.Truncate(level)
	page.Path = path
	page.Repository = r.Describe()
	return page, true, nil
}
