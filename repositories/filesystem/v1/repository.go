// Package v1 provides a page repository reading pages from a file system.
//
// Every page is a YAML document. The page "/docs/intro" is read from
// "docs/intro.yaml" or, when that file does not exist, from
// "docs/intro/index.yaml". The root page is read from "index.yaml".
//
//	title: Introduction
//	properties:
//	  author: jane
//	content: |
//	  Welcome.
package v1

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/opencontainers/go-digest"
	slogcontext "github.com/veqryn/slog-context"
	"sigs.k8s.io/yaml"

	"github.com/ao-apps/semanticcms-core-pages-union/pages"
	"github.com/ao-apps/semanticcms-core-pages-union/runtime"
)

const (
	Realm = "repositories/filesystem"

	pageExtension = ".yaml"
	indexFile     = "index" + pageExtension
)

var Type = runtime.NewVersionedType("filesystem", "v1")

// Spec describes a repository rooted at a directory on the local disk.
type Spec struct {
	Type runtime.Type `json:"type"`
	Root string       `json:"root"`
}

func (s *Spec) GetType() runtime.Type  { return s.Type }
func (s *Spec) SetType(t runtime.Type) { s.Type = t }

// Document is the on-disk form of a page.
type Document struct {
	Title      string            `json:"title,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	Content    string            `json:"content,omitempty"`
}

// Repository reads pages from an fs.FS.
type Repository struct {
	name string
	fsys fs.FS
}

var (
	_ pages.Repository       = (*Repository)(nil)
	_ pages.ExistenceChecker = (*Repository)(nil)
	_ pages.HealthCheckable  = (*Repository)(nil)
)

// New creates a repository over fsys. name only shows up in descriptions.
func New(name string, fsys fs.FS) *Repository {
	return &Repository{name: name, fsys: fsys}
}

// NewFromSpec creates a repository reading from the directory in spec.
func NewFromSpec(spec *Spec) (*Repository, error) {
	if spec.Root == "" {
		return nil, fmt.Errorf("root directory is required")
	}
	return New(spec.Root, os.DirFS(spec.Root)), nil
}

func (r *Repository) Describe() string {
	return "filesystem:" + r.name
}

func (r *Repository) String() string {
	return r.Describe()
}

func (r *Repository) IsAvailable(ctx context.Context) bool {
	return r.CheckHealth(ctx) == nil
}

// CheckHealth verifies that the root of the file system is a readable
// directory.
func (r *Repository) CheckHealth(context.Context) error {
	info, err := fs.Stat(r.fsys, ".")
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", r.Describe(), err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", r.Describe())
	}
	return nil
}

func (r *Repository) Exists(ctx context.Context, p pages.Path) (bool, error) {
	_, err := r.locate(ctx, p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) GetPage(ctx context.Context, p pages.Path, level pages.CaptureLevel) (*pages.Page, bool, error) {
	name, err := r.locate(ctx, p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	page := &pages.Page{Path: p, Repository: r.Describe()}
	if level == pages.CaptureLevelPage {
		return page, true, nil
	}

	data, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return nil, false, fmt.Errorf("reading %s failed: %w", name, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("decoding %s failed: %w", name, err)
	}
	page.Title = doc.Title
	page.Properties = doc.Properties
	page.Content = []byte(doc.Content)
	page.Digest = digest.FromBytes(page.Content)
	return page.Truncate(level), true, nil
}

// Paths lists the paths of all pages in the file system, sorted.
func (r *Repository) Paths(ctx context.Context) ([]pages.Path, error) {
	var paths []pages.Path
	err := fs.WalkDir(r.fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(name, pageExtension) {
			return nil
		}
		p, err := pages.ParsePath(pathForFile(name))
		if err != nil {
			slogcontext.FromCtx(ctx).With(slog.String("realm", Realm)).Log(ctx, slog.LevelWarn, "skipping file", slog.String("file", name), slog.String("error", err.Error()))
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing pages of %s failed: %w", r.Describe(), err)
	}
	slices.SortFunc(paths, func(a, b pages.Path) int {
		return strings.Compare(a.String(), b.String())
	})
	return slices.CompactFunc(paths, func(a, b pages.Path) bool { return a == b }), nil
}

// locate returns the name of the file holding the page at p, or an error
// matching fs.ErrNotExist.
func (r *Repository) locate(ctx context.Context, p pages.Path) (string, error) {
	for _, name := range candidates(p) {
		info, err := fs.Stat(r.fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("checking %s failed: %w", name, err)
		}
		if info.IsDir() {
			continue
		}
		slogcontext.FromCtx(ctx).With(slog.String("realm", Realm)).Log(ctx, slog.LevelDebug, "located page", slog.String("path", p.String()), slog.String("file", name))
		return name, nil
	}
	return "", fs.ErrNotExist
}

func candidates(p pages.Path) []string {
	if p.IsRoot() {
		return []string{indexFile}
	}
	name := strings.Join(p.Segments(), "/")
	return []string{name + pageExtension, path.Join(name, indexFile)}
}

func pathForFile(name string) string {
	if name == indexFile {
		return "/"
	}
	if dir, ok := strings.CutSuffix(name, "/"+indexFile); ok {
		return "/" + dir
	}
	return "/" + strings.TrimSuffix(name, pageExtension)
}
