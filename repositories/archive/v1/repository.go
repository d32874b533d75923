package v1

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/opencontainers/go-digest"
	slogcontext "github.com/veqryn/slog-context"

	"github.com/ao-apps/semanticcms-core-pages-union/pages"
	"github.com/ao-apps/semanticcms-core-pages-union/runtime"
)

const Realm = "repositories/archive"

var Type = runtime.NewVersionedType("archive", "v1")

// Spec describes a repository reading from the archive file at File.
type Spec struct {
	Type runtime.Type `json:"type"`
	File string       `json:"file"`
}

func (s *Spec) GetType() runtime.Type  { return s.Type }
func (s *Spec) SetType(t runtime.Type) { s.Type = t }

// location is the position of the newest record of a path.
type location struct {
	offset int64
	length int
}

// Repository serves the newest version of every page of an archive.
type Repository struct {
	name string

	mu     sync.RWMutex
	file   *os.File
	closed bool
	index  map[string]location
}

var (
	_ pages.Repository       = (*Repository)(nil)
	_ pages.ExistenceChecker = (*Repository)(nil)
	_ pages.HealthCheckable  = (*Repository)(nil)
)

// Open opens the archive at name and indexes it.
// Corrupt lines are skipped with a warning; a record that is too long
// fails the whole archive.
func Open(ctx context.Context, name string) (*Repository, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening archive failed: %w", err)
	}
	index, err := scan(ctx, file)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("indexing archive %s failed: %w", name, err)
	}
	slogcontext.FromCtx(ctx).With(slog.String("realm", Realm)).Log(ctx, slog.LevelDebug, "opened archive", slog.String("file", name), slog.Int("pages", len(index)))
	return &Repository{name: name, file: file, index: index}, nil
}

// NewFromSpec opens the archive named in spec.
func NewFromSpec(ctx context.Context, spec *Spec) (*Repository, error) {
	if spec.File == "" {
		return nil, fmt.Errorf("archive file is required")
	}
	return Open(ctx, spec.File)
}

func scan(ctx context.Context, r io.Reader) (map[string]location, error) {
	logger := slogcontext.FromCtx(ctx).With(slog.String("realm", Realm))
	index := make(map[string]location)

	// consumed counts the bytes the scanner has moved past, line terminators
	// included, so offsets stay right for "\r\n" as well as "\n".
	var consumed int64
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxRecordSize+1)
	scanner.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		advance, token, err := bufio.ScanLines(data, atEOF)
		consumed += int64(advance)
		return advance, token, err
	})

	var offset int64
	for line := 1; scanner.Scan(); line++ {
		data := scanner.Bytes()
		start := offset
		offset = consumed

		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}
		h, err := decodeHeader(data)
		if err != nil {
			logger.Log(ctx, slog.LevelWarn, "skipping record", slog.Int("line", line), slog.String("error", err.Error()))
			continue
		}
		if h.Deleted {
			delete(index, h.Path)
			continue
		}
		index[h.Path] = location{offset: start, length: len(data)}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, ErrRecordTooLong
		}
		return nil, err
	}
	return index, nil
}

func (r *Repository) Describe() string {
	return "archive:" + r.name
}

func (r *Repository) String() string {
	return r.Describe()
}

// Len returns the number of live pages in the archive.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.index)
}

// Close releases the archive file. Lookups after Close fail with ErrClosed.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

func (r *Repository) IsAvailable(ctx context.Context) bool {
	return r.CheckHealth(ctx) == nil
}

func (r *Repository) CheckHealth(context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrClosed
	}
	if _, err := r.file.Stat(); err != nil {
		return fmt.Errorf("cannot access %s: %w", r.Describe(), err)
	}
	return nil
}

func (r *Repository) Exists(_ context.Context, p pages.Path) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return false, ErrClosed
	}
	_, ok := r.index[p.Canonical().String()]
	return ok, nil
}

func (r *Repository) GetPage(ctx context.Context, p pages.Path, level pages.CaptureLevel) (*pages.Page, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, false, ErrClosed
	}

	loc, ok := r.index[p.Canonical().String()]
	if !ok {
		return nil, false, nil
	}
	page := &pages.Page{Path: p, Repository: r.Describe()}
	if level == pages.CaptureLevelPage {
		return page, true, nil
	}

	data := make([]byte, loc.length)
	if _, err := r.file.ReadAt(data, loc.offset); err != nil {
		return nil, false, fmt.Errorf("reading record of %s failed: %w", p, err)
	}
	rec, err := decodeRecord(data)
	if err != nil {
		return nil, false, fmt.Errorf("decoding record of %s failed: %w", p, err)
	}
	page.Title = rec.Title
	page.Properties = rec.Properties
	if level.Includes(pages.CaptureLevelBody) {
		content, err := decompress(rec.Content)
		if err != nil {
			return nil, false, fmt.Errorf("decoding content of %s failed: %w", p, err)
		}
		page.Content = content
		if rec.Digest != "" {
			dgst, err := digest.Parse(rec.Digest)
			if err != nil {
				return nil, false, fmt.Errorf("%w: digest of %s: %w", ErrCorruptRecord, p, err)
			}
			if dgst != dgst.Algorithm().FromBytes(content) {
				return nil, false, fmt.Errorf("%w: content of %s does not match digest %s", ErrCorruptRecord, p, dgst)
			}
			page.Digest = dgst
		}
	}
	slogcontext.FromCtx(ctx).With(slog.String("realm", Realm)).Log(ctx, slog.LevelDebug, "read page", slog.String("path", p.String()), slog.Int64("offset", loc.offset))
	return page, true, nil
}
