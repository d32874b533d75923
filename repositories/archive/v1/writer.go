package v1

import (
	"bufio"
	"fmt"
	"io"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/opencontainers/go-digest"

	"github.com/ao-apps/semanticcms-core-pages-union/pages"
)

// Writer appends records to an archive.
// It is safe for concurrent use. Records become visible to repositories
// opened after Flush.
type Writer struct {
	mu  sync.Mutex
	w   *bufio.Writer
	now func() time.Time
}

// NewWriter returns a Writer appending to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w), now: time.Now}
}

// Put appends a new version of page. The page path is stored canonically.
func (w *Writer) Put(page *pages.Page) error {
	path := page.Path.Canonical().String()
	dgst := page.Digest
	if dgst == "" {
		dgst = digest.FromBytes(page.Content)
	}
	return w.append(&record{
		ID:         id(path),
		Timestamp:  w.now().UnixMilli(),
		Path:       path,
		Title:      page.Title,
		Properties: page.Properties,
		Content:    compress(page.Content),
		Digest:     dgst.String(),
	})
}

// Delete appends a record that hides all earlier versions of the page at
// path.
func (w *Writer) Delete(p pages.Path) error {
	path := p.Canonical().String()
	return w.append(&record{
		ID:        id(path),
		Timestamp: w.now().UnixMilli(),
		Path:      path,
		Deleted:   true,
	})
}

// Flush writes buffered records to the underlying writer.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Flush()
}

func (w *Writer) append(r *record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding record for %s failed: %w", r.Path, err)
	}
	if len(data) >= MaxRecordSize {
		return fmt.Errorf("%w: page %s", ErrRecordTooLong, r.Path)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.w.Write(data); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}
