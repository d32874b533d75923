// Package v1 provides a page repository stored in a NATS JetStream
// key-value bucket.
//
// Every page is one key holding a JSON document. The key of a page is the
// configured prefix followed by the canonical page path, so with the prefix
// "pages" the page "/docs/intro" is stored under "pages/docs/intro".
package v1

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	json "github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/opencontainers/go-digest"
	slogcontext "github.com/veqryn/slog-context"

	"github.com/ao-apps/semanticcms-core-pages-union/pages"
	"github.com/ao-apps/semanticcms-core-pages-union/runtime"
)

const Realm = "repositories/nats"

var Type = runtime.NewVersionedType("nats", "v1")

// ErrKeyNotFound is returned by a Store for keys without a value.
var ErrKeyNotFound = errors.New("key not found")

// Spec describes a repository stored in the bucket Bucket of the NATS
// server at URL.
type Spec struct {
	Type   runtime.Type `json:"type"`
	URL    string       `json:"url,omitempty"`
	Bucket string       `json:"bucket"`
	Prefix string       `json:"prefix,omitempty"`
}

func (s *Spec) GetType() runtime.Type  { return s.Type }
func (s *Spec) SetType(t runtime.Type) { s.Type = t }

// Document is the stored form of a page.
type Document struct {
	Title      string            `json:"title,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	Content    []byte            `json:"content,omitempty"`
}

// Store is the part of a key-value bucket the repository reads from.
type Store interface {
	// Get returns the value of key, or an error matching ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
}

// Connection reports the state of the connection behind a Store.
type Connection interface {
	IsConnected() bool
}

// Repository reads pages from a Store.
type Repository struct {
	name   string
	prefix string
	store  Store
	conn   Connection
	drain  func() error
}

var (
	_ pages.Repository       = (*Repository)(nil)
	_ pages.ExistenceChecker = (*Repository)(nil)
	_ pages.HealthCheckable  = (*Repository)(nil)
)

// New creates a repository reading keys below prefix from store. conn may
// be nil when store has no connection to monitor.
func New(name, prefix string, store Store, conn Connection) *Repository {
	return &Repository{name: name, prefix: prefix, store: store, conn: conn}
}

// Connect connects to the NATS server in spec and opens its bucket.
// Close drains the connection.
func Connect(ctx context.Context, spec *Spec) (*Repository, error) {
	if spec.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	url := spec.URL
	if url == "" {
		url = nats.DefaultURL
	}

	conn, err := nats.Connect(url, nats.Name("pageunion"))
	if err != nil {
		return nil, fmt.Errorf("connecting to %s failed: %w", url, err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("get jetstream: %w", err)
	}
	kv, err := js.KeyValue(ctx, spec.Bucket)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("bucket %s not found: %w", spec.Bucket, err)
	}
	slogcontext.FromCtx(ctx).With(slog.String("realm", Realm)).Log(ctx, slog.LevelDebug, "opened bucket", slog.String("url", url), slog.String("bucket", spec.Bucket))
	repo := New(spec.Bucket, spec.Prefix, NewKeyValueStore(kv), conn)
	repo.drain = conn.Drain
	return repo, nil
}

// Close drains the connection opened by Connect. It does nothing for
// repositories created with New.
func (r *Repository) Close() error {
	if r.drain == nil {
		return nil
	}
	return r.drain()
}

// NewKeyValueStore adapts a JetStream key-value bucket to a Store.
func NewKeyValueStore(kv jetstream.KeyValue) Store {
	return &keyValueStore{kv: kv}
}

type keyValueStore struct {
	kv jetstream.KeyValue
}

func (s *keyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := s.kv.Get(ctx, key)
	switch {
	case errors.Is(err, jetstream.ErrKeyNotFound), errors.Is(err, jetstream.ErrKeyDeleted):
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	case errors.Is(err, jetstream.ErrInvalidKey):
		// paths with characters NATS does not allow in keys cannot be stored
		return nil, fmt.Errorf("%w: %s: %w", ErrKeyNotFound, key, err)
	case err != nil:
		return nil, err
	}
	return entry.Value(), nil
}

// Key returns the key the page at path is stored under.
func (r *Repository) Key(path pages.Path) string {
	return r.prefix + path.Canonical().String()
}

func (r *Repository) Describe() string {
	if r.prefix == "" {
		return "nats:" + r.name
	}
	return "nats:" + r.name + "/" + r.prefix
}

func (r *Repository) String() string {
	return r.Describe()
}

func (r *Repository) IsAvailable(ctx context.Context) bool {
	return r.CheckHealth(ctx) == nil
}

func (r *Repository) CheckHealth(context.Context) error {
	if r.conn != nil && !r.conn.IsConnected() {
		return fmt.Errorf("%s is not connected", r.Describe())
	}
	return nil
}

func (r *Repository) Exists(ctx context.Context, path pages.Path) (bool, error) {
	_, found, err := r.get(ctx, path)
	return found, err
}

func (r *Repository) GetPage(ctx context.Context, path pages.Path, level pages.CaptureLevel) (*pages.Page, bool, error) {
	data, found, err := r.get(ctx, path)
	if err != nil || !found {
		return nil, false, err
	}
	page := &pages.Page{Path: path, Repository: r.Describe()}
	if level == pages.CaptureLevelPage {
		return page, true, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("decoding page %s failed: %w", path, err)
	}
	page.Title = doc.Title
	page.Properties = doc.Properties
	page.Content = doc.Content
	page.Digest = digest.FromBytes(doc.Content)
	return page.Truncate(level), true, nil
}

func (r *Repository) get(ctx context.Context, path pages.Path) ([]byte, bool, error) {
	key := r.Key(path)
	data, err := r.store.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		slogcontext.FromCtx(ctx).With(slog.String("realm", Realm)).Log(ctx, slog.LevelDebug, "page not found", slog.String("key", key))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading key %s from %s failed: %w", key, r.Describe(), err)
	}
	return data, true, nil
}

// Encode returns the stored form of page.
func Encode(page *pages.Page) ([]byte, error) {
	return json.Marshal(&Document{
		Title:      page.Title,
		Properties: page.Properties,
		Content:    page.Content,
	})
}
