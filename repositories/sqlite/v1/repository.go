// Package v1 provides a page repository stored in a SQLite database.
package v1

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	json "github.com/goccy/go-json"
	"github.com/opencontainers/go-digest"
	slogcontext "github.com/veqryn/slog-context"

	_ "modernc.org/sqlite"

	"github.com/ao-apps/semanticcms-core-pages-union/pages"
	"github.com/ao-apps/semanticcms-core-pages-union/runtime"
)

const Realm = "repositories/sqlite"

var Type = runtime.NewVersionedType("sqlite", "v1")

// Spec describes a repository stored in the SQLite database at DSN.
type Spec struct {
	Type runtime.Type `json:"type"`
	DSN  string       `json:"dsn"`
}

func (s *Spec) GetType() runtime.Type  { return s.Type }
func (s *Spec) SetType(t runtime.Type) { s.Type = t }

// Repository implements pages.Repository using SQLite.
type Repository struct {
	dsn string
	db  *sql.DB
}

var (
	_ pages.Repository       = (*Repository)(nil)
	_ pages.ExistenceChecker = (*Repository)(nil)
	_ pages.HealthCheckable  = (*Repository)(nil)
)

// Open opens the database at dsn and creates the pages table if it does
// not exist yet.
func Open(ctx context.Context, dsn string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dsn == ":memory:" {
		// every connection would see its own empty database otherwise
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{dsn: dsn, db: db}
	if err := repo.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	slogcontext.FromCtx(ctx).With(slog.String("realm", Realm)).Log(ctx, slog.LevelDebug, "opened database", slog.String("dsn", dsn))
	return repo, nil
}

// NewFromSpec opens the database named in spec.
func NewFromSpec(ctx context.Context, spec *Spec) (*Repository, error) {
	if spec.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	return Open(ctx, spec.DSN)
}

func (r *Repository) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		path TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		properties JSON NOT NULL DEFAULT '{}',
		content BLOB,
		digest TEXT NOT NULL DEFAULT '',
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Describe() string {
	return "sqlite:" + r.dsn
}

func (r *Repository) String() string {
	return r.Describe()
}

func (r *Repository) IsAvailable(ctx context.Context) bool {
	return r.CheckHealth(ctx) == nil
}

func (r *Repository) CheckHealth(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("cannot reach %s: %w", r.Describe(), err)
	}
	return nil
}

// Put inserts or replaces page.
func (r *Repository) Put(ctx context.Context, page *pages.Page) error {
	properties, err := json.Marshal(page.Properties)
	if err != nil {
		return fmt.Errorf("failed to marshal properties: %w", err)
	}
	if page.Properties == nil {
		properties = []byte("{}")
	}
	dgst := page.Digest
	if dgst == "" {
		dgst = digest.FromBytes(page.Content)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pages (path, title, properties, content, digest, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(path) DO UPDATE SET
			title = excluded.title,
			properties = excluded.properties,
			content = excluded.content,
			digest = excluded.digest,
			updated_at = excluded.updated_at
	`, page.Path.Canonical().String(), page.Title, string(properties), page.Content, dgst.String())
	if err != nil {
		return fmt.Errorf("failed to save page %s: %w", page.Path, err)
	}
	return nil
}

// Delete removes the page at path.
func (r *Repository) Delete(ctx context.Context, path pages.Path) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pages WHERE path = ?`, path.Canonical().String()); err != nil {
		return fmt.Errorf("failed to delete page %s: %w", path, err)
	}
	return nil
}

func (r *Repository) Exists(ctx context.Context, path pages.Path) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM pages WHERE path = ?)`, path.Canonical().String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query page %s: %w", path, err)
	}
	return exists, nil
}

func (r *Repository) GetPage(ctx context.Context, path pages.Path, level pages.CaptureLevel) (*pages.Page, bool, error) {
	page := &pages.Page{Path: path, Repository: r.Describe()}

	var (
		properties string
		content    []byte
		dgst       string
		err        error
	)
	key := path.Canonical().String()
	switch {
	case level.Includes(pages.CaptureLevelBody):
		err = r.db.QueryRowContext(ctx, `
			SELECT title, properties, content, digest FROM pages WHERE path = ?
		`, key).Scan(&page.Title, &properties, &content, &dgst)
	case level.Includes(pages.CaptureLevelMeta):
		err = r.db.QueryRowContext(ctx, `
			SELECT title, properties FROM pages WHERE path = ?
		`, key).Scan(&page.Title, &properties)
	default:
		var one int
		err = r.db.QueryRowContext(ctx, `SELECT 1 FROM pages WHERE path = ?`, key).Scan(&one)
	}
	if errors.Is(err, sql.ErrNoRows) {
		slogcontext.FromCtx(ctx).With(slog.String("realm", Realm)).Log(ctx, slog.LevelDebug, "page not found", slog.String("path", key))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query page %s: %w", path, err)
	}

	if properties != "" && properties != "{}" {
		if err := json.Unmarshal([]byte(properties), &page.Properties); err != nil {
			return nil, false, fmt.Errorf("failed to unmarshal properties of %s: %w", path, err)
		}
	}
	if level.Includes(pages.CaptureLevelBody) {
		page.Content = content
		page.Digest = digest.Digest(dgst)
	}
	return page, true, nil
}
