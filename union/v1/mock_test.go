package v1_test

import (
	"context"
	"sync/atomic"

	"github.com/ao-apps/semanticcms-core-pages-union/pages"
)

// mockRepository is an in-memory backing repository that records how often
// it was asked.
type mockRepository struct {
	name        string
	pages       map[pages.Path]string
	unavailable bool
	existsErr   error
	getErr      error
	healthErr   error
	// existsLies makes Exists report every path as existing.
	existsLies bool

	existsCalls    atomic.Int32
	getCalls       atomic.Int32
	availableCalls atomic.Int32
}

func NewMockRepository(name string, contents map[string]string) *mockRepository {
	repo := &mockRepository{name: name, pages: make(map[pages.Path]string)}
	for path, content := range contents {
		repo.pages[pages.MustParsePath(path)] = content
	}
	return repo
}

func (m *mockRepository) IsAvailable(context.Context) bool {
	m.availableCalls.Add(1)
	return !m.unavailable
}

func (m *mockRepository) Exists(_ context.Context, path pages.Path) (bool, error) {
	m.existsCalls.Add(1)
	if m.existsErr != nil {
		return false, m.existsErr
	}
	if m.existsLies {
		return true, nil
	}
	_, ok := m.pages[path]
	return ok, nil
}

func (m *mockRepository) GetPage(_ context.Context, path pages.Path, level pages.CaptureLevel) (*pages.Page, bool, error) {
	m.getCalls.Add(1)
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	content, ok := m.pages[path]
	if !ok {
		return nil, false, nil
	}
	page := &pages.Page{Path: path, Title: m.name, Content: []byte(content), Repository: m.name}
	return page.Truncate(level), true, nil
}

func (m *mockRepository) Describe() string {
	return m.name
}

func (m *mockRepository) CheckHealth(context.Context) error {
	return m.healthErr
}

// probeRepository does not implement pages.ExistenceChecker nor
// pages.HealthCheckable.
type probeRepository struct {
	name        string
	pages       map[pages.Path]bool
	unavailable bool
}

func (p *probeRepository) IsAvailable(context.Context) bool { return !p.unavailable }

func (p *probeRepository) GetPage(_ context.Context, path pages.Path, _ pages.CaptureLevel) (*pages.Page, bool, error) {
	if !p.pages[path] {
		return nil, false, nil
	}
	return &pages.Page{Path: path, Repository: p.name}, true, nil
}

func (p *probeRepository) Describe() string { return p.name }

// sliceRepository cannot be compared with == and is rejected by registries.
type sliceRepository []string

func (sliceRepository) IsAvailable(context.Context) bool { return true }

func (sliceRepository) GetPage(context.Context, pages.Path, pages.CaptureLevel) (*pages.Page, bool, error) {
	return nil, false, nil
}

func (s sliceRepository) Describe() string { return "slice" }

// wrappingRepository is a comparable type whose values may hold an
// incomparable base.
type wrappingRepository struct {
	base any
}

func (wrappingRepository) IsAvailable(context.Context) bool { return true }

func (wrappingRepository) GetPage(context.Context, pages.Path, pages.CaptureLevel) (*pages.Page, bool, error) {
	return nil, false, nil
}

func (wrappingRepository) Describe() string { return "wrapping" }
