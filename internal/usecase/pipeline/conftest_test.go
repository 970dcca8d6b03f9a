package pipeline

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/componentry/compodex/internal/domain"
	"github.com/componentry/compodex/internal/domain/component"
	"github.com/componentry/compodex/internal/store/sqlite"
)

// mockStore is an in-memory Store for tests.
type mockStore struct {
	mu     sync.Mutex
	tuples map[string]sqlite.Tuple

	addErr    error
	searchFn  func(queryEmbedding []float32, limit int, filters map[string]string) ([]sqlite.Hit, error)
	lastLimit int
}

func newMockStore() *mockStore {
	return &mockStore{tuples: make(map[string]sqlite.Tuple)}
}

func (m *mockStore) Add(_ context.Context, t sqlite.Tuple) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.tuples[t.ID] = t
	return nil
}

func (m *mockStore) Update(_ context.Context, t sqlite.Tuple) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tuples[t.ID]; !ok {
		return domain.ErrNotFound
	}
	m.tuples[t.ID] = t
	return nil
}

func (m *mockStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tuples[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.tuples, id)
	return nil
}

func (m *mockStore) Get(_ context.Context, id string) (sqlite.Tuple, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tuples[id]
	if !ok {
		return sqlite.Tuple{}, domain.ErrNotFound
	}
	return t, nil
}

func (m *mockStore) GetAll(_ context.Context) ([]sqlite.Tuple, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sqlite.Tuple, 0, len(m.tuples))
	for _, t := range m.tuples {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockStore) Search(
	_ context.Context, queryEmbedding []float32, limit int, filters map[string]string,
) ([]sqlite.Hit, error) {
	m.mu.Lock()
	m.lastLimit = limit
	m.mu.Unlock()
	if m.searchFn != nil {
		return m.searchFn(queryEmbedding, limit, filters)
	}
	return nil, nil
}

func (m *mockStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tuples), nil
}

// mockEmbedder returns a fixed vector, or fails when err is set.
type mockEmbedder struct {
	vec      []float32
	err      error
	lastText string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.lastText = text
	if m.err != nil {
		return nil, m.err
	}
	if m.vec != nil {
		return m.vec, nil
	}
	return []float32{1, 0, 0}, nil
}

func newTestService(t *testing.T) (*Service, *mockStore, *mockEmbedder) {
	t.Helper()
	ms := newMockStore()
	me := &mockEmbedder{}
	return New(ms, me, nil), ms, me
}

func testComponent(id, name string) *component.Component {
	return &component.Component{
		ID:          id,
		Name:        name,
		Description: "A " + name + " component",
		FilePath:    "src/components/" + name + ".tsx",
		Category:    "General",
		ExportType:  component.ExportNamed,
	}
}
