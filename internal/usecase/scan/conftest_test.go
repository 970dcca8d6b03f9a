package scan

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/componentry/compodex/internal/domain/component"
)

// mockExtractor derives a minimal component from the file name and can be
// told to fail for specific base names.
type mockExtractor struct {
	mu         sync.Mutex
	failNames  map[string]bool
	calls      []extractCall
	extractErr error
}

type extractCall struct {
	filePath  string
	storyPath string
}

func (m *mockExtractor) Extract(filePath, storyPath string) (component.Component, error) {
	m.mu.Lock()
	m.calls = append(m.calls, extractCall{filePath: filePath, storyPath: storyPath})
	m.mu.Unlock()

	if m.extractErr != nil {
		return component.Component{}, m.extractErr
	}

	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	if m.failNames[base] {
		return component.Component{}, errors.New("unparseable source")
	}

	return component.Component{
		ID:       "id-" + base,
		Name:     base,
		FilePath: filePath,
	}, nil
}

// mockIndexer records added and updated components.
type mockIndexer struct {
	mu        sync.Mutex
	added     []component.Component
	updated   []component.Component
	addErr    error
	updateErr error
}

func (m *mockIndexer) AddComponent(_ context.Context, c *component.Component) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.added = append(m.added, *c)
	return nil
}

func (m *mockIndexer) UpdateComponent(_ context.Context, c *component.Component) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = append(m.updated, *c)
	return nil
}

func newTestService(t *testing.T) (*Service, *mockExtractor, *mockIndexer) {
	t.Helper()
	ext := &mockExtractor{failNames: map[string]bool{}}
	idx := &mockIndexer{}
	return New(ext, idx, zap.NewNop()), ext, idx
}
