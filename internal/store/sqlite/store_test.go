package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/componentry/compodex/internal/domain"
	"github.com/componentry/compodex/internal/domain/component"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), "components", nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testTuple(id string, embedding []float32) Tuple {
	return Tuple{
		ID:        id,
		Document:  "Component: " + id,
		Embedding: embedding,
		Metadata: component.Metadata{
			ID:         id,
			Name:       id,
			Category:   "General",
			ExportType: "named",
		},
	}
}

func TestStore_AddGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := Tuple{
		ID:        "button-1",
		Document:  "Component: Button\nDescription: Clickable\nCategory: Actions",
		Embedding: []float32{0.1, 0.2, 0.3},
		Metadata: component.Metadata{
			ID:         "button-1",
			Name:       "Button",
			Category:   "Actions",
			FilePath:   "src/components/Button.tsx",
			ExportType: "default",
			NumProps:   2,
			Tags:       "interactive,form",
		},
	}

	if err := s.Add(ctx, in); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := s.Get(ctx, "button-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Document != in.Document {
		t.Errorf("document mismatch:\ngot:  %q\nwant: %q", got.Document, in.Document)
	}
	if got.Metadata != in.Metadata {
		t.Errorf("metadata mismatch:\ngot:  %+v\nwant: %+v", got.Metadata, in.Metadata)
	}
	if len(got.Embedding) != 3 || got.Embedding[1] != 0.2 {
		t.Errorf("embedding mismatch: %v", got.Embedding)
	}
}

func TestStore_AddDuplicateIDFails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Add(ctx, testTuple("dup", []float32{1, 0})); err != nil {
		t.Fatalf("first Add: %v", err)
	}

	err := s.Add(ctx, testTuple("dup", []float32{0, 1}))
	if !errors.Is(err, domain.ErrStore) {
		t.Errorf("expected ErrStore for duplicate id, got %v", err)
	}
}

func TestStore_UpdateReplacesAllFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Add(ctx, testTuple("card", []float32{1, 0})); err != nil {
		t.Fatalf("Add: %v", err)
	}

	updated := testTuple("card", []float32{0, 1})
	updated.Document = "Component: Card\nDescription: Updated"
	updated.Metadata.Category = "Layout"
	if err := s.Update(ctx, updated); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := s.Get(ctx, "card")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Document != updated.Document {
		t.Errorf("document not replaced: %q", got.Document)
	}
	if got.Metadata.Category != "Layout" {
		t.Errorf("metadata not replaced: %+v", got.Metadata)
	}
	if got.Embedding[0] != 0 || got.Embedding[1] != 1 {
		t.Errorf("embedding not replaced: %v", got.Embedding)
	}
}

func TestStore_UpdateMissingIDIsNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.Update(context.Background(), testTuple("ghost", []float32{1}))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_DeleteThenGetIsNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Add(ctx, testTuple("modal", []float32{1, 0})); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Delete(ctx, "modal"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := s.Get(ctx, "modal"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Delete is not idempotent: a second delete reports NotFound.
	if err := s.Delete(ctx, "modal"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestStore_GetAllOrderedByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		if err := s.Add(ctx, testTuple(id, []float32{1, 0})); err != nil {
			t.Fatalf("Add %s: %v", id, err)
		}
	}

	all, err := s.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 tuples, got %d", len(all))
	}
	for i, want := range []string{"a", "b", "c"} {
		if all[i].ID != want {
			t.Errorf("position %d: got %q, want %q", i, all[i].ID, want)
		}
	}
}

func TestStore_SearchSelfSimilarity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	target := []float32{0.6, 0.8, 0}
	if err := s.Add(ctx, testTuple("target", target)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(ctx, testTuple("other", []float32{-0.8, 0.6, 0})); err != nil {
		t.Fatalf("Add: %v", err)
	}

	hits, err := s.Search(ctx, target, 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].ID != "target" {
		t.Errorf("expected self first, got %q", hits[0].ID)
	}
	if hits[0].Distance > 1e-6 {
		t.Errorf("expected distance ~0 for self, got %f", hits[0].Distance)
	}
	if hits[0].Distance > hits[1].Distance {
		t.Error("results not ascending by distance")
	}
}

func TestStore_SearchLimitRespected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.Add(ctx, testTuple(fmt.Sprintf("c%d", i), []float32{1, float32(i)})); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	for _, limit := range []int{0, 1, 3, 10} {
		hits, err := s.Search(ctx, []float32{1, 0}, limit, nil)
		if err != nil {
			t.Fatalf("Search limit=%d: %v", limit, err)
		}
		want := limit
		if want > 5 {
			want = 5
		}
		if len(hits) > want {
			t.Errorf("limit=%d: got %d hits", limit, len(hits))
		}
	}
}

func TestStore_SearchTiesBrokenByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Identical embeddings: identical distance, order must be by id.
	same := []float32{1, 1}
	for _, id := range []string{"zeta", "alpha", "mid"} {
		if err := s.Add(ctx, testTuple(id, same)); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	hits, err := s.Search(ctx, []float32{1, 1}, 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for i, want := range []string{"alpha", "mid", "zeta"} {
		if hits[i].ID != want {
			t.Errorf("position %d: got %q, want %q", i, hits[i].ID, want)
		}
	}
}

func TestStore_SearchCategoryFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	forms := testTuple("input", []float32{1, 0})
	forms.Metadata.Category = "Forms"
	actions := testTuple("button", []float32{1, 0})
	actions.Metadata.Category = "Actions"

	if err := s.Add(ctx, forms); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(ctx, actions); err != nil {
		t.Fatalf("Add: %v", err)
	}

	hits, err := s.Search(ctx, []float32{1, 0}, 10, map[string]string{"category": "Forms"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Metadata.Category != "Forms" {
		t.Errorf("filter leaked category %q", hits[0].Metadata.Category)
	}
}

func TestStore_SearchUnsupportedFilterKeyIgnored(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Add(ctx, testTuple("a", []float32{1, 0})); err != nil {
		t.Fatalf("Add: %v", err)
	}

	hits, err := s.Search(ctx, []float32{1, 0}, 10, map[string]string{"num_props": "3"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Errorf("unsupported filter key should be ignored, got %d hits", len(hits))
	}
}

func TestStore_SearchSkipsMismatchedDimensions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Add(ctx, testTuple("good", []float32{1, 0})); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(ctx, testTuple("bad", []float32{1, 0, 0})); err != nil {
		t.Fatalf("Add: %v", err)
	}

	hits, err := s.Search(ctx, []float32{1, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "good" {
		t.Errorf("expected only the matching-dimension tuple, got %+v", hits)
	}
}

func TestStore_ConcurrentDistinctAdds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const k = 20
	var wg sync.WaitGroup
	errs := make(chan error, k)
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.Add(ctx, testTuple(fmt.Sprintf("comp-%02d", i), []float32{1, float32(i)}))
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Add: %v", err)
		}
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != k {
		t.Errorf("expected count %d, got %d", k, n)
	}
}

func TestStore_HealthCheck(t *testing.T) {
	s := newTestStore(t)

	if !s.HealthCheck(context.Background()) {
		t.Error("expected healthy store")
	}

	_ = s.Close()
	if s.HealthCheck(context.Background()) {
		t.Error("expected unhealthy store after close")
	}
}

func TestEncodeDecodeEmbedding(t *testing.T) {
	in := []float32{0.1, -2.5, 3.25, 0}
	out, err := decodeEmbedding(encodeEmbedding(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("length mismatch: %d vs %d", len(out), len(in))
	}
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("index %d: %f != %f", i, in[i], out[i])
		}
	}

	if _, err := decodeEmbedding([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated blob")
	}
}
