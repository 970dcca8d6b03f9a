package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockStoreChecker struct {
	ok    bool
	count int
	err   error
}

func (m *mockStoreChecker) HealthCheck(_ context.Context) bool { return m.ok }

func (m *mockStoreChecker) Count(_ context.Context) (int, error) { return m.count, m.err }

type mockEmbeddingChecker struct {
	err error
}

func (m *mockEmbeddingChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockStoreChecker{ok: true, count: 7}, &mockEmbeddingChecker{}, "text-embedding-3-small")
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["store"] != CheckOK {
		t.Errorf("expected store %q, got %q", CheckOK, r.Checks["store"])
	}
	if r.Checks["embedding"] != CheckOK {
		t.Errorf("expected embedding %q, got %q", CheckOK, r.Checks["embedding"])
	}
	if r.ComponentCount != 7 {
		t.Errorf("ComponentCount = %d, want 7", r.ComponentCount)
	}
	if r.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("EmbeddingModel = %q", r.EmbeddingModel)
	}
}

func TestCheck_StoreDown(t *testing.T) {
	svc := New(&mockStoreChecker{ok: false}, &mockEmbeddingChecker{}, "m")
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["store"] != CheckError {
		t.Errorf("expected store %q, got %q", CheckError, r.Checks["store"])
	}
	if r.ComponentCount != 0 {
		t.Errorf("ComponentCount = %d, want 0 when store is down", r.ComponentCount)
	}
}

func TestCheck_EmbeddingError(t *testing.T) {
	svc := New(&mockStoreChecker{ok: true}, &mockEmbeddingChecker{err: errors.New("timeout")}, "m")
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["store"] != CheckOK {
		t.Errorf("expected store %q, got %q", CheckOK, r.Checks["store"])
	}
	if r.Checks["embedding"] != CheckError {
		t.Errorf("expected embedding %q, got %q", CheckError, r.Checks["embedding"])
	}
}

func TestCheck_NoEmbedding(t *testing.T) {
	svc := New(&mockStoreChecker{ok: true}, nil, "mock")
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["embedding"]; ok {
		t.Error("embedding check should be absent when embedding is nil")
	}
}

func TestCheck_CountError(t *testing.T) {
	svc := New(&mockStoreChecker{ok: true, err: errors.New("query failed")}, nil, "mock")
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("count failure should not degrade status, got %q", r.Status)
	}
	if r.ComponentCount != 0 {
		t.Errorf("ComponentCount = %d, want 0", r.ComponentCount)
	}
}
