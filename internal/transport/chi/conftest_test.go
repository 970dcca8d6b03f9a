package chi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/componentry/compodex/internal/embedding"
	"github.com/componentry/compodex/internal/extract"
	"github.com/componentry/compodex/internal/store/sqlite"
	healthuc "github.com/componentry/compodex/internal/usecase/health"
	pipelineuc "github.com/componentry/compodex/internal/usecase/pipeline"
	scanuc "github.com/componentry/compodex/internal/usecase/scan"
)

// newTestServer wires a full stack backed by a throwaway store and the
// deterministic embedder, using the shipped scan defaults.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newTestServerWithScanDefaults(t, ScanDefaults{
		IncludeStorybooks: true,
		IncludeTests:      false,
		Recursive:         true,
	})
}

func newTestServerWithScanDefaults(t *testing.T, defaults ScanDefaults) *httptest.Server {
	t.Helper()

	logger := zap.NewNop()
	store, err := sqlite.NewStore(t.TempDir(), "components", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	embedder := embedding.NewMock(64)
	pipe := pipelineuc.New(store, embedder, logger)
	scanner := scanuc.New(extract.New(), pipe, logger)
	health := healthuc.New(store, nil, "mock")

	r := chi.NewRouter()
	NewServer(pipe, scanner, health, defaults, logger).Routes(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func decodeInto(t *testing.T, data []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode response %q: %v", data, err)
	}
}
