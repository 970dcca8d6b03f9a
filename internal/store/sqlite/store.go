// Package sqlite implements the persistent vector store: CRUD plus
// brute-force nearest-neighbor search over (id, document, embedding,
// metadata) tuples in a directory-backed SQLite collection.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/componentry/compodex/internal/domain"
	"github.com/componentry/compodex/internal/domain/component"
)

const schema = `
CREATE TABLE IF NOT EXISTS components (
    id TEXT PRIMARY KEY,
    document TEXT NOT NULL,
    embedding BLOB NOT NULL,
    metadata TEXT NOT NULL
);
`

// filterableFields is the whitelist of metadata keys usable as search
// filters. Unsupported keys are ignored rather than erroring.
var filterableFields = map[string]func(component.Metadata) string{
	"category":    func(m component.Metadata) string { return m.Category },
	"export_type": func(m component.Metadata) string { return m.ExportType },
	"name":        func(m component.Metadata) string { return m.Name },
}

// Tuple is a stored (id, document, embedding, metadata) record.
type Tuple struct {
	ID        string
	Document  string
	Embedding []float32
	Metadata  component.Metadata
}

// Hit is a nearest-neighbor search hit, ascending by cosine distance.
type Hit struct {
	ID       string
	Metadata component.Metadata
	Document string
	Distance float64
}

// Store is a SQLite-backed vector store. One named collection maps to one
// database file under the data directory; both are fixed at startup.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// NewStore opens (creating if needed) the collection database under
// dataDir and ensures the schema exists.
func NewStore(dataDir, collection string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, collection+".db")

	// WAL for concurrent readers during writes
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{db: db, path: dbPath, logger: logger}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the collection database file path.
func (s *Store) Path() string {
	return s.path
}

// Add inserts a tuple. Duplicate-id handling is the pipeline's job; an
// insert conflict here surfaces as a store error, not a silent upsert.
func (s *Store) Add(ctx context.Context, t Tuple) error {
	meta, err := json.Marshal(t.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata %s: %w: %w", t.ID, err, domain.ErrStore)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO components(id, document, embedding, metadata) VALUES(?, ?, ?, ?)`,
		t.ID, t.Document, encodeEmbedding(t.Embedding), string(meta),
	)
	if err != nil {
		return fmt.Errorf("add component %s: %w: %w", t.ID, err, domain.ErrStore)
	}
	return nil
}

// Update replaces all fields for an id. Updating a non-existent id fails
// with domain.ErrNotFound rather than silently creating.
func (s *Store) Update(ctx context.Context, t Tuple) error {
	meta, err := json.Marshal(t.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata %s: %w: %w", t.ID, err, domain.ErrStore)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE components SET document = ?, embedding = ?, metadata = ? WHERE id = ?`,
		t.Document, encodeEmbedding(t.Embedding), string(meta), t.ID,
	)
	if err != nil {
		return fmt.Errorf("update component %s: %w: %w", t.ID, err, domain.ErrStore)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update component %s: rows affected: %w: %w", t.ID, err, domain.ErrStore)
	}
	if affected == 0 {
		return fmt.Errorf("update component %s: %w", t.ID, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a tuple. Deleting a non-existent id is reported as
// domain.ErrNotFound (delete is deliberately not idempotent here).
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM components WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete component %s: %w: %w", id, err, domain.ErrStore)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete component %s: rows affected: %w: %w", id, err, domain.ErrStore)
	}
	if affected == 0 {
		return fmt.Errorf("delete component %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Get returns the tuple for an id, or domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Tuple, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, document, embedding, metadata FROM components WHERE id = ?`, id)

	t, err := scanTuple(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Tuple{}, fmt.Errorf("component %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return Tuple{}, fmt.Errorf("get component %s: %w: %w", id, err, domain.ErrStore)
	}
	return t, nil
}

// GetAll returns every stored tuple, ordered by id (not insertion order).
func (s *Store) GetAll(ctx context.Context) ([]Tuple, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document, embedding, metadata FROM components ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list components: %w: %w", err, domain.ErrStore)
	}
	defer rows.Close()

	var out []Tuple
	for rows.Next() {
		t, err := scanTuple(rows)
		if err != nil {
			return nil, fmt.Errorf("list components: %w: %w", err, domain.ErrStore)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list components: %w: %w", err, domain.ErrStore)
	}
	return out, nil
}

// Search scans all tuples, scores them by cosine distance to the query
// embedding, applies metadata equality filters, and returns up to limit
// hits ascending by distance, ties broken by id ascending. Tuples whose
// embedding has a mismatched dimension or zero magnitude are skipped.
func (s *Store) Search(
	ctx context.Context, queryEmbedding []float32, limit int, filters map[string]string,
) ([]Hit, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document, embedding, metadata FROM components`)
	if err != nil {
		return nil, fmt.Errorf("search: %w: %w", err, domain.ErrStore)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		t, err := scanTuple(rows)
		if err != nil {
			return nil, fmt.Errorf("search: %w: %w", err, domain.ErrStore)
		}
		if !matchesFilters(t.Metadata, filters) {
			continue
		}
		dist, ok := cosineDistance(queryEmbedding, t.Embedding)
		if !ok {
			s.logger.Warn("skipping component with unusable embedding",
				zap.String("id", t.ID),
				zap.Int("dimensions", len(t.Embedding)),
			)
			continue
		}
		hits = append(hits, Hit{ID: t.ID, Metadata: t.Metadata, Document: t.Document, Distance: dist})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search: %w: %w", err, domain.ErrStore)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ID < hits[j].ID
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Count returns the number of stored tuples.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM components`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count components: %w: %w", err, domain.ErrStore)
	}
	return n, nil
}

// HealthCheck reports store reachability. Never returns an error; any
// internal failure maps to false.
func (s *Store) HealthCheck(ctx context.Context) bool {
	_, err := s.Count(ctx)
	return err == nil
}

func matchesFilters(meta component.Metadata, filters map[string]string) bool {
	for key, want := range filters {
		accessor, ok := filterableFields[strings.ToLower(key)]
		if !ok {
			continue // unsupported filter keys are ignored
		}
		if accessor(meta) != want {
			return false
		}
	}
	return true
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTuple(row rowScanner) (Tuple, error) {
	var (
		t    Tuple
		blob []byte
		meta string
	)
	if err := row.Scan(&t.ID, &t.Document, &blob, &meta); err != nil {
		return Tuple{}, err
	}

	vec, err := decodeEmbedding(blob)
	if err != nil {
		return Tuple{}, fmt.Errorf("decode embedding for %s: %w", t.ID, err)
	}
	t.Embedding = vec

	if err := json.Unmarshal([]byte(meta), &t.Metadata); err != nil {
		return Tuple{}, fmt.Errorf("unmarshal metadata for %s: %w", t.ID, err)
	}
	return t, nil
}
