package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/polydb-cli/internal/adapters/driven/storage/query"
	"github.com/custodia-labs/polydb-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/polydb-cli/internal/core/domain"
	"github.com/custodia-labs/polydb-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.MirrorStore = (*Store)(nil)

// DatabaseFile is the file name of the mirror inside its directory.
const DatabaseFile = "mirror.db"

// Store is the SQLite-backed offline mirror.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultDir returns ~/.polydb/mirror.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".polydb", "mirror"), nil
}

// NewStore opens (creating if necessary) the mirror in dataDir.
// If dataDir is empty, defaults to DefaultDir.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dataDir = dir
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// WAL mode lets readers proceed while a mirror run is importing.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_mirror.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Ping checks that the database file is usable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging mirror: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}

// ListCollectionNames returns mirrored collection names matching the regular
// expression pattern, sorted.
func (s *Store) ListCollectionNames(ctx context.Context, pattern string) ([]string, error) {
	var re *regexp.Regexp
	if pattern != "" {
		var err error
		if re, err = regexp.Compile(pattern); err != nil {
			return nil, fmt.Errorf("%w: collection pattern: %v", domain.ErrInvalidInput, err)
		}
	}

	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT collection FROM documents ORDER BY collection")
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		if re == nil || re.MatchString(name) {
			names = append(names, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collections: %w", err)
	}
	return names, nil
}

// Collections returns the names of all mirrored collections.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	return s.ListCollectionNames(ctx, "")
}

// FindOne returns the first document matching opts or domain.ErrNotFound.
func (s *Store) FindOne(ctx context.Context, collection string, opts domain.FindOptions) (domain.Document, error) {
	opts.Limit = 1
	docs, err := s.query(ctx, collection, opts)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrNotFound
	}
	return docs[0], nil
}

// Find returns a cursor over the documents matching opts.
func (s *Store) Find(ctx context.Context, collection string, opts domain.FindOptions) (driven.Cursor, error) {
	docs, err := s.query(ctx, collection, opts)
	if err != nil {
		return nil, err
	}
	return query.NewCursor(docs), nil
}

// Distinct returns the distinct values of field among matching documents.
func (s *Store) Distinct(ctx context.Context, collection, field string, filter map[string]any) ([]any, error) {
	docs, err := s.load(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	return query.Distinct(docs, field, filter)
}

// Count returns the number of documents matching filter.
func (s *Store) Count(ctx context.Context, collection string, filter map[string]any) (int64, error) {
	if len(filter) == 0 {
		var n int64
		err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM documents WHERE collection = ?", collection).Scan(&n)
		if err != nil {
			return 0, fmt.Errorf("counting %s: %w", collection, err)
		}
		return n, nil
	}
	docs, err := s.query(ctx, collection, domain.FindOptions{Filter: filter})
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

// Import upserts docs into collection and records batchID as the
// collection's latest import.
func (s *Store) Import(ctx context.Context, collection string, docs []domain.Document, batchID string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (collection, id, batch_id, body, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			batch_id = excluded.batch_id,
			body = excluded.body,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, doc := range docs {
		id := doc.ID()
		if id == "" {
			return 0, fmt.Errorf("%w: document without _id", domain.ErrInvalidInput)
		}
		body, err := json.Marshal(doc)
		if err != nil {
			return 0, fmt.Errorf("marshalling %q: %w", id, err)
		}
		if _, err := stmt.ExecContext(ctx, collection, id, batchID, string(body), now); err != nil {
			return 0, fmt.Errorf("saving %q: %w", id, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batches (collection, batch_id, documents, imported_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(collection) DO UPDATE SET
			batch_id = excluded.batch_id,
			documents = CASE WHEN batches.batch_id = excluded.batch_id
				THEN batches.documents + excluded.documents
				ELSE excluded.documents END,
			imported_at = excluded.imported_at
	`, collection, batchID, len(docs), now)
	if err != nil {
		return 0, fmt.Errorf("recording batch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return len(docs), nil
}

// Batch describes the latest import into a collection.
type Batch struct {
	ID         string
	Documents  int
	ImportedAt time.Time
}

// LastBatch returns the latest import into collection or domain.ErrNotFound.
func (s *Store) LastBatch(ctx context.Context, collection string) (*Batch, error) {
	var b Batch
	err := s.db.QueryRowContext(ctx,
		"SELECT batch_id, documents, imported_at FROM batches WHERE collection = ?", collection).
		Scan(&b.ID, &b.Documents, &b.ImportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading batch of %s: %w", collection, err)
	}
	return &b, nil
}

func (s *Store) query(ctx context.Context, collection string, opts domain.FindOptions) ([]domain.Document, error) {
	docs, err := s.load(ctx, collection, opts.Filter)
	if err != nil {
		return nil, err
	}
	return query.Apply(docs, opts)
}

// load reads the candidate documents of collection. A filter on a plain _id
// string is answered from the primary key.
func (s *Store) load(ctx context.Context, collection string, filter map[string]any) ([]domain.Document, error) {
	q := "SELECT body FROM documents WHERE collection = ?"
	args := []any{collection}
	if id, ok := filter[domain.IDField].(string); ok {
		q += " AND id = ?"
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx, q+" ORDER BY rowid", args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc, err := decodeDocument(body)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", collection, err)
	}
	return docs, nil
}

// decodeDocument parses a stored document, keeping integers as int64.
func decodeDocument(body string) (domain.Document, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return domain.Document(numbers(m).(map[string]any)), nil
}

// numbers replaces json.Number values with int64 or float64.
func numbers(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = numbers(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = numbers(e)
		}
		return x
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	default:
		return v
	}
}
