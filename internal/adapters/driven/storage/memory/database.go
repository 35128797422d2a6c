package memory

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/custodia-labs/polydb-cli/internal/adapters/driven/storage/query"
	"github.com/custodia-labs/polydb-cli/internal/core/domain"
	"github.com/custodia-labs/polydb-cli/internal/core/ports/driven"
)

// Ensure Database implements the interfaces.
var (
	_ driven.Database    = (*Database)(nil)
	_ driven.MirrorStore = (*Database)(nil)
)

// Database is an in-memory implementation of driven.Database for testing.
// Collections keep insertion order, which is the natural order of queries.
type Database struct {
	mu          sync.RWMutex
	collections map[string][]domain.Document
	batches     map[string]string
	pingErr     error
}

// NewDatabase creates a new empty in-memory database.
func NewDatabase() *Database {
	return &Database{
		collections: make(map[string][]domain.Document),
		batches:     make(map[string]string),
	}
}

// Insert appends documents to a collection, creating it if needed.
func (d *Database) Insert(collection string, docs ...domain.Document) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.collections[collection]; !ok {
		d.collections[collection] = nil
	}
	d.collections[collection] = append(d.collections[collection], docs...)
}

// SetPingError makes Ping fail with err. Pass nil to recover.
func (d *Database) SetPingError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pingErr = err
}

// Ping checks that the backend is reachable.
func (d *Database) Ping(_ context.Context) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pingErr
}

// ListCollectionNames returns collection names matching pattern, sorted.
func (d *Database) ListCollectionNames(_ context.Context, pattern string) ([]string, error) {
	var re *regexp.Regexp
	if pattern != "" {
		var err error
		re, err = regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: collection pattern: %v", domain.ErrInvalidInput, err)
		}
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.collections))
	for name := range d.collections {
		if re == nil || re.MatchString(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// FindOne returns the first document matching opts.
func (d *Database) FindOne(_ context.Context, collection string, opts domain.FindOptions) (domain.Document, error) {
	opts.Limit = 1
	docs, err := d.query(collection, opts)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrNotFound
	}
	return docs[0], nil
}

// Find returns a cursor over all documents matching opts.
func (d *Database) Find(_ context.Context, collection string, opts domain.FindOptions) (driven.Cursor, error) {
	docs, err := d.query(collection, opts)
	if err != nil {
		return nil, err
	}
	return query.NewCursor(docs), nil
}

// Distinct returns the distinct values of field among documents matching filter.
func (d *Database) Distinct(_ context.Context, collection, field string, filter map[string]any) ([]any, error) {
	d.mu.RLock()
	docs := d.collections[collection]
	d.mu.RUnlock()
	return query.Distinct(docs, field, filter)
}

// Count returns the number of documents matching filter.
func (d *Database) Count(_ context.Context, collection string, filter map[string]any) (int64, error) {
	d.mu.RLock()
	docs := d.collections[collection]
	d.mu.RUnlock()

	var n int64
	for _, doc := range docs {
		ok, err := query.Match(doc, filter)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// Close is a no-op.
func (d *Database) Close(_ context.Context) error {
	return nil
}

// Import upserts docs by _id, remembering batchID per collection.
func (d *Database) Import(_ context.Context, collection string, docs []domain.Document, batchID string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	existing := append([]domain.Document(nil), d.collections[collection]...)
	index := make(map[string]int, len(existing))
	for i, doc := range existing {
		index[doc.ID()] = i
	}
	for _, doc := range docs {
		id := doc.ID()
		if id == "" {
			return 0, fmt.Errorf("%w: document without _id", domain.ErrInvalidInput)
		}
		if i, ok := index[id]; ok {
			existing[i] = doc
			continue
		}
		index[id] = len(existing)
		existing = append(existing, doc)
	}
	d.collections[collection] = existing
	d.batches[collection] = batchID
	return len(docs), nil
}

// Collections returns the names of all collections, sorted.
func (d *Database) Collections(ctx context.Context) ([]string, error) {
	return d.ListCollectionNames(ctx, "")
}

// Batch returns the batch id of the last import into collection.
func (d *Database) Batch(collection string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.batches[collection]
}

// Path returns the store location.
func (d *Database) Path() string {
	return ":memory:"
}

func (d *Database) query(collection string, opts domain.FindOptions) ([]domain.Document, error) {
	d.mu.RLock()
	docs := d.collections[collection]
	d.mu.RUnlock()
	return query.Apply(docs, opts)
}
