package driven

import (
	"context"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
)

// Database provides read access to polyDB collections.
// Implementations must be safe for concurrent use.
type Database interface {
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// ListCollectionNames returns the names of all collections whose name
	// matches the regular expression pattern. An empty pattern matches all.
	ListCollectionNames(ctx context.Context, pattern string) ([]string, error)

	// FindOne returns the first document matching opts.
	// Returns domain.ErrNotFound if nothing matches.
	FindOne(ctx context.Context, collection string, opts domain.FindOptions) (domain.Document, error)

	// Find returns a cursor over all documents matching opts.
	Find(ctx context.Context, collection string, opts domain.FindOptions) (Cursor, error)

	// Distinct returns the distinct values of field among documents matching filter.
	Distinct(ctx context.Context, collection, field string, filter map[string]any) ([]any, error)

	// Count returns the number of documents matching filter.
	Count(ctx context.Context, collection string, filter map[string]any) (int64, error)

	// Close releases the connection.
	Close(ctx context.Context) error
}

// Cursor iterates over query results.
type Cursor interface {
	// Next advances to the next document. It returns false when the results
	// are exhausted or an error occurred.
	Next(ctx context.Context) bool

	// Document returns the current document.
	Document() domain.Document

	// Err returns the error that stopped iteration, if any.
	Err() error

	// Close releases the cursor.
	Close(ctx context.Context) error
}

// MirrorStore is a local copy of selected collections that can be queried
// offline like the remote database.
type MirrorStore interface {
	Database

	// Import upserts docs into collection, tagging them with batchID.
	// Returns the number of documents written.
	Import(ctx context.Context, collection string, docs []domain.Document, batchID string) (int, error)

	// Collections returns the names of all mirrored collections.
	Collections(ctx context.Context) ([]string, error)

	// Path returns the location of the mirror database.
	Path() string
}
