package driving

import (
	"context"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
)

// CollectionService queries documents of a single collection.
// Every returned document has its _attrs metadata removed.
type CollectionService interface {
	// Info returns the metadata of collection.
	Info(ctx context.Context, collection string) (*domain.CollectionInfo, error)

	// FindOne returns the first document matching opts.
	FindOne(ctx context.Context, collection string, opts domain.FindOptions) (domain.Document, error)

	// Find returns all documents matching opts.
	Find(ctx context.Context, collection string, opts domain.FindOptions) ([]domain.Document, error)

	// Each streams documents matching opts to fn. Iteration stops at the
	// first error returned by fn.
	Each(ctx context.Context, collection string, opts domain.FindOptions, fn func(domain.Document) error) error

	// IDs returns the ids of all documents matching opts.
	IDs(ctx context.Context, collection string, opts domain.FindOptions) ([]string, error)

	// Distinct returns the distinct values of field among documents matching filter.
	Distinct(ctx context.Context, collection, field string, filter map[string]any) ([]any, error)

	// Count returns the number of documents matching filter.
	Count(ctx context.Context, collection string, filter map[string]any) (int64, error)

	// Get returns the document with the given id.
	Get(ctx context.Context, collection, id string) (domain.Document, error)
}
