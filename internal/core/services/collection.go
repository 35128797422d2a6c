package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
	"github.com/custodia-labs/polydb-cli/internal/core/ports/driven"
	"github.com/custodia-labs/polydb-cli/internal/core/ports/driving"
	"github.com/custodia-labs/polydb-cli/internal/logger"
)

// Ensure CollectionService implements the interface.
var _ driving.CollectionService = (*CollectionService)(nil)

// CollectionService queries documents and strips their _attrs metadata.
type CollectionService struct {
	db driven.Database
}

// NewCollectionService creates a new collection service.
func NewCollectionService(db driven.Database) *CollectionService {
	return &CollectionService{db: db}
}

// Info returns the metadata of collection.
func (s *CollectionService) Info(ctx context.Context, collection string) (*domain.CollectionInfo, error) {
	return loadCollectionInfo(ctx, s.db, collection)
}

// FindOne returns the first document matching opts.
func (s *CollectionService) FindOne(
	ctx context.Context, collection string, opts domain.FindOptions,
) (domain.Document, error) {
	if err := s.check(collection, opts); err != nil {
		return nil, err
	}
	logger.Debug("FindOne in %s: filter=%v skip=%d", collection, opts.Filter, opts.Skip)
	doc, err := s.db.FindOne(ctx, collection, opts)
	if err != nil {
		return nil, err
	}
	return doc.Sanitize(), nil
}

// Find returns all documents matching opts.
func (s *CollectionService) Find(
	ctx context.Context, collection string, opts domain.FindOptions,
) ([]domain.Document, error) {
	var docs []domain.Document
	err := s.Each(ctx, collection, opts, func(d domain.Document) error {
		docs = append(docs, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Each streams documents matching opts to fn.
func (s *CollectionService) Each(
	ctx context.Context, collection string, opts domain.FindOptions, fn func(domain.Document) error,
) (err error) {
	if err := s.check(collection, opts); err != nil {
		return err
	}
	logger.Debug("Find in %s: filter=%v sort=%v skip=%d limit=%d",
		collection, opts.Filter, opts.Sort, opts.Skip, opts.Limit)

	cur, err := s.db.Find(ctx, collection, opts)
	if err != nil {
		return fmt.Errorf("querying %s: %w", collection, err)
	}
	defer func() {
		if cerr := cur.Close(ctx); cerr != nil && err == nil {
			err = fmt.Errorf("closing cursor: %w", cerr)
		}
	}()

	n := 0
	for cur.Next(ctx) {
		if err := fn(cur.Document().Sanitize()); err != nil {
			return err
		}
		n++
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", collection, err)
	}
	logger.Debug("Streamed %d documents", n)
	return nil
}

// IDs returns the ids of all documents matching opts. Any projection in
// opts is replaced by one selecting only _id.
func (s *CollectionService) IDs(ctx context.Context, collection string, opts domain.FindOptions) ([]string, error) {
	opts.Projection = map[string]any{domain.IDField: 1}
	ids := []string{}
	err := s.Each(ctx, collection, opts, func(d domain.Document) error {
		ids = append(ids, d.ID())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Distinct returns the distinct values of field among documents matching filter.
func (s *CollectionService) Distinct(
	ctx context.Context, collection, field string, filter map[string]any,
) ([]any, error) {
	if err := s.check(collection, domain.FindOptions{}); err != nil {
		return nil, err
	}
	if field == "" {
		return []any{}, nil
	}
	values, err := s.db.Distinct(ctx, collection, field, filter)
	if err != nil {
		return nil, fmt.Errorf("distinct %s in %s: %w", field, collection, err)
	}
	return values, nil
}

// Count returns the number of documents matching filter.
func (s *CollectionService) Count(ctx context.Context, collection string, filter map[string]any) (int64, error) {
	if err := s.check(collection, domain.FindOptions{}); err != nil {
		return 0, err
	}
	n, err := s.db.Count(ctx, collection, filter)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", collection, err)
	}
	return n, nil
}

// Get returns the document with the given id.
func (s *CollectionService) Get(ctx context.Context, collection, id string) (domain.Document, error) {
	doc, err := s.FindOne(ctx, collection, domain.FindOptions{
		Filter: map[string]any{domain.IDField: id},
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("document %q in %s: %w", id, collection, domain.ErrNotFound)
	}
	return doc, err
}

func (s *CollectionService) check(collection string, opts domain.FindOptions) error {
	if s.db == nil {
		return domain.ErrNotConnected
	}
	if collection == "" {
		return fmt.Errorf("%w: empty collection name", domain.ErrInvalidInput)
	}
	return opts.Validate()
}
