package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
	"github.com/custodia-labs/polydb-cli/internal/core/ports/driven"
	"github.com/custodia-labs/polydb-cli/internal/core/ports/driving"
	"github.com/custodia-labs/polydb-cli/internal/logger"
)

// Ensure MirrorService implements the interface.
var _ driving.MirrorService = (*MirrorService)(nil)

// DefaultMirrorBatchSize is the number of documents imported per write.
const DefaultMirrorBatchSize = 500

// MirrorService copies remote collections, with their metadata documents,
// into the local mirror so they can be queried offline.
type MirrorService struct {
	remote driven.Database
	mirror driven.MirrorStore
	now    func() time.Time
}

// NewMirrorService creates a new mirror service.
func NewMirrorService(remote driven.Database, mirror driven.MirrorStore) *MirrorService {
	return &MirrorService{remote: remote, mirror: mirror, now: time.Now}
}

// Mirror copies collection into the local mirror. Documents keep their
// _attrs so that types can be resolved offline. The collection's metadata
// document and those of its enclosing sections are copied as well.
func (s *MirrorService) Mirror(
	ctx context.Context, collection string, opts domain.MirrorOptions,
) (*domain.MirrorReport, error) {
	if s.remote == nil {
		return nil, domain.ErrNotConnected
	}
	if s.mirror == nil {
		return nil, domain.ErrNotImplemented
	}
	if collection == "" {
		return nil, fmt.Errorf("%w: empty collection name", domain.ErrInvalidInput)
	}
	if opts.Limit < 0 || opts.BatchSize < 0 {
		return nil, fmt.Errorf("%w: negative limit or batch size", domain.ErrInvalidInput)
	}
	batchSize := opts.BatchSize
	if batchSize == 0 {
		batchSize = DefaultMirrorBatchSize
	}

	report := &domain.MirrorReport{
		Collection: collection,
		BatchID:    uuid.NewString(),
		StartedAt:  s.now(),
	}
	logger.Section("Mirror " + collection)
	logger.Debug("Batch %s into %s", report.BatchID, s.mirror.Path())

	n, err := s.copyDocuments(ctx, collection, domain.FindOptions{
		Filter:    opts.Filter,
		Limit:     opts.Limit,
		BatchSize: int32(batchSize),
	}, batchSize, report.BatchID)
	if err != nil {
		return nil, err
	}
	report.Documents = n

	report.WithInfo, err = s.copyMetadata(ctx, domain.CollectionInfoCollection(collection),
		domain.MetadataID(collection), report.BatchID)
	if err != nil {
		return nil, err
	}
	for _, section := range enclosingSections(collection) {
		if _, err := s.copyMetadata(ctx, domain.SectionInfoCollection(section),
			domain.MetadataID(section), report.BatchID); err != nil {
			return nil, err
		}
	}

	report.FinishedAt = s.now()
	logger.Info("Mirrored %d documents of %s in %s", report.Documents, collection, report.Duration())
	return report, nil
}

func (s *MirrorService) copyDocuments(
	ctx context.Context, collection string, opts domain.FindOptions, batchSize int, batchID string,
) (total int, err error) {
	cur, err := s.remote.Find(ctx, collection, opts)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", collection, err)
	}
	defer func() {
		if cerr := cur.Close(ctx); cerr != nil && err == nil {
			err = fmt.Errorf("closing cursor: %w", cerr)
		}
	}()

	batch := make([]domain.Document, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.mirror.Import(ctx, collection, batch, batchID)
		if err != nil {
			return fmt.Errorf("importing into mirror: %w", err)
		}
		total += n
		logger.Debug("Imported %d documents (%d total)", n, total)
		batch = batch[:0]
		return nil
	}

	for cur.Next(ctx) {
		batch = append(batch, cur.Document())
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := cur.Err(); err != nil {
		return total, fmt.Errorf("reading %s: %w", collection, err)
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

// copyMetadata copies a single metadata document. A missing document is not
// an error.
func (s *MirrorService) copyMetadata(ctx context.Context, infoCollection, id, batchID string) (bool, error) {
	doc, err := s.remote.FindOne(ctx, infoCollection, domain.FindOptions{
		Filter: map[string]any{domain.IDField: id},
	})
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warn("No metadata document %s in %s", id, infoCollection)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", infoCollection, err)
	}
	if _, err := s.mirror.Import(ctx, infoCollection, []domain.Document{doc}, batchID); err != nil {
		return false, fmt.Errorf("importing %s: %w", infoCollection, err)
	}
	return true, nil
}

// Collections returns the names of all mirrored data collections.
func (s *MirrorService) Collections(ctx context.Context) ([]string, error) {
	if s.mirror == nil {
		return nil, domain.ErrNotImplemented
	}
	names, err := s.mirror.Collections(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !domain.IsMetadataCollection(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

// enclosingSections returns the section paths containing collection,
// outermost first: "A.B.C" yields "A" and "A.B".
func enclosingSections(collection string) []string {
	parts := strings.Split(collection, ".")
	out := make([]string, 0, len(parts)-1)
	for i := 1; i < len(parts); i++ {
		out = append(out, strings.Join(parts[:i], "."))
	}
	return out
}
