package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
	"github.com/custodia-labs/polydb-cli/internal/core/ports/driven"
	"github.com/custodia-labs/polydb-cli/internal/core/ports/driving"
	"github.com/custodia-labs/polydb-cli/internal/logger"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// CatalogService navigates sections and collections through their metadata
// collections.
type CatalogService struct {
	db driven.Database
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(db driven.Database) *CatalogService {
	return &CatalogService{db: db}
}

// Ping checks that the database is reachable.
func (s *CatalogService) Ping(ctx context.Context) error {
	if s.db == nil {
		return domain.ErrNotConnected
	}
	return s.db.Ping(ctx)
}

// Subsections returns the direct subsections of section, sorted.
func (s *CatalogService) Subsections(ctx context.Context, section string) ([]string, error) {
	paths, err := s.sectionPaths(ctx, section)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, p := range paths {
		first, _, _ := strings.Cut(p, ".")
		if first == "" || seen[first] {
			continue
		}
		seen[first] = true
		out = append(out, first)
	}
	sort.Strings(out)
	return out, nil
}

// SubsectionTree returns every subsection below section as a tree.
func (s *CatalogService) SubsectionTree(ctx context.Context, section string) (domain.SectionTree, error) {
	paths, err := s.sectionPaths(ctx, section)
	if err != nil {
		return nil, err
	}
	tree := domain.SectionTree{}
	for _, p := range paths {
		tree.Insert(p)
	}
	return tree, nil
}

// sectionPaths lists section paths below section, relative to it.
func (s *CatalogService) sectionPaths(ctx context.Context, section string) ([]string, error) {
	if s.db == nil {
		return nil, domain.ErrNotConnected
	}
	prefix := domain.SectionInfoPrefix
	if section != "" {
		prefix += section + "."
	}
	names, err := s.db.ListCollectionNames(ctx, "^"+regexp.QuoteMeta(prefix))
	if err != nil {
		return nil, fmt.Errorf("listing sections: %w", err)
	}
	paths := make([]string, 0, len(names))
	for _, n := range names {
		paths = append(paths, strings.TrimPrefix(n, prefix))
	}
	sort.Strings(paths)
	logger.Debug("Sections below %q: %d", section, len(paths))
	return paths, nil
}

var collectionNameRe = regexp.MustCompile(`^[\w.]+$`)

// Collections returns the collections below section, relative to it.
func (s *CatalogService) Collections(ctx context.Context, section string) ([]string, error) {
	if s.db == nil {
		return nil, domain.ErrNotConnected
	}
	prefix := domain.CollectionInfoPrefix
	if section != "" {
		prefix += section + "."
	}
	names, err := s.db.ListCollectionNames(ctx, "^"+regexp.QuoteMeta(prefix))
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		rel := strings.TrimPrefix(n, prefix)
		if rel == "" || !collectionNameRe.MatchString(rel) {
			continue
		}
		out = append(out, rel)
	}
	sort.Strings(out)
	return out, nil
}

// SectionInfo returns the metadata of section. The empty section is the
// root, which has no metadata document of its own.
func (s *CatalogService) SectionInfo(ctx context.Context, section string) (*domain.SectionInfo, error) {
	if s.db == nil {
		return nil, domain.ErrNotConnected
	}

	info := &domain.SectionInfo{}
	if section != "" {
		doc, err := s.db.FindOne(ctx, domain.SectionInfoCollection(section), domain.FindOptions{
			Filter: map[string]any{domain.IDField: domain.MetadataID(section)},
		})
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("section %q: %w", section, domain.ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("loading section %q: %w", section, err)
		}
		info = domain.SectionInfoFrom(section, doc)
	}

	var err error
	if info.Sections, err = s.Subsections(ctx, section); err != nil {
		return nil, err
	}
	if info.Collections, err = s.Collections(ctx, section); err != nil {
		return nil, err
	}
	return info, nil
}

// CollectionInfo returns the metadata of collection.
func (s *CatalogService) CollectionInfo(ctx context.Context, collection string) (*domain.CollectionInfo, error) {
	return loadCollectionInfo(ctx, s.db, collection)
}

func loadCollectionInfo(ctx context.Context, db driven.Database, collection string) (*domain.CollectionInfo, error) {
	if db == nil {
		return nil, domain.ErrNotConnected
	}
	if collection == "" {
		return nil, fmt.Errorf("%w: empty collection name", domain.ErrInvalidInput)
	}
	doc, err := db.FindOne(ctx, domain.CollectionInfoCollection(collection), domain.FindOptions{
		Filter: map[string]any{domain.IDField: domain.MetadataID(collection)},
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("collection %q: %w", collection, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading collection %q: %w", collection, err)
	}
	return domain.CollectionInfoFrom(collection, doc), nil
}
