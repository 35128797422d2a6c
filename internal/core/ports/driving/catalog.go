package driving

import (
	"context"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
)

// CatalogService navigates the section hierarchy of the database.
type CatalogService interface {
	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error

	// Subsections returns the direct subsections of section, sorted.
	// An empty section lists the top level.
	Subsections(ctx context.Context, section string) ([]string, error)

	// SubsectionTree returns every subsection below section as a tree.
	SubsectionTree(ctx context.Context, section string) (domain.SectionTree, error)

	// Collections returns the collections below section, relative to it.
	Collections(ctx context.Context, section string) ([]string, error)

	// SectionInfo returns the metadata of section.
	// Returns domain.ErrNotFound if the section does not exist.
	SectionInfo(ctx context.Context, section string) (*domain.SectionInfo, error)

	// CollectionInfo returns the metadata of collection.
	// Returns domain.ErrNotFound if the collection does not exist.
	CollectionInfo(ctx context.Context, collection string) (*domain.CollectionInfo, error)
}
