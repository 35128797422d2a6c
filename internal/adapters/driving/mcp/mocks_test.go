package mcp

import (
	"context"

	"github.com/custodia-labs/polydb-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/polydb-cli/internal/core/domain"
	"github.com/custodia-labs/polydb-cli/internal/core/ports/driving"
	"github.com/custodia-labs/polydb-cli/internal/core/services"
)

const testCollection = "Polytopes.Lattice.SmoothReflexive"

// newTestPorts wires real services over a small in-memory database.
func newTestPorts() *Ports {
	db := memory.NewDatabase()
	db.Insert("_sectionInfo.Polytopes", domain.Document{"_id": "Polytopes.2.1"})
	db.Insert("_sectionInfo.Polytopes.Lattice", domain.Document{"_id": "Polytopes.Lattice.2.1"})
	db.Insert("_collectionInfo."+testCollection, domain.Document{
		"_id":         testCollection + ".2.1",
		"description": "smooth reflexive lattice polytopes",
		"author":      []any{map[string]any{"name": "Mikkel Øbro"}},
	})
	db.Insert(testCollection,
		domain.Document{
			"_id":      "F.2D.0000",
			"DIM":      int64(2),
			"VERTICES": []any{[]any{1, -1, -1}, []any{1, 1, 0}, []any{1, 0, 1}},
			"_attrs": map[string]any{
				"VERTICES": map[string]any{"_type": "Matrix<Integer>"},
			},
		},
		domain.Document{"_id": "F.3D.0000", "DIM": int64(3)},
	)

	return &Ports{
		Catalog:    services.NewCatalogService(db),
		Collection: services.NewCollectionService(db),
		Conversion: services.NewConversionService(db, nil),
	}
}

// failingCatalog is a driving.CatalogService whose every call fails.
type failingCatalog struct {
	err error
}

var _ driving.CatalogService = (*failingCatalog)(nil)

func (m *failingCatalog) Ping(_ context.Context) error { return m.err }

func (m *failingCatalog) Subsections(_ context.Context, _ string) ([]string, error) {
	return nil, m.err
}

func (m *failingCatalog) SubsectionTree(_ context.Context, _ string) (domain.SectionTree, error) {
	return nil, m.err
}

func (m *failingCatalog) Collections(_ context.Context, _ string) ([]string, error) {
	return nil, m.err
}

func (m *failingCatalog) SectionInfo(_ context.Context, _ string) (*domain.SectionInfo, error) {
	return nil, m.err
}

func (m *failingCatalog) CollectionInfo(_ context.Context, _ string) (*domain.CollectionInfo, error) {
	return nil, m.err
}
