package services

import (
	"github.com/custodia-labs/polydb-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/polydb-cli/internal/core/domain"
)

const testCollection = "Polytopes.Lattice.SmoothReflexive"

// newTestDatabase returns an in-memory database laid out like polyDB: two
// sections, three collections and their metadata documents.
func newTestDatabase() *memory.Database {
	db := memory.NewDatabase()

	db.Insert("_sectionInfo.Polytopes", domain.Document{
		"_id":          "Polytopes.2.1",
		"maintainer":   map[string]any{"name": "Andreas Paffenholz"},
		"description":  "polytopes",
		"sectionDepth": int32(1),
	})
	db.Insert("_sectionInfo.Polytopes.Lattice", domain.Document{
		"_id":          "Polytopes.Lattice.2.1",
		"maintainer":   map[string]any{"name": "Andreas Paffenholz"},
		"description":  "lattice polytopes",
		"sectionDepth": int32(2),
	})
	db.Insert("_sectionInfo.Polytopes.Combinatorial", domain.Document{
		"_id": "Polytopes.Combinatorial.2.1",
	})
	db.Insert("_sectionInfo.Matroids", domain.Document{"_id": "Matroids.2.1"})

	db.Insert("_collectionInfo."+testCollection, domain.Document{
		"_id":         testCollection + ".2.1",
		"author":      []any{map[string]any{"name": "Mikkel Øbro"}},
		"contributor": []any{},
		"maintainer":  []any{map[string]any{"name": "Andreas Paffenholz"}},
		"references":  []any{map[string]any{"title": "An algorithm for the classification of smooth Fano polytopes"}},
		"description": "smooth reflexive lattice polytopes",
	})
	db.Insert("_collectionInfo.Polytopes.Lattice.FewVertices", domain.Document{
		"_id": "Polytopes.Lattice.FewVertices.2.1",
	})
	db.Insert("_collectionInfo.Matroids.Small", domain.Document{"_id": "Matroids.Small.2.1"})

	db.Insert(testCollection,
		domain.Document{
			"_id":        "F.2D.0000",
			"DIM":        int64(2),
			"N_VERTICES": int64(3),
			"VERTICES":   []any{[]any{1, -1, -1}, []any{1, 1, 0}, []any{1, 0, 1}},
			"H_STAR":     []any{1, 1, 1},
			"_attrs": map[string]any{
				"VERTICES": map[string]any{"_type": "Matrix<Rational,NonSymmetric>"},
				"H_STAR":   map[string]any{"_type": "Vector<Integer>"},
			},
		},
		domain.Document{
			"_id":        "F.2D.0001",
			"DIM":        int64(2),
			"N_VERTICES": int64(4),
			"VERTICES":   []any{[]any{1, -1, -1}, []any{1, 1, -1}, []any{1, 1, 1}, []any{1, -1, 1}},
			"_attrs": map[string]any{
				"VERTICES": map[string]any{"_type": "Matrix<Rational,NonSymmetric>"},
			},
		},
		domain.Document{
			"_id":        "F.3D.0000",
			"DIM":        int64(3),
			"N_VERTICES": int64(4),
			"BROKEN":     []any{[]any{1, 2}, []any{3}},
			"_attrs": map[string]any{
				"BROKEN": map[string]any{"_type": "Matrix<Rational>"},
			},
		},
	)
	return db
}

// staticRegistry is a fixed driven.TypeRegistry.
type staticRegistry map[string]map[string]string

func (r staticRegistry) Lookup(collection, field string) (string, bool) {
	sig, ok := r[collection][field]
	return sig, ok
}

func (r staticRegistry) Fields(collection string) map[string]string {
	return r[collection]
}
