package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMetadataNames tests metadata collection naming
func TestMetadataNames(t *testing.T) {
	assert.Equal(t, "_sectionInfo.Polytopes.Lattice", SectionInfoCollection("Polytopes.Lattice"))
	assert.Equal(t, "_collectionInfo.Polytopes.Lattice.SmoothReflexive",
		CollectionInfoCollection("Polytopes.Lattice.SmoothReflexive"))
	assert.Equal(t, "Polytopes.Lattice.2.1", MetadataID("Polytopes.Lattice"))
	assert.True(t, IsMetadataCollection("_sectionInfo.Polytopes"))
	assert.True(t, IsMetadataCollection("_collectionInfo.Polytopes.Lattice.FewVertices"))
	assert.False(t, IsMetadataCollection("Polytopes.Lattice.FewVertices"))
}

// TestPeopleFrom tests the accepted maintainer shapes
func TestPeopleFrom(t *testing.T) {
	single := PeopleFrom(map[string]any{"name": "Andreas Paffenholz", "email": "a@example.org"})
	require.Len(t, single, 1)
	assert.Equal(t, "Andreas Paffenholz", single[0].Name)
	assert.Equal(t, "Andreas Paffenholz <a@example.org>", single[0].String())

	list := PeopleFrom([]any{
		map[string]any{"name": "A"},
		"B",
	})
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].String())
	assert.Equal(t, "B", list[1].Name)

	assert.Nil(t, PeopleFrom(nil))
	assert.Nil(t, PeopleFrom(42))
}

// TestSectionInfoFrom tests section metadata extraction
func TestSectionInfoFrom(t *testing.T) {
	doc := Document{
		"_id":          "Polytopes.Lattice.2.1",
		"maintainer":   map[string]any{"name": "Andreas Paffenholz"},
		"description":  "lattice polytopes",
		"sectionDepth": int32(2),
	}

	info := SectionInfoFrom("Polytopes.Lattice", doc)

	assert.Equal(t, "Polytopes.Lattice", info.Name)
	require.Len(t, info.Maintainers, 1)
	assert.Equal(t, "Andreas Paffenholz", info.Maintainers[0].Name)
	assert.Equal(t, "lattice polytopes", info.Description)
	assert.Equal(t, 2, info.Depth)
}

// TestCollectionInfoFrom tests collection metadata extraction
func TestCollectionInfoFrom(t *testing.T) {
	doc := Document{
		"author":      []any{map[string]any{"name": "A"}},
		"contributor": []any{},
		"maintainer":  []any{map[string]any{"name": "Andreas Paffenholz"}},
		"references":  map[string]any{"title": "Smooth reflexive polytopes"},
		"description": "smooth reflexive lattice polytopes",
	}

	info := CollectionInfoFrom("Polytopes.Lattice.SmoothReflexive", doc)

	require.Len(t, info.Maintainers, 1)
	assert.Equal(t, "Andreas Paffenholz", info.Maintainers[0].Name)
	assert.Len(t, info.Authors, 1)
	assert.Empty(t, info.Contributors)
	assert.Len(t, info.References, 1)
	assert.Equal(t, "smooth reflexive lattice polytopes", info.Description)
}

// TestSectionTree tests hierarchy construction
func TestSectionTree(t *testing.T) {
	tree := SectionTree{}
	tree.Insert("Polytopes.Lattice")
	tree.Insert("Polytopes.Combinatorial")
	tree.Insert("Matroids")
	tree.Insert("Polytopes")

	assert.Equal(t, []string{"Matroids", "Polytopes"}, tree.Names())
	assert.Equal(t, []string{"Combinatorial", "Lattice"}, tree["Polytopes"].Names())
	assert.Empty(t, tree["Matroids"])
}
