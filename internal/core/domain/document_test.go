package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() Document {
	return Document{
		"_id":        "F.4D.0000",
		"DIM":        int64(4),
		"N_VERTICES": int64(5),
		"VERTICES":   []any{[]any{int64(1), int64(0)}, []any{int64(1), int64(1)}},
		"LATTICE": map[string]any{
			"VOLUME": "1/2",
		},
		"_attrs": map[string]any{
			"VERTICES": map[string]any{"_type": "Matrix<Rational,NonSymmetric>"},
			"LATTICE":  map[string]any{},
		},
	}
}

// TestDocument_ID tests id rendering
func TestDocument_ID(t *testing.T) {
	assert.Equal(t, "F.4D.0000", sampleDocument().ID())
	assert.Equal(t, "42", Document{"_id": int64(42)}.ID())
	assert.Equal(t, "", Document{}.ID())
	assert.Equal(t, "", Document{"_id": nil}.ID())
}

// TestDocument_Get tests dotted path lookup
func TestDocument_Get(t *testing.T) {
	doc := sampleDocument()

	v, ok := doc.Get("LATTICE.VOLUME")
	require.True(t, ok)
	assert.Equal(t, "1/2", v)

	_, ok = doc.Get("LATTICE.MISSING")
	assert.False(t, ok)

	_, ok = doc.Get("DIM.X")
	assert.False(t, ok)

	_, ok = doc.Get("")
	assert.False(t, ok)
}

// TestDocument_TypeOf tests reading signatures from _attrs
func TestDocument_TypeOf(t *testing.T) {
	doc := sampleDocument()

	sig, ok := doc.TypeOf("VERTICES")
	require.True(t, ok)
	assert.Equal(t, "Matrix<Rational,NonSymmetric>", sig)

	_, ok = doc.TypeOf("LATTICE")
	assert.False(t, ok)

	_, ok = doc.TypeOf("DIM")
	assert.False(t, ok)

	_, ok = Document{"_id": "x"}.TypeOf("DIM")
	assert.False(t, ok)
}

// TestDocument_Sanitize tests that _attrs is dropped without mutating the source
func TestDocument_Sanitize(t *testing.T) {
	doc := sampleDocument()

	clean := doc.Sanitize()

	assert.NotContains(t, clean, AttrsField)
	assert.Contains(t, doc, AttrsField)
	assert.Equal(t, doc["DIM"], clean["DIM"])
	assert.Nil(t, Document(nil).Sanitize())
}

// TestDocument_Fields tests property listing
func TestDocument_Fields(t *testing.T) {
	fields := sampleDocument().Fields()

	assert.ElementsMatch(t, []string{"DIM", "N_VERTICES", "VERTICES", "LATTICE"}, fields)
}
