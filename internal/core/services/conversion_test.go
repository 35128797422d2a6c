package services

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
	"github.com/custodia-labs/polydb-cli/internal/core/ports/driving"
	"github.com/custodia-labs/polydb-cli/internal/polytype"
)

func TestConversionService_ConvertValue(t *testing.T) {
	svc := NewConversionService(nil, nil)

	v, err := svc.ConvertValue([]any{1, 2, 3}, "Vector<Integer>", false)
	require.NoError(t, err)
	vec, ok := v.(polytype.Vector[*big.Int])
	require.True(t, ok)
	assert.Equal(t, "1 2 3", vec.String())

	affine, err := svc.ConvertValue([]any{[]any{5, 6}, []any{7, 8}}, "Matrix<Integer>", true)
	require.NoError(t, err)
	m, ok := affine.(*polytype.Matrix[*big.Int])
	require.True(t, ok)
	assert.Equal(t, "6\n8", m.String())

	_, err = svc.ConvertValue(1, "Set<", false)
	assert.ErrorIs(t, err, domain.ErrMalformedTypeSignature)
}

func TestConversionService_ResolveType(t *testing.T) {
	registry := staticRegistry{testCollection: {"H_STAR": "Vector<Int>", "DIM": "Int"}}
	svc := NewConversionService(newTestDatabase(), registry)
	doc := domain.Document{
		"_attrs": map[string]any{"H_STAR": map[string]any{"_type": "Vector<Integer>"}},
	}

	sig, err := svc.ResolveType(testCollection, doc, "H_STAR")
	require.NoError(t, err)
	assert.Equal(t, "Vector<Integer>", sig, "_attrs wins over the registry")

	sig, err = svc.ResolveType(testCollection, doc, "DIM")
	require.NoError(t, err)
	assert.Equal(t, "Int", sig)

	_, err = svc.ResolveType(testCollection, doc, "N_VERTICES")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = NewConversionService(nil, nil).ResolveType(testCollection, domain.Document{}, "DIM")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConversionService_ConvertField(t *testing.T) {
	svc := NewConversionService(newTestDatabase(), nil)

	field, err := svc.ConvertField(context.Background(), testCollection, "F.2D.0000", "VERTICES",
		driving.ConvertOptions{})

	require.NoError(t, err)
	assert.Equal(t, "Matrix<Rational,NonSymmetric>", field.Signature)
	assert.Equal(t, "F.2D.0000", field.ID)
	m, ok := field.Value.(*polytype.Matrix[*big.Rat])
	require.True(t, ok)
	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, 3, m.Cols())
}

func TestConversionService_ConvertField_AffineAndOverride(t *testing.T) {
	svc := NewConversionService(newTestDatabase(), nil)
	ctx := context.Background()

	field, err := svc.ConvertField(ctx, testCollection, "F.2D.0000", "VERTICES",
		driving.ConvertOptions{Affine: true})
	require.NoError(t, err)
	m := field.Value.(*polytype.Matrix[*big.Rat])
	assert.Equal(t, "-1 -1\n1 0\n0 1", m.String())

	field, err = svc.ConvertField(ctx, testCollection, "F.2D.0000", "DIM",
		driving.ConvertOptions{Signature: "Integer"})
	require.NoError(t, err)
	assert.Equal(t, "Integer", field.Signature)
	assert.Equal(t, big.NewInt(2), field.Value)
}

func TestConversionService_ConvertField_Errors(t *testing.T) {
	svc := NewConversionService(newTestDatabase(), nil)
	ctx := context.Background()

	_, err := svc.ConvertField(ctx, testCollection, "missing", "VERTICES", driving.ConvertOptions{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.ConvertField(ctx, testCollection, "F.2D.0000", "NOPE", driving.ConvertOptions{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.ConvertField(ctx, testCollection, "F.2D.0000", "DIM", driving.ConvertOptions{})
	assert.ErrorIs(t, err, domain.ErrNotFound, "no type known")

	_, err = svc.ConvertField(ctx, testCollection, "F.3D.0000", "BROKEN", driving.ConvertOptions{})
	assert.ErrorIs(t, err, domain.ErrShapeMismatch)

	_, err = svc.ConvertField(ctx, "", "F.2D.0000", "DIM", driving.ConvertOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewConversionService(nil, nil).ConvertField(ctx, testCollection, "x", "y", driving.ConvertOptions{})
	assert.ErrorIs(t, err, domain.ErrNotConnected)
}

func TestConversionService_ConvertDocument(t *testing.T) {
	registry := staticRegistry{testCollection: {"DIM": "Int"}}
	svc := NewConversionService(newTestDatabase(), registry)

	doc, err := svc.ConvertDocument(context.Background(), testCollection, "F.2D.0000")

	require.NoError(t, err)
	assert.Equal(t, "F.2D.0000", doc.ID)
	assert.Equal(t, map[string]string{
		"DIM":      "Int",
		"H_STAR":   "Vector<Integer>",
		"VERTICES": "Matrix<Rational,NonSymmetric>",
	}, doc.Types)
	assert.Equal(t, int64(2), doc.Fields["DIM"])
	assert.Equal(t, []string{"N_VERTICES"}, doc.Untyped)
}

func TestConversionService_ConvertDocument_PropagatesErrors(t *testing.T) {
	svc := NewConversionService(newTestDatabase(), nil)

	_, err := svc.ConvertDocument(context.Background(), testCollection, "F.3D.0000")

	assert.ErrorIs(t, err, domain.ErrShapeMismatch)
}

func TestConversionService_ParseType(t *testing.T) {
	svc := NewConversionService(nil, nil)

	info, err := svc.ParseType("common::Map<Int, Pair<Integer,Set<Int>>>")

	require.NoError(t, err)
	assert.Equal(t, "Map<Int,Pair<Integer,Set<Int>>>", info.Canonical)
	assert.Equal(t, "common::Map<Int,Pair<Integer,Set<Int>>>", info.Qualified)
	assert.Equal(t, "Map", info.Kind)
	require.Len(t, info.Args, 2)
	assert.Equal(t, "Pair", info.Args[1].Kind)
	assert.Equal(t, "Set<Int>", info.Args[1].Args[1].Canonical)

	_, err = svc.ParseType("Map<Int>")
	assert.ErrorIs(t, err, domain.ErrMalformedTypeSignature)
}
