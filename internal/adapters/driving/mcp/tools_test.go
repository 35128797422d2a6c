package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	server, err := NewServer(newTestPorts())
	require.NoError(t, err)
	return server
}

func TestServer_handleListSections(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)

	_, out, err := server.handleListSections(ctx, nil, SectionsInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Polytopes"}, out.Names)
	assert.Equal(t, 1, out.Count)

	_, out, err = server.handleListSections(ctx, nil, SectionsInput{Section: "Matroids"})
	require.NoError(t, err)
	assert.Empty(t, out.Names)
	assert.NotNil(t, out.Names)
}

func TestServer_handleListCollections(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)

	_, out, err := server.handleListCollections(ctx, nil, CollectionsInput{Section: "Polytopes"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Lattice.SmoothReflexive"}, out.Names)

	t.Run("returns error on catalog failure", func(t *testing.T) {
		p := newTestPorts()
		p.Catalog = &failingCatalog{err: errors.New("connection refused")}
		s, err := NewServer(p)
		require.NoError(t, err)

		_, _, err = s.handleListCollections(ctx, nil, CollectionsInput{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestServer_handleFind(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)

	t.Run("filters and sorts", func(t *testing.T) {
		_, out, err := server.handleFind(ctx, nil, FindInput{
			Collection: testCollection,
			Sort:       "-DIM",
		})
		require.NoError(t, err)
		require.Equal(t, 2, out.Count)
		assert.Equal(t, "F.3D.0000", out.Documents[0]["_id"])
		assert.NotContains(t, out.Documents[1], "_attrs")
	})

	t.Run("applies filter", func(t *testing.T) {
		_, out, err := server.handleFind(ctx, nil, FindInput{
			Collection: testCollection,
			Filter:     map[string]any{"DIM": 2},
		})
		require.NoError(t, err)
		require.Equal(t, 1, out.Count)
		assert.Equal(t, "F.2D.0000", out.Documents[0]["_id"])
	})

	t.Run("invalid sort", func(t *testing.T) {
		_, _, err := server.handleFind(ctx, nil, FindInput{Collection: testCollection, Sort: "DIM,,"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("empty collection name", func(t *testing.T) {
		_, _, err := server.handleFind(ctx, nil, FindInput{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_handleGetDocument(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)

	_, out, err := server.handleGetDocument(ctx, nil, GetDocumentInput{Collection: testCollection, ID: "F.3D.0000"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.Document["DIM"])

	_, _, err = server.handleGetDocument(ctx, nil, GetDocumentInput{Collection: testCollection, ID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestServer_handleConvertField(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)

	t.Run("uses stored type", func(t *testing.T) {
		_, out, err := server.handleConvertField(ctx, nil, ConvertFieldInput{
			Collection: testCollection, ID: "F.2D.0000", Field: "VERTICES",
		})
		require.NoError(t, err)
		assert.Equal(t, "Matrix<Integer>", out.Type)
		assert.Equal(t, "1 -1 -1\n1 1 0\n1 0 1", out.Text)
	})

	t.Run("affine", func(t *testing.T) {
		_, out, err := server.handleConvertField(ctx, nil, ConvertFieldInput{
			Collection: testCollection, ID: "F.2D.0000", Field: "VERTICES", Affine: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "-1 -1\n1 0\n0 1", out.Text)
	})

	t.Run("unavailable without conversion service", func(t *testing.T) {
		p := newTestPorts()
		p.Conversion = nil
		s, err := NewServer(p)
		require.NoError(t, err)

		_, _, err = s.handleConvertField(ctx, nil, ConvertFieldInput{})
		assert.ErrorIs(t, err, ErrConversionUnavailable)
	})
}

func TestServer_handleParseType(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)

	_, out, err := server.handleParseType(ctx, nil, ParseTypeInput{Signature: "Map< Int ,Set<Int>>"})
	require.NoError(t, err)
	assert.Equal(t, "Map<Int,Set<Int>>", out.Canonical)
	assert.Equal(t, "Map", out.Kind)
	assert.Equal(t, []string{"Int", "Set<Int>"}, out.Args)

	_, _, err = server.handleParseType(ctx, nil, ParseTypeInput{Signature: "Set<"})
	assert.ErrorIs(t, err, domain.ErrMalformedTypeSignature)
}
