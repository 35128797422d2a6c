package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCollectionName(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid collection URI",
			uri:      "polydb://collections/Matroids.Small",
			expected: "Matroids.Small",
		},
		{
			name:     "invalid prefix",
			uri:      "file://collections/Matroids.Small",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "polydb://collections/Matroids.Small/extra",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractCollectionName(tt.uri))
		})
	}
}

func TestExtractDocumentRef(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		collection string
		id         string
	}{
		{
			name:       "valid document URI",
			uri:        "polydb://documents/Matroids.Small/M.3.0",
			collection: "Matroids.Small",
			id:         "M.3.0",
		},
		{
			name: "missing id",
			uri:  "polydb://documents/Matroids.Small",
		},
		{
			name: "invalid prefix",
			uri:  "polydb://collections/Matroids.Small/M.3.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collection, id := extractDocumentRef(tt.uri)
			assert.Equal(t, tt.collection, collection)
			assert.Equal(t, tt.id, id)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleCollectionsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("lists collections", func(t *testing.T) {
		server := newTestServer(t)
		result, err := server.handleCollectionsResource(ctx, makeReadResourceRequest("polydb://collections"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var names []string
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &names))
		assert.Equal(t, []string{testCollection}, names)
	})

	t.Run("returns error on catalog failure", func(t *testing.T) {
		p := newTestPorts()
		p.Catalog = &failingCatalog{err: errors.New("connection refused")}
		server, err := NewServer(p)
		require.NoError(t, err)

		_, err = server.handleCollectionsResource(ctx, makeReadResourceRequest("polydb://collections"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing collections")
	})
}

func TestServer_handleCollectionInfoResource(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)

	t.Run("returns metadata", func(t *testing.T) {
		result, err := server.handleCollectionInfoResource(ctx,
			makeReadResourceRequest("polydb://collections/"+testCollection))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "smooth reflexive lattice polytopes")
		assert.Contains(t, result.Contents[0].Text, "Mikkel Øbro")
	})

	t.Run("invalid URI is not found", func(t *testing.T) {
		_, err := server.handleCollectionInfoResource(ctx, makeReadResourceRequest("polydb://collections/"))
		require.Error(t, err)
	})

	t.Run("unknown collection", func(t *testing.T) {
		_, err := server.handleCollectionInfoResource(ctx, makeReadResourceRequest("polydb://collections/Nope"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "getting collection info")
	})
}

func TestServer_handleDocumentResource(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t)

	result, err := server.handleDocumentResource(ctx,
		makeReadResourceRequest("polydb://documents/"+testCollection+"/F.3D.0000"))
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &doc))
	assert.Equal(t, "F.3D.0000", doc["_id"])
	assert.Equal(t, float64(3), doc["DIM"])

	_, err = server.handleDocumentResource(ctx, makeReadResourceRequest("polydb://documents/"+testCollection))
	require.Error(t, err)
}
