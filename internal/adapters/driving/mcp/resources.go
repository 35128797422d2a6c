package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// URIScheme is the custom URI scheme for polyDB resources.
	uriScheme = "polydb://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource listing every collection.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "collections",
		Name:        "collections",
		Description: "Names of all polyDB collections",
		MIMEType:    "application/json",
	}, s.handleCollectionsResource)

	// Template for collection metadata.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "collections/{name}",
		Name:        "collection-info",
		Description: "Description, authors and references of a collection",
		MIMEType:    "application/json",
	}, s.handleCollectionInfoResource)

	// Template for single documents.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{collection}/{id}",
		Name:        "document",
		Description: "A single document of a collection",
		MIMEType:    "application/json",
	}, s.handleDocumentResource)
}

// handleCollectionsResource returns the names of all collections.
func (s *Server) handleCollectionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	names, err := s.ports.Catalog.Collections(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return jsonResult(req.Params.URI, names)
}

// handleCollectionInfoResource returns the metadata of a collection.
func (s *Server) handleCollectionInfoResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractCollectionName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	info, err := s.ports.Catalog.CollectionInfo(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("getting collection info: %w", err)
	}
	return jsonResult(req.Params.URI, info)
}

// handleDocumentResource returns a single document.
func (s *Server) handleDocumentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	collection, id := extractDocumentRef(req.Params.URI)
	if collection == "" || id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Collection.Get(ctx, collection, id)
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	return jsonResult(req.Params.URI, doc)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCollectionName extracts the name from a URI like polydb://collections/{name}.
func extractCollectionName(uri string) string {
	const prefix = uriScheme + "collections/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	name := strings.TrimPrefix(uri, prefix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}

// extractDocumentRef extracts collection and id from a URI like
// polydb://documents/{collection}/{id}. Collection names contain no slash.
func extractDocumentRef(uri string) (collection, id string) {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return "", ""
	}
	collection, id, ok := strings.Cut(strings.TrimPrefix(uri, prefix), "/")
	if !ok {
		return "", ""
	}
	return collection, id
}
