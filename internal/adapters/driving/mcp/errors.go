// Package mcp provides an MCP (Model Context Protocol) server adapter for polyDB.
// It lets AI assistants browse collections, query documents and convert
// typed properties.
package mcp

import "errors"

// ErrMissingCatalogService is returned when the catalog service is not provided.
var ErrMissingCatalogService = errors.New("mcp: catalog service is required")

// ErrMissingCollectionService is returned when the collection service is not provided.
var ErrMissingCollectionService = errors.New("mcp: collection service is required")
