package mcp

import (
	"github.com/custodia-labs/polydb-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Catalog navigates sections and collections.
	Catalog driving.CatalogService

	// Collection queries documents.
	Collection driving.CollectionService

	// Conversion converts typed properties. Optional.
	Conversion driving.ConversionService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Catalog == nil {
		return ErrMissingCatalogService
	}
	if p.Collection == nil {
		return ErrMissingCollectionService
	}
	return nil
}
