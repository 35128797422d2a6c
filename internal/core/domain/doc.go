// Package domain defines the core entities of the polyDB client.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A polyDB record with untyped values
//   - FindOptions: Filter, sort, projection and paging of a query
//   - SectionInfo, CollectionInfo: Metadata of the section hierarchy
//   - AppSettings: Connection and mirror configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
