// Package domain defines the core entities of the compound catalog writer.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - CatalogSpec: A declared output catalog over one table
//   - Computation: How a single output column is derived from a raw row
//   - SpatialBound: A cone or box constraint on raw positions
//   - RawBatch: A chunk of filtered raw rows from one scan
//   - DataSourceGroup: Catalogs that share one physical scan
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
