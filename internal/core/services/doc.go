// Package services implements the driving port interfaces.
// Services contain the compound catalog engine and orchestrate
// calls to driven ports (data sources, expression compiler, metrics).
//
// The pipeline, leaf-first:
//
//   - Resolver: signature of the table a catalog reads
//   - Planner: groups catalogs that can share one scan
//   - ChunkedScanner: one filtered, chunked scan per group
//   - Projector: computes one catalog's output row from a raw row
//   - OutputWriter: renders rows with each catalog's formats
//   - CompoundCatalog: runs the groups in order and writes the result
package services
