// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DataSource: Runs one filtered, chunked scan of a table
//   - Cursor: Yields the raw batches of a scan
//   - DataSourceRegistry: Resolves data source names to DataSources
//   - SourceSet / SourceSetFactory: The sources of one project, opened on demand
//   - ExpressionCompiler: Compiles output column expressions
//   - ProjectStore: Reads and writes catalog files
//
// # Optional Interfaces
//
// These can be nil - the engine works without them:
//
//   - Metrics: Scan and write counters
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
