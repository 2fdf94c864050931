// Package sqlite opens SQLite catalog databases as data sources.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Scanning is provided by the sqldb package.
//
// # Demo Database
//
// CreateDemo builds a small sky database with a stars and a galaxies table from
// the versioned scripts in the migrations/ directory. It backs the demo command
// and the integration tests.
//
// # Thread Safety
//
// Scans may run concurrently. Each open cursor holds one connection until closed.
package sqlite
