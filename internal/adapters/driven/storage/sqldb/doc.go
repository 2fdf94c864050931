// Package sqldb implements driven.DataSource over database/sql.
//
// The driver-specific packages (sqlite, postgres, mssql) open a *sql.DB and
// wrap it with New and the matching Dialect. Scans select only the columns
// the table actually has; a column a catalog needs but the table lacks is
// left out of the batch and reported by the projector.
//
// Spatial bounds are pushed down as a range prefilter on the position
// columns and then applied exactly to every row, so the SQL predicate only
// needs to be a superset of the bound.
package sqldb
