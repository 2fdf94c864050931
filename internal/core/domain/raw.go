package domain

// RawRow is one record fetched from a data source, keyed by raw column name.
// Rows are shared by every catalog in a group and must not be modified.
type RawRow map[string]any

// Schema maps raw column names to the kind reported by the data source.
// Sources that cannot tell report KindUnknown or omit the column.
type Schema map[string]ValueKind

// RawBatch is one chunk of a scan. It is consumed once and then dropped.
type RawBatch struct {
	// Schema describes the columns of Rows.
	Schema Schema

	// Rows are already filtered by the spatial bound.
	Rows []RawRow
}

// Len returns the number of rows in the batch.
func (b RawBatch) Len() int {
	return len(b.Rows)
}

// OutputRow holds the computed values of one catalog row, in output column order.
type OutputRow struct {
	// CatalogIndex is the position of the owning catalog in the engine's input.
	CatalogIndex int

	// Values are aligned with the catalog's Outputs.
	Values []any
}
