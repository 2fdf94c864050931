package driven

import (
	"context"

	"github.com/custodia-labs/skycat/internal/core/domain"
)

// ScanRequest describes one scan of a table.
type ScanRequest struct {
	// Table is the table to read.
	Table string

	// IDColumn, RAColumn and DecColumn are the group's shared columns.
	IDColumn  string
	RAColumn  string
	DecColumn string

	// Columns is the full set of raw columns to return. It includes the
	// id and position columns.
	Columns []string

	// Bound, if set, is applied to RAColumn/DecColumn by the source.
	// Returned rows must all lie inside it.
	Bound *domain.SpatialBound

	// ChunkSize is the maximum number of rows per batch.
	ChunkSize int
}

// DataSource is a connection to a database holding catalog tables.
type DataSource interface {
	// Name returns the configured source name.
	Name() string

	// Scan starts a scan and returns its cursor. The cursor holds one
	// connection until it is closed.
	Scan(ctx context.Context, req ScanRequest) (Cursor, error)

	// Close releases the source's connections.
	Close() error
}

// Cursor yields the batches of one scan in the source's natural order.
type Cursor interface {
	// Next returns the next non-empty batch, or io.EOF when the scan is done.
	Next(ctx context.Context) (domain.RawBatch, error)

	// Close releases the cursor's connection. It is safe to call twice.
	Close() error
}

// DataSourceRegistry resolves data source names.
type DataSourceRegistry interface {
	// Get returns the source with the given name or domain.ErrNotFound.
	Get(ctx context.Context, name string) (DataSource, error)
}

// SourceSet is the data sources of one project. Sources are opened on
// demand and closed together.
type SourceSet interface {
	DataSourceRegistry

	// Check opens and closes every source, reporting each outcome in
	// configuration order.
	Check(ctx context.Context) []domain.SourceStatus

	// Close closes every source opened so far.
	Close() error
}

// SourceSetFactory creates source sets. It validates configuration but
// does not connect.
type SourceSetFactory interface {
	NewSourceSet(configs []domain.SourceConfig) (SourceSet, error)
}
