package driven

import "github.com/custodia-labs/skycat/internal/core/domain"

// Metrics records engine activity. Implementations must tolerate any
// call order; the engine calls them from a single goroutine.
type Metrics interface {
	// ScanStarted is called once per group scan.
	ScanStarted(group domain.GroupSignature)

	// BatchScanned is called for every raw batch read.
	BatchScanned(group domain.GroupSignature, rows int)

	// RowsWritten is called after a catalog's rows for one batch are written.
	RowsWritten(catalog string, rows int)

	// WriteFinished is called once per write with its outcome.
	WriteFinished(rows int, err error)
}
