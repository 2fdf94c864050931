package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/skycat/internal/core/domain"
)

// CompoundCatalog writes several catalogs into one output, scanning each
// shared table once.
type CompoundCatalog interface {
	// WriteCatalog truncates or creates path and writes every catalog to it.
	// Returns the total number of rows written.
	WriteCatalog(ctx context.Context, path string) (int, error)

	// WriteTo writes every catalog to w. Returns the total number of rows.
	WriteTo(ctx context.Context, w io.Writer) (int, error)

	// Grouping returns the catalog indices of each scan group, in scan order.
	Grouping() [][]int

	// Groups returns the planned scan groups.
	Groups() []domain.DataSourceGroup

	// Catalogs returns the registered catalogs in input order.
	Catalogs() []domain.CatalogSpec
}

// Progress is reported after each catalog's rows for one batch are written.
type Progress struct {
	// Group is the index of the group being scanned.
	Group int

	// Catalog is the index of the catalog whose rows were written.
	Catalog int

	// Rows is the running total of rows written in this run.
	Rows int
}
