package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/skycat/internal/core/domain"
)

// ProjectService loads catalog files and runs compound writes for them.
// It is used by the CLI and MCP adapters.
type ProjectService interface {
	// Load reads and validates the catalog file at path.
	Load(path string) (*domain.Project, error)

	// Save writes project to path.
	Save(path string, project *domain.Project) error

	// Inspect plans the project's scan groups without connecting to any source.
	Inspect(project *domain.Project) (*Inspection, error)

	// Write runs one compound write of project into output.
	Write(ctx context.Context, project *domain.Project, output string, opts WriteOptions) (*WriteResult, error)

	// CheckSources opens and closes every source of project.
	CheckSources(ctx context.Context, project *domain.Project) ([]domain.SourceStatus, error)
}

// Inspection is the planned shape of a compound write.
type Inspection struct {
	// Catalogs are the registered catalogs in input order.
	Catalogs []domain.CatalogSpec

	// Groups are the scan groups in scan order.
	Groups []domain.DataSourceGroup
}

// Grouping returns the catalog indices of each group.
func (i *Inspection) Grouping() [][]int {
	out := make([][]int, len(i.Groups))
	for gi, g := range i.Groups {
		out[gi] = append([]int(nil), g.Members...)
	}
	return out
}

// WriteOptions tunes one write.
type WriteOptions struct {
	// ChunkSize overrides the project's chunk size when positive.
	ChunkSize int

	// Progress, if set, is called as rows are written.
	Progress func(Progress)
}

// WriteResult summarises a finished write.
type WriteResult struct {
	Output   string
	Rows     int
	Groups   int
	Duration time.Duration
}
