package driven

import "github.com/custodia-labs/skycat/internal/core/domain"

// ProjectStore reads and writes catalog files.
type ProjectStore interface {
	// Load reads and validates the project at path.
	Load(path string) (*domain.Project, error)

	// Save writes project to path, replacing any existing file.
	Save(path string, project *domain.Project) error
}
