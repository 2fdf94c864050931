package memory

import (
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/skycat/internal/core/domain"
	"github.com/custodia-labs/skycat/internal/core/ports/driven"
)

// Ensure ProjectStore implements the interface.
var _ driven.ProjectStore = (*ProjectStore)(nil)

// ProjectStore is an in-memory implementation of driven.ProjectStore for testing.
type ProjectStore struct {
	mu       sync.RWMutex
	projects map[string]*domain.Project
}

// NewProjectStore creates a new in-memory project store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{
		projects: make(map[string]*domain.Project),
	}
}

// Load returns a copy of the project saved at path.
func (s *ProjectStore) Load(path string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[path]
	if !ok {
		return nil, fmt.Errorf("%w: catalog file %s", domain.ErrNotFound, path)
	}
	return copyProject(p), nil
}

// Save validates project and stores a copy under path.
func (s *ProjectStore) Save(path string, project *domain.Project) error {
	if err := project.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[path] = copyProject(project)
	return nil
}

// Paths returns the saved paths, sorted.
func (s *ProjectStore) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.projects))
	for p := range s.projects {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// copyProject copies the top-level slices and the bound. Catalog specs
// are copied by value; the engine makes its own deep copy on registration.
func copyProject(p *domain.Project) *domain.Project {
	c := *p
	if p.Bound != nil {
		b := *p.Bound
		c.Bound = &b
	}
	c.Sources = slices.Clone(p.Sources)
	c.Catalogs = slices.Clone(p.Catalogs)
	return &c
}
