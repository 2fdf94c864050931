package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/skycat/internal/core/domain"
	"github.com/custodia-labs/skycat/internal/core/ports/driven"
	"github.com/custodia-labs/skycat/internal/core/ports/driving"
	"github.com/custodia-labs/skycat/internal/logger"
)

// Ensure ProjectService implements the interface.
var _ driving.ProjectService = (*ProjectService)(nil)

// ProjectService runs compound writes for catalog files.
type ProjectService struct {
	store    driven.ProjectStore
	sources  driven.SourceSetFactory
	compiler driven.ExpressionCompiler
	metrics  driven.Metrics
}

// NewProjectService creates a project service. store may be nil when
// projects are built in code.
func NewProjectService(
	store driven.ProjectStore,
	sources driven.SourceSetFactory,
	compiler driven.ExpressionCompiler,
) *ProjectService {
	return &ProjectService{
		store:    store,
		sources:  sources,
		compiler: compiler,
	}
}

// SetMetrics records every write through m.
func (s *ProjectService) SetMetrics(m driven.Metrics) {
	s.metrics = m
}

// Load reads and validates the catalog file at path.
func (s *ProjectService) Load(path string) (*domain.Project, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.store.Load(path)
}

// Save writes project to path after validating it.
func (s *ProjectService) Save(path string, project *domain.Project) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}
	if err := project.Validate(); err != nil {
		return err
	}
	return s.store.Save(path, project)
}

// Inspect plans project's scan groups. Sources are validated but not opened.
func (s *ProjectService) Inspect(project *domain.Project) (*driving.Inspection, error) {
	set, err := s.sourceSet(project)
	if err != nil {
		return nil, err
	}
	defer closeSourceSet(set)

	c, err := NewCompoundCatalog(project.Catalogs, project.Bound, set, s.compiler)
	if err != nil {
		return nil, err
	}
	return &driving.Inspection{Catalogs: c.Catalogs(), Groups: c.Groups()}, nil
}

// Write runs one compound write of project into output.
func (s *ProjectService) Write(
	ctx context.Context,
	project *domain.Project,
	output string,
	opts driving.WriteOptions,
) (*driving.WriteResult, error) {
	set, err := s.sourceSet(project)
	if err != nil {
		return nil, err
	}
	defer closeSourceSet(set)

	chunkSize := project.ChunkSize
	if opts.ChunkSize > 0 {
		chunkSize = opts.ChunkSize
	}
	copts := []Option{WithChunkSize(chunkSize)}
	if s.metrics != nil {
		copts = append(copts, WithMetrics(s.metrics))
	}
	if opts.Progress != nil {
		copts = append(copts, WithProgress(opts.Progress))
	}

	c, err := NewCompoundCatalog(project.Catalogs, project.Bound, set, s.compiler, copts...)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := c.WriteCatalog(ctx, output)
	if err != nil {
		return nil, err
	}
	return &driving.WriteResult{
		Output:   output,
		Rows:     rows,
		Groups:   len(c.Groups()),
		Duration: time.Since(start),
	}, nil
}

// CheckSources opens and closes every source of project.
func (s *ProjectService) CheckSources(ctx context.Context, project *domain.Project) ([]domain.SourceStatus, error) {
	if s.sources == nil {
		return nil, domain.ErrNotImplemented
	}
	if project == nil {
		return nil, fmt.Errorf("%w: no project", domain.ErrInvalidInput)
	}
	set, err := s.sources.NewSourceSet(project.Sources)
	if err != nil {
		return nil, err
	}
	defer closeSourceSet(set)
	return set.Check(ctx), nil
}

func (s *ProjectService) sourceSet(project *domain.Project) (driven.SourceSet, error) {
	if s.sources == nil {
		return nil, domain.ErrNotImplemented
	}
	if project == nil {
		return nil, fmt.Errorf("%w: no project", domain.ErrInvalidInput)
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}
	return s.sources.NewSourceSet(project.Sources)
}

func closeSourceSet(set driven.SourceSet) {
	if err := set.Close(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("closing sources: %v", err)
	}
}
