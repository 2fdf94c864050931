package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/skycat/internal/core/domain"
	"github.com/custodia-labs/skycat/internal/core/ports/driving"
)

// mockProjectService is a mock implementation of driving.ProjectService.
type mockProjectService struct {
	project    *domain.Project
	inspection *driving.Inspection
	result     *driving.WriteResult
	statuses   []domain.SourceStatus
	err        error

	loaded    []string
	writeOpts driving.WriteOptions
	output    string
}

func (m *mockProjectService) Load(path string) (*domain.Project, error) {
	m.loaded = append(m.loaded, path)
	return m.project, m.err
}

func (m *mockProjectService) Save(_ string, _ *domain.Project) error {
	return m.err
}

func (m *mockProjectService) Inspect(_ *domain.Project) (*driving.Inspection, error) {
	return m.inspection, m.err
}

func (m *mockProjectService) Write(
	_ context.Context,
	_ *domain.Project,
	output string,
	opts driving.WriteOptions,
) (*driving.WriteResult, error) {
	m.output = output
	m.writeOpts = opts
	return m.result, m.err
}

func (m *mockProjectService) CheckSources(_ context.Context, _ *domain.Project) ([]domain.SourceStatus, error) {
	return m.statuses, m.err
}

func sampleProject() *domain.Project {
	ref := domain.ResourceRef{Source: "db", Table: "stars", IDColumn: "id", RAColumn: "ra", DecColumn: "dec"}
	return &domain.Project{
		Sources: []domain.SourceConfig{
			{Name: "db", Driver: domain.DriverPostgres, DSN: "postgres://astro:secret@db/sky"},
		},
		Catalogs: []domain.CatalogSpec{
			{ID: "c1", Name: "bright", Resource: ref, Outputs: []string{"id", "ra", "dec"}},
			{
				ID: "c2", Name: "moved", Resource: ref, Outputs: []string{"id", "ra"},
				Computations: map[string]domain.Computation{"ra": domain.Expr("ra + dra")},
				Delimiter:    ",",
			},
		},
	}
}

func sampleInspection() *driving.Inspection {
	p := sampleProject()
	return &driving.Inspection{
		Catalogs: p.Catalogs,
		Groups: []domain.DataSourceGroup{{
			Signature: domain.GroupSignature{Source: "db", Table: "stars", IDColumn: "id", RAColumn: "ra", DecColumn: "dec"},
			Members:   []int{0, 1},
			Columns:   []string{"id", "ra", "dec", "dra"},
		}},
	}
}

func sampleResult() *driving.WriteResult {
	return &driving.WriteResult{Output: "out.cat", Rows: 42, Groups: 1, Duration: 1500 * time.Millisecond}
}
