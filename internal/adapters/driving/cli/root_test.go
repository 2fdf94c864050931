package cli

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skycat/internal/core/domain"
	"github.com/custodia-labs/skycat/internal/core/ports/driving"
	"github.com/custodia-labs/skycat/internal/logger"
)

// mockProjectService is a mock implementation of driving.ProjectService.
type mockProjectService struct {
	project    *domain.Project
	inspection *driving.Inspection
	result     *driving.WriteResult
	statuses   []domain.SourceStatus
	loadErr    error
	err        error

	mu        sync.Mutex
	loaded    []string
	saved     map[string]*domain.Project
	writes    int
	writeOpts driving.WriteOptions
}

func (m *mockProjectService) Load(path string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = append(m.loaded, path)
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.project, nil
}

func (m *mockProjectService) Save(path string, p *domain.Project) error {
	if m.saved == nil {
		m.saved = make(map[string]*domain.Project)
	}
	m.saved[path] = p
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
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.writeOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	res := *m.result
	res.Output = output
	return &res, nil
}

func (m *mockProjectService) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *mockProjectService) CheckSources(_ context.Context, _ *domain.Project) ([]domain.SourceStatus, error) {
	return m.statuses, m.err
}

// mockExporter records metric exports.
type mockExporter struct {
	files  []string
	pushed []string
	err    error
}

func (m *mockExporter) WriteTextfile(path string) error {
	m.files = append(m.files, path)
	return m.err
}

func (m *mockExporter) Push(_ context.Context, url, job string) error {
	m.pushed = append(m.pushed, url+" "+job)
	return m.err
}

func testProject() *domain.Project {
	ref := domain.ResourceRef{Source: "db", Table: "stars", IDColumn: "id", RAColumn: "ra", DecColumn: "dec"}
	return &domain.Project{
		Sources: []domain.SourceConfig{
			{Name: "db", Driver: domain.DriverPostgres, DSN: "postgres://astro:secret@db/sky"},
		},
		Catalogs: []domain.CatalogSpec{
			{Name: "bright", Resource: ref, Outputs: []string{"id", "ra", "dec"}},
			{Name: "faint", Resource: ref, Outputs: []string{"id", "mag"}},
		},
	}
}

func testInspection() *driving.Inspection {
	p := testProject()
	return &driving.Inspection{
		Catalogs: p.Catalogs,
		Groups: []domain.DataSourceGroup{{
			Signature: domain.GroupSignature{Source: "db", Table: "stars", IDColumn: "id", RAColumn: "ra", DecColumn: "dec"},
			Members:   []int{0, 1},
			Columns:   []string{"id", "ra", "dec", "mag"},
		}},
	}
}

// setupTestServices installs mocks and resets flags; call the returned
// func to restore the previous services.
func setupTestServices() (*mockProjectService, *mockExporter, func()) {
	svc := &mockProjectService{
		project:    testProject(),
		inspection: testInspection(),
		result:     &driving.WriteResult{Rows: 12, Groups: 1, Duration: 25 * time.Millisecond},
	}
	exporter := &mockExporter{}

	savedProject, savedMetrics, savedDemo := projectService, metricsExporter, demoBuilder
	SetServices(Services{Project: svc, Metrics: exporter})
	resetFlags()

	return svc, exporter, func() {
		projectService, metricsExporter, demoBuilder = savedProject, savedMetrics, savedDemo
		resetFlags()
		logger.SetVerbose(false)
	}
}

func resetFlags() {
	catalogFile = DefaultCatalogFile
	verbose = false
	writeChunkSize = 0
	writeMetricsFile = ""
	writeMetricsPush = ""
	writeMetricsJob = "skycat"
	writeWatch = false
	planJSON = false
	demoForce = false
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "skycat", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	commands := rootCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "write")
	assert.Contains(t, commandNames, "plan")
	assert.Contains(t, commandNames, "sources")
	assert.Contains(t, commandNames, "demo")
	assert.Contains(t, commandNames, "mcp")
	assert.Contains(t, commandNames, "version")
}

func TestRootCmd_ConfigFlag(t *testing.T) {
	svc, _, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "--config", "other.toml", "plan")

	require.NoError(t, err)
	assert.Equal(t, []string{"other.toml"}, svc.loaded)
}

func TestRootCmd_VerboseFromCatalogFile(t *testing.T) {
	svc, _, cleanup := setupTestServices()
	defer cleanup()
	svc.project.Verbose = true

	_, err := execute(t, "plan")

	require.NoError(t, err)
	assert.True(t, logger.IsVerbose())
}

func TestRootCmd_NotConfigured(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()
	SetServices(Services{})

	for _, args := range [][]string{{"plan"}, {"write", "out.cat"}, {"sources", "check"}, {"demo"}} {
		_, err := execute(t, args...)
		assert.Error(t, err, args)
	}
}

func TestRootCmd_LoadError(t *testing.T) {
	svc, _, cleanup := setupTestServices()
	defer cleanup()
	svc.loadErr = domain.ErrInvalidInput

	_, err := execute(t, "plan")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "loading skycat.toml")
}

func TestExecute(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, Execute(context.Background()))
	assert.Contains(t, buf.String(), "skycat version")
}

var errBoom = errors.New("boom")
