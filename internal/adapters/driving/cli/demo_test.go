package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skycat/internal/core/domain"
)

func TestDemoCmd_Use(t *testing.T) {
	assert.Equal(t, "demo [dir]", demoCmd.Use)
}

func TestDemoCmd_CreatesCatalogFile(t *testing.T) {
	svc, _, cleanup := setupTestServices()
	defer cleanup()

	var builtIn string
	demoBuilder = func(_ context.Context, dir string) (*domain.Project, error) {
		builtIn = dir
		return testProject(), nil
	}
	dir := t.TempDir()

	out, err := execute(t, "demo", dir)

	require.NoError(t, err)
	assert.Equal(t, dir, builtIn)
	path := filepath.Join(dir, "skycat.toml")
	assert.Contains(t, svc.saved, path)
	assert.Contains(t, out, "Created "+path+" with 2 catalogs.")
	assert.Contains(t, out, "write sky.cat")
}

func TestDemoCmd_RefusesToOverwrite(t *testing.T) {
	svc, _, cleanup := setupTestServices()
	defer cleanup()
	demoBuilder = func(context.Context, string) (*domain.Project, error) { return testProject(), nil }

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skycat.toml"), []byte("# mine\n"), 0600))

	_, err := execute(t, "demo", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Empty(t, svc.saved)

	_, err = execute(t, "demo", dir, "--force")
	require.NoError(t, err)
	assert.Len(t, svc.saved, 1)
}

func TestDemoCmd_BuilderError(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()
	demoBuilder = func(context.Context, string) (*domain.Project, error) { return nil, errBoom }

	_, err := execute(t, "demo", t.TempDir())

	assert.ErrorIs(t, err, errBoom)
}
