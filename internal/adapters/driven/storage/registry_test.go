package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skycat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/skycat/internal/core/domain"
	"github.com/custodia-labs/skycat/internal/core/ports/driven"
)

// closingSource records Close calls.
type closingSource struct {
	*memory.DataSource
	closed   int
	closeErr error
}

func (c *closingSource) Close() error {
	c.closed++
	return c.closeErr
}

// fakeDrivers registers test openers for the duration of a test.
func fakeDrivers(t *testing.T, open Opener) {
	t.Helper()
	openersMu.Lock()
	saved := openers
	openers = map[domain.Driver]Opener{domain.DriverSQLite: open}
	openersMu.Unlock()

	t.Cleanup(func() {
		openersMu.Lock()
		openers = saved
		openersMu.Unlock()
	})
}

func configs() []domain.SourceConfig {
	return []domain.SourceConfig{
		{Name: "local", Driver: domain.DriverSQLite, DSN: "sky.db"},
		{Name: "remote", Driver: domain.DriverPostgres, DSN: "postgres://astro:secret@db/sky"},
	}
}

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry(configs())
	require.NoError(t, err)
	assert.Equal(t, []string{"local", "remote"}, r.Names())

	cfg, ok := r.Config("remote")
	require.True(t, ok)
	assert.Equal(t, domain.DriverPostgres, cfg.Driver)

	_, err = NewRegistry(append(configs(), configs()[0]))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewRegistry([]domain.SourceConfig{{Name: "x", Driver: "oracle", DSN: "y"}})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistry_GetOpensOnce(t *testing.T) {
	opened := 0
	fakeDrivers(t, func(_ context.Context, cfg domain.SourceConfig) (driven.DataSource, error) {
		opened++
		return &closingSource{DataSource: memory.NewDataSource(cfg.Name)}, nil
	})

	r, err := NewRegistry(configs())
	require.NoError(t, err)

	a, err := r.Get(context.Background(), "local")
	require.NoError(t, err)
	b, err := r.Get(context.Background(), "local")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, opened)
	assert.Equal(t, "local", a.Name())

	require.NoError(t, r.Close())
	assert.Equal(t, 1, a.(*closingSource).closed)
}

func TestRegistry_GetErrors(t *testing.T) {
	fakeDrivers(t, func(context.Context, domain.SourceConfig) (driven.DataSource, error) {
		return nil, errors.New("refused")
	})

	r, err := NewRegistry(configs())
	require.NoError(t, err)

	_, err = r.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = r.Get(context.Background(), "remote")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = r.Get(context.Background(), "local")
	assert.EqualError(t, err, "opening source local: refused")
}

func TestRegistry_Check(t *testing.T) {
	fakeDrivers(t, func(_ context.Context, cfg domain.SourceConfig) (driven.DataSource, error) {
		return &closingSource{DataSource: memory.NewDataSource(cfg.Name)}, nil
	})

	r, err := NewRegistry(configs())
	require.NoError(t, err)

	statuses := r.Check(context.Background())
	require.Len(t, statuses, 2)
	assert.Equal(t, "local", statuses[0].Config.Name)
	assert.NoError(t, statuses[0].Err)
	assert.Equal(t, "remote", statuses[1].Config.Name)
	assert.ErrorIs(t, statuses[1].Err, domain.ErrUnsupportedType)
}

func TestRegistry_CloseJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	fakeDrivers(t, func(_ context.Context, cfg domain.SourceConfig) (driven.DataSource, error) {
		return &closingSource{DataSource: memory.NewDataSource(cfg.Name), closeErr: boom}, nil
	})

	r, err := NewRegistry(configs()[:1])
	require.NoError(t, err)
	_, err = r.Get(context.Background(), "local")
	require.NoError(t, err)

	err = r.Close()
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, r.Close())
}

func TestDrivers(t *testing.T) {
	fakeDrivers(t, func(context.Context, domain.SourceConfig) (driven.DataSource, error) { return nil, nil })
	assert.Equal(t, []domain.Driver{domain.DriverSQLite}, Drivers())
}

func TestFactory_NewSourceSet(t *testing.T) {
	set, err := Factory{}.NewSourceSet(configs())
	require.NoError(t, err)
	require.IsType(t, &Registry{}, set)
	assert.NoError(t, set.Close())

	_, err = Factory{}.NewSourceSet([]domain.SourceConfig{{Name: "x"}})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}
