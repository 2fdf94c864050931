package memory

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skycat/internal/core/domain"
	"github.com/custodia-labs/skycat/internal/core/ports/driven"
)

func newStars() *DataSource {
	ds := NewDataSource("db")
	ds.AddTable("stars", nil,
		domain.RawRow{"id": int64(1), "ra": 10.0, "dec": 0.0, "mag": 12.5},
		domain.RawRow{"id": int64(2), "ra": 20.0, "dec": 5.0, "mag": 13.5},
		domain.RawRow{"id": int64(3), "ra": 30.0, "dec": 10.0, "mag": 14.5},
	)
	return ds
}

func starsRequest() driven.ScanRequest {
	return driven.ScanRequest{
		Table: "stars", IDColumn: "id", RAColumn: "ra", DecColumn: "dec",
		Columns:   []string{"id", "ra", "dec", "mag"},
		ChunkSize: 2,
	}
}

func drain(t *testing.T, c driven.Cursor) [][]domain.RawRow {
	t.Helper()
	var batches [][]domain.RawRow
	for {
		b, err := c.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return batches
		}
		require.NoError(t, err)
		batches = append(batches, b.Rows)
	}
}

func TestDataSource_ScanChunks(t *testing.T) {
	ds := newStars()

	c, err := ds.Scan(context.Background(), starsRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, ds.OpenCursors())

	batches := drain(t, c)
	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 1)
	assert.Equal(t, int64(3), batches[1][0]["id"])

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 0, ds.OpenCursors())
	assert.Equal(t, 1, ds.Scans("stars"))
}

func TestDataSource_ScanBound(t *testing.T) {
	ds := newStars()
	req := starsRequest()
	b := domain.Box(20, 5, 5, 5)
	req.Bound = &b

	c, err := ds.Scan(context.Background(), req)
	require.NoError(t, err)
	defer c.Close()

	batches := drain(t, c)
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 1)
	assert.Equal(t, int64(2), batches[0][0]["id"])
}

func TestDataSource_ScanProjectsColumns(t *testing.T) {
	ds := newStars()
	req := starsRequest()
	req.Columns = []string{"id", "ra", "dec", "flux"}

	c, err := ds.Scan(context.Background(), req)
	require.NoError(t, err)
	defer c.Close()

	b, err := c.Next(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, b.Rows[0], "mag")
	assert.NotContains(t, b.Rows[0], "flux")
	assert.Equal(t, domain.KindFloat, b.Schema["ra"])
	assert.NotContains(t, b.Schema, "flux")
}

func TestDataSource_ScanUnknownTable(t *testing.T) {
	ds := NewDataSource("db")

	_, err := ds.Scan(context.Background(), starsRequest())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, ds.Scans("stars"))
}

func TestDataSource_ScanCancelled(t *testing.T) {
	ds := newStars()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ds.Scan(ctx, starsRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry_Get(t *testing.T) {
	ds := newStars()
	r := NewRegistry(ds)

	got, err := r.Get(context.Background(), "db")
	require.NoError(t, err)
	assert.Same(t, ds, got)

	_, err = r.Get(context.Background(), "other")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	r.Add(NewDataSource("other"))
	_, err = r.Get(context.Background(), "other")
	assert.NoError(t, err)
}

func TestRegistry_CheckAndClose(t *testing.T) {
	r := NewRegistry(NewDataSource("b"), NewDataSource("a"))

	statuses := r.Check(context.Background())
	require.Len(t, statuses, 2)
	assert.Equal(t, "a", statuses[0].Config.Name)
	assert.True(t, statuses[1].OK())
	assert.NoError(t, r.Close())
}
