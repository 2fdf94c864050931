package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skycat/internal/core/domain"
)

func newRecorder(t *testing.T) *Recorder {
	t.Helper()
	r, err := NewRecorder()
	require.NoError(t, err)
	r.now = func() time.Time { return time.Unix(1700000000, 0) }
	return r
}

func sig(table string) domain.GroupSignature {
	return domain.GroupSignature{Source: "db", Table: table, IDColumn: "id", RAColumn: "ra", DecColumn: "dec"}
}

func TestRecorder_Counters(t *testing.T) {
	r := newRecorder(t)

	r.ScanStarted(sig("stars"))
	r.BatchScanned(sig("stars"), 1000)
	r.BatchScanned(sig("stars"), 250)
	r.ScanStarted(sig("galaxies"))
	r.BatchScanned(sig("galaxies"), 10)
	r.RowsWritten("stars-raw", 1250)
	r.RowsWritten("stars-scaled", 1200)
	r.RowsWritten("stars-raw", 5)
	r.WriteFinished(2465, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.scans.WithLabelValues("db", "stars")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.batches.WithLabelValues("db", "stars")))
	assert.Equal(t, 1250.0, testutil.ToFloat64(r.rawRows.WithLabelValues("db", "stars")))
	assert.Equal(t, 10.0, testutil.ToFloat64(r.rawRows.WithLabelValues("db", "galaxies")))
	assert.Equal(t, 1255.0, testutil.ToFloat64(r.rowsWritten.WithLabelValues("stars-raw")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.writes.WithLabelValues("ok")))
	assert.Equal(t, 2465.0, testutil.ToFloat64(r.lastRows))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(r.lastSuccess))
}

func TestRecorder_WriteFailed(t *testing.T) {
	r := newRecorder(t)

	r.WriteFinished(12, errors.New("disk full"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.writes.WithLabelValues("error")))
	assert.Equal(t, 12.0, testutil.ToFloat64(r.lastRows))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.lastSuccess))
}

func TestRecorder_Independent(t *testing.T) {
	a := newRecorder(t)
	b := newRecorder(t)

	a.RowsWritten("stars", 3)

	assert.Equal(t, 1, testutil.CollectAndCount(a.rowsWritten))
	assert.Equal(t, 0, testutil.CollectAndCount(b.rowsWritten))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := newRecorder(t)
	r.RowsWritten("stars", 7)

	path := filepath.Join(t.TempDir(), "skycat.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `skycat_rows_written_total{catalog="stars"} 7`)
}

func TestRecorder_Push(t *testing.T) {
	var (
		mu   sync.Mutex
		path string
		body string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		b, _ := io.ReadAll(req.Body)
		mu.Lock()
		path, body = req.URL.Path, string(b)
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	r := newRecorder(t)
	r.RowsWritten("stars", 7)
	require.NoError(t, r.Push(context.Background(), server.URL, ""))

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, strings.HasPrefix(path, "/metrics/job/skycat"), path)
	assert.NotEmpty(t, body)
}

func TestRecorder_PushErrors(t *testing.T) {
	r := newRecorder(t)
	assert.ErrorIs(t, r.Push(context.Background(), "", "job"), domain.ErrInvalidInput)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()
	assert.Error(t, r.Push(context.Background(), server.URL, "job"))
}
