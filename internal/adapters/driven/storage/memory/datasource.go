package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"

	"github.com/custodia-labs/skycat/internal/core/domain"
	"github.com/custodia-labs/skycat/internal/core/ports/driven"
)

// Ensure DataSource implements the interface.
var _ driven.DataSource = (*DataSource)(nil)

var errCursorClosed = errors.New("cursor closed")

// table is one in-memory table.
type table struct {
	schema domain.Schema
	rows   []domain.RawRow
}

// DataSource is an in-memory implementation of driven.DataSource.
// It counts scans per table and tracks open cursors, which makes it useful
// for checking that each group is read exactly once.
type DataSource struct {
	mu     sync.RWMutex
	name   string
	tables map[string]*table
	scans  map[string]int
	open   int

	// ScanErr, if set, is returned by every Scan.
	ScanErr error
}

// NewDataSource creates an empty in-memory data source.
func NewDataSource(name string) *DataSource {
	return &DataSource{
		name:   name,
		tables: make(map[string]*table),
		scans:  make(map[string]int),
	}
}

// AddTable stores rows under name, replacing any existing table.
// schema may be nil, in which case kinds are taken from the first row.
func (d *DataSource) AddTable(name string, schema domain.Schema, rows ...domain.RawRow) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if schema == nil {
		schema = make(domain.Schema)
		if len(rows) > 0 {
			for col, v := range rows[0] {
				schema[col] = domain.KindOf(v)
			}
		}
	}
	copied := make([]domain.RawRow, len(rows))
	for i, r := range rows {
		copied[i] = maps.Clone(r)
	}
	d.tables[name] = &table{schema: maps.Clone(schema), rows: copied}
}

// Name returns the source name.
func (d *DataSource) Name() string {
	return d.name
}

// Scan starts a scan of req.Table.
func (d *DataSource) Scan(ctx context.Context, req driven.ScanRequest) (driven.Cursor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ScanErr != nil {
		return nil, d.ScanErr
	}
	t, ok := d.tables[req.Table]
	if !ok {
		return nil, fmt.Errorf("%w: table %s", domain.ErrNotFound, req.Table)
	}
	d.scans[req.Table]++
	d.open++

	schema := make(domain.Schema, len(req.Columns))
	for _, col := range req.Columns {
		if kind, ok := t.schema[col]; ok {
			schema[col] = kind
		}
	}

	var rows []domain.RawRow
	for _, r := range t.rows {
		if req.Bound != nil && !inside(req.Bound, r, req.RAColumn, req.DecColumn) {
			continue
		}
		out := make(domain.RawRow, len(req.Columns))
		for _, col := range req.Columns {
			if v, ok := r[col]; ok {
				out[col] = v
			}
		}
		rows = append(rows, out)
	}

	chunk := req.ChunkSize
	if chunk <= 0 {
		chunk = len(rows) + 1
	}
	return &cursor{source: d, schema: schema, rows: rows, chunk: chunk}, nil
}

// Close is a no-op.
func (d *DataSource) Close() error {
	return nil
}

// Scans returns the number of scans started on name.
func (d *DataSource) Scans(name string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.scans[name]
}

// OpenCursors returns the number of cursors not yet closed.
func (d *DataSource) OpenCursors() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.open
}

func inside(b *domain.SpatialBound, r domain.RawRow, raCol, decCol string) bool {
	ra, ok := domain.AsFloat(r[raCol])
	if !ok {
		return false
	}
	dec, ok := domain.AsFloat(r[decCol])
	if !ok {
		return false
	}
	return b.Contains(ra, dec)
}

// cursor walks a filtered copy of a table in chunks.
type cursor struct {
	source *DataSource
	schema domain.Schema
	rows   []domain.RawRow
	chunk  int
	pos    int
	closed bool
}

func (c *cursor) Next(ctx context.Context) (domain.RawBatch, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawBatch{}, err
	}
	if c.closed {
		return domain.RawBatch{}, errCursorClosed
	}
	if c.pos >= len(c.rows) {
		return domain.RawBatch{}, io.EOF
	}
	end := min(c.pos+c.chunk, len(c.rows))
	batch := domain.RawBatch{Schema: c.schema, Rows: c.rows[c.pos:end]}
	c.pos = end
	return batch, nil
}

func (c *cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.source.mu.Lock()
	c.source.open--
	c.source.mu.Unlock()
	return nil
}

// Registry is an in-memory driven.SourceSet.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]driven.DataSource
}

// Ensure Registry implements the interface.
var _ driven.SourceSet = (*Registry)(nil)

// NewRegistry creates a registry holding sources.
func NewRegistry(sources ...driven.DataSource) *Registry {
	r := &Registry{sources: make(map[string]driven.DataSource, len(sources))}
	for _, s := range sources {
		r.sources[s.Name()] = s
	}
	return r
}

// Add registers a source under its name.
func (r *Registry) Add(s driven.DataSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[s.Name()] = s
}

// Get returns the named source.
func (r *Registry) Get(_ context.Context, name string) (driven.DataSource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: data source %s", domain.ErrNotFound, name)
	}
	return s, nil
}

// Check reports every registered source as reachable, sorted by name.
func (r *Registry) Check(_ context.Context) []domain.SourceStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	statuses := make([]domain.SourceStatus, 0, len(r.sources))
	for _, name := range slices.Sorted(maps.Keys(r.sources)) {
		statuses = append(statuses, domain.SourceStatus{Config: domain.SourceConfig{Name: name}})
	}
	return statuses
}

// Close closes every registered source.
func (r *Registry) Close() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var errs []error
	for _, s := range r.sources {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
