package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/custodia-labs/skycat/internal/core/domain"
	"github.com/custodia-labs/skycat/internal/core/ports/driven"
	"github.com/custodia-labs/skycat/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.DataSource = (*Source)(nil)

// Source is a driven.DataSource backed by a *sql.DB.
type Source struct {
	name    string
	db      *sql.DB
	dialect Dialect

	mu      sync.Mutex
	columns map[string][]string
}

// New wraps db. The Source owns db and closes it in Close.
func New(name string, db *sql.DB, dialect Dialect) *Source {
	return &Source{
		name:    name,
		db:      db,
		dialect: dialect,
		columns: make(map[string][]string),
	}
}

// Name returns the source name.
func (s *Source) Name() string {
	return s.name
}

// DB returns the underlying database handle.
func (s *Source) DB() *sql.DB {
	return s.db
}

// Close closes the database handle.
func (s *Source) Close() error {
	return s.db.Close()
}

// Scan runs one SELECT over req.Table and returns a cursor over its rows.
func (s *Source) Scan(ctx context.Context, req driven.ScanRequest) (driven.Cursor, error) {
	available, err := s.tableColumns(ctx, req.Table)
	if err != nil {
		return nil, err
	}

	var cols []string
	for _, col := range req.Columns {
		if slices.Contains(available, col) {
			cols = append(cols, col)
		} else {
			logger.Warn("%s: table %s has no column %s", s.name, req.Table, col)
		}
	}
	for _, col := range []string{req.RAColumn, req.DecColumn} {
		if req.Bound != nil && !slices.Contains(cols, col) {
			return nil, fmt.Errorf("%w: table %s has no position column %s", domain.ErrNotFound, req.Table, col)
		}
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: table %s has none of the requested columns", domain.ErrNotFound, req.Table)
	}

	stmt, args := BuildScan(s.dialect, req, cols)
	logger.Debug("%s: %s %v", s.name, stmt, args)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", req.Table, err)
	}

	types, err := rows.ColumnTypes()
	if err != nil {
		rows.Close()
		return nil, fmt.Errorf("reading column types of %s: %w", req.Table, err)
	}

	schema := make(domain.Schema, len(cols))
	kinds := make([]domain.ValueKind, len(cols))
	for i, ct := range types {
		kinds[i] = KindForDatabaseType(ct.DatabaseTypeName())
		schema[cols[i]] = kinds[i]
	}

	chunk := req.ChunkSize
	if chunk <= 0 {
		chunk = 1000
	}

	c := &cursor{
		rows:   rows,
		cols:   cols,
		kinds:  kinds,
		schema: schema,
		chunk:  chunk,
	}
	if req.Bound != nil {
		b := *req.Bound
		c.bound = &b
		c.raIdx = slices.Index(cols, req.RAColumn)
		c.decIdx = slices.Index(cols, req.DecColumn)
	}
	return c, nil
}

// tableColumns returns the column names of table, cached per source.
func (s *Source) tableColumns(ctx context.Context, table string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cols, ok := s.columns[table]; ok {
		return cols, nil
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+s.dialect.QuoteTable(table)+" WHERE 1=0")
	if err != nil {
		return nil, fmt.Errorf("inspecting table %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", table, err)
	}
	s.columns[table] = cols
	return cols, nil
}

// KindForDatabaseType maps a column's database type name to a value kind.
func KindForDatabaseType(name string) domain.ValueKind {
	t := strings.ToUpper(name)
	switch {
	case t == "":
		return domain.KindUnknown
	case strings.Contains(t, "POINT"), strings.Contains(t, "INTERVAL"):
		return domain.KindUnknown
	case strings.Contains(t, "INT"):
		return domain.KindInt
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"),
		strings.Contains(t, "NUMERIC"), strings.Contains(t, "DECIMAL"):
		return domain.KindFloat
	case strings.Contains(t, "CHAR"), strings.Contains(t, "TEXT"), strings.Contains(t, "CLOB"),
		t == "UUID":
		return domain.KindString
	case strings.HasPrefix(t, "BOOL"), t == "BIT":
		return domain.KindBool
	default:
		return domain.KindUnknown
	}
}

// cursor reads rows in chunks from an open result set.
type cursor struct {
	rows   *sql.Rows
	cols   []string
	kinds  []domain.ValueKind
	schema domain.Schema
	chunk  int

	bound  *domain.SpatialBound
	raIdx  int
	decIdx int

	done   bool
	closed bool
}

func (c *cursor) Next(ctx context.Context) (domain.RawBatch, error) {
	if c.done || c.closed {
		return domain.RawBatch{}, io.EOF
	}

	values := make([]any, len(c.cols))
	dest := make([]any, len(c.cols))
	for i := range values {
		dest[i] = &values[i]
	}

	batch := domain.RawBatch{Schema: c.schema}
	for len(batch.Rows) < c.chunk {
		if err := ctx.Err(); err != nil {
			return domain.RawBatch{}, err
		}
		if !c.rows.Next() {
			c.done = true
			if err := c.rows.Err(); err != nil {
				return domain.RawBatch{}, err
			}
			break
		}
		if err := c.rows.Scan(dest...); err != nil {
			return domain.RawBatch{}, fmt.Errorf("scanning row: %w", err)
		}

		for i := range values {
			values[i] = normalize(values[i], c.kinds[i])
		}
		if c.bound != nil && !c.inside(values) {
			continue
		}

		row := make(domain.RawRow, len(c.cols))
		for i, col := range c.cols {
			row[col] = values[i]
		}
		batch.Rows = append(batch.Rows, row)
	}

	if len(batch.Rows) == 0 {
		return domain.RawBatch{}, io.EOF
	}
	return batch, nil
}

func (c *cursor) inside(values []any) bool {
	ra, ok := domain.AsFloat(values[c.raIdx])
	if !ok {
		return false
	}
	dec, ok := domain.AsFloat(values[c.decIdx])
	if !ok {
		return false
	}
	return c.bound.Contains(ra, dec)
}

func (c *cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.rows.Close()
}

// normalize converts driver values to the types the engine formats:
// []byte becomes string, and numeric columns become float64 when declared
// as floating point (SQLite stores whole REAL values as integers, and some
// drivers return DECIMAL as text).
func normalize(v any, kind domain.ValueKind) any {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	if kind != domain.KindFloat {
		return v
	}
	switch x := v.(type) {
	case int64:
		return float64(x)
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f
		}
	}
	return v
}
