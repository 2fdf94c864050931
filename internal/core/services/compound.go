package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/custodia-labs/skycat/internal/core/domain"
	"github.com/custodia-labs/skycat/internal/core/ports/driven"
	"github.com/custodia-labs/skycat/internal/core/ports/driving"
	"github.com/custodia-labs/skycat/internal/logger"
)

// Ensure CompoundCatalog implements the interface.
var _ driving.CompoundCatalog = (*CompoundCatalog)(nil)

// CompoundCatalog writes several catalogs into one output. Catalogs reading
// the same table are scanned together, once per write.
type CompoundCatalog struct {
	specs      []domain.CatalogSpec
	projectors []*Projector
	plan       *domain.Plan
	bound      *domain.SpatialBound
	sources    driven.DataSourceRegistry
	chunkSize  int
	metrics    driven.Metrics
	progress   func(driving.Progress)
}

// Option configures a CompoundCatalog.
type Option func(*CompoundCatalog)

// WithChunkSize sets the number of raw rows per scan batch.
func WithChunkSize(n int) Option {
	return func(c *CompoundCatalog) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// WithMetrics records scan and write counters. Metrics are optional.
func WithMetrics(m driven.Metrics) Option {
	return func(c *CompoundCatalog) {
		c.metrics = m
	}
}

// WithProgress calls fn after each catalog's rows for a batch are written.
func WithProgress(fn func(driving.Progress)) Option {
	return func(c *CompoundCatalog) {
		c.progress = fn
	}
}

// NewCompoundCatalog registers specs and plans their scan groups.
// bound is optional. compiler may be nil when no catalog uses expressions.
// The specs are copied; later changes by the caller have no effect.
func NewCompoundCatalog(
	specs []domain.CatalogSpec,
	bound *domain.SpatialBound,
	sources driven.DataSourceRegistry,
	compiler driven.ExpressionCompiler,
	opts ...Option,
) (*CompoundCatalog, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no catalogs", domain.ErrInvalidInput)
	}
	if sources == nil {
		return nil, fmt.Errorf("%w: data source registry not configured", domain.ErrInvalidInput)
	}
	if bound != nil {
		if err := bound.Validate(); err != nil {
			return nil, fmt.Errorf("bound: %w", err)
		}
		b := *bound
		bound = &b
	}

	c := &CompoundCatalog{
		specs:     make([]domain.CatalogSpec, len(specs)),
		bound:     bound,
		sources:   sources,
		chunkSize: DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(c)
	}

	required := make([][]string, len(specs))
	for i := range specs {
		spec := cloneSpec(&specs[i])
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		p, err := CompileProjector(i, &spec, compiler)
		if err != nil {
			return nil, err
		}
		c.specs[i] = spec
		c.projectors = append(c.projectors, p)
		required[i] = p.RequiredColumns()
	}

	plan, err := NewPlanner().Plan(c.specs, required)
	if err != nil {
		return nil, err
	}
	c.plan = plan

	logger.Info("planned %d catalogs into %d scan groups", len(c.specs), len(plan.Groups))
	return c, nil
}

// Grouping returns the catalog indices of each scan group, in scan order.
func (c *CompoundCatalog) Grouping() [][]int {
	return c.plan.Grouping()
}

// Groups returns a copy of the planned scan groups.
func (c *CompoundCatalog) Groups() []domain.DataSourceGroup {
	groups := make([]domain.DataSourceGroup, len(c.plan.Groups))
	for i, g := range c.plan.Groups {
		groups[i] = domain.DataSourceGroup{
			Signature: g.Signature,
			Members:   slices.Clone(g.Members),
			Columns:   slices.Clone(g.Columns),
		}
	}
	return groups
}

// Catalogs returns copies of the registered catalogs.
func (c *CompoundCatalog) Catalogs() []domain.CatalogSpec {
	out := make([]domain.CatalogSpec, len(c.specs))
	for i := range c.specs {
		out[i] = cloneSpec(&c.specs[i])
	}
	return out
}

// WriteCatalog truncates or creates path and writes every catalog to it.
// On error the file is left as far as it got.
func (c *CompoundCatalog) WriteCatalog(ctx context.Context, path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, &domain.IOError{Path: path, Op: "create", Err: err}
	}

	n, err := c.WriteTo(ctx, f)
	closeErr := f.Close()

	if err != nil {
		var ioErr *domain.IOError
		if errors.As(err, &ioErr) && ioErr.Path == "" {
			ioErr.Path = path
		}
		return n, err
	}
	if closeErr != nil {
		return n, &domain.IOError{Path: path, Op: "close", Err: closeErr}
	}
	return n, nil
}

// WriteTo writes every catalog to w: groups in plan order, each scanned once;
// within a batch, catalogs in input order. Returns the number of rows written.
func (c *CompoundCatalog) WriteTo(ctx context.Context, w io.Writer) (rows int, err error) {
	logger.Section("Write")
	done := logger.Timed("compound write")
	defer done()

	out := NewOutputWriter(w)
	if c.metrics != nil {
		defer func() { c.metrics.WriteFinished(rows, err) }()
	}

	for gi, group := range c.plan.Groups {
		if err := c.writeGroup(ctx, gi, group, out); err != nil {
			return out.Rows(), err
		}
	}
	if err := out.Flush(); err != nil {
		return out.Rows(), err
	}

	logger.Info("wrote %d rows", out.Rows())
	return out.Rows(), nil
}

// writeGroup scans one group and writes its members' rows batch by batch.
func (c *CompoundCatalog) writeGroup(ctx context.Context, gi int, group domain.DataSourceGroup, out *OutputWriter) error {
	sig := group.Signature

	source, err := c.sources.Get(ctx, sig.Source)
	if err != nil {
		return &domain.ResourceError{Source: sig.Source, Table: sig.Table, Op: "resolve", Err: err}
	}

	done := logger.Timed(fmt.Sprintf("scan %s", sig))
	defer done()

	scanner := NewChunkedScanner(source, group, c.bound, c.chunkSize)
	scanner.metrics = c.metrics

	first := true
	for batch, err := range scanner.Batches(ctx) {
		if err != nil {
			return err
		}
		if first {
			if err := checkSchema(group, c.specs, batch.Schema); err != nil {
				return err
			}
			first = false
		}

		for _, m := range group.Members {
			n, err := c.writeMember(m, batch, out)
			if err != nil {
				return err
			}
			if c.metrics != nil {
				c.metrics.RowsWritten(c.specs[m].Label(), n)
			}
			if c.progress != nil {
				c.progress(driving.Progress{Group: gi, Catalog: m, Rows: out.Rows()})
			}
		}
	}
	return nil
}

func (c *CompoundCatalog) writeMember(m int, batch domain.RawBatch, out *OutputWriter) (int, error) {
	spec := &c.specs[m]
	p := c.projectors[m]

	n := 0
	for _, raw := range batch.Rows {
		row, ok, err := p.Project(raw)
		if err != nil {
			return n, err
		}
		if !ok {
			continue
		}
		if err := out.WriteRow(spec, row); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// cloneSpec copies the slices and maps of s so the engine's copy is
// independent of the caller's.
func cloneSpec(s *domain.CatalogSpec) domain.CatalogSpec {
	c := *s
	c.Outputs = slices.Clone(s.Outputs)
	c.RawColumns = slices.Clone(s.RawColumns)
	c.CannotBeNull = slices.Clone(s.CannotBeNull)
	c.Computations = maps.Clone(s.Computations)
	c.RawTypes = maps.Clone(s.RawTypes)
	c.Formats = maps.Clone(s.Formats)
	return c
}
