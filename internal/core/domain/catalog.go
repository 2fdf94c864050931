package domain

import (
	"fmt"
	"strings"
)

// ResourceRef identifies the physical table a catalog reads from.
// Two catalogs with equal ResourceRefs can share one scan.
type ResourceRef struct {
	// Source is the name of a configured data source (a database connection).
	Source string

	// Table is the table read by the catalog.
	Table string

	// IDColumn is the raw row identifier column.
	IDColumn string

	// RAColumn and DecColumn are the raw position columns, in degrees.
	// Spatial bounds are always applied to these columns.
	RAColumn  string
	DecColumn string
}

// Validate checks that every field of the reference is set.
func (r ResourceRef) Validate() error {
	missing := make([]string, 0, 5)
	if strings.TrimSpace(r.Source) == "" {
		missing = append(missing, "source")
	}
	if strings.TrimSpace(r.Table) == "" {
		missing = append(missing, "table")
	}
	if strings.TrimSpace(r.IDColumn) == "" {
		missing = append(missing, "id column")
	}
	if strings.TrimSpace(r.RAColumn) == "" {
		missing = append(missing, "ra column")
	}
	if strings.TrimSpace(r.DecColumn) == "" {
		missing = append(missing, "dec column")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: resource missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

// String returns a human readable form used in logs.
func (r ResourceRef) String() string {
	return fmt.Sprintf("%s.%s(%s; %s,%s)", r.Source, r.Table, r.IDColumn, r.RAColumn, r.DecColumn)
}

// ComputationKind tags the variant held by a Computation.
type ComputationKind int

const (
	// ComputeRaw passes a raw column through unchanged.
	ComputeRaw ComputationKind = iota

	// ComputeExpr evaluates an expression over raw and earlier output columns.
	ComputeExpr

	// ComputeFunc calls a Go function with a read-only view of the row.
	ComputeFunc
)

// String returns the kind name.
func (k ComputationKind) String() string {
	switch k {
	case ComputeRaw:
		return "raw"
	case ComputeExpr:
		return "expr"
	case ComputeFunc:
		return "func"
	default:
		return "unknown"
	}
}

// RowView gives a column function read access to the row being projected.
// Names resolve to output columns computed earlier in the same row first,
// then to raw columns.
type RowView interface {
	Value(name string) (any, bool)
}

// ColumnFunc computes one output value.
type ColumnFunc func(row RowView) (any, error)

// Computation describes how one output column is derived.
// Use Raw, Expr or Func to build one.
type Computation struct {
	Kind ComputationKind

	// Column is the raw column read by ComputeRaw.
	Column string

	// Source is the expression text evaluated by ComputeExpr.
	Source string

	// Needs lists the columns a ComputeFunc reads.
	Needs []string

	// Fn is the function called by ComputeFunc.
	Fn ColumnFunc
}

// Raw returns a computation that passes column through.
func Raw(column string) Computation {
	return Computation{Kind: ComputeRaw, Column: column}
}

// Expr returns a computation that evaluates an expression such as "2.0*ra + dra".
func Expr(source string) Computation {
	return Computation{Kind: ComputeExpr, Source: source}
}

// Func returns a computation backed by fn, which reads the named columns.
func Func(fn ColumnFunc, needs ...string) Computation {
	return Computation{Kind: ComputeFunc, Fn: fn, Needs: needs}
}

// String describes the computation: the raw column, the expression text,
// or "func(needs...)".
func (c Computation) String() string {
	switch c.Kind {
	case ComputeRaw:
		return c.Column
	case ComputeExpr:
		return c.Source
	case ComputeFunc:
		return "func(" + strings.Join(c.Needs, ", ") + ")"
	default:
		return c.Kind.String()
	}
}

// Validate checks that the fields required by the kind are set.
func (c Computation) Validate() error {
	switch c.Kind {
	case ComputeRaw:
		if strings.TrimSpace(c.Column) == "" {
			return fmt.Errorf("%w: raw computation without column", ErrInvalidInput)
		}
	case ComputeExpr:
		if strings.TrimSpace(c.Source) == "" {
			return fmt.Errorf("%w: empty expression", ErrInvalidInput)
		}
	case ComputeFunc:
		if c.Fn == nil {
			return fmt.Errorf("%w: func computation without function", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: computation kind %d", ErrUnsupportedType, c.Kind)
	}
	return nil
}

// CatalogSpec declares one output catalog: where it reads from, how each
// output column is computed and how values are rendered.
type CatalogSpec struct {
	// ID is an opaque handle. Empty IDs are assigned when the catalog is loaded.
	ID string

	// Name is used in logs, metrics and error messages.
	Name string

	// Resource is the table this catalog reads.
	Resource ResourceRef

	// Outputs lists output column names in the order they are written.
	Outputs []string

	// Computations maps output column names to their computation.
	// Outputs without an entry pass the raw column of the same name.
	Computations map[string]Computation

	// RawColumns lists extra raw columns the catalog needs beyond those
	// referenced by its computations.
	RawColumns []string

	// RawTypes optionally declares the kind of raw columns. Conflicting
	// declarations within a group fail the write on its first batch.
	RawTypes map[string]ValueKind

	// Formats maps value kinds to printf verbs. Missing kinds fall back
	// to DefaultFormats.
	Formats FormatRules

	// Delimiter separates fields. Defaults to a single space.
	Delimiter string

	// CannotBeNull lists output columns that must be non-nil (and not NaN)
	// for a row to be written.
	CannotBeNull []string
}

// Label returns the name used to refer to the catalog in messages.
func (s *CatalogSpec) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

// ComputationFor returns the computation for an output column.
func (s *CatalogSpec) ComputationFor(output string) Computation {
	if c, ok := s.Computations[output]; ok {
		return c
	}
	return Raw(output)
}

// FieldDelimiter returns the configured delimiter or the default.
func (s *CatalogSpec) FieldDelimiter() string {
	if s.Delimiter == "" {
		return " "
	}
	return s.Delimiter
}

// Validate checks the catalog is usable by the engine.
func (s *CatalogSpec) Validate() error {
	if err := s.Resource.Validate(); err != nil {
		return fmt.Errorf("catalog %s: %w", s.Label(), err)
	}
	if len(s.Outputs) == 0 {
		return fmt.Errorf("%w: catalog %s has no output columns", ErrInvalidInput, s.Label())
	}

	seen := make(map[string]struct{}, len(s.Outputs))
	for _, name := range s.Outputs {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: catalog %s has an empty output column name", ErrInvalidInput, s.Label())
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: catalog %s repeats output column %q", ErrInvalidInput, s.Label(), name)
		}
		seen[name] = struct{}{}
		if err := s.ComputationFor(name).Validate(); err != nil {
			return fmt.Errorf("catalog %s column %s: %w", s.Label(), name, err)
		}
	}

	for name := range s.Computations {
		if _, ok := seen[name]; !ok {
			return fmt.Errorf("%w: catalog %s computes %q which is not an output", ErrInvalidInput, s.Label(), name)
		}
	}
	for _, name := range s.CannotBeNull {
		if _, ok := seen[name]; !ok {
			return fmt.Errorf("%w: catalog %s requires non-null %q which is not an output", ErrInvalidInput, s.Label(), name)
		}
	}
	return nil
}
