package services

import (
	"fmt"

	"github.com/custodia-labs/skycat/internal/core/domain"
	"github.com/custodia-labs/skycat/internal/core/ports/driven"
)

// columnEval computes one output column of the row held by v.
type columnEval func(v *rowView) (any, error)

// Projector maps raw rows to one catalog's output rows. Its column closures
// are built once, when the catalog is registered.
type Projector struct {
	catalog  int
	label    string
	outputs  []string
	evals    []columnEval
	required []string
	notNull  []int
	index    map[string]int
}

// CompileProjector builds the projector for spec, which is catalog number
// catalog in the engine's input. compiler may be nil when spec has no
// expression columns.
func CompileProjector(catalog int, spec *domain.CatalogSpec, compiler driven.ExpressionCompiler) (*Projector, error) {
	p := &Projector{
		catalog: catalog,
		label:   spec.Label(),
		outputs: append([]string(nil), spec.Outputs...),
		evals:   make([]columnEval, len(spec.Outputs)),
		index:   make(map[string]int, len(spec.Outputs)),
	}

	seen := make(map[string]struct{})
	need := func(col string, before int) {
		if i, ok := p.index[col]; ok && i < before {
			return
		}
		if _, ok := seen[col]; ok {
			return
		}
		seen[col] = struct{}{}
		p.required = append(p.required, col)
	}
	for _, col := range spec.RawColumns {
		need(col, 0)
	}

	for i, name := range spec.Outputs {
		p.index[name] = i
	}

	for i, name := range spec.Outputs {
		comp := spec.ComputationFor(name)
		switch comp.Kind {
		case domain.ComputeRaw:
			need(comp.Column, i)
			p.evals[i] = p.rawEval(name, comp.Column, i)

		case domain.ComputeExpr:
			if compiler == nil {
				return nil, fmt.Errorf("%w: catalog %s column %s: no expression compiler", domain.ErrInvalidInput, p.label, name)
			}
			compiled, err := compiler.Compile(comp.Source)
			if err != nil {
				return nil, fmt.Errorf("catalog %s column %s: %w", p.label, name, err)
			}
			raw := p.rawNames(compiled.Identifiers(), i)
			for _, col := range raw {
				need(col, i)
			}
			p.evals[i] = p.exprEval(name, compiled, raw)

		case domain.ComputeFunc:
			raw := p.rawNames(comp.Needs, i)
			for _, col := range raw {
				need(col, i)
			}
			p.evals[i] = p.funcEval(name, comp.Fn, raw)

		default:
			return nil, fmt.Errorf("%w: catalog %s column %s: computation kind %s",
				domain.ErrUnsupportedType, p.label, name, comp.Kind)
		}
	}

	for _, name := range spec.CannotBeNull {
		p.notNull = append(p.notNull, p.index[name])
	}
	return p, nil
}

// RequiredColumns returns the raw columns the catalog reads.
func (p *Projector) RequiredColumns() []string {
	return append([]string(nil), p.required...)
}

// Project computes the output row for raw. It reports false when the row is
// skipped because a CannotBeNull column is null. raw is not modified.
func (p *Projector) Project(raw domain.RawRow) (domain.OutputRow, bool, error) {
	v := &rowView{p: p, raw: raw, values: make([]any, len(p.outputs))}

	for i, eval := range p.evals {
		val, err := eval(v)
		if err != nil {
			return domain.OutputRow{}, false, err
		}
		v.values[i] = val
		v.n = i + 1
		if v.env != nil {
			v.env[p.outputs[i]] = val
		}
	}

	for _, i := range p.notNull {
		if domain.IsNull(v.values[i]) {
			return domain.OutputRow{}, false, nil
		}
	}
	return domain.OutputRow{CatalogIndex: p.catalog, Values: v.values}, true, nil
}

// rawNames drops names that refer to outputs computed before column i.
func (p *Projector) rawNames(names []string, i int) []string {
	raw := make([]string, 0, len(names))
	for _, n := range names {
		if j, ok := p.index[n]; ok && j < i {
			continue
		}
		raw = append(raw, n)
	}
	return raw
}

func (p *Projector) rawEval(name, column string, i int) columnEval {
	return func(v *rowView) (any, error) {
		val, ok := v.lookup(column, i)
		if !ok {
			return nil, &domain.ColumnComputationError{Catalog: p.label, Column: name, Missing: column}
		}
		return val, nil
	}
}

func (p *Projector) exprEval(name string, compiled driven.Expression, raw []string) columnEval {
	return func(v *rowView) (any, error) {
		if err := p.checkRaw(v, name, raw); err != nil {
			return nil, err
		}
		val, err := compiled.Eval(v.environment())
		if err != nil {
			return nil, &domain.ColumnComputationError{Catalog: p.label, Column: name, Err: err}
		}
		return val, nil
	}
}

func (p *Projector) funcEval(name string, fn domain.ColumnFunc, raw []string) columnEval {
	return func(v *rowView) (any, error) {
		if err := p.checkRaw(v, name, raw); err != nil {
			return nil, err
		}
		val, err := fn(v)
		if err != nil {
			return nil, &domain.ColumnComputationError{Catalog: p.label, Column: name, Err: err}
		}
		return val, nil
	}
}

func (p *Projector) checkRaw(v *rowView, name string, raw []string) error {
	for _, col := range raw {
		if _, ok := v.raw[col]; !ok {
			return &domain.ColumnComputationError{Catalog: p.label, Column: name, Missing: col}
		}
	}
	return nil
}

// rowView is the state of one row while its outputs are computed.
// Output columns shadow raw columns of the same name once computed.
type rowView struct {
	p      *Projector
	raw    domain.RawRow
	values []any
	n      int

	// env is the expression environment, built on first use. It is a copy
	// so the shared raw row is never written to.
	env map[string]any
}

// Value implements domain.RowView.
func (v *rowView) Value(name string) (any, bool) {
	return v.lookup(name, v.n)
}

func (v *rowView) lookup(name string, before int) (any, bool) {
	if i, ok := v.p.index[name]; ok && i < before {
		return v.values[i], true
	}
	val, ok := v.raw[name]
	return val, ok
}

func (v *rowView) environment() map[string]any {
	if v.env != nil {
		return v.env
	}
	v.env = make(map[string]any, len(v.raw)+len(v.values))
	for k, val := range v.raw {
		v.env[k] = val
	}
	for i := 0; i < v.n; i++ {
		v.env[v.p.outputs[i]] = v.values[i]
	}
	return v.env
}
