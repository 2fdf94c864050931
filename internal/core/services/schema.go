package services

import (
	"maps"
	"slices"

	"github.com/custodia-labs/skycat/internal/core/domain"
)

// checkSchema compares the raw column kinds declared by the members of group
// with each other and with the kinds the source reported for the first batch.
func checkSchema(group domain.DataSourceGroup, specs []domain.CatalogSpec, schema domain.Schema) error {
	type declaration struct {
		kind    domain.ValueKind
		catalog string
	}
	declared := make(map[string]declaration)

	for _, m := range group.Members {
		spec := &specs[m]
		for _, col := range slices.Sorted(maps.Keys(spec.RawTypes)) {
			kind := spec.RawTypes[col]

			if prev, ok := declared[col]; ok && prev.kind != kind {
				return &domain.GroupingError{
					Group:    group.Signature,
					Column:   col,
					Catalogs: [2]string{prev.catalog, spec.Label()},
					Kinds:    [2]domain.ValueKind{prev.kind, kind},
				}
			}
			declared[col] = declaration{kind: kind, catalog: spec.Label()}

			if actual, ok := schema[col]; ok && !compatibleKinds(kind, actual) {
				return &domain.GroupingError{
					Group:    group.Signature,
					Column:   col,
					Catalogs: [2]string{spec.Label(), ""},
					Kinds:    [2]domain.ValueKind{kind, actual},
				}
			}
		}
	}
	return nil
}

// compatibleKinds reports whether a source column of kind actual can serve a
// declaration of kind declared. Integers widen to floats.
func compatibleKinds(declared, actual domain.ValueKind) bool {
	switch {
	case actual == domain.KindUnknown || actual == domain.KindNull:
		return true
	case declared == actual:
		return true
	case declared == domain.KindFloat && actual == domain.KindInt:
		return true
	default:
		return false
	}
}
