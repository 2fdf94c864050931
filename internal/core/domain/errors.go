package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent failures of a catalog write.
// Every one of them is fatal to the write that raised it.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown driver, bound or value kind.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrGrouping indicates co-grouped catalogs disagree on a raw column's type.
	ErrGrouping = errors.New("grouping conflict")

	// ErrColumnComputation indicates an output column could not be computed.
	ErrColumnComputation = errors.New("column computation failed")

	// ErrFormat indicates a value has no rendering rule.
	ErrFormat = errors.New("no format for value")

	// ErrResource indicates the data source failed to open or scan.
	ErrResource = errors.New("resource failure")

	// ErrIO indicates the destination could not be written.
	ErrIO = errors.New("destination write failed")

	// ErrScanConsumed indicates a scanner was iterated a second time.
	// A new scanner is needed for a new pass.
	ErrScanConsumed = errors.New("scan already consumed")

	// ErrNotImplemented indicates a service was built without a dependency
	// the operation needs.
	ErrNotImplemented = errors.New("not implemented")
)

// GroupingError reports a raw column declared with different kinds by two
// catalogs of one group, or declared differently from what the source returns.
type GroupingError struct {
	Group  GroupSignature
	Column string

	// Catalogs are the labels of the disagreeing catalogs. The second is
	// empty when the conflict is with the source schema.
	Catalogs [2]string
	Kinds    [2]ValueKind
}

func (e *GroupingError) Error() string {
	if e.Catalogs[1] == "" {
		return fmt.Sprintf("%s: %s column %q: catalog %s declares %s, source has %s",
			ErrGrouping, e.Group, e.Column, e.Catalogs[0], e.Kinds[0], e.Kinds[1])
	}
	return fmt.Sprintf("%s: %s column %q: catalog %s declares %s, catalog %s declares %s",
		ErrGrouping, e.Group, e.Column, e.Catalogs[0], e.Kinds[0], e.Catalogs[1], e.Kinds[1])
}

// Unwrap lets errors.Is match ErrGrouping.
func (e *GroupingError) Unwrap() error { return ErrGrouping }

// ColumnComputationError reports a failed output column.
type ColumnComputationError struct {
	Catalog string
	Column  string

	// Missing is set when the computation referenced an absent raw column.
	Missing string
	Err     error
}

func (e *ColumnComputationError) Error() string {
	if e.Missing != "" {
		return fmt.Sprintf("%s: catalog %s column %s: raw column %q not in batch",
			ErrColumnComputation, e.Catalog, e.Column, e.Missing)
	}
	return fmt.Sprintf("%s: catalog %s column %s: %v", ErrColumnComputation, e.Catalog, e.Column, e.Err)
}

// Unwrap exposes both the sentinel and the cause.
func (e *ColumnComputationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrColumnComputation}
	}
	return []error{ErrColumnComputation, e.Err}
}

// FormatError reports a value whose kind has no format rule.
type FormatError struct {
	Catalog string
	Column  string
	Kind    ValueKind
	Type    string
}

func (e *FormatError) Error() string {
	if e.Catalog == "" {
		return fmt.Sprintf("%s: %s (%s)", ErrFormat, e.Kind, e.Type)
	}
	return fmt.Sprintf("%s: catalog %s column %s: %s (%s)", ErrFormat, e.Catalog, e.Column, e.Kind, e.Type)
}

// Unwrap lets errors.Is match ErrFormat.
func (e *FormatError) Unwrap() error { return ErrFormat }

// ResourceError wraps a data source failure.
type ResourceError struct {
	Source string
	Table  string
	Op     string
	Err    error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s: %s %s.%s: %v", ErrResource, e.Op, e.Source, e.Table, e.Err)
}

// Unwrap exposes both the sentinel and the cause.
func (e *ResourceError) Unwrap() []error {
	return []error{ErrResource, e.Err}
}

// IOError wraps a destination failure.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s: %v", ErrIO, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s %s: %v", ErrIO, e.Op, e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the cause.
func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}
