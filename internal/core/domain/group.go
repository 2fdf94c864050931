package domain

import "fmt"

// GroupSignature identifies the physical resource a catalog scans.
// Catalogs with equal signatures share one scan even when their
// computations differ.
type GroupSignature struct {
	Source    string
	Table     string
	IDColumn  string
	RAColumn  string
	DecColumn string

	// Fingerprint is a hash of the fields above for logs and metric labels.
	// It is not used for equality.
	Fingerprint uint64
}

// Key returns the comparable identity of the signature.
func (s GroupSignature) Key() ResourceRef {
	return ResourceRef{
		Source:    s.Source,
		Table:     s.Table,
		IDColumn:  s.IDColumn,
		RAColumn:  s.RAColumn,
		DecColumn: s.DecColumn,
	}
}

// String returns a short form used in logs.
func (s GroupSignature) String() string {
	return fmt.Sprintf("%s.%s#%016x", s.Source, s.Table, s.Fingerprint)
}

// DataSourceGroup is an ordered set of catalogs sharing one signature.
// It is built once at planning time and not modified afterwards.
type DataSourceGroup struct {
	Signature GroupSignature

	// Members are indices into the engine's catalog list, in input order.
	Members []int

	// Columns is the union of raw columns any member needs. The id and
	// position columns come first.
	Columns []string
}

// Plan is the result of grouping a list of catalogs.
type Plan struct {
	Groups []DataSourceGroup
}

// Grouping returns the member indices of each group, in group order.
func (p *Plan) Grouping() [][]int {
	out := make([][]int, len(p.Groups))
	for i, g := range p.Groups {
		members := make([]int, len(g.Members))
		copy(members, g.Members)
		out[i] = members
	}
	return out
}

// GroupOf returns the index of the group containing catalog i, or -1.
func (p *Plan) GroupOf(i int) int {
	for gi, g := range p.Groups {
		for _, m := range g.Members {
			if m == i {
				return gi
			}
		}
	}
	return -1
}
