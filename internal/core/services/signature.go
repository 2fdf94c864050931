package services

import (
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/custodia-labs/skycat/internal/core/domain"
)

// Resolver computes group signatures. It only looks at a catalog's
// resource reference, never at its computations.
type Resolver struct{}

// Signature returns the signature of the table spec reads.
func (Resolver) Signature(spec *domain.CatalogSpec) domain.GroupSignature {
	r := spec.Resource
	return domain.GroupSignature{
		Source:      r.Source,
		Table:       r.Table,
		IDColumn:    r.IDColumn,
		RAColumn:    r.RAColumn,
		DecColumn:   r.DecColumn,
		Fingerprint: xxh3.HashString(strings.Join([]string{r.Source, r.Table, r.IDColumn, r.RAColumn, r.DecColumn}, "\x00")),
	}
}
