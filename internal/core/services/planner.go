package services

import (
	"fmt"

	"github.com/custodia-labs/skycat/internal/core/domain"
	"github.com/custodia-labs/skycat/internal/logger"
)

// Planner partitions catalogs into scan groups.
type Planner struct {
	resolver Resolver
}

// NewPlanner creates a planner.
func NewPlanner() *Planner {
	return &Planner{}
}

// Plan groups specs by signature in a single pass. Groups appear in the order
// their signature is first seen and members keep their input order.
// required[i] lists the raw columns catalog i reads; the group's column set
// is the union of its members' lists after the id and position columns.
func (p *Planner) Plan(specs []domain.CatalogSpec, required [][]string) (*domain.Plan, error) {
	if len(required) != len(specs) {
		return nil, fmt.Errorf("%w: %d column lists for %d catalogs", domain.ErrInvalidInput, len(required), len(specs))
	}

	plan := &domain.Plan{}
	index := make(map[domain.ResourceRef]int)
	var seen []map[string]struct{}

	for i := range specs {
		sig := p.resolver.Signature(&specs[i])

		gi, ok := index[sig.Key()]
		if !ok {
			gi = len(plan.Groups)
			index[sig.Key()] = gi
			plan.Groups = append(plan.Groups, domain.DataSourceGroup{Signature: sig})
			seen = append(seen, make(map[string]struct{}))
			addColumns(&plan.Groups[gi], seen[gi], sig.IDColumn, sig.RAColumn, sig.DecColumn)
		}

		g := &plan.Groups[gi]
		g.Members = append(g.Members, i)
		addColumns(g, seen[gi], required[i]...)
	}

	for gi, g := range plan.Groups {
		logger.Debug("group %d %s: members=%v columns=%v", gi, g.Signature, g.Members, g.Columns)
	}
	return plan, nil
}

func addColumns(g *domain.DataSourceGroup, seen map[string]struct{}, cols ...string) {
	for _, col := range cols {
		if _, ok := seen[col]; ok {
			continue
		}
		seen[col] = struct{}{}
		g.Columns = append(g.Columns, col)
	}
}
