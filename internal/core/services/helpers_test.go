package services

import (
	"github.com/custodia-labs/skycat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/skycat/internal/core/domain"
	"github.com/custodia-labs/skycat/internal/expressions"
)

func tableRef(table string) domain.ResourceRef {
	return domain.ResourceRef{Source: "db", Table: table, IDColumn: "id", RAColumn: "ra", DecColumn: "dec"}
}

// scenarioSpecs returns two catalogs on table1 and one on table2.
func scenarioSpecs() []domain.CatalogSpec {
	return []domain.CatalogSpec{
		{
			Name:     "cat-a",
			Resource: tableRef("table1"),
			Outputs:  []string{"id", "ra", "dec"},
			Formats:  domain.FormatRules{domain.KindFloat: "%.2f"},
		},
		{
			Name:     "cat-b",
			Resource: tableRef("table1"),
			Outputs:  []string{"id", "ra", "dec", "mag"},
			Computations: map[string]domain.Computation{
				"ra":  domain.Expr("2.0*ra"),
				"dec": domain.Expr("2.0*dec"),
			},
			Formats:   domain.FormatRules{domain.KindFloat: "%.2f"},
			Delimiter: ",",
		},
		{
			Name:     "cat-c",
			Resource: tableRef("table2"),
			Outputs:  []string{"id", "flux"},
			Formats:  domain.FormatRules{domain.KindFloat: "%.1f"},
		},
	}
}

// newSky returns a source holding table1 (a strip along the equator) and table2.
func newSky() *memory.DataSource {
	ds := memory.NewDataSource("db")

	var rows []domain.RawRow
	for i := 0; i < 36; i++ {
		rows = append(rows, domain.RawRow{
			"id":  int64(i),
			"ra":  float64(i * 10),
			"dec": float64(i%7*10 - 30),
			"mag": 10.0 + float64(i)/4,
		})
	}
	ds.AddTable("table1", domain.Schema{
		"id": domain.KindInt, "ra": domain.KindFloat, "dec": domain.KindFloat, "mag": domain.KindFloat,
	}, rows...)

	ds.AddTable("table2", nil,
		domain.RawRow{"id": int64(100), "ra": 1.0, "dec": 1.0, "flux": 3.25},
		domain.RawRow{"id": int64(101), "ra": 2.0, "dec": 2.0, "flux": 4.75},
	)
	return ds
}

func newTestCatalog(specs []domain.CatalogSpec, bound *domain.SpatialBound, ds *memory.DataSource, opts ...Option) (*CompoundCatalog, error) {
	return NewCompoundCatalog(specs, bound, memory.NewRegistry(ds), expressions.NewCompiler(), opts...)
}
