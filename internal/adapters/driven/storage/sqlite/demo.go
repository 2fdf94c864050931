package sqlite

import (
	"github.com/custodia-labs/skycat/internal/core/domain"
)

// DemoSource is the source name used by DemoProject.
const DemoSource = "demo"

// DemoProject returns a project over the demo database at path: two
// catalogs sharing the stars table and one over the galaxies table.
func DemoProject(path string) *domain.Project {
	stars := domain.ResourceRef{Source: DemoSource, Table: "stars", IDColumn: "id", RAColumn: "ra", DecColumn: "dec"}
	galaxies := stars
	galaxies.Table = "galaxies"

	return &domain.Project{
		Sources: []domain.SourceConfig{{Name: DemoSource, Driver: domain.DriverSQLite, DSN: path}},
		Catalogs: []domain.CatalogSpec{
			{
				Name:     "stars",
				Resource: stars,
				Outputs:  []string{"id", "ra", "dec", "mag_g"},
				Formats:  domain.FormatRules{domain.KindFloat: "%.5f"},
			},
			{
				Name:     "stars-2030",
				Resource: stars,
				Outputs:  []string{"id", "ra", "dec", "color"},
				Computations: map[string]domain.Computation{
					"ra":    domain.Expr("ra + dra * 10"),
					"dec":   domain.Expr("dec + ddec * 10"),
					"color": domain.Expr("mag_r == nil ? nil : mag_g - mag_r"),
				},
				RawTypes:     map[string]domain.ValueKind{"mag_g": domain.KindFloat, "mag_r": domain.KindFloat},
				Formats:      domain.FormatRules{domain.KindFloat: "%.6f"},
				Delimiter:    ",",
				CannotBeNull: []string{"color"},
			},
			{
				Name:     "galaxies",
				Resource: galaxies,
				Outputs:  []string{"id", "ra", "dec", "redshift", "morphology"},
				RawTypes: map[string]domain.ValueKind{"redshift": domain.KindFloat},
			},
		},
	}
}
