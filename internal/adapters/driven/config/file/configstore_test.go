package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/skycat/internal/core/domain"
)

const sampleProject = `
chunk_size = 250
verbose = true

[bound]
kind = "box"
ra = 180.0
dec = 0.0
half_ra = 80.0
half_dec = 25.0

[[sources]]
name = "db"
driver = "sqlite"
dsn = "sky.db"

[[sources]]
name = "archive"
driver = "postgresql"
dsn = "postgres://astro@archive/sky"

[[catalogs]]
name = "stars"
source = "db"
table = "stars"
outputs = ["id", "ra", "dec", "color", "g"]
cannot_be_null = ["color"]
delimiter = ","

[catalogs.columns]
ra = "2.0*ra + dra"
color = "mag_g - mag_r"
g = "mag_g"

[catalogs.raw_types]
mag_g = "float"

[catalogs.formats]
float = "%.6f"
null = "-"

[[catalogs]]
id = "gal-1"
name = "galaxies"
source = "archive"
table = "public.galaxies"
id_column = "objid"
ra_column = "ra_deg"
dec_column = "dec_deg"
outputs = ["objid", "redshift"]
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalogs.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestProjectStore_Load(t *testing.T) {
	path := writeFile(t, sampleProject)

	p, err := NewProjectStore().Load(path)
	require.NoError(t, err)

	assert.Equal(t, 250, p.ChunkSize)
	assert.True(t, p.Verbose)
	require.NotNil(t, p.Bound)
	assert.Equal(t, domain.Box(180, 0, 80, 25), *p.Bound)

	require.Len(t, p.Sources, 2)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "sky.db"), p.Sources[0].DSN)
	assert.Equal(t, domain.DriverPostgres, p.Sources[1].Driver)
	assert.Equal(t, "postgres://astro@archive/sky", p.Sources[1].DSN)

	require.Len(t, p.Catalogs, 2)
	stars := p.Catalogs[0]
	assert.NotEmpty(t, stars.ID)
	assert.Equal(t, domain.ResourceRef{Source: "db", Table: "stars", IDColumn: "id", RAColumn: "ra", DecColumn: "dec"}, stars.Resource)
	assert.Equal(t, domain.Expr("2.0*ra + dra"), stars.Computations["ra"])
	assert.Equal(t, domain.Raw("mag_g"), stars.Computations["g"])
	assert.Equal(t, domain.KindFloat, stars.RawTypes["mag_g"])
	assert.Equal(t, domain.FormatRules{domain.KindFloat: "%.6f", domain.KindNull: "-"}, stars.Formats)
	assert.Equal(t, ",", stars.Delimiter)
	assert.Equal(t, []string{"color"}, stars.CannotBeNull)

	gal := p.Catalogs[1]
	assert.Equal(t, "gal-1", gal.ID)
	assert.Equal(t, "objid", gal.Resource.IDColumn)
	assert.Equal(t, "public.galaxies", gal.Resource.Table)
}

func TestComputation(t *testing.T) {
	tests := []struct {
		src  string
		want domain.Computation
	}{
		{"mag_g", domain.Raw("mag_g")},
		{"  mag_g ", domain.Raw("mag_g")},
		{"mag_g - mag_r", domain.Expr("mag_g - mag_r")},
		{"true", domain.Expr("true")},
		{"false", domain.Expr("false")},
		{"nil", domain.Expr("nil")},
		{"nil_flag", domain.Raw("nil_flag")},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, computation(tt.src))
		})
	}
}

func TestProjectStore_LoadLiteralColumns(t *testing.T) {
	path := writeFile(t, `
[[sources]]
name = "db"
driver = "sqlite"
dsn = "sky.db"

[[catalogs]]
name = "flags"
source = "db"
table = "stars"
outputs = ["id", "variable", "note"]

[catalogs.columns]
variable = "false"
note = "nil"
`)

	p, err := NewProjectStore().Load(path)
	require.NoError(t, err)

	cols := p.Catalogs[0].Computations
	assert.Equal(t, domain.Expr("false"), cols["variable"])
	assert.Equal(t, domain.Expr("nil"), cols["note"])
}

func TestProjectStore_LoadAssignsDistinctIDs(t *testing.T) {
	path := writeFile(t, sampleProject)

	a, err := NewProjectStore().Load(path)
	require.NoError(t, err)
	b, err := NewProjectStore().Load(path)
	require.NoError(t, err)

	assert.NotEqual(t, a.Catalogs[0].ID, b.Catalogs[0].ID)
}

func TestProjectStore_LoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"syntax", "chunk_size = = 3", domain.ErrInvalidInput},
		{"unknown key", "colour = 1\n[[sources]]\nname='db'\ndriver='sqlite'\ndsn='x'", domain.ErrInvalidInput},
		{"bad driver", "[[sources]]\nname='db'\ndriver='oracle'\ndsn='x'", domain.ErrUnsupportedType},
		{"bad bound", "[bound]\nkind='triangle'", domain.ErrUnsupportedType},
		{"no catalogs", "[[sources]]\nname='db'\ndriver='sqlite'\ndsn='x'", domain.ErrInvalidInput},
		{
			"unknown source",
			"[[sources]]\nname='db'\ndriver='sqlite'\ndsn='x'\n[[catalogs]]\nname='c'\nsource='other'\ntable='t'\noutputs=['id']",
			domain.ErrInvalidInput,
		},
		{
			"bad format kind",
			"[[sources]]\nname='db'\ndriver='sqlite'\ndsn='x'\n[[catalogs]]\nname='c'\nsource='db'\ntable='t'\noutputs=['id']\n[catalogs.formats]\ncomplex='%v'",
			domain.ErrUnsupportedType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProjectStore().Load(writeFile(t, tt.content))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestProjectStore_LoadMissingFile(t *testing.T) {
	_, err := NewProjectStore().Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProjectStore_SaveThenLoad(t *testing.T) {
	dir := t.TempDir()
	cone := domain.Cone(10, 20, 1.5)
	project := &domain.Project{
		ChunkSize: 100,
		Bound:     &cone,
		Sources:   []domain.SourceConfig{{Name: "db", Driver: domain.DriverSQLite, DSN: filepath.Join(dir, "sky.db")}},
		Catalogs: []domain.CatalogSpec{{
			ID:           "c1",
			Name:         "stars",
			Resource:     domain.ResourceRef{Source: "db", Table: "stars", IDColumn: "id", RAColumn: "ra", DecColumn: "dec"},
			Outputs:      []string{"id", "ra"},
			Computations: map[string]domain.Computation{"ra": domain.Expr("ra + 1")},
			Formats:      domain.FormatRules{domain.KindFloat: "%.3f"},
		}},
	}

	path := filepath.Join(dir, "out.toml")
	store := NewProjectStore()
	require.NoError(t, store.Save(path, project))

	loaded, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, project, loaded)
}

func TestProjectStore_SaveRejectsFuncColumns(t *testing.T) {
	project := &domain.Project{
		Catalogs: []domain.CatalogSpec{{
			Name:    "stars",
			Outputs: []string{"x"},
			Computations: map[string]domain.Computation{
				"x": domain.Func(func(domain.RowView) (any, error) { return 1, nil }),
			},
		}},
	}

	err := NewProjectStore().Save(filepath.Join(t.TempDir(), "out.toml"), project)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}
