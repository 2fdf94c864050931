package file

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/skycat/internal/core/domain"
	"github.com/custodia-labs/skycat/internal/core/ports/driven"
)

// Ensure ProjectStore implements the interface.
var _ driven.ProjectStore = (*ProjectStore)(nil)

// ProjectStore reads and writes catalog files in TOML.
//
// A minimal file:
//
//	[[sources]]
//	name = "db"
//	driver = "sqlite"
//	dsn = "sky.db"
//
//	[[catalogs]]
//	name = "stars"
//	source = "db"
//	table = "stars"
//	outputs = ["id", "ra", "dec"]
//
// Relative SQLite paths are resolved against the catalog file's directory.
type ProjectStore struct{}

// NewProjectStore creates a TOML project store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{}
}

type projectFile struct {
	ChunkSize int           `toml:"chunk_size,omitempty"`
	Verbose   bool          `toml:"verbose,omitempty"`
	Bound     *boundFile    `toml:"bound,omitempty"`
	Sources   []sourceFile  `toml:"sources"`
	Catalogs  []catalogFile `toml:"catalogs"`
}

type boundFile struct {
	Kind    string  `toml:"kind"`
	RA      float64 `toml:"ra"`
	Dec     float64 `toml:"dec"`
	Radius  float64 `toml:"radius,omitempty"`
	HalfRA  float64 `toml:"half_ra,omitempty"`
	HalfDec float64 `toml:"half_dec,omitempty"`
}

type sourceFile struct {
	Name   string `toml:"name"`
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

type catalogFile struct {
	ID           string            `toml:"id,omitempty"`
	Name         string            `toml:"name"`
	Source       string            `toml:"source"`
	Table        string            `toml:"table"`
	IDColumn     string            `toml:"id_column,omitempty"`
	RAColumn     string            `toml:"ra_column,omitempty"`
	DecColumn    string            `toml:"dec_column,omitempty"`
	Outputs      []string          `toml:"outputs"`
	Columns      map[string]string `toml:"columns,omitempty"`
	RawColumns   []string          `toml:"raw_columns,omitempty"`
	RawTypes     map[string]string `toml:"raw_types,omitempty"`
	Formats      map[string]string `toml:"formats,omitempty"`
	Delimiter    string            `toml:"delimiter,omitempty"`
	CannotBeNull []string          `toml:"cannot_be_null,omitempty"`
}

// Default column names used when a catalog omits them.
const (
	defaultIDColumn  = "id"
	defaultRAColumn  = "ra"
	defaultDecColumn = "dec"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// literals look like identifiers but are expression constants.
var literals = map[string]bool{"true": true, "false": true, "nil": true}

// computation reads a columns entry: a bare column name copies that raw
// column, anything else is an expression.
func computation(src string) domain.Computation {
	src = strings.TrimSpace(src)
	if identifier.MatchString(src) && !literals[src] {
		return domain.Raw(src)
	}
	return domain.Expr(src)
}

// Load reads and validates the project at path.
func (s *ProjectStore) Load(path string) (*domain.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var f projectFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, path, err)
	}

	p, err := f.project(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Save writes project to path with owner-only permissions.
func (s *ProjectStore) Save(path string, project *domain.Project) error {
	f, err := fromProject(project)
	if err != nil {
		return err
	}

	data, err := toml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func (f *projectFile) project(dir string) (*domain.Project, error) {
	p := &domain.Project{
		ChunkSize: f.ChunkSize,
		Verbose:   f.Verbose,
	}

	if f.Bound != nil {
		b, err := f.Bound.bound()
		if err != nil {
			return nil, err
		}
		p.Bound = &b
	}

	for _, sf := range f.Sources {
		driver, err := domain.ParseDriver(sf.Driver)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", sf.Name, err)
		}
		dsn := sf.DSN
		if driver == domain.DriverSQLite && dsn != "" && !filepath.IsAbs(dsn) {
			dsn = filepath.Join(dir, dsn)
		}
		p.Sources = append(p.Sources, domain.SourceConfig{Name: sf.Name, Driver: driver, DSN: dsn})
	}

	for i := range f.Catalogs {
		spec, err := f.Catalogs[i].spec()
		if err != nil {
			return nil, err
		}
		p.Catalogs = append(p.Catalogs, spec)
	}
	return p, nil
}

func (b *boundFile) bound() (domain.SpatialBound, error) {
	switch strings.ToLower(b.Kind) {
	case "cone", "circle":
		return domain.Cone(b.RA, b.Dec, b.Radius), nil
	case "box":
		return domain.Box(b.RA, b.Dec, b.HalfRA, b.HalfDec), nil
	default:
		return domain.SpatialBound{}, fmt.Errorf("%w: bound kind %q", domain.ErrUnsupportedType, b.Kind)
	}
}

func (c *catalogFile) spec() (domain.CatalogSpec, error) {
	spec := domain.CatalogSpec{
		ID:   c.ID,
		Name: c.Name,
		Resource: domain.ResourceRef{
			Source:    c.Source,
			Table:     c.Table,
			IDColumn:  orDefault(c.IDColumn, defaultIDColumn),
			RAColumn:  orDefault(c.RAColumn, defaultRAColumn),
			DecColumn: orDefault(c.DecColumn, defaultDecColumn),
		},
		Outputs:      slices.Clone(c.Outputs),
		RawColumns:   slices.Clone(c.RawColumns),
		Delimiter:    c.Delimiter,
		CannotBeNull: slices.Clone(c.CannotBeNull),
	}
	if spec.ID == "" {
		spec.ID = uuid.NewString()
	}

	if len(c.Columns) > 0 {
		spec.Computations = make(map[string]domain.Computation, len(c.Columns))
		for name, src := range c.Columns {
			spec.Computations[name] = computation(src)
		}
	}

	if len(c.RawTypes) > 0 {
		spec.RawTypes = make(map[string]domain.ValueKind, len(c.RawTypes))
		for col, name := range c.RawTypes {
			kind, err := domain.ParseValueKind(name)
			if err != nil {
				return spec, fmt.Errorf("catalog %s raw type of %s: %w", spec.Label(), col, err)
			}
			spec.RawTypes[col] = kind
		}
	}

	if len(c.Formats) > 0 {
		spec.Formats = make(domain.FormatRules, len(c.Formats))
		for name, verb := range c.Formats {
			kind, err := domain.ParseValueKind(name)
			if err != nil {
				return spec, fmt.Errorf("catalog %s format: %w", spec.Label(), err)
			}
			spec.Formats[kind] = verb
		}
	}
	return spec, nil
}

func fromProject(p *domain.Project) (*projectFile, error) {
	f := &projectFile{ChunkSize: p.ChunkSize, Verbose: p.Verbose}

	if b := p.Bound; b != nil {
		f.Bound = &boundFile{Kind: b.Kind.String(), RA: b.RA, Dec: b.Dec, Radius: b.Radius, HalfRA: b.HalfRA, HalfDec: b.HalfDec}
	}
	for _, s := range p.Sources {
		f.Sources = append(f.Sources, sourceFile{Name: s.Name, Driver: s.Driver.String(), DSN: s.DSN})
	}

	for i := range p.Catalogs {
		spec := &p.Catalogs[i]
		cf := catalogFile{
			ID:           spec.ID,
			Name:         spec.Name,
			Source:       spec.Resource.Source,
			Table:        spec.Resource.Table,
			IDColumn:     spec.Resource.IDColumn,
			RAColumn:     spec.Resource.RAColumn,
			DecColumn:    spec.Resource.DecColumn,
			Outputs:      spec.Outputs,
			RawColumns:   spec.RawColumns,
			Delimiter:    spec.Delimiter,
			CannotBeNull: spec.CannotBeNull,
		}

		for name, comp := range spec.Computations {
			if cf.Columns == nil {
				cf.Columns = make(map[string]string)
			}
			switch comp.Kind {
			case domain.ComputeRaw:
				cf.Columns[name] = comp.Column
			case domain.ComputeExpr:
				cf.Columns[name] = comp.Source
			default:
				return nil, fmt.Errorf("%w: catalog %s column %s is a %s computation",
					domain.ErrUnsupportedType, spec.Label(), name, comp.Kind)
			}
		}
		for col, kind := range spec.RawTypes {
			if cf.RawTypes == nil {
				cf.RawTypes = make(map[string]string)
			}
			cf.RawTypes[col] = kind.String()
		}
		for kind, verb := range spec.Formats {
			if cf.Formats == nil {
				cf.Formats = make(map[string]string)
			}
			cf.Formats[kind.String()] = verb
		}
		f.Catalogs = append(f.Catalogs, cf)
	}
	return f, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
