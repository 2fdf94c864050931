package domain

import "fmt"

// Project is everything needed for one compound write: the sources to
// connect to, the catalogs to produce and the optional bound.
type Project struct {
	// ChunkSize is the number of raw rows per scan batch. Zero means the default.
	ChunkSize int

	// Verbose enables debug logging.
	Verbose bool

	// Bound, if set, restricts every group scan.
	Bound *SpatialBound

	Sources  []SourceConfig
	Catalogs []CatalogSpec
}

// Validate checks the sources, the bound and each catalog, and that every
// catalog names a configured source.
func (p *Project) Validate() error {
	if p.ChunkSize < 0 {
		return fmt.Errorf("%w: chunk size %d", ErrInvalidInput, p.ChunkSize)
	}
	if p.Bound != nil {
		if err := p.Bound.Validate(); err != nil {
			return fmt.Errorf("bound: %w", err)
		}
	}

	names := make(map[string]struct{}, len(p.Sources))
	for _, s := range p.Sources {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, dup := names[s.Name]; dup {
			return fmt.Errorf("%w: source %s defined twice", ErrInvalidInput, s.Name)
		}
		names[s.Name] = struct{}{}
	}

	if len(p.Catalogs) == 0 {
		return fmt.Errorf("%w: no catalogs", ErrInvalidInput)
	}
	for i := range p.Catalogs {
		c := &p.Catalogs[i]
		if err := c.Validate(); err != nil {
			return err
		}
		if _, ok := names[c.Resource.Source]; !ok {
			return fmt.Errorf("%w: catalog %s reads unknown source %s", ErrInvalidInput, c.Label(), c.Resource.Source)
		}
	}
	return nil
}
