// Package storage resolves configured data sources by name.
//
// Driver packages register an Opener for their domain.Driver at init time,
// so callers only need a blank import of the drivers they want:
//
//	import _ "github.com/custodia-labs/skycat/internal/adapters/driven/storage/sqlite"
//
// A Registry opens sources lazily on first use and closes them together.
package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/skycat/internal/core/domain"
	"github.com/custodia-labs/skycat/internal/core/ports/driven"
	"github.com/custodia-labs/skycat/internal/logger"
)

// Opener opens a data source from its configuration.
type Opener func(ctx context.Context, cfg domain.SourceConfig) (driven.DataSource, error)

var (
	openersMu sync.RWMutex
	openers   = make(map[domain.Driver]Opener)
)

// Register makes a driver available to every Registry. It panics if the
// driver is registered twice, like database/sql.Register.
func Register(d domain.Driver, open Opener) {
	openersMu.Lock()
	defer openersMu.Unlock()
	if _, dup := openers[d]; dup {
		panic(fmt.Sprintf("storage: driver %s registered twice", d))
	}
	openers[d] = open
}

// Drivers returns the registered drivers, sorted.
func Drivers() []domain.Driver {
	openersMu.RLock()
	defer openersMu.RUnlock()
	ds := make([]domain.Driver, 0, len(openers))
	for d := range openers {
		ds = append(ds, d)
	}
	slices.Sort(ds)
	return ds
}

func opener(d domain.Driver) (Opener, error) {
	openersMu.RLock()
	defer openersMu.RUnlock()
	open, ok := openers[d]
	if !ok {
		return nil, fmt.Errorf("%w: driver %s is not compiled in", domain.ErrUnsupportedType, d)
	}
	return open, nil
}

// Ensure Registry and Factory implement the interfaces.
var (
	_ driven.SourceSet        = (*Registry)(nil)
	_ driven.SourceSetFactory = Factory{}
)

// Factory creates registries from project configuration.
type Factory struct{}

// NewSourceSet returns a Registry over configs.
func (Factory) NewSourceSet(configs []domain.SourceConfig) (driven.SourceSet, error) {
	r, err := NewRegistry(configs)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Registry holds the configured sources of one run.
type Registry struct {
	mu      sync.Mutex
	configs map[string]domain.SourceConfig
	names   []string
	open    map[string]driven.DataSource
}

// NewRegistry validates configs. Sources are not opened until used.
func NewRegistry(configs []domain.SourceConfig) (*Registry, error) {
	r := &Registry{
		configs: make(map[string]domain.SourceConfig, len(configs)),
		open:    make(map[string]driven.DataSource),
	}
	for _, cfg := range configs {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.configs[cfg.Name]; dup {
			return nil, fmt.Errorf("%w: source %s defined twice", domain.ErrInvalidInput, cfg.Name)
		}
		r.configs[cfg.Name] = cfg
		r.names = append(r.names, cfg.Name)
	}
	return r, nil
}

// Names returns the configured source names in configuration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Config returns the configuration of the named source.
func (r *Registry) Config(name string) (domain.SourceConfig, bool) {
	cfg, ok := r.configs[name]
	return cfg, ok
}

// Get returns the named source, opening it on first use.
func (r *Registry) Get(ctx context.Context, name string) (driven.DataSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ds, ok := r.open[name]; ok {
		return ds, nil
	}
	cfg, ok := r.configs[name]
	if !ok {
		return nil, fmt.Errorf("%w: data source %s", domain.ErrNotFound, name)
	}

	open, err := opener(cfg.Driver)
	if err != nil {
		return nil, err
	}
	logger.Debug("opening source %s (%s %s)", name, cfg.Driver, cfg.Redacted())
	ds, err := open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening source %s: %w", name, err)
	}
	r.open[name] = ds
	return ds, nil
}

// Check opens every configured source concurrently, then closes it again.
// Statuses are returned in configuration order.
func (r *Registry) Check(ctx context.Context) []domain.SourceStatus {
	statuses := make([]domain.SourceStatus, len(r.names))

	var g errgroup.Group
	g.SetLimit(4)
	for i, name := range r.names {
		cfg := r.configs[name]
		statuses[i].Config = cfg
		g.Go(func() error {
			open, err := opener(cfg.Driver)
			if err == nil {
				var ds driven.DataSource
				if ds, err = open(ctx, cfg); err == nil {
					err = ds.Close()
				}
			}
			statuses[i].Err = err
			return nil
		})
	}
	_ = g.Wait()
	return statuses
}

// Close closes every source opened through the registry.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, name := range r.names {
		if ds, ok := r.open[name]; ok {
			if err := ds.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing source %s: %w", name, err))
			}
			delete(r.open, name)
		}
	}
	return errors.Join(errs...)
}
