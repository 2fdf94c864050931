// Package postgres opens PostgreSQL catalog databases as data sources,
// using pgx through its database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/custodia-labs/skycat/internal/adapters/driven/storage"
	"github.com/custodia-labs/skycat/internal/adapters/driven/storage/sqldb"
	"github.com/custodia-labs/skycat/internal/core/domain"
	"github.com/custodia-labs/skycat/internal/core/ports/driven"
)

func init() {
	storage.Register(domain.DriverPostgres, func(ctx context.Context, cfg domain.SourceConfig) (driven.DataSource, error) {
		src, err := Open(ctx, cfg.Name, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return src, nil
	})
}

// ParseDSN parses a pgx connection string ("postgres://..." or "host=... dbname=...").
func ParseDSN(dsn string) (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: postgres dsn: %v", domain.ErrInvalidInput, err)
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	return cfg, nil
}

// Open connects to dsn and returns it as a data source named name.
func Open(ctx context.Context, name, dsn string) (*sqldb.Source, error) {
	cfg, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	db := stdlib.OpenDB(*cfg)
	configurePool(db)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Host, err)
	}
	return sqldb.New(name, db, sqldb.Postgres), nil
}

// configurePool sizes the pool for a few long scans rather than many short queries.
func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)
}
