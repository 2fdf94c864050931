package domain

import (
	"fmt"
	"strings"
)

// Driver identifies the database driver behind a data source.
type Driver string

// Supported drivers.
const (
	// DriverSQLite reads SQLite files through modernc.org/sqlite.
	DriverSQLite Driver = "sqlite"

	// DriverPostgres reads PostgreSQL through pgx.
	DriverPostgres Driver = "postgres"

	// DriverSQLServer reads Microsoft SQL Server.
	DriverSQLServer Driver = "sqlserver"
)

// driverAliases maps alternative spellings accepted in catalog files.
var driverAliases = map[string]Driver{
	"sqlite":     DriverSQLite,
	"sqlite3":    DriverSQLite,
	"postgres":   DriverPostgres,
	"postgresql": DriverPostgres,
	"pgx":        DriverPostgres,
	"sqlserver":  DriverSQLServer,
	"mssql":      DriverSQLServer,
}

// ParseDriver resolves a driver name or alias.
func ParseDriver(s string) (Driver, error) {
	if d, ok := driverAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return d, nil
	}
	return "", fmt.Errorf("%w: driver %q", ErrUnsupportedType, s)
}

// IsValid returns true if the driver is recognised.
func (d Driver) IsValid() bool {
	switch d {
	case DriverSQLite, DriverPostgres, DriverSQLServer:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d Driver) String() string {
	return string(d)
}

// SourceConfig describes a named database connection that catalogs read from.
type SourceConfig struct {
	// Name is referenced by ResourceRef.Source.
	Name string

	// Driver selects the database adapter.
	Driver Driver

	// DSN is the driver-specific connection string. For SQLite it is a file path.
	DSN string
}

// Validate checks the configuration is complete.
func (c SourceConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: source without name", ErrInvalidInput)
	}
	if !c.Driver.IsValid() {
		return fmt.Errorf("%w: source %s driver %q", ErrUnsupportedType, c.Name, c.Driver)
	}
	if strings.TrimSpace(c.DSN) == "" {
		return fmt.Errorf("%w: source %s has no dsn", ErrInvalidInput, c.Name)
	}
	return nil
}

// Redacted returns the DSN with any password removed, for logs.
func (c SourceConfig) Redacted() string {
	dsn := c.DSN
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	userinfo := dsn[scheme+3 : at]
	if colon := strings.Index(userinfo, ":"); colon >= 0 {
		return dsn[:scheme+3] + userinfo[:colon] + ":xxxxx" + dsn[at:]
	}
	return dsn
}

// SourceStatus is the outcome of checking that one source can be opened.
type SourceStatus struct {
	Config SourceConfig
	Err    error
}

// OK reports whether the check succeeded.
func (s SourceStatus) OK() bool {
	return s.Err == nil
}
