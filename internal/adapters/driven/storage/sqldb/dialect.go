package sqldb

import (
	"strconv"
	"strings"
)

// Dialect holds the SQL differences between supported databases.
type Dialect struct {
	// Name is used in logs.
	Name string

	// Placeholder returns the n-th (1-based) bind parameter.
	Placeholder func(n int) string

	// Quote quotes an identifier.
	Quote func(ident string) string
}

// SQLite is the dialect for modernc.org/sqlite.
var SQLite = Dialect{
	Name:        "sqlite",
	Placeholder: func(int) string { return "?" },
	Quote:       doubleQuote,
}

// Postgres is the dialect for pgx.
var Postgres = Dialect{
	Name:        "postgres",
	Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	Quote:       doubleQuote,
}

// SQLServer is the dialect for go-mssqldb.
var SQLServer = Dialect{
	Name:        "sqlserver",
	Placeholder: func(n int) string { return "@p" + strconv.Itoa(n) },
	Quote:       bracketQuote,
}

func doubleQuote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func bracketQuote(ident string) string {
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}

// QuoteTable quotes a possibly schema-qualified table name such as "gaia.sources".
func (d Dialect) QuoteTable(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = d.Quote(p)
	}
	return strings.Join(parts, ".")
}
