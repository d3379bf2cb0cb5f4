package db

import (
	"strconv"
	"strings"
)

// Dialect selects the SQL flavor a repository speaks.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Rebind rewrites "?" placeholders into the dialect's bind syntax.
// Queries are written with "?" and rebound once at construction.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// SupportsReturning reports whether INSERT ... RETURNING is used to read new ids.
func (d Dialect) SupportsReturning() bool {
	return d == Postgres
}

func (d Dialect) driver(dsn string) (string, string) {
	switch d {
	case SQLite:
		if !strings.Contains(dsn, "?") {
			dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
		}
		return "sqlite", dsn
	default:
		return "pgx", dsn
	}
}

func (d Dialect) gooseDialect() string {
	if d == SQLite {
		return "sqlite3"
	}
	return "postgres"
}
