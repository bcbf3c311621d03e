package db

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect captures the SQL differences between the supported drivers.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "pgx", "postgres":
		return Postgres, nil
	case "sqlite3", "sqlite":
		return SQLite, nil
	default:
		return 0, fmt.Errorf("unsupported db driver %q", driver)
	}
}

func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}

// Placeholder returns the bind parameter marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d == SQLite {
		return "?"
	}
	return fmt.Sprintf("$%d", n)
}

// ContainsFold renders a case-insensitive LIKE of column against a bound
// pattern. The pattern uses '\' as escape character.
func (d Dialect) ContainsFold(column, placeholder string) string {
	if d == SQLite {
		return fmt.Sprintf(`LOWER(%s) LIKE LOWER(%s) ESCAPE '\'`, column, placeholder)
	}
	return fmt.Sprintf(`%s ILIKE %s ESCAPE '\'`, column, placeholder)
}

// Rebind rewrites '?' bind markers into the dialect's placeholders. Markers
// inside single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if d == SQLite {
		return query
	}
	var (
		b       strings.Builder
		n       int
		inQuote bool
	)
	b.Grow(len(query) + 8)
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
