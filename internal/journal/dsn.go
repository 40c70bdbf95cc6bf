package journal

import (
	"fmt"
	"net/url"
	"strings"
)

// Driver names registered with database/sql.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// ParseDSN picks the database/sql driver for a journal DSN.
// postgres:// and postgresql:// URLs go to pgx; "sqlite:<path>" or a bare
// path goes to sqlite.
func ParseDSN(dsn string) (driver, source string, err error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return "", "", fmt.Errorf("empty DSN")
	}
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		if _, err := url.Parse(dsn); err != nil {
			return "", "", fmt.Errorf("parse postgres DSN: %w", err)
		}
		return DriverPostgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite://"):
		source = strings.TrimPrefix(dsn, "sqlite://")
	case strings.HasPrefix(dsn, "sqlite:"):
		source = strings.TrimPrefix(dsn, "sqlite:")
	case strings.Contains(dsn, "://"):
		return "", "", fmt.Errorf("unsupported DSN scheme: %q", dsn[:strings.Index(dsn, "://")])
	default:
		source = dsn
	}
	if source == "" {
		return "", "", fmt.Errorf("empty sqlite path")
	}
	if !strings.Contains(source, "?") {
		source += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	return DriverSQLite, source, nil
}

// rebind rewrites ? placeholders to $n for drivers that need it.
func rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
