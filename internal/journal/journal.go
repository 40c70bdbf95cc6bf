// Package journal appends completed cycles to a SQL table. Rows are an
// audit trail only; nothing is read back to restore a simulation.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Cycle is one row of metro_cycles.
type Cycle struct {
	RunID       string
	Cycle       int
	CompletedAt time.Time
	SimSeconds  float64
	Boarded     int
}

type Journal struct {
	db      *sql.DB
	driver  string
	writeMu sync.Mutex
}

// Open connects to dsn (see ParseDSN), pings it and ensures the schema.
func Open(ctx context.Context, dsn string) (*Journal, error) {
	driver, source, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	j := &Journal{db: db, driver: driver}
	if err := j.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping journal: %w", err)
	}
	if err := j.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) Driver() string { return j.driver }

func (j *Journal) Close() error { return j.db.Close() }

func (j *Journal) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return j.db.PingContext(ctx)
}

func (j *Journal) EnsureSchema(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// RecordCycle inserts one completed cycle. Writing the same (run, cycle)
// twice is an error.
func (j *Journal) RecordCycle(ctx context.Context, c Cycle) error {
	j.writeMu.Lock()
	defer j.writeMu.Unlock()

	q := rebind(j.driver, `INSERT INTO metro_cycles (run_id, cycle, completed_at_ms, sim_seconds, boarded) VALUES (?, ?, ?, ?, ?)`)
	if _, err := j.db.ExecContext(ctx, q, c.RunID, c.Cycle, c.CompletedAt.UnixMilli(), c.SimSeconds, c.Boarded); err != nil {
		return fmt.Errorf("insert cycle %d: %w", c.Cycle, err)
	}
	return nil
}

// RecentCycles returns up to limit cycles of runID, newest first.
func (j *Journal) RecentCycles(ctx context.Context, runID string, limit int) ([]Cycle, error) {
	if limit <= 0 {
		limit = 10
	}
	q := rebind(j.driver, `
SELECT run_id, cycle, completed_at_ms, sim_seconds, boarded
FROM metro_cycles
WHERE run_id = ?
ORDER BY cycle DESC
LIMIT ?`)
	rows, err := j.db.QueryContext(ctx, q, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var out []Cycle
	for rows.Next() {
		var c Cycle
		var ms int64
		if err := rows.Scan(&c.RunID, &c.Cycle, &ms, &c.SimSeconds, &c.Boarded); err != nil {
			return nil, err
		}
		c.CompletedAt = time.UnixMilli(ms)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
