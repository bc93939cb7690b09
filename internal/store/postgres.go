package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const solveSchema = `
CREATE TABLE IF NOT EXISTS solves (
    id             UUID PRIMARY KEY,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    request_hash   TEXT NOT NULL,
    num_locations  INT NOT NULL,
    num_vehicles   INT NOT NULL,
    status         TEXT NOT NULL,
    total_distance BIGINT NOT NULL,
    total_load     BIGINT NOT NULL,
    vehicles_used  INT NOT NULL,
    cached         BOOLEAN NOT NULL DEFAULT false,
    duration_ms    BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS solves_created_at_idx ON solves (created_at DESC);
`

// Postgres persists solve history so stats survive restarts.
type Postgres struct {
	db *sql.DB
}

// NewPostgres connects and ensures the solves table exists.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(solveSchema); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) RecordSolve(ctx context.Context, rec SolveRecord) error {
	_, err := p.db.ExecContext(ctx, `INSERT INTO solves
        (id, created_at, request_hash, num_locations, num_vehicles, status, total_distance, total_load, vehicles_used, cached, duration_ms)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		rec.ID, rec.CreatedAt, rec.RequestHash, rec.NumLocations, rec.NumVehicles,
		rec.Status, rec.TotalDistance, rec.TotalLoad, rec.VehiclesUsed, rec.Cached, rec.DurationMs)
	return err
}

func (p *Postgres) RecentSolves(ctx context.Context, limit int) ([]SolveRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx, `SELECT id::text, created_at, request_hash, num_locations, num_vehicles, status, total_distance, total_load, vehicles_used, cached, duration_ms
        FROM solves ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SolveRecord
	for rows.Next() {
		var rec SolveRecord
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.RequestHash, &rec.NumLocations, &rec.NumVehicles,
			&rec.Status, &rec.TotalDistance, &rec.TotalLoad, &rec.VehiclesUsed, &rec.Cached, &rec.DurationMs); err != nil {
			return nil, err
		}
		rec.Duration = time.Duration(rec.DurationMs) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *Postgres) Stats(ctx context.Context) (FleetStats, error) {
	var st FleetStats
	err := p.db.QueryRowContext(ctx, `SELECT
        count(*),
        count(*) FILTER (WHERE status IN ('solved','timed_out')),
        count(*) FILTER (WHERE status = 'infeasible'),
        count(*) FILTER (WHERE cached),
        COALESCE(avg(duration_ms), 0),
        COALESCE(avg(total_distance), 0),
        COALESCE(avg(vehicles_used), 0)
        FROM solves`).Scan(
		&st.TotalSolves, &st.SolvedCount, &st.InfeasibleCount, &st.CacheHits,
		&st.AvgDurationMs, &st.AvgDistance, &st.AvgVehiclesUsed)
	return st, err
}

// Ping checks connectivity for readiness probes.
func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

func (p *Postgres) Close() error { return p.db.Close() }
