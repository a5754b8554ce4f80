package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/brokengap/internal/domain/material"
	"github.com/okian/brokengap/pkg/logger"
)

const defaultTable = "materials"

// Querier is the part of a pgx pool the source uses.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres reads rows from a table whose columns are named after the row keys
// and whose data column is a jsonb copy of the row's result blobs. Every
// column but uid may be NULL.
type Postgres struct {
	db     Querier
	pool   *pgxpool.Pool
	table  string
	id     string
	logger logger.Logger
}

// Connect opens a pool to databaseURL and verifies it.
func Connect(ctx context.Context, databaseURL string, opts ...PostgresOption) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse database url: %w", ErrUnavailable, err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to database: %w", ErrUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %w", ErrUnavailable, err)
	}

	p := NewPostgres(pool, cfg.ConnConfig.Host+"/"+cfg.ConnConfig.Database, opts...)
	p.pool = pool
	return p, nil
}

// NewPostgres wraps an existing connection. database names it in ID.
func NewPostgres(db Querier, database string, opts ...PostgresOption) *Postgres {
	p := &Postgres{
		db:     db,
		table:  defaultTable,
		logger: logger.Get().Named("source"),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.id = "postgres:" + database + "/" + p.table
	return p
}

// Close releases the pool opened by Connect.
func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// ID implements Source.
func (p *Postgres) ID() string { return p.id }

func (p *Postgres) query() string {
	return `SELECT uid, formula, class, spacegroup, spgnum, crystal_type,
		evac, vbm, cbm, vbm_hse, cbm_hse, vbm_gw, cbm_gw,
		thermodynamic_stability_level, is_magnetic, cell_area, data
		FROM ` + pgx.Identifier{p.table}.Sanitize() + `
		WHERE uid IS NOT NULL AND evac IS NOT NULL AND spgnum IS NOT NULL
		ORDER BY uid`
}

// Load implements Source.
func (p *Postgres) Load(ctx context.Context) ([]material.Record, error) {
	rows, err := p.db.Query(ctx, p.query())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query %s: %w", ErrUnavailable, p.table, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			r    Row
			data []byte
		)
		if err := rows.Scan(&r.UID, &r.Formula, &r.Class, &r.SpaceGroup, &r.SpgNum, &r.CrystalType,
			&r.Evac, &r.VBM, &r.CBM, &r.VBMHSE, &r.CBMHSE, &r.VBMGW, &r.CBMGW,
			&r.StabilityLevel, &r.IsMagnetic, &r.CellArea, &data); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %w", ErrDecode, p.table, err)
		}
		r.Data = data
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrUnavailable, p.table, err)
	}

	records, skipped := Records(out)
	p.logger.Debug(ctx, "rows read",
		logger.String("table", p.table),
		logger.Int("rows", len(out)),
		logger.Int("skipped", skipped),
	)
	return records, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
