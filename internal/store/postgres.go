package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/abuzz-labs/intel-cli/internal/db"
	"github.com/abuzz-labs/intel-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the per-request roster and insert paths.
var preparedStatements = map[string]string{
	"list_active_competitors": `SELECT id, name, status FROM competitors WHERE status = 'active' ORDER BY name`,
	"get_competitor_by_name":  `SELECT id, name, status FROM competitors WHERE lower(name) = lower($1)`,
	"insert_competitor":       `INSERT INTO competitors (id, name, status) VALUES ($1, $2, $3) ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, status = EXCLUDED.status`,
	"insert_item":             `INSERT INTO intel_items (id, competitor_id, occurred_at, title, summary, event_type, region, threat_level, details, source_url) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need direct
// access (bulk import).
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS competitors (
	id     TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name   TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL DEFAULT 'active'
);

CREATE TABLE IF NOT EXISTS intel_items (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	competitor_id TEXT NOT NULL REFERENCES competitors(id),
	occurred_at   DATE NOT NULL,
	title         TEXT NOT NULL,
	summary       TEXT NOT NULL DEFAULT '',
	event_type    TEXT NOT NULL,
	region        TEXT,
	threat_level  INTEGER NOT NULL DEFAULT 1,
	details       TEXT,
	source_url    TEXT NOT NULL DEFAULT '',
	UNIQUE (competitor_id, occurred_at, title)
);

CREATE INDEX IF NOT EXISTS idx_competitors_status ON competitors(status);
CREATE INDEX IF NOT EXISTS idx_intel_items_competitor_id ON intel_items(competitor_id);
CREATE INDEX IF NOT EXISTS idx_intel_items_threat_level ON intel_items(threat_level DESC);
CREATE INDEX IF NOT EXISTS idx_intel_items_event_type ON intel_items(event_type);
CREATE INDEX IF NOT EXISTS idx_intel_items_occurred_at ON intel_items(occurred_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) ListActiveCompetitors(ctx context.Context) ([]model.Competitor, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, status FROM competitors WHERE status = 'active' ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list active competitors")
	}
	defer rows.Close()

	var out []model.Competitor
	for rows.Next() {
		var c model.Competitor
		if err := rows.Scan(&c.ID, &c.Name, &c.Status); err != nil {
			return nil, eris.Wrap(err, "postgres: scan competitor")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate competitors")
	}
	return out, nil
}

func (s *PostgresStore) GetCompetitorByName(ctx context.Context, name string) (*model.Competitor, error) {
	var c model.Competitor
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, status FROM competitors WHERE lower(name) = lower($1)`,
		name,
	).Scan(&c.ID, &c.Name, &c.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get competitor %s", name)
	}
	return &c, nil
}

func (s *PostgresStore) InsertCompetitor(ctx context.Context, c model.Competitor) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = model.CompetitorActive
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO competitors (id, name, status) VALUES ($1, $2, $3) ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, status = EXCLUDED.status`,
		c.ID, c.Name, string(c.Status),
	)
	return eris.Wrapf(err, "postgres: insert competitor %s", c.Name)
}

// FindItems applies the membership predicates and returns matching items
// joined with their competitor names. The backend pre-orders by threat level
// and date, but callers re-sort with the full deterministic key anyway.
func (s *PostgresStore) FindItems(ctx context.Context, filter ItemFilter) ([]model.IntelligenceItem, error) {
	query := `SELECT i.id, i.competitor_id, c.name, i.occurred_at, i.title, i.summary, i.event_type,
		COALESCE(i.region, ''), i.threat_level, COALESCE(i.details, ''), i.source_url
		FROM intel_items i
		JOIN competitors c ON c.id = i.competitor_id
		WHERE true`
	args := []any{}
	argIdx := 1

	if len(filter.CompetitorIDs) > 0 {
		query += fmt.Sprintf(` AND i.competitor_id = ANY($%d)`, argIdx)
		args = append(args, filter.CompetitorIDs)
		argIdx++
	}
	if len(filter.Regions) > 0 {
		regions := make([]string, len(filter.Regions))
		for i, r := range filter.Regions {
			regions[i] = string(r)
		}
		query += fmt.Sprintf(` AND i.region = ANY($%d)`, argIdx)
		args = append(args, regions)
		argIdx++
	}
	if len(filter.EventTypes) > 0 {
		types := make([]string, len(filter.EventTypes))
		for i, t := range filter.EventTypes {
			types[i] = string(t)
		}
		query += fmt.Sprintf(` AND i.event_type = ANY($%d)`, argIdx)
		args = append(args, types)
		argIdx++
	}
	if filter.ThreatLevelFloor > 0 {
		query += fmt.Sprintf(` AND i.threat_level >= $%d`, argIdx)
		args = append(args, filter.ThreatLevelFloor)
		argIdx++
	}
	query += ` ORDER BY i.threat_level DESC, i.occurred_at DESC, i.id ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find items")
	}
	defer rows.Close()

	var items []model.IntelligenceItem
	for rows.Next() {
		var it model.IntelligenceItem
		if err := rows.Scan(&it.ID, &it.CompetitorID, &it.CompetitorName, &it.OccurredAt,
			&it.Title, &it.Summary, &it.EventType, &it.Region, &it.ThreatLevel,
			&it.Details, &it.SourceURL); err != nil {
			return nil, eris.Wrap(err, "postgres: scan item")
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate items")
	}
	return items, nil
}

func (s *PostgresStore) InsertItem(ctx context.Context, item model.IntelligenceItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO intel_items (id, competitor_id, occurred_at, title, summary, event_type, region, threat_level, details, source_url) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		item.ID, item.CompetitorID, item.OccurredAt, item.Title, item.Summary,
		string(item.EventType), item.Region, item.ThreatLevel, item.Details, item.SourceURL,
	)
	return eris.Wrapf(err, "postgres: insert item %s", item.Title)
}
