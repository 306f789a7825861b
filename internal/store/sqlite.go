package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/abuzz-labs/intel-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Dates live in TEXT
// columns, which is exactly why the retrieval engine owns the date-window
// filtering instead of pushing it down here.
type SQLiteStore struct {
	db *sql.DB
}

// sqliteDateLayout is the day-granularity format used for occurred_at.
const sqliteDateLayout = "2006-01-02"

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	// A single connection keeps :memory: databases coherent and sidesteps
	// writer contention on file databases.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS competitors (
	id     TEXT PRIMARY KEY,
	name   TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL DEFAULT 'active'
);

CREATE TABLE IF NOT EXISTS intel_items (
	id            TEXT PRIMARY KEY,
	competitor_id TEXT NOT NULL REFERENCES competitors(id),
	occurred_at   TEXT NOT NULL,
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
CREATE INDEX IF NOT EXISTS idx_intel_items_threat_level ON intel_items(threat_level);
CREATE INDEX IF NOT EXISTS idx_intel_items_event_type ON intel_items(event_type);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListActiveCompetitors(ctx context.Context) ([]model.Competitor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, status FROM competitors WHERE status = 'active' ORDER BY name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list active competitors")
	}
	defer rows.Close()

	var out []model.Competitor
	for rows.Next() {
		var c model.Competitor
		if err := rows.Scan(&c.ID, &c.Name, &c.Status); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan competitor")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate competitors")
}

func (s *SQLiteStore) GetCompetitorByName(ctx context.Context, name string) (*model.Competitor, error) {
	var c model.Competitor
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, status FROM competitors WHERE lower(name) = lower(?)`,
		name,
	).Scan(&c.ID, &c.Name, &c.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get competitor %s", name)
	}
	return &c, nil
}

func (s *SQLiteStore) InsertCompetitor(ctx context.Context, c model.Competitor) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = model.CompetitorActive
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO competitors (id, name, status) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, status = excluded.status`,
		c.ID, c.Name, string(c.Status),
	)
	return eris.Wrapf(err, "sqlite: insert competitor %s", c.Name)
}

func (s *SQLiteStore) FindItems(ctx context.Context, filter ItemFilter) ([]model.IntelligenceItem, error) {
	query := `SELECT i.id, i.competitor_id, c.name, i.occurred_at, i.title, i.summary, i.event_type,
		COALESCE(i.region, ''), i.threat_level, COALESCE(i.details, ''), i.source_url
		FROM intel_items i
		JOIN competitors c ON c.id = i.competitor_id
		WHERE 1=1`
	var args []any

	if len(filter.CompetitorIDs) > 0 {
		query += ` AND i.competitor_id IN (` + placeholders(len(filter.CompetitorIDs)) + `)`
		for _, id := range filter.CompetitorIDs {
			args = append(args, id)
		}
	}
	if len(filter.Regions) > 0 {
		query += ` AND i.region IN (` + placeholders(len(filter.Regions)) + `)`
		for _, r := range filter.Regions {
			args = append(args, string(r))
		}
	}
	if len(filter.EventTypes) > 0 {
		query += ` AND i.event_type IN (` + placeholders(len(filter.EventTypes)) + `)`
		for _, t := range filter.EventTypes {
			args = append(args, string(t))
		}
	}
	if filter.ThreatLevelFloor > 0 {
		query += ` AND i.threat_level >= ?`
		args = append(args, filter.ThreatLevelFloor)
	}
	query += ` ORDER BY i.threat_level DESC, i.occurred_at DESC, i.id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find items")
	}
	defer rows.Close()

	var items []model.IntelligenceItem
	for rows.Next() {
		var it model.IntelligenceItem
		var occurred string
		if err := rows.Scan(&it.ID, &it.CompetitorID, &it.CompetitorName, &occurred,
			&it.Title, &it.Summary, &it.EventType, &it.Region, &it.ThreatLevel,
			&it.Details, &it.SourceURL); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan item")
		}
		// occurred_at is untyped text; an unparsable value leaves the zero
		// time and the item falls outside any date window downstream.
		if ts, err := time.Parse(sqliteDateLayout, occurred); err == nil {
			it.OccurredAt = ts
		}
		items = append(items, it)
	}
	return items, eris.Wrap(rows.Err(), "sqlite: iterate items")
}

func (s *SQLiteStore) InsertItem(ctx context.Context, item model.IntelligenceItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO intel_items (id, competitor_id, occurred_at, title, summary, event_type, region, threat_level, details, source_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.CompetitorID, item.OccurredAt.UTC().Format(sqliteDateLayout),
		item.Title, item.Summary, string(item.EventType), item.Region,
		item.ThreatLevel, item.Details, item.SourceURL,
	)
	return eris.Wrapf(err, "sqlite: insert item %s", item.Title)
}

// placeholders returns n comma-separated "?" markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
