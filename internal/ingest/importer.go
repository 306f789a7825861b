package ingest

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/abuzz-labs/intel-cli/internal/db"
	"github.com/abuzz-labs/intel-cli/internal/model"
	"github.com/abuzz-labs/intel-cli/internal/store"
)

// parseConcurrency limits how many workbooks are parsed at once. Parsing is
// CPU and file-handle bound; writes are serialized behind a mutex anyway.
const parseConcurrency = 4

var titleCaser = cases.Title(language.English)

// Importer loads feed workbooks into a store. Competitors named in the feed
// but missing from the roster are created on the fly as active.
type Importer struct {
	store store.Store

	mu      sync.Mutex
	roster  map[string]string // lowercase name -> id
	pending []Row
}

// NewImporter builds an importer over a store.
func NewImporter(s store.Store) *Importer {
	return &Importer{store: s}
}

// Result summarizes one import run.
type Result struct {
	Files          int
	Items          int64
	NewCompetitors int
}

// ImportFiles parses the given workbooks concurrently, resolves competitor
// IDs, and writes all items in one pass. Any parse error aborts the run
// before anything is written.
func (im *Importer) ImportFiles(ctx context.Context, paths []string) (*Result, error) {
	if len(paths) == 0 {
		return nil, eris.New("ingest: no files to import")
	}

	if err := im.loadRoster(ctx); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parseConcurrency)

	for _, path := range paths {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			rows, err := ReadWorkbook(path)
			if err != nil {
				return err
			}
			im.mu.Lock()
			im.pending = append(im.pending, rows...)
			im.mu.Unlock()
			zap.L().Debug("workbook parsed",
				zap.String("path", path),
				zap.Int("rows", len(rows)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := im.pending
	im.pending = nil

	created, err := im.resolveCompetitors(ctx, rows)
	if err != nil {
		return nil, err
	}

	written, err := im.writeItems(ctx, rows)
	if err != nil {
		return nil, err
	}

	zap.L().Info("import complete",
		zap.Int("files", len(paths)),
		zap.Int64("items", written),
		zap.Int("new_competitors", created),
	)

	return &Result{
		Files:          len(paths),
		Items:          written,
		NewCompetitors: created,
	}, nil
}

func (im *Importer) loadRoster(ctx context.Context) error {
	competitors, err := im.store.ListActiveCompetitors(ctx)
	if err != nil {
		return eris.Wrap(err, "ingest: load roster")
	}
	im.roster = make(map[string]string, len(competitors))
	for _, c := range competitors {
		im.roster[strings.ToLower(c.Name)] = c.ID
	}
	return nil
}

// resolveCompetitors fills each row's CompetitorID, creating roster entries
// for names the feed introduces. New names are title-cased so "pointr labs"
// and "Pointr Labs" land on one record.
func (im *Importer) resolveCompetitors(ctx context.Context, rows []Row) (int, error) {
	created := 0
	for i := range rows {
		key := strings.ToLower(rows[i].CompetitorName)
		id, ok := im.roster[key]
		if !ok {
			c := model.Competitor{
				ID:     uuid.NewString(),
				Name:   titleCaser.String(rows[i].CompetitorName),
				Status: model.CompetitorActive,
			}
			if err := im.store.InsertCompetitor(ctx, c); err != nil {
				return 0, eris.Wrapf(err, "ingest: create competitor %s", c.Name)
			}
			im.roster[key] = c.ID
			id = c.ID
			created++
			zap.L().Info("competitor added from feed", zap.String("name", c.Name))
		}
		rows[i].Item.CompetitorID = id
		rows[i].Item.CompetitorName = rows[i].CompetitorName
	}
	return created, nil
}

// writeItems takes the bulk path when the store exposes a pgx pool, falling
// back to row-at-a-time inserts otherwise.
func (im *Importer) writeItems(ctx context.Context, rows []Row) (int64, error) {
	if ps, ok := im.store.(*store.PostgresStore); ok {
		return im.bulkUpsert(ctx, ps, rows)
	}

	var written int64
	for i := range rows {
		if err := im.store.InsertItem(ctx, rows[i].Item); err != nil {
			return written, eris.Wrapf(err, "ingest: insert item %q", rows[i].Item.Title)
		}
		written++
	}
	return written, nil
}

func (im *Importer) bulkUpsert(ctx context.Context, ps *store.PostgresStore, rows []Row) (int64, error) {
	records := make([][]any, len(rows))
	for i := range rows {
		it := &rows[i].Item
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		records[i] = []any{
			it.ID,
			it.CompetitorID,
			it.OccurredAt,
			it.Title,
			it.Summary,
			string(it.EventType),
			it.Region,
			it.ThreatLevel,
			it.Details,
			it.SourceURL,
		}
	}

	n, err := db.BulkUpsert(ctx, ps.Pool(), db.UpsertConfig{
		Table:        "intel_items",
		Columns:      []string{"id", "competitor_id", "occurred_at", "title", "summary", "event_type", "region", "threat_level", "details", "source_url"},
		ConflictKeys: []string{"competitor_id", "occurred_at", "title"},
		UpdateCols:   []string{"summary", "event_type", "region", "threat_level", "details", "source_url"},
	}, records)
	if err != nil {
		return 0, eris.Wrap(err, "ingest: bulk upsert items")
	}
	return n, nil
}
