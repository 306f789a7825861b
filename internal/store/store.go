// Package store persists the competitor roster and the intelligence corpus.
package store

import (
	"context"

	"github.com/abuzz-labs/intel-cli/internal/model"
)

// ItemFilter expresses the membership constraints every corpus backend must
// support: competitor-id membership, region membership, event-type membership,
// and a threat-level minimum. Date windows are deliberately absent: the
// SQLite backend stores dates as TEXT, so the retrieval engine re-filters by
// date in memory regardless of backend. Empty fields mean no constraint.
type ItemFilter struct {
	CompetitorIDs    []string
	Regions          []model.RegionTag
	EventTypes       []model.EventType
	ThreatLevelFloor int
}

// Store defines the persistence interface for the intelligence corpus.
type Store interface {
	// Roster
	ListActiveCompetitors(ctx context.Context) ([]model.Competitor, error)
	GetCompetitorByName(ctx context.Context, name string) (*model.Competitor, error)
	InsertCompetitor(ctx context.Context, c model.Competitor) error

	// Corpus. FindItems returns a superset ordered by threat level and date
	// descending; callers apply the date window and the final deterministic
	// sort themselves.
	FindItems(ctx context.Context, filter ItemFilter) ([]model.IntelligenceItem, error)
	InsertItem(ctx context.Context, item model.IntelligenceItem) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
