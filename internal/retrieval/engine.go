// Package retrieval turns a parsed query into a bounded, deterministically
// ordered slice of intelligence items.
package retrieval

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/abuzz-labs/intel-cli/internal/model"
	"github.com/abuzz-labs/intel-cli/internal/store"
)

const (
	// ChatCap bounds conversational retrieval.
	ChatCap = 30
	// ReportCap bounds report aggregation.
	ReportCap = 50
)

// Engine applies a structured filter to the corpus and bounds the result.
type Engine struct {
	store store.Store
}

// NewEngine returns an Engine reading from the given store.
func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

// Retrieve fetches a superset via the store's membership predicates, applies
// the date window in memory, sorts deterministically, and truncates to max
// items. The window comes from the query when it resolved one, otherwise from
// defaultWindow. A store failure propagates untouched; retry policy belongs
// to the caller. An empty result is a valid outcome.
func (e *Engine) Retrieve(ctx context.Context, q model.ParsedQuery, defaultWindow model.DateRange, max int) ([]model.IntelligenceItem, error) {
	filter := store.ItemFilter{
		CompetitorIDs:    q.CompetitorIDs,
		Regions:          q.Regions,
		EventTypes:       q.EventTypes,
		ThreatLevelFloor: q.ThreatLevelFloor,
	}
	items, err := e.store.FindItems(ctx, filter)
	if err != nil {
		return nil, eris.Wrap(err, "retrieval: find items")
	}

	window := defaultWindow
	if q.DateRange != nil {
		window = *q.DateRange
	}
	items = FilterWindow(items, window)
	SortItems(items)
	return Truncate(items, max), nil
}

// RetrieveWindow fetches the whole corpus bounded only by an optional
// explicit window. This is the debrief path, which does no text parsing; a
// nil window means the full corpus.
func (e *Engine) RetrieveWindow(ctx context.Context, window *model.DateRange, max int) ([]model.IntelligenceItem, error) {
	items, err := e.store.FindItems(ctx, store.ItemFilter{})
	if err != nil {
		return nil, eris.Wrap(err, "retrieval: find items")
	}
	if window != nil {
		items = FilterWindow(items, *window)
	}
	SortItems(items)
	return Truncate(items, max), nil
}

// FilterWindow keeps items whose occurrence date falls inside the inclusive
// window. Bounds and item instants are truncated to whole UTC days first, so
// a window ending "now" still covers an item recorded later the same day.
func FilterWindow(items []model.IntelligenceItem, window model.DateRange) []model.IntelligenceItem {
	start := dayOf(window.Start)
	end := dayOf(window.End)

	kept := items[:0:0]
	for _, it := range items {
		day := dayOf(it.OccurredAt)
		if !day.Before(start) && !day.After(end) {
			kept = append(kept, it)
		}
	}
	return kept
}

// SortItems orders by threat level descending, then occurrence date
// descending, then id ascending. The id tie-break makes equal items rank
// identically across runs.
func SortItems(items []model.IntelligenceItem) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.ThreatLevel != b.ThreatLevel {
			return a.ThreatLevel > b.ThreatLevel
		}
		if !a.OccurredAt.Equal(b.OccurredAt) {
			return a.OccurredAt.After(b.OccurredAt)
		}
		return a.ID < b.ID
	})
}

// Truncate caps the slice at max items; max <= 0 means unbounded. Used by the
// count-only debrief path, which needs the full post-filter cardinality.
func Truncate(items []model.IntelligenceItem, max int) []model.IntelligenceItem {
	if max > 0 && len(items) > max {
		return items[:max]
	}
	return items
}

// TrailingWindow is the caller-supplied default window: the max trailing days
// ending now. Passed explicitly so retrieval stays a pure function of its
// inputs.
func TrailingWindow(now time.Time, days int) model.DateRange {
	return model.DateRange{Start: now.AddDate(0, 0, -days), End: now}
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
