package query

import (
	"time"

	"github.com/abuzz-labs/intel-cli/internal/model"
)

// Parse extracts every structured filter dimension from one free-text
// question against the given competitor catalog. Pure function of its inputs
// with now passed explicitly, so results are reproducible and the catalog can
// be cached and reused across calls. A question with no recognizable cues
// yields a ParsedQuery with every field empty, which downstream means "no
// constraint", not "match nothing".
func Parse(text string, catalog []model.Competitor, now time.Time) model.ParsedQuery {
	return model.ParsedQuery{
		CompetitorIDs:    MatchCompetitors(text, catalog),
		Regions:          MatchRegions(text),
		EventTypes:       MatchEventTypes(text),
		ThreatLevelFloor: MatchThreatFloor(text),
		DateRange:        ResolveDateRange(text, now),
	}
}
