package query

import (
	"strings"

	"github.com/abuzz-labs/intel-cli/internal/model"
)

// MatchCompetitors returns the ids of catalog competitors whose name appears
// in the text. Matching is case-insensitive and accepts the name either
// verbatim or with its internal whitespace removed, so "viadirect" still hits
// a catalog entry named "Via Direct". No partial or fuzzy matching. An empty
// catalog yields an empty result.
func MatchCompetitors(text string, catalog []model.Competitor) []string {
	lower := strings.ToLower(text)

	var ids []string
	for _, c := range catalog {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name == "" {
			continue
		}
		if strings.Contains(lower, name) {
			ids = append(ids, c.ID)
			continue
		}
		compact := strings.Join(strings.Fields(name), "")
		if compact != name && strings.Contains(lower, compact) {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
