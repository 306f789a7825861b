package query

import (
	"strings"

	"github.com/abuzz-labs/intel-cli/internal/model"
)

// regionRules maps each region tag to its cue list. Rules are held in a slice
// so the returned tags always come out in the same order. A question may
// match any number of regions; the classifiers are not mutually exclusive.
var regionRules = []struct {
	Tag      model.RegionTag
	Keywords []string
}{
	{model.RegionMENA, []string{
		"dubai", "uae", "saudi", "qatar", "mena", "middle east", "arab",
		"emirates", "riyadh", "doha",
	}},
	{model.RegionAPAC, []string{
		"thailand", "singapore", "australia", "apac", "asia", "pacific",
		"sydney", "bangkok", "tokyo", "japan", "china", "india",
	}},
	{model.RegionEurope, []string{
		"uk", "britain", "germany", "france", "europe", "european",
		"london", "paris", "berlin", "spain", "italy",
	}},
	{model.RegionNorthAmerica, []string{
		"us", "usa", "america", "united states", "canada", "north america",
		"toronto", "new york", "california",
	}},
}

// eventRules maps each of the nine event categories to its cue list, in the
// same order as model.AllEventTypes.
var eventRules = []struct {
	Type     model.EventType
	Keywords []string
}{
	{model.EventFunding, []string{
		"funding", "investment", "raised", "round", "series", "capital",
		"venture", "vc",
	}},
	{model.EventPartnership, []string{
		"partnership", "acquisition", "merger", "m&a", "acquired", "partner",
		"collaboration", "alliance",
	}},
	{model.EventProductLaunch, []string{
		"product", "launch", "feature", "release", "announced", "unveil",
		"debut", "new version",
	}},
	{model.EventAward, []string{
		"award", "recognition", "winner", "prize", "honored", "best",
		"achievement",
	}},
	{model.EventExpansion, []string{
		"expansion", "expand", "market", "new region", "entering", "growth",
		"international",
	}},
	{model.EventLeadership, []string{
		"ceo", "executive", "leadership", "appointed", "hire", "joined",
		"director", "chief",
	}},
	{model.EventInnovation, []string{
		"technology", "innovation", "patent", "ai", "machine learning",
		"breakthrough", "research",
	}},
	{model.EventNewProject, []string{
		"project", "installation", "contract", "deployment", "client",
		"customer", "site",
	}},
	{model.EventFinancials, []string{
		"revenue", "earnings", "profit", "quarterly", "annual", "ipo",
		"financial", "results",
	}},
}

// threatTiers is an ordered chain evaluated high to low; the first matching
// tier wins and short-circuits, so a question can never assert two floors.
var threatTiers = []struct {
	Floor    int
	Keywords []string
}{
	{4, []string{
		"high threat", "major threat", "critical", "serious",
		"level 4", "level 5",
	}},
	{3, []string{
		"medium threat", "moderate", "level 3",
	}},
	{2, []string{
		"low threat", "minor", "routine", "level 1", "level 2",
	}},
}

// MatchRegions returns every region tag whose cue list matches the text.
func MatchRegions(text string) []model.RegionTag {
	lower := strings.ToLower(text)
	var tags []model.RegionTag
	for _, rule := range regionRules {
		if hasAnyKeyword(lower, rule.Keywords) {
			tags = append(tags, rule.Tag)
		}
	}
	return tags
}

// MatchEventTypes returns every event category whose cue list matches the
// text.
func MatchEventTypes(text string) []model.EventType {
	lower := strings.ToLower(text)
	var types []model.EventType
	for _, rule := range eventRules {
		if hasAnyKeyword(lower, rule.Keywords) {
			types = append(types, rule.Type)
		}
	}
	return types
}

// MatchThreatFloor returns the minimum threat level implied by the text, or 0
// when no tier cue is present. 0 means no floor, not floor 1.
func MatchThreatFloor(text string) int {
	lower := strings.ToLower(text)
	for _, tier := range threatTiers {
		if hasAnyKeyword(lower, tier.Keywords) {
			return tier.Floor
		}
	}
	return 0
}
