package prompt

import (
	"fmt"
	"strings"

	"github.com/abuzz-labs/intel-cli/internal/model"
)

// NoDebriefData goes back to the operator when the selected period holds no
// intelligence; generation is skipped entirely.
const NoDebriefData = "No intelligence data found for the selected period."

// DebriefSystem is the fixed report template. It is a static prompt constant:
// the section structure is instruction text for the model, not computed
// logic.
const DebriefSystem = `You are a strategic intelligence analyst for Abuzz, a 3D wayfinding and kiosk solutions company based in UAE/Australia.

Generate a comprehensive weekly intelligence debrief based on competitor activities.

Key Context:
- Primary Markets: UAE, Saudi Arabia, Qatar (malls, airports, hospitals)
- Main Competitors: Mappedin, 22Miles, Pointr, ViaDirect, MapsPeople
- Threat Levels: 1 (routine) to 5 (major threat in MENA)

Structure your debrief with:
1. **Executive Summary** (2-3 sentences on key trends)
2. **High-Priority Threats** (threat level 4-5 items)
3. **Regional Analysis** (MENA focus, then other regions)
4. **Competitor Movements** (grouped by company)
5. **Strategic Recommendations** (actionable insights)

Use clear markdown formatting with headers, bullet points, and emphasis.
Be concise but actionable.`

// AssembleDebrief renders the user prompt for a debrief: a numbered list of
// items followed by the generation instruction. The item count bound comes
// from the report retrieval cap upstream.
func AssembleDebrief(items []model.IntelligenceItem) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze these %d intelligence items and generate a strategic debrief:\n\n", len(items))
	for i, item := range items {
		region := item.Region
		if region == "" {
			region = "Global"
		}
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, item.CompetitorName, item.Title)
		fmt.Fprintf(&b, "   Date: %s\n", item.OccurredAt.Format("2006-01-02"))
		fmt.Fprintf(&b, "   Threat Level: %d/5\n", item.ThreatLevel)
		fmt.Fprintf(&b, "   Type: %s\n", item.EventType)
		fmt.Fprintf(&b, "   Region: %s\n", region)
		fmt.Fprintf(&b, "   Summary: %s\n", item.Summary)
		fmt.Fprintf(&b, "   Source: %s\n\n", item.SourceURL)
	}

	b.WriteString("Generate a comprehensive weekly intelligence debrief following the structure outlined.")
	return b.String()
}
