// Package prompt renders retrieval output into generation-ready text. The
// assembler never trims what it renders: the size of the final prompt is
// bounded by the retrieval cap and the history cap applied upstream, not by
// truncating text after the fact.
package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/abuzz-labs/intel-cli/internal/model"
)

// HistoryLimit bounds how many trailing conversation turns reach the prompt.
const HistoryLimit = 10

// NoResultsGuidance goes back to the user verbatim when retrieval comes back
// empty. The generation model is never called in that case; skipping the call
// is part of the contract, not a formatting nicety.
const NoResultsGuidance = `I couldn't find any relevant intelligence matching your query. Try broadening your search by:
- Expanding the time range
- Removing specific filters
- Asking about different competitors or regions`

// domainContext anchors every chat prompt with the roster, markets, and
// threat-scale legend the analyst model needs. %s is the current date.
const domainContext = `You are an AI assistant for Abuzz, a 3D wayfinding and kiosk solutions company based in UAE/Australia.

Your role is to help analyze competitive intelligence about rivals in the indoor mapping and digital signage industry.

Key Context:
- Primary Markets: UAE, Saudi Arabia, Qatar (malls, airports, hospitals)
- Main Competitors: Mappedin, 22Miles, Pointr, ViaDirect, MapsPeople
- Threat Levels: 1 (routine) to 5 (major threat in MENA)

Instructions:
- Provide concise, actionable insights (2-3 paragraphs max)
- Cite specific news items when making claims (use competitor names and dates)
- Highlight threats to Abuzz's MENA market position
- Suggest strategic responses when appropriate
- Use markdown formatting for clarity
- Be conversational and helpful

Current Date: %s`

// RenderItem formats one intelligence item as a fixed-shape block. Optional
// detail lines appear only when the opaque details payload parses; a
// malformed payload silently drops them and nothing else.
func RenderItem(item model.IntelligenceItem) string {
	var b strings.Builder

	region := item.Region
	if region == "" {
		region = "Global"
	}

	fmt.Fprintf(&b, "[%s] %s (Threat: %d/5)\n", item.OccurredAt.Format("2006-01-02"), item.CompetitorName, item.ThreatLevel)
	fmt.Fprintf(&b, "Event: %s | Region: %s\n", item.EventType, region)
	fmt.Fprintf(&b, "Title: %s\n", item.Title)
	fmt.Fprintf(&b, "Summary: %s", item.Summary)

	if d, ok := model.ParseDetails(item.Details); ok {
		if d.Location != "" {
			fmt.Fprintf(&b, "\n  Location: %s", d.Location)
		}
		if d.FinancialValue != "" {
			fmt.Fprintf(&b, "\n  Value: %s", d.FinancialValue)
		}
		if len(d.Partners) > 0 {
			fmt.Fprintf(&b, "\n  Partners: %s", strings.Join(d.Partners, ", "))
		}
		if len(d.Products) > 0 {
			fmt.Fprintf(&b, "\n  Products: %s", strings.Join(d.Products, ", "))
		}
	}

	b.WriteString("\n---")
	return b.String()
}

// RenderHistory renders the trailing HistoryLimit turns oldest-first as
// "Role: content" lines. Earlier turns never reach the prompt.
func RenderHistory(turns []model.ConversationTurn) string {
	if len(turns) > HistoryLimit {
		turns = turns[len(turns)-HistoryLimit:]
	}

	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		role := "Assistant"
		if turn.Role == "user" {
			role = "User"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", role, turn.Content))
	}
	return strings.Join(lines, "\n\n")
}

// AssembleChat builds the full chat prompt in fixed order: domain context,
// optional history block, rendered item blocks, then the literal question.
// Callers own the empty-items branch; this function assumes items is
// non-empty.
func AssembleChat(items []model.IntelligenceItem, history []model.ConversationTurn, question string, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, domainContext, now.Format("2006-01-02"))
	b.WriteString("\n\n")

	if h := RenderHistory(history); h != "" {
		fmt.Fprintf(&b, "Previous Conversation:\n%s\n\n", h)
	}

	fmt.Fprintf(&b, "Available Intelligence (%d items):\n", len(items))
	for _, item := range items {
		b.WriteString(RenderItem(item))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nUser Question: %s", question)
	return b.String()
}
