package model

import (
	"encoding/json"
	"strings"
	"time"
)

// CompetitorStatus tracks whether a competitor is still monitored.
type CompetitorStatus string

const (
	CompetitorActive   CompetitorStatus = "active"
	CompetitorInactive CompetitorStatus = "inactive"
)

// Competitor is a tracked rival entity. The roster is owned by the ingestion
// side; this code treats it as a read-only lookup refreshed per request.
type Competitor struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Status CompetitorStatus `json:"status"`
}

// EventType classifies an intelligence item into one of nine fixed categories.
type EventType string

const (
	EventFunding       EventType = "Investment/Funding Round"
	EventPartnership   EventType = "Partnership/Acquisition"
	EventProductLaunch EventType = "Product Launch"
	EventAward         EventType = "Award/Recognition"
	EventExpansion     EventType = "Market Expansion"
	EventLeadership    EventType = "Leadership Change"
	EventInnovation    EventType = "Technical Innovation"
	EventNewProject    EventType = "New Project/Installation"
	EventFinancials    EventType = "Financial Performance"
)

// AllEventTypes lists every valid event category in display order.
var AllEventTypes = []EventType{
	EventFunding,
	EventPartnership,
	EventProductLaunch,
	EventAward,
	EventExpansion,
	EventLeadership,
	EventInnovation,
	EventNewProject,
	EventFinancials,
}

// RegionTag is the coarse four-region classification used for filtering.
// Distinct from the free-text Region field stored on an item, which is
// whatever the collector or analyst entered.
type RegionTag string

const (
	RegionMENA         RegionTag = "MENA"
	RegionAPAC         RegionTag = "APAC"
	RegionEurope       RegionTag = "EUROPE"
	RegionNorthAmerica RegionTag = "NORTH_AMERICA"
)

// IntelligenceItem is one observed competitor event. Items are written by the
// collector pipeline and are immutable here.
type IntelligenceItem struct {
	ID             string    `json:"id"`
	CompetitorID   string    `json:"competitor_id"`
	CompetitorName string    `json:"competitor_name"`
	OccurredAt     time.Time `json:"occurred_at"`
	Title          string    `json:"title"`
	Summary        string    `json:"summary"`
	EventType      EventType `json:"event_type"`
	Region         string    `json:"region,omitempty"`
	ThreatLevel    int       `json:"threat_level"`
	Details        string    `json:"details,omitempty"` // opaque JSON from the collector; may be malformed
	SourceURL      string    `json:"source_url"`
}

// ItemDetails is the structured extension carried in an item's raw Details
// field.
type ItemDetails struct {
	Location       string   `json:"location,omitempty"`
	FinancialValue string   `json:"financial_value,omitempty"`
	Partners       []string `json:"partners,omitempty"`
	Products       []string `json:"products,omitempty"`
}

// ParseDetails decodes the opaque details payload of an item. A missing or
// malformed payload returns ok=false; the item itself stays valid either way,
// only its optional detail lines are lost.
func ParseDetails(raw string) (ItemDetails, bool) {
	if strings.TrimSpace(raw) == "" {
		return ItemDetails{}, false
	}
	var d ItemDetails
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return ItemDetails{}, false
	}
	return d, true
}

// DateRange is an inclusive [Start, End] window. Retrieval compares it at day
// granularity so a window ending "now" still covers items recorded later the
// same day.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParsedQuery holds the structured filters extracted from one free-text
// question. Every field is independently optional: an empty set, zero floor,
// or nil range means no constraint from that dimension, never "match nothing".
type ParsedQuery struct {
	CompetitorIDs    []string    `json:"competitor_ids,omitempty"`
	Regions          []RegionTag `json:"regions,omitempty"`
	EventTypes       []EventType `json:"event_types,omitempty"`
	ThreatLevelFloor int         `json:"threat_level_floor,omitempty"` // 0 = no floor asserted
	DateRange        *DateRange  `json:"date_range,omitempty"`
}

// ConversationTurn is one prior message in a chat session. History is owned
// by the caller; only a bounded recent window is ever fed into assembly.
type ConversationTurn struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
	Sources   []Source  `json:"sources,omitempty"`
}

// Source is one citation returned alongside a chat answer.
type Source struct {
	ID             string `json:"id"`
	CompetitorName string `json:"competitor_name"`
	Title          string `json:"title"`
	Date           string `json:"date"`
	URL            string `json:"url"`
}

// ChatResult is the outbound shape of one conversational request.
type ChatResult struct {
	Response string   `json:"response"`
	Sources  []Source `json:"sources"`
}

// DebriefResult is the outbound shape of one report-aggregation request.
type DebriefResult struct {
	Response  string `json:"response"`
	ItemCount int    `json:"item_count"`
}
