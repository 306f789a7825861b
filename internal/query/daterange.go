package query

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/abuzz-labs/intel-cli/internal/model"
)

// dateRule maps a temporal phrase to a concrete window, or returns nil when
// it does not apply. The text argument is already lowercased.
type dateRule func(text string, now time.Time) *model.DateRange

// dateRules is evaluated top to bottom; the first match wins and windows are
// never merged or intersected, so keeping the order auditable matters more
// than keeping it short.
var dateRules = []dateRule{
	literalDays,
	relativeWindows,
	quarterExpr,
	monthNames,
	recencyWords,
}

// ResolveDateRange maps a temporal phrase in the text to a concrete window
// relative to now. Returns nil when no rule matches; the caller supplies its
// own default window in that case. Resolution never errors.
func ResolveDateRange(text string, now time.Time) *model.DateRange {
	lower := strings.ToLower(text)
	for _, rule := range dateRules {
		if r := rule(lower, now); r != nil {
			return r
		}
	}
	return nil
}

func literalDays(text string, now time.Time) *model.DateRange {
	if hasKeyword(text, "today") {
		return &model.DateRange{Start: now, End: now}
	}
	if hasKeyword(text, "yesterday") {
		y := now.AddDate(0, 0, -1)
		return &model.DateRange{Start: y, End: y}
	}
	return nil
}

// relativeWindows handles trailing windows and the current calendar
// month/year. Phrases are checked in the same order the tests document;
// "last week" must win over "this week" appearing later in the sentence.
func relativeWindows(text string, now time.Time) *model.DateRange {
	switch {
	case hasKeyword(text, "last week") || hasKeyword(text, "past week"):
		return &model.DateRange{Start: now.AddDate(0, 0, -7), End: now}
	case hasKeyword(text, "last 7 days") || hasKeyword(text, "past 7 days"):
		return &model.DateRange{Start: now.AddDate(0, 0, -7), End: now}
	case hasKeyword(text, "last month") || hasKeyword(text, "past month"):
		return &model.DateRange{Start: now.AddDate(0, -1, 0), End: now}
	case hasKeyword(text, "last 30 days") || hasKeyword(text, "past 30 days"):
		return &model.DateRange{Start: now.AddDate(0, 0, -30), End: now}
	case hasKeyword(text, "this week"):
		return &model.DateRange{Start: now.AddDate(0, 0, -7), End: now}
	case hasKeyword(text, "this month"):
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return &model.DateRange{Start: start, End: start.AddDate(0, 1, -1)}
	case hasKeyword(text, "this year"):
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return &model.DateRange{Start: start, End: time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, now.Location())}
	}
	return nil
}

// quarterPattern matches expressions like "Q2 2024", "q3 24", "Q1 '25" is out
// of scope. Two-digit years are assumed to be 2000+.
var quarterPattern = regexp.MustCompile(`q([1-4])\s*(?:20)?(\d{2})\b`)

func quarterExpr(text string, now time.Time) *model.DateRange {
	m := quarterPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	quarter, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])
	year += 2000

	start := time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, now.Location())
	return &model.DateRange{Start: start, End: start.AddDate(0, 3, -1)}
}

// englishMonths in calendar order; a bare month name resolves to that month
// of the current year.
var englishMonths = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

func monthNames(text string, now time.Time) *model.DateRange {
	for i, name := range englishMonths {
		if hasKeyword(text, name) {
			start := time.Date(now.Year(), time.Month(i+1), 1, 0, 0, 0, 0, now.Location())
			return &model.DateRange{Start: start, End: start.AddDate(0, 1, -1)}
		}
	}
	return nil
}

// recencyWords is the catch-all tail of the chain: a vague recency cue with
// no concrete date expression gets the default trailing 30-day window.
func recencyWords(text string, now time.Time) *model.DateRange {
	if hasKeyword(text, "recent") || hasKeyword(text, "recently") ||
		hasKeyword(text, "latest") || hasKeyword(text, "new") {
		return &model.DateRange{Start: now.AddDate(0, 0, -30), End: now}
	}
	return nil
}
