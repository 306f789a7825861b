package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abuzz-labs/intel-cli/internal/chat"
	"github.com/abuzz-labs/intel-cli/internal/config"
	"github.com/abuzz-labs/intel-cli/internal/model"
	"github.com/abuzz-labs/intel-cli/internal/report"
	"github.com/abuzz-labs/intel-cli/internal/store"
	"github.com/abuzz-labs/intel-cli/pkg/anthropic"
)

type fakeStore struct {
	items []model.IntelligenceItem
}

func (f *fakeStore) ListActiveCompetitors(_ context.Context) ([]model.Competitor, error) {
	return []model.Competitor{{ID: "c1", Name: "Pointr"}}, nil
}

func (f *fakeStore) GetCompetitorByName(_ context.Context, _ string) (*model.Competitor, error) {
	return nil, nil
}

func (f *fakeStore) InsertCompetitor(_ context.Context, _ model.Competitor) error { return nil }

func (f *fakeStore) FindItems(_ context.Context, _ store.ItemFilter) ([]model.IntelligenceItem, error) {
	return f.items, nil
}

func (f *fakeStore) InsertItem(_ context.Context, _ model.IntelligenceItem) error { return nil }
func (f *fakeStore) Migrate(_ context.Context) error                              { return nil }
func (f *fakeStore) Close() error                                                 { return nil }

type fakeAI struct {
	calls int
	text  string
}

func (f *fakeAI) CreateMessage(_ context.Context, _ anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.calls++
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: f.text}},
	}, nil
}

func testRouter(st store.Store, ai anthropic.Client) http.Handler {
	chatCfg := config.ChatConfig{MaxQuestionChars: 500, RetrieveCap: 30, DefaultWindowDays: 30, SourceLimit: 10}
	reportCfg := config.ReportConfig{Cap: 50, WindowDays: 14}
	aiCfg := config.AnthropicConfig{ChatModel: "m1", DebriefModel: "m2", ChatMaxTokens: 100, DebriefMaxTokens: 100, RequestsPerSecond: 100}
	return newRouter(
		chat.NewService(st, ai, chatCfg, aiCfg),
		report.NewAggregator(st, ai, reportCfg, aiCfg),
		reportCfg.WindowDays,
	)
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	h := testRouter(&fakeStore{}, &fakeAI{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestChatEndpointBadBody(t *testing.T) {
	h := testRouter(&fakeStore{}, &fakeAI{})
	rec := postJSON(t, h, "/api/chat", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatEndpointEmptyQuestion(t *testing.T) {
	h := testRouter(&fakeStore{}, &fakeAI{})
	rec := postJSON(t, h, "/api/chat", `{"question":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatEndpointNoResults(t *testing.T) {
	ai := &fakeAI{text: "unused"}
	h := testRouter(&fakeStore{}, ai)

	rec := postJSON(t, h, "/api/chat", `{"question":"anything recent?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "relevant intelligence matching your query")
	assert.Zero(t, ai.calls)
}

func TestChatEndpointHappyPath(t *testing.T) {
	ai := &fakeAI{text: "Pointr raised a round."}
	st := &fakeStore{items: []model.IntelligenceItem{{
		ID:             "i1",
		CompetitorID:   "c1",
		CompetitorName: "Pointr",
		OccurredAt:     time.Now().UTC().Add(-24 * time.Hour),
		Title:          "Series C",
		EventType:      model.EventFunding,
		ThreatLevel:    4,
	}}}
	h := testRouter(st, ai)

	rec := postJSON(t, h, "/api/chat", `{"question":"what did Pointr do?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Pointr raised a round.")
	assert.Contains(t, rec.Body.String(), `"sources"`)
	assert.Equal(t, 1, ai.calls)
}

func TestDebriefEndpointCountMode(t *testing.T) {
	ai := &fakeAI{text: "unused"}
	st := &fakeStore{items: []model.IntelligenceItem{{
		ID:          "i1",
		OccurredAt:  time.Now().UTC().Add(-24 * time.Hour),
		Title:       "Series C",
		ThreatLevel: 3,
	}}}
	h := testRouter(st, ai)

	rec := postJSON(t, h, "/api/debrief", `{"mode":"count"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"item_count":1}`, rec.Body.String())
	assert.Zero(t, ai.calls, "count mode must not generate")
}

func TestDebriefEndpointGenerate(t *testing.T) {
	ai := &fakeAI{text: "## Executive Summary"}
	st := &fakeStore{items: []model.IntelligenceItem{{
		ID:          "i1",
		OccurredAt:  time.Now().UTC().Add(-24 * time.Hour),
		Title:       "Series C",
		ThreatLevel: 3,
	}}}
	h := testRouter(st, ai)

	rec := postJSON(t, h, "/api/debrief", `{"days":14}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Executive Summary")
	assert.Contains(t, rec.Body.String(), `"item_count":1`)
}

func TestDebriefEndpointBadWindow(t *testing.T) {
	h := testRouter(&fakeStore{}, &fakeAI{})

	for _, body := range []string{
		`{"start":"2025-01-01"}`,
		`{"start":"garbage","end":"2025-01-31"}`,
		`{"start":"2025-02-01","end":"2025-01-01"}`,
	} {
		rec := postJSON(t, h, "/api/debrief", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestResolveWindow(t *testing.T) {
	now := time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)

	t.Run("explicit range", func(t *testing.T) {
		w, err := resolveWindow(debriefRequest{Start: "2025-06-01", End: "2025-06-30"}, now, 14)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), w.Start)
		assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), w.End)
	})

	t.Run("days", func(t *testing.T) {
		w, err := resolveWindow(debriefRequest{Days: 7}, now, 14)
		require.NoError(t, err)
		assert.Equal(t, now, w.End)
		assert.Equal(t, now.AddDate(0, 0, -7), w.Start)
	})

	t.Run("default days", func(t *testing.T) {
		w, err := resolveWindow(debriefRequest{}, now, 14)
		require.NoError(t, err)
		assert.Equal(t, now.AddDate(0, 0, -14), w.Start)
	})
}
