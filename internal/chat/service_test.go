package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abuzz-labs/intel-cli/internal/config"
	"github.com/abuzz-labs/intel-cli/internal/model"
	"github.com/abuzz-labs/intel-cli/internal/prompt"
	"github.com/abuzz-labs/intel-cli/internal/store"
	"github.com/abuzz-labs/intel-cli/pkg/anthropic"
)

type fakeStore struct {
	competitors []model.Competitor
	items       []model.IntelligenceItem
	findErr     error
}

func (f *fakeStore) ListActiveCompetitors(_ context.Context) ([]model.Competitor, error) {
	return f.competitors, nil
}

func (f *fakeStore) GetCompetitorByName(_ context.Context, _ string) (*model.Competitor, error) {
	return nil, nil
}

func (f *fakeStore) InsertCompetitor(_ context.Context, _ model.Competitor) error { return nil }

func (f *fakeStore) FindItems(_ context.Context, _ store.ItemFilter) ([]model.IntelligenceItem, error) {
	return f.items, f.findErr
}

func (f *fakeStore) InsertItem(_ context.Context, _ model.IntelligenceItem) error { return nil }
func (f *fakeStore) Migrate(_ context.Context) error                              { return nil }
func (f *fakeStore) Close() error                                                 { return nil }

type fakeAI struct {
	calls    int
	lastReq  anthropic.MessageRequest
	response *anthropic.MessageResponse
	err      error
}

func (f *fakeAI) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.calls++
	f.lastReq = req
	return f.response, f.err
}

func textResponse(s string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: s}},
	}
}

func testChatConfig() config.ChatConfig {
	return config.ChatConfig{
		MaxQuestionChars:  500,
		RetrieveCap:       30,
		DefaultWindowDays: 30,
		SourceLimit:       10,
	}
}

func testAnthropicConfig() config.AnthropicConfig {
	return config.AnthropicConfig{
		ChatModel:         "claude-haiku-4-5",
		ChatMaxTokens:     2000,
		RequestsPerSecond: 100,
	}
}

func recentItem(id, name string, threat int) model.IntelligenceItem {
	return model.IntelligenceItem{
		ID:             id,
		CompetitorID:   "c-" + id,
		CompetitorName: name,
		OccurredAt:     time.Now().UTC().Add(-24 * time.Hour),
		Title:          "Item " + id,
		Summary:        "summary",
		EventType:      model.EventProductLaunch,
		ThreatLevel:    threat,
	}
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	ai := &fakeAI{}
	svc := NewService(&fakeStore{}, ai, testChatConfig(), testAnthropicConfig())

	_, err := svc.Ask(context.Background(), "   ", nil)
	require.Error(t, err)
	assert.True(t, IsInputError(err))
	assert.Zero(t, ai.calls)
}

func TestAskRejectsOverlongQuestion(t *testing.T) {
	ai := &fakeAI{}
	svc := NewService(&fakeStore{}, ai, testChatConfig(), testAnthropicConfig())

	_, err := svc.Ask(context.Background(), strings.Repeat("x", 501), nil)
	require.Error(t, err)
	assert.True(t, IsInputError(err))
}

func TestAskBoundaryLengthAccepted(t *testing.T) {
	ai := &fakeAI{response: textResponse("ok")}
	st := &fakeStore{items: []model.IntelligenceItem{recentItem("a", "Mappedin", 3)}}
	svc := NewService(st, ai, testChatConfig(), testAnthropicConfig())

	_, err := svc.Ask(context.Background(), strings.Repeat("x", 500), nil)
	require.NoError(t, err)
}

func TestAskNoResultsSkipsGeneration(t *testing.T) {
	ai := &fakeAI{response: textResponse("should not be used")}
	svc := NewService(&fakeStore{}, ai, testChatConfig(), testAnthropicConfig())

	res, err := svc.Ask(context.Background(), "anything new?", nil)
	require.NoError(t, err)
	assert.Equal(t, prompt.NoResultsGuidance, res.Response)
	assert.Empty(t, res.Sources)
	assert.Zero(t, ai.calls, "no-results branch must not generate")
}

func TestAskHappyPath(t *testing.T) {
	ai := &fakeAI{response: textResponse("Mappedin launched a product.")}
	st := &fakeStore{
		competitors: []model.Competitor{{ID: "c1", Name: "Mappedin"}},
		items: []model.IntelligenceItem{
			recentItem("a", "Mappedin", 4),
			recentItem("b", "Mappedin", 2),
		},
	}
	svc := NewService(st, ai, testChatConfig(), testAnthropicConfig())

	res, err := svc.Ask(context.Background(), "What is Mappedin doing?", []model.ConversationTurn{
		{Role: "user", Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mappedin launched a product.", res.Response)
	require.Len(t, res.Sources, 2)
	assert.Equal(t, "a", res.Sources[0].ID, "sources follow ranked order")

	require.Equal(t, 1, ai.calls)
	require.Len(t, ai.lastReq.Messages, 1)
	assert.Equal(t, "user", ai.lastReq.Messages[0].Role)
	assert.Contains(t, ai.lastReq.Messages[0].Content, "What is Mappedin doing?")
	assert.Contains(t, ai.lastReq.Messages[0].Content, "Previous Conversation")
	assert.Equal(t, "claude-haiku-4-5", ai.lastReq.Model)
}

func TestAskSourcesCappedAtLimit(t *testing.T) {
	items := make([]model.IntelligenceItem, 0, 15)
	for i := 0; i < 15; i++ {
		items = append(items, recentItem(string(rune('a'+i)), "Pointr", 3))
	}
	ai := &fakeAI{response: textResponse("fine")}
	svc := NewService(&fakeStore{items: items}, ai, testChatConfig(), testAnthropicConfig())

	res, err := svc.Ask(context.Background(), "latest news", nil)
	require.NoError(t, err)
	assert.Len(t, res.Sources, 10)
}

func TestAskGenerationFailure(t *testing.T) {
	ai := &fakeAI{err: errors.New("api down")}
	st := &fakeStore{items: []model.IntelligenceItem{recentItem("a", "Pointr", 3)}}
	svc := NewService(st, ai, testChatConfig(), testAnthropicConfig())

	_, err := svc.Ask(context.Background(), "latest news", nil)
	require.Error(t, err)
	assert.True(t, IsGenerationError(err))
}

func TestAskEmptyCompletionIsGenerationError(t *testing.T) {
	ai := &fakeAI{response: &anthropic.MessageResponse{}}
	st := &fakeStore{items: []model.IntelligenceItem{recentItem("a", "Pointr", 3)}}
	svc := NewService(st, ai, testChatConfig(), testAnthropicConfig())

	_, err := svc.Ask(context.Background(), "latest news", nil)
	require.Error(t, err)
	assert.True(t, IsGenerationError(err))
}

func TestAskStoreErrorPropagates(t *testing.T) {
	ai := &fakeAI{}
	st := &fakeStore{findErr: errors.New("connection reset")}
	svc := NewService(st, ai, testChatConfig(), testAnthropicConfig())

	_, err := svc.Ask(context.Background(), "latest news", nil)
	require.Error(t, err)
	assert.Zero(t, ai.calls)
}

func TestSources(t *testing.T) {
	items := []model.IntelligenceItem{
		{
			ID:             "x",
			CompetitorName: "Oriient",
			Title:          "Series B",
			OccurredAt:     time.Date(2025, 6, 3, 14, 0, 0, 0, time.UTC),
			SourceURL:      "https://example.com/x",
		},
	}
	got := Sources(items, 10)
	require.Len(t, got, 1)
	assert.Equal(t, "2025-06-03", got[0].Date)
	assert.Equal(t, "https://example.com/x", got[0].URL)
}
