// Package chat orchestrates one conversational request end to end: validate,
// parse, retrieve, assemble, generate, cite. The service holds no per-request
// state; parallel requests are naturally isolated.
package chat

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/abuzz-labs/intel-cli/internal/config"
	"github.com/abuzz-labs/intel-cli/internal/model"
	"github.com/abuzz-labs/intel-cli/internal/prompt"
	"github.com/abuzz-labs/intel-cli/internal/query"
	"github.com/abuzz-labs/intel-cli/internal/resilience"
	"github.com/abuzz-labs/intel-cli/internal/retrieval"
	"github.com/abuzz-labs/intel-cli/internal/store"
	"github.com/abuzz-labs/intel-cli/pkg/anthropic"
)

// Service answers analyst questions against the intelligence corpus.
type Service struct {
	store   store.Store
	engine  *retrieval.Engine
	ai      anthropic.Client
	limiter *rate.Limiter
	retry   resilience.Config
	cfg     config.ChatConfig
	aiCfg   config.AnthropicConfig
}

// NewService wires a chat service. The rate limiter paces generation calls
// only; retrieval is local and unthrottled.
func NewService(s store.Store, ai anthropic.Client, cfg config.ChatConfig, aiCfg config.AnthropicConfig) *Service {
	rps := aiCfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Service{
		store:   s,
		engine:  retrieval.NewEngine(s),
		ai:      ai,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		retry:   resilience.DefaultConfig(),
		cfg:     cfg,
		aiCfg:   aiCfg,
	}
}

// Ask runs one question through the full pipeline. Zero retrieved items is a
// defined branch: the fixed guidance text comes back and the generation
// collaborator is never called.
func (s *Service) Ask(ctx context.Context, question string, history []model.ConversationTurn) (*model.ChatResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &InputError{Reason: "question is empty"}
	}
	if utf8.RuneCountInString(question) > s.cfg.MaxQuestionChars {
		return nil, &InputError{Reason: "question exceeds maximum length"}
	}

	catalog, err := s.store.ListActiveCompetitors(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "chat: list competitors")
	}

	now := time.Now().UTC()
	parsed := query.Parse(question, catalog, now)

	window := retrieval.TrailingWindow(now, s.cfg.DefaultWindowDays)
	items, err := s.engine.Retrieve(ctx, parsed, window, s.cfg.RetrieveCap)
	if err != nil {
		return nil, err
	}

	zap.L().Debug("query parsed",
		zap.Int("competitors", len(parsed.CompetitorIDs)),
		zap.Int("regions", len(parsed.Regions)),
		zap.Int("event_types", len(parsed.EventTypes)),
		zap.Int("threat_floor", parsed.ThreatLevelFloor),
		zap.Bool("explicit_window", parsed.DateRange != nil),
		zap.Int("items", len(items)),
	)

	if len(items) == 0 {
		return &model.ChatResult{
			Response: prompt.NoResultsGuidance,
			Sources:  []model.Source{},
		}, nil
	}

	text := prompt.AssembleChat(items, history, question, now)

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "chat: rate limit wait")
	}

	resp, err := resilience.Do(ctx, s.retry, "chat", func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return s.ai.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     s.aiCfg.ChatModel,
			MaxTokens: s.aiCfg.ChatMaxTokens,
			Messages:  []anthropic.Message{{Role: "user", Content: text}},
		})
	})
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	resp.Usage.LogCost(s.aiCfg.ChatModel, "chat")

	answer := resp.FirstText()
	if answer == "" {
		return nil, &GenerationError{}
	}

	return &model.ChatResult{
		Response: answer,
		Sources:  Sources(items, s.cfg.SourceLimit),
	}, nil
}

// Sources converts the top ranked items into the outbound citation shape.
func Sources(items []model.IntelligenceItem, limit int) []model.Source {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]model.Source, len(items))
	for i, it := range items {
		out[i] = model.Source{
			ID:             it.ID,
			CompetitorName: it.CompetitorName,
			Title:          it.Title,
			Date:           it.OccurredAt.Format("2006-01-02"),
			URL:            it.SourceURL,
		}
	}
	return out
}
