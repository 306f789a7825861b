// Package report produces periodic intelligence debriefs: a window-scoped
// sweep of the corpus rendered into a structured briefing, or just the item
// count when the caller only wants to know whether a debrief is worth running.
package report

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/abuzz-labs/intel-cli/internal/config"
	"github.com/abuzz-labs/intel-cli/internal/model"
	"github.com/abuzz-labs/intel-cli/internal/prompt"
	"github.com/abuzz-labs/intel-cli/internal/resilience"
	"github.com/abuzz-labs/intel-cli/internal/retrieval"
	"github.com/abuzz-labs/intel-cli/internal/store"
	"github.com/abuzz-labs/intel-cli/pkg/anthropic"
)

// Aggregator assembles debriefs over a date window. Unlike chat, the sweep
// applies no competitor, region, event or threat predicates: the window is
// the only filter.
type Aggregator struct {
	engine  *retrieval.Engine
	ai      anthropic.Client
	limiter *rate.Limiter
	retry   resilience.Config
	cfg     config.ReportConfig
	aiCfg   config.AnthropicConfig
}

// NewAggregator wires a report aggregator against a store.
func NewAggregator(s store.Store, ai anthropic.Client, cfg config.ReportConfig, aiCfg config.AnthropicConfig) *Aggregator {
	rps := aiCfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Aggregator{
		engine:  retrieval.NewEngine(s),
		ai:      ai,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		retry:   resilience.DefaultConfig(),
		cfg:     cfg,
		aiCfg:   aiCfg,
	}
}

// Count reports how many items fall inside the window without generating
// anything. A nil window counts the whole corpus.
func (a *Aggregator) Count(ctx context.Context, window *model.DateRange) (int, error) {
	items, err := a.engine.RetrieveWindow(ctx, window, 0)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// Generate produces a debrief for the window. An empty window yields the
// fixed no-data message with a zero count and no generation call.
func (a *Aggregator) Generate(ctx context.Context, window *model.DateRange) (*model.DebriefResult, error) {
	items, err := a.engine.RetrieveWindow(ctx, window, a.cfg.Cap)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return &model.DebriefResult{
			Response:  prompt.NoDebriefData,
			ItemCount: 0,
		}, nil
	}

	zap.L().Info("generating debrief", zap.Int("items", len(items)))

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "report: rate limit wait")
	}

	resp, err := resilience.Do(ctx, a.retry, "debrief", func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return a.ai.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     a.aiCfg.DebriefModel,
			MaxTokens: a.aiCfg.DebriefMaxTokens,
			System:    anthropic.BuildCachedSystemBlocks(prompt.DebriefSystem),
			Messages:  []anthropic.Message{{Role: "user", Content: prompt.AssembleDebrief(items)}},
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "report: generate debrief")
	}
	resp.Usage.LogCost(a.aiCfg.DebriefModel, "debrief")

	text := resp.FirstText()
	if text == "" {
		return nil, eris.New("report: empty debrief completion")
	}

	return &model.DebriefResult{
		Response:  text,
		ItemCount: len(items),
	}, nil
}
