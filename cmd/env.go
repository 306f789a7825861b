package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/abuzz-labs/intel-cli/internal/chat"
	"github.com/abuzz-labs/intel-cli/internal/report"
	"github.com/abuzz-labs/intel-cli/internal/store"
	anthropicpkg "github.com/abuzz-labs/intel-cli/pkg/anthropic"
)

// appEnv holds the initialized store and services shared by the ask, debrief
// and serve commands.
type appEnv struct {
	Store  store.Store
	Chat   *chat.Service
	Report *report.Aggregator
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "intel.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEnv sets up the store and both generation services. Callers should
// defer env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	if err := cfg.Validate("generate"); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	ai := anthropicpkg.NewClient(cfg.Anthropic.Key)

	return &appEnv{
		Store:  st,
		Chat:   chat.NewService(st, ai, cfg.Chat, cfg.Anthropic),
		Report: report.NewAggregator(st, ai, cfg.Report, cfg.Anthropic),
	}, nil
}

// initStoreOnly opens and migrates the store for commands that never call
// the API (migrate, seed, import, competitors).
func initStoreOnly(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	return st, nil
}
