package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tracelight/osint-cli/internal/intel"
	"github.com/tracelight/osint-cli/internal/model"
	"github.com/tracelight/osint-cli/internal/source"
	"github.com/tracelight/osint-cli/internal/store"
	"github.com/tracelight/osint-cli/pkg/abstractapi"
	"github.com/tracelight/osint-cli/pkg/numverify"
	"github.com/tracelight/osint-cli/pkg/veriphone"
)

// lookupEnv holds the provider registry and aggregation engine shared by the
// lookup/batch/serve commands.
type lookupEnv struct {
	Config     *intel.Config
	Registry   *source.Registry
	Aggregator *intel.Aggregator
	Store      store.Store // nil when --no-store
}

// Close releases resources held by the environment.
func (le *lookupEnv) Close() {
	if le.Store != nil {
		_ = le.Store.Close()
	}
}

// initEngine builds the provider registry and aggregator from config.
// Remote providers without credentials are still registered; the aggregator
// records them as not configured instead of querying them.
func initEngine(ctx context.Context, withStore bool) (*lookupEnv, error) {
	engineCfg := intel.DefaultConfig()
	if cfg.Lookup.ConfidencePath != "" {
		loaded, err := intel.LoadConfig(cfg.Lookup.ConfidencePath)
		if err != nil {
			return nil, err
		}
		engineCfg = loaded
	}
	if cfg.Lookup.MaxConcurrency > 0 {
		engineCfg.MaxConcurrency = cfg.Lookup.MaxConcurrency
	}
	if cfg.Lookup.RemoteRPS > 0 {
		engineCfg.RemoteRPS = cfg.Lookup.RemoteRPS
	}

	reg := source.NewRegistry(engineCfg.RemoteRPS)
	reg.Register(source.NewLocalProvider())
	reg.Register(source.NewHeuristicProvider())
	reg.Register(source.NewNumVerifyProvider(cfg.NumVerify.Key, numverify.WithBaseURL(cfg.NumVerify.BaseURL)))
	reg.Register(source.NewAbstractProvider(cfg.AbstractAPI.Key, abstractapi.WithBaseURL(cfg.AbstractAPI.BaseURL)))
	reg.Register(source.NewVeriphoneProvider(cfg.Veriphone.Key, veriphone.WithBaseURL(cfg.Veriphone.BaseURL)))

	env := &lookupEnv{
		Config:     engineCfg,
		Registry:   reg,
		Aggregator: intel.New(engineCfg, reg),
	}

	if withStore {
		st, err := initStore(ctx)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
		env.Store = st
	}

	return env, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "osint.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// persist saves an aggregation when a store is attached. Persistence
// failures are logged, never fatal to the lookup itself.
func (le *lookupEnv) persist(ctx context.Context, agg *model.AggregatedIntelligence) {
	if le.Store == nil {
		return
	}
	if err := le.Store.SaveInvestigation(ctx, agg); err != nil {
		zap.L().Warn("failed to persist investigation", zap.Error(err))
	}
}
