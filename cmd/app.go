package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/umlgen/internal/config"
	"github.com/abhisek/umlgen/internal/llm"
	"github.com/abhisek/umlgen/internal/observability"
	"github.com/abhisek/umlgen/internal/pipeline"
	"github.com/abhisek/umlgen/internal/store"
)

// deps holds everything a generating command needs.
type deps struct {
	cfg      config.Config
	logger   *zap.Logger
	store    *store.Store
	registry *llm.Registry
	service  *pipeline.Service
}

func (d *deps) Close() {
	_ = d.logger.Sync()
	d.store.Close()
}

// loadConfig reads configuration, honoring the --config flag.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// buildDeps loads configuration, opens the store and builds the provider
// registry. It fails when no provider has credentials.
func buildDeps(cmd *cobra.Command) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	st, err := openStoreFor(cmd, cfg)
	if err != nil {
		return nil, err
	}

	registry, err := llm.NewRegistry(cmd.Context(), cfg.LLM, llm.WithSinks(llm.Instrumentation{
		Logger: logger,
		Events: st.EventRepo(),
	}))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("configure LLM providers: %w", err)
	}
	for model, kind := range registry.Unavailable() {
		logger.Debug("model not served", zap.String("model", model), zap.String("kind", kind.String()))
	}

	pcfg := pipeline.DefaultConfig()
	pcfg.EvaluationModel = cfg.EvaluationModel
	pcfg.Exercise.MaxTokens = cfg.LLM.MaxTokens
	pcfg.Exercise.Temperature = cfg.LLM.Temperature
	pcfg.Evaluator.MaxTokens = cfg.LLM.MaxTokens

	if cfg.EvaluationModel != "" {
		if _, err := registry.Resolve(cfg.EvaluationModel); err != nil {
			st.Close()
			return nil, fmt.Errorf("EVALUATION_MODEL: %w", err)
		}
	}

	return &deps{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		registry: registry,
		service:  pipeline.NewService(registry, pcfg, logger),
	}, nil
}
