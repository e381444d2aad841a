package main

import (
	"context"
	"fmt"
	"log"

	"github.com/rahul/pathwise/internal/governance"
	"github.com/rahul/pathwise/internal/observability"
	"github.com/rahul/pathwise/internal/planner"
	"github.com/rahul/pathwise/internal/store"
	"github.com/rahul/pathwise/internal/tracker"
	"github.com/rahul/pathwise/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
)

// newModel builds the default enabled provider. A nil model with a nil error
// means no provider is configured and every plan will be the fallback.
func newModel(ctx context.Context, cfg *config.Config) (llms.Model, string, error) {
	pName, pCfg := cfg.GetDefaultProvider()
	if pName == "" {
		log.Println("Warning: no AI provider configured, plans will use the fallback template")
		return nil, "", nil
	}

	switch pName {
	case "googleai", "gemini":
		model := pCfg.Model
		if model == "" {
			model = "gemini-2.5-flash"
		}
		llm, err := googleai.New(ctx,
			googleai.WithAPIKey(pCfg.APIKey),
			googleai.WithDefaultModel(model),
		)
		return llm, model, err
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(pCfg.APIKey),
		}
		if pCfg.Model != "" {
			opts = append(opts, openai.WithModel(pCfg.Model))
		}
		if pCfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(pCfg.BaseURL))
		}
		llm, err := openai.New(opts...)
		return llm, pCfg.Model, err
	default:
		return nil, "", fmt.Errorf("provider %s not yet implemented", pName)
	}
}

func newGenerator(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*planner.Generator, error) {
	model, modelName, err := newModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	gen := planner.NewGenerator(model, planner.NewPromptManager(cfg.Planner.PromptsDir), logger)
	gen.ModelName = modelName
	gen.Timeout = cfg.PlannerTimeout()
	gen.UseTools = cfg.Planner.UseTools
	return gen, nil
}

func newPolicy(cfg *config.Config) (*governance.DefaultPolicyEngine, error) {
	gov := governance.NewDefaultPolicyEngine()
	for _, p := range cfg.Governance.DenyPatterns {
		if err := gov.DenyPattern(p); err != nil {
			return nil, fmt.Errorf("invalid deny pattern %q: %w", p, err)
		}
	}
	gov.RateLimit(cfg.Governance.RateLimit.Requests, cfg.RateWindow())
	return gov, nil
}

// app holds everything the commands share.
type app struct {
	cfg     *config.Config
	logger  *observability.Logger
	goals   *store.GoalStore
	policy  *governance.DefaultPolicyEngine
	tracker *tracker.Tracker
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger := observability.NewLogger()

	goals, err := store.NewGoalStore(cfg.Memory.Path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.Memory.Path, err)
	}

	gen, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		goals.Close()
		return nil, err
	}
	policy, err := newPolicy(cfg)
	if err != nil {
		goals.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		goals:   goals,
		policy:  policy,
		tracker: tracker.New(goals, gen, policy, logger, store.NewID),
	}, nil
}

func (a *app) Close() error {
	return a.goals.Close()
}
