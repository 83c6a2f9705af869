package cli

import (
	"fmt"
	"path/filepath"

	"github.com/searchlens/searchlens/internal/config"
	"github.com/searchlens/searchlens/internal/history"
	"github.com/searchlens/searchlens/internal/logger"
	"github.com/searchlens/searchlens/pkg/codegen"
	"github.com/searchlens/searchlens/pkg/llm"
	"github.com/searchlens/searchlens/pkg/pipeline"
	"github.com/searchlens/searchlens/pkg/planner"
	"github.com/searchlens/searchlens/pkg/registry"
	"github.com/searchlens/searchlens/pkg/sandbox"
	"github.com/searchlens/searchlens/pkg/selector"
	"github.com/searchlens/searchlens/pkg/summarizer"
)

// app bundles everything a command needs after configuration is loaded
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	registry  *registry.Registry
	refresher *registry.Refresher
	pipeline  *pipeline.Pipeline
	history   *history.Store
}

// loadApp builds the full application from config and flags
func loadApp() (*app, error) {
	cfg, err := config.NewLoader(cfgFile).Load()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	lg, err := logger.New(logger.Config{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: cfg.Logging.Console,
		Pretty:  cfg.Logging.Pretty,
	})
	if err != nil {
		return nil, err
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	provider, err := (&llm.ProviderFactory{}).NewProvider(llm.AuthProfile{
		Provider: cfg.AI.Provider,
		APIKey:   cfg.AI.APIKey,
	})
	if err != nil {
		return nil, err
	}

	store, err := history.Open(filepath.Join(cfg.DataDir, "history.db"))
	if err != nil {
		return nil, err
	}

	settings := llm.Settings{
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
	}
	pipe := pipeline.New(
		reg,
		planner.New(provider, settings),
		selector.New(reg, provider, settings, cfg.Selection.MaxToolsPerStep),
		codegen.New(provider, settings),
		sandbox.New(reg),
		summarizer.New(provider, settings),
		pipeline.NewSnapshots(filepath.Join(cfg.DataDir, "runs")),
	)

	var refresher *registry.Refresher
	if cfg.Servers.RefreshSchedule != "" {
		refresher = registry.NewRefresher(reg, 0)
		if err := refresher.Start(cfg.Servers.RefreshSchedule); err != nil {
			return nil, fmt.Errorf("invalid refresh schedule: %w", err)
		}
	}

	return &app{
		cfg:       cfg,
		log:       lg,
		registry:  reg,
		refresher: refresher,
		pipeline:  pipe,
		history:   store,
	}, nil
}

// buildRegistry assembles the tool providers declared in config
func buildRegistry(cfg *config.Config) (*registry.Registry, error) {
	var providers []registry.Provider

	if cfg.Servers.Primary.Command != "" {
		providers = append(providers, registry.NewStdioProvider(
			"primary-analytics",
			cfg.Servers.Primary.Command,
			cfg.Servers.Primary.Args,
			cfg.Servers.Primary.Env,
		))
	}

	if cfg.Servers.Secondary.URL != "" {
		providers = append(providers, registry.NewHTTPProvider(
			"secondary-analytics",
			cfg.Servers.Secondary.URL,
		))
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no tool servers configured")
	}

	return registry.New(providers...), nil
}

// close releases application resources
func (a *app) close() {
	if a.refresher != nil {
		a.refresher.Stop()
	}
	if a.history != nil {
		a.history.Close()
	}
	if a.registry != nil {
		a.registry.Close()
	}
	if a.log != nil {
		a.log.Close()
	}
}
