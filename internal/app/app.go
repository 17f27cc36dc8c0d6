package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jora/internal/common"
	"github.com/ternarybob/jora/internal/httpclient"
	"github.com/ternarybob/jora/internal/interfaces"
	"github.com/ternarybob/jora/internal/services/credentials"
	"github.com/ternarybob/jora/internal/services/jira"
	"github.com/ternarybob/jora/internal/services/pocket"
	"github.com/ternarybob/jora/internal/services/scheduler"
	"github.com/ternarybob/jora/internal/services/sparql"
	"github.com/ternarybob/jora/internal/storage/badger"
)

// App holds the wired services shared by the CLI and the MCP server
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// StorageManager is nil when storage.badger.enabled = false
	StorageManager interfaces.StorageManager

	Resolver         interfaces.CredentialResolver
	Pipeline         *httpclient.Pipeline
	IssueService     interfaces.IssueService
	BookmarkService  interfaces.BookmarkService
	GraphService     *sparql.Client
	SchedulerService interfaces.SchedulerService
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app.initServices()

	logger.Debug().
		Str("jira", cfg.Jira.BaseURL).
		Str("pocket", cfg.Pocket.BaseURL).
		Str("sparql", cfg.Sparql.Endpoint).
		Str("timeout", cfg.HTTP.TimeoutDuration().String()).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase opens badger, loads variables and resolves {KEY} references in config
func (a *App) initDatabase() error {
	if !a.Config.Storage.Badger.Enabled {
		a.Logger.Debug().Msg("Storage disabled, credentials resolve from environment only")
		return nil
	}

	manager, err := badger.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return err
	}
	a.StorageManager = manager

	ctx := context.Background()
	if err := manager.LoadVariablesFromFiles(ctx, a.Config.Variables.Dir); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to load variables from files")
	}

	if err := common.ResolveConfigReferences(ctx, a.Config, manager.KeyValueStorage(), a.Logger); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to replace key references in config")
	}

	return nil
}

func (a *App) initServices() {
	cfg := a.Config

	sources := []interfaces.CredentialSource{credentials.NewEnvSource()}
	if a.StorageManager != nil {
		sources = append(sources, credentials.NewKVSource(a.StorageManager.KeyValueStorage()))
	}
	a.Resolver = credentials.NewResolver(a.Logger, sources...)

	a.Pipeline = httpclient.NewPipeline(
		httpclient.WithTimeout(cfg.HTTP.TimeoutDuration()),
		httpclient.WithUserAgent(cfg.HTTP.UserAgent),
		httpclient.WithLogger(a.Logger),
	)

	a.IssueService = jira.NewClient(a.Resolver, a.Pipeline,
		jira.WithBaseURL(cfg.Jira.BaseURL),
		jira.WithCredentialPrefix(cfg.Jira.CredentialPrefix),
		jira.WithFilterIDs(cfg.Jira.OverdueFilterID, cfg.Jira.DueSoonFilterID),
		jira.WithMaxResults(cfg.Jira.MaxResults),
		jira.WithFields(cfg.Jira.Fields),
		jira.WithRateLimit(cfg.Jira.RateLimit),
		jira.WithLogger(a.Logger),
	)

	a.BookmarkService = pocket.NewClient(a.Pipeline,
		pocket.WithBaseURL(cfg.Pocket.BaseURL),
		pocket.WithTokens(cfg.Pocket.ConsumerKey, cfg.Pocket.AccessToken),
		pocket.WithDefaults(cfg.Pocket.Count, cfg.Pocket.DetailType),
		pocket.WithRateLimit(cfg.Pocket.RateLimit),
		pocket.WithLogger(a.Logger),
	)

	a.GraphService = sparql.NewClient(a.Resolver, a.Pipeline,
		sparql.WithEndpoint(cfg.Sparql.Endpoint),
		sparql.WithReasoningEnabled(cfg.Sparql.Reasoning),
		sparql.WithCredentialPrefix(cfg.Sparql.CredentialPrefix),
		sparql.WithRateLimit(cfg.Sparql.RateLimit),
		sparql.WithLogger(a.Logger),
	)

	a.SchedulerService = scheduler.NewService(a.Logger)
}

// Close closes all application resources
func (a *App) Close() error {
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	return nil
}
