package app

import (
	"context"
	"fmt"
	"os"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/valeo/internal/common"
	"github.com/ternarybob/valeo/internal/handlers"
	"github.com/ternarybob/valeo/internal/interfaces"
	"github.com/ternarybob/valeo/internal/services/assessment"
	"github.com/ternarybob/valeo/internal/services/auth"
	"github.com/ternarybob/valeo/internal/services/events"
	"github.com/ternarybob/valeo/internal/services/extract"
	"github.com/ternarybob/valeo/internal/services/health"
	"github.com/ternarybob/valeo/internal/services/llm"
	"github.com/ternarybob/valeo/internal/services/report"
	"github.com/ternarybob/valeo/internal/services/retention"
	"github.com/ternarybob/valeo/internal/services/rewrite"
	"github.com/ternarybob/valeo/internal/services/scheduler"
	"github.com/ternarybob/valeo/internal/services/vault"
	"github.com/ternarybob/valeo/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Event bus
	EventService interfaces.EventService

	// Accounts and tokens
	AuthService interfaces.AuthService

	// Upload pipeline
	FileVault         interfaces.FileVault
	Extractor         interfaces.DatasetExtractor
	LLMService        interfaces.LLMService
	RewriteService    interfaces.NarrativeRewriter
	AssessmentService interfaces.AssessmentService
	ReportService     interfaces.ReportService

	// Scheduled retention
	SchedulerService interfaces.SchedulerService
	RetentionService *retention.Service

	// HTTP handlers
	APIHandler        *handlers.APIHandler
	AuthHandler       *handlers.AuthHandler
	AssessmentHandler *handlers.AssessmentHandler
	WSHandler         *handlers.WebSocketHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize database
	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize services
	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Initialize handlers
	if err := app.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	// Log initialization summary
	logger.Info().
		Str("llm_provider", string(cfg.LLM.Provider)).
		Bool("retention_enabled", cfg.Retention.Enabled).
		Bool("auth_disabled", cfg.Auth.Disabled).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	// Load variables from files (e.g. API keys, secrets)
	// This must happen before config replacement so that loaded variables can be used
	if err := a.StorageManager.LoadVariablesFromFiles(context.Background(), a.Config.Variables.Dir); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to load variables from files")
	}

	// Load variables from .env file (takes precedence over TOML variables)
	if err := a.StorageManager.LoadEnvFile(context.Background(), ".env"); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to load .env file")
	}

	// Perform {key-name} replacement in config after storage initialization.
	// Must happen before the LLM service reads its API key from config.
	ctx := context.Background()
	kvMap, err := a.StorageManager.KeyValueStorage().GetAll(ctx)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to fetch KV map for config replacement, skipping replacement")
	} else if len(kvMap) > 0 {
		if err := common.ReplaceInStruct(a.Config, kvMap, a.Logger); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to replace key references in config")
		} else {
			a.Logger.Debug().Int("keys", len(kvMap)).Msg("Applied key/value replacements to config")
		}
	}

	return nil
}

// initServices initializes all business services in dependency order
func (a *App) initServices() error {
	var err error

	// Event bus first: everything downstream publishes through it
	a.EventService = events.NewService(a.Logger)
	if err := events.SubscribeLoggerToAllEvents(a.EventService, a.Logger); err != nil {
		return fmt.Errorf("failed to subscribe event logger: %w", err)
	}

	// Accounts and token signing
	a.AuthService, err = auth.NewService(&a.Config.Auth, a.StorageManager.UserStorage(), a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize auth service: %w", err)
	}
	a.Logger.Debug().Bool("disabled", a.Config.Auth.Disabled).Msg("Auth service initialized")

	// At-rest encryption for uploaded files
	a.FileVault, err = vault.NewService(a.Config.Crypto.EncryptionKey, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize file vault: %w", err)
	}

	// Upload parsing (CSV/XLSX/PDF)
	a.Extractor = extract.NewService(a.Logger)

	// LLM service for narrative rewriting. The assessment pipeline stays
	// fully functional without it, so failures only disable rewriting.
	a.LLMService, err = llm.NewLLMService(a.Config, a.StorageManager.KeyValueStorage(), a.Logger)
	if err != nil {
		a.LLMService = nil
		a.Logger.Warn().Err(err).Msg("Failed to initialize LLM service - narratives stay deterministic")
	} else if a.LLMService != nil {
		if err := a.LLMService.HealthCheck(context.Background()); err != nil {
			a.LLMService = nil
			a.Logger.Warn().Err(err).Msg("LLM service health check failed - narratives stay deterministic")
		} else {
			a.Logger.Debug().Msg("LLM service initialized and health check passed")
		}
	}
	a.RewriteService = rewrite.NewService(a.LLMService, a.Logger)

	// Scoring engine, with optional benchmark overrides from config
	analyzer := health.NewAnalyzer()
	if file := a.Config.Benchmarks.OverridesFile; file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			a.Logger.Warn().Err(err).Str("file", file).Msg("Failed to read benchmark overrides, using built-in table")
		} else if table, err := health.ParseBenchmarkYAML(data); err != nil {
			a.Logger.Warn().Err(err).Str("file", file).Msg("Failed to parse benchmark overrides, using built-in table")
		} else {
			analyzer = health.NewAnalyzerWithBenchmarks(table)
			a.Logger.Debug().Str("file", file).Msg("Benchmark overrides applied")
		}
	}

	// Report rendering
	a.ReportService = report.NewService(a.Logger)

	// Assessment pipeline orchestrator
	a.AssessmentService = assessment.NewService(
		a.StorageManager.AssessmentStorage(),
		a.Extractor,
		analyzer,
		a.RewriteService,
		a.FileVault,
		a.EventService,
		a.Logger,
	)
	a.Logger.Debug().Msg("Assessment service initialized")

	// Scheduled retention purge
	a.SchedulerService = scheduler.NewService(a.Logger)
	if a.Config.Retention.Enabled {
		a.RetentionService, err = retention.NewService(
			&a.Config.Retention,
			a.StorageManager.AssessmentStorage(),
			a.EventService,
			a.Logger,
		)
		if err != nil {
			return fmt.Errorf("failed to initialize retention service: %w", err)
		}

		if err := a.SchedulerService.RegisterJob(
			"retention_purge",
			a.Config.Retention.Schedule,
			"Purge assessments past the retention window",
			a.RetentionService.Purge,
		); err != nil {
			return fmt.Errorf("failed to register retention job: %w", err)
		}

		if err := a.SchedulerService.Start(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to start scheduler service")
		} else {
			a.Logger.Debug().
				Str("schedule", a.Config.Retention.Schedule).
				Int("retention_days", a.Config.Retention.Days).
				Msg("Retention purge scheduled")
		}
	} else {
		a.Logger.Debug().Msg("Retention disabled, scheduler not started")
	}

	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() error {
	a.APIHandler = handlers.NewAPIHandler(a.Config, a.Logger)
	a.AuthHandler = handlers.NewAuthHandler(a.AuthService, a.Logger)
	a.AssessmentHandler = handlers.NewAssessmentHandler(
		a.AssessmentService,
		a.ReportService,
		a.AuthService,
		a.Config.Limits.MaxUploadMB,
		a.Logger,
	)

	a.WSHandler = handlers.NewWebSocketHandler(a.EventService, a.AuthService, &a.Config.WebSocket, a.Logger)
	if err := a.WSHandler.SubscribeToEvents(); err != nil {
		return fmt.Errorf("failed to subscribe WebSocket handler: %w", err)
	}
	a.Logger.Debug().
		Int("allowed_events", len(a.Config.WebSocket.AllowedEvents)).
		Msg("WebSocket handler initialized")

	return nil
}

// Close closes all application resources
func (a *App) Close() error {
	// Stop scheduler service
	if a.SchedulerService != nil {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler service")
		}
	}

	// Close LLM service
	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		} else {
			a.Logger.Info().Msg("LLM service closed")
		}
	}

	// Close event service
	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}

	// Close storage
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
