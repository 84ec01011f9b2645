package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/factbot/internal/config"
	"github.com/sandevgo/factbot/internal/core"
	"github.com/sandevgo/factbot/internal/metrics"
	"github.com/sandevgo/factbot/internal/prompts"
	"github.com/sandevgo/factbot/internal/providers/embed"
	"github.com/sandevgo/factbot/internal/providers/honcho"
	"github.com/sandevgo/factbot/internal/providers/llm"
	"github.com/sandevgo/factbot/internal/service/chain"
	"github.com/sandevgo/factbot/internal/service/command"
	"github.com/sandevgo/factbot/internal/service/conversation"
	"github.com/sandevgo/factbot/internal/storage/sqlite"
	"github.com/sandevgo/factbot/internal/transport/discord"
	"github.com/sandevgo/factbot/internal/transport/telegram"
	"github.com/sandevgo/factbot/pkg/log"
	"github.com/sandevgo/factbot/pkg/retry"
	"github.com/sandevgo/factbot/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	llmCfg := config.NewLLMConfig(ctx)

	// 2. Memory backend
	memory, cleanup, err := initMemory(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize memory")
	}
	services = append(services, cleanup...)

	// 3. AI Provider
	aiProvider, err := llm.NewProvider(ctx, llmCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	// 4. Prompts and chain
	set, err := prompts.Load(ctx, appCfg.GetPromptsPath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load prompt templates")
	}

	recorder := metrics.NewRecorder()
	ch := chain.New(aiProvider, set, chain.Options{
		TopK:        appCfg.GetTopK(),
		CallTimeout: appCfg.GetCallTimeout(),
		Observer:    recorder,
		Budget:      chain.NewBudget(appCfg.GetHistoryTokenBudget(), chain.CL100K()),
	})

	pipeline, err := chain.Build(appCfg.GetPipeline(), ch)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid pipeline")
	}
	logger.Info().Strs("stages", pipeline.Names()).Msg("pipeline ready")

	// 5. Conversation and commands
	conv := conversation.NewService(memory, pipeline)
	router := command.New(command.NewCommands(llmCfg, conv, appCfg.GetTopK()))

	// 6. Transports
	transports, err := initTransports(ctx, appCfg, conv, router)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	if len(transports) == 0 {
		logger.Fatal().Strs("transports", appCfg.Transports).Msg("no known transport selected")
	}
	services = append(services, transports...)

	// 7. Metrics
	if metricsCfg := config.NewMetricsConfig(ctx); metricsCfg.Addr != "" {
		services = append(services, metrics.NewServer(metricsCfg.Addr, recorder))
	}

	return services
}

// initMemory opens the configured memory backend. The returned services release it on shutdown.
func initMemory(ctx context.Context, cfg *config.AppConfig) (core.Memory, []srv.Service, error) {
	switch cfg.MemoryBackend {
	case config.MemorySQLite:
		db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
		if err != nil {
			return nil, nil, err
		}
		store, err := sqlite.NewStore(ctx, db, embed.NewOpenAI(config.NewEmbeddingConfig(ctx)))
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, []srv.Service{srv.NewCleanup("sqlite", db.Close)}, nil
	case config.MemoryHoncho:
		client := honcho.NewClient(config.NewHonchoConfig(ctx), retry.NewDefaultRetrier())
		return client, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown memory backend: %s", cfg.MemoryBackend)
	}
}

func initTransports(
	ctx context.Context,
	cfg *config.AppConfig,
	conv *conversation.Service,
	router core.CmdRouter,
) ([]srv.Service, error) {
	var services []srv.Service

	if cfg.IsTransportSelected(config.TransportDiscord) {
		bot, err := discord.NewBot(ctx, config.NewDiscordConfig(ctx), conv, router)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	if cfg.IsTransportSelected(config.TransportTelegram) {
		bot, err := telegram.NewBot(ctx, config.NewTelegramConfig(ctx), conv, router)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
