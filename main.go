package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"persona-agent/agent"
	"persona-agent/config"
	"persona-agent/content"
	"persona-agent/index"
	"persona-agent/llmclient"
	"persona-agent/prompts"
	"persona-agent/session"
	"persona-agent/web"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Load config (which includes log level setting)
	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	catalog, err := content.Load(cfg.ContentPath)
	if err != nil {
		logger.Fatal("Failed to load conversation content", zap.Error(err))
	}
	logger.Info("Conversation content loaded",
		zap.String("persona", catalog.Persona().Name),
		zap.Int("units", len(catalog.Units())),
		zap.Int("topics", len(catalog.Topics())),
		zap.Any("flags", catalog.Flags()))

	idx, err := index.New(catalog.IndexTexts(), cfg.SimilarityCacheSize, logger)
	if err != nil {
		logger.Fatal("Failed to build lexical index", zap.Error(err))
	}

	store, closeStore := newSessionStore(ctx, cfg, logger)
	defer closeStore()

	var generator agent.RemoteGenerator
	if cfg.RemoteConfigured() {
		persona := catalog.Persona()
		generator = llmclient.New(cfg, prompts.PersonaSystem(persona.Name, persona.Instruction), logger)
	}

	personaAgent := agent.NewAgent(cfg, catalog, idx, store, generator, logger)

	// Create context that listens for interrupt signals
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cleanupService := web.NewCleanupService(store, logger)
	go web.StartSessionCleanup(ctx, cfg, cleanupService, logger)

	webServer := web.NewServer(personaAgent, logger, cfg)

	port := fmt.Sprintf(":%d", cfg.WebPort)
	logger.Info("Starting persona web server", zap.String("port", port))
	if err := webServer.Start(ctx, port); err != nil {
		logger.Error("Web server error", zap.Error(err))
		os.Exit(1)
	}
}

// newSessionStore returns the configured session store and a close func.
func newSessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (session.Store, func()) {
	if cfg.SessionStore != config.SessionStoreRedis {
		return session.NewMemoryStore(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatal("Failed to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	logger.Info("Using redis session store", zap.String("addr", cfg.RedisAddr))
	return session.NewRedisStore(client, cfg.SessionRetentionAge), func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
}
