package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/kientrucanlac/anlac/pkg/api"
	"github.com/kientrucanlac/anlac/pkg/chat"
	"github.com/kientrucanlac/anlac/pkg/config"
	"github.com/kientrucanlac/anlac/pkg/session"
	"github.com/kientrucanlac/anlac/pkg/site"
	"github.com/kientrucanlac/anlac/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	// Load .env before configuring logging so LOG_* can come from it.
	envPath := filepath.Join(*configDir, ".env")
	envErr := godotenv.Load(envPath)

	slog.SetDefault(newLogger(os.Stderr, os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL")))
	if envErr != nil {
		slog.Warn("Could not load .env file, continuing with existing environment",
			"path", envPath, "error", envErr)
	} else {
		slog.Info("Loaded environment", "path", envPath)
	}

	slog.Info("Starting An Lac site server",
		"version", version.Full(),
		"config_dir", *configDir)

	if err := run(*configDir); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Shutdown complete")
}

func run(configDir string) error {
	ctx := context.Background()

	// 1. Configuration
	cfg, err := config.Initialize(ctx, configDir)
	if err != nil {
		return fmt.Errorf("initialize configuration: %w", err)
	}

	// 2. Site content
	catalog, err := site.Load(cfg.ContentPath)
	if err != nil {
		return fmt.Errorf("load site content: %w", err)
	}
	slog.Info("Site content loaded", "posts", len(catalog.Posts), "custom", cfg.ContentPath != "")

	// 3. Redis (token store and/or chat rate limit)
	var redisClient *redis.Client
	if cfg.UsesRedis() {
		redisClient, err = session.NewRedisClient(ctx, session.RedisConfig{
			Addr:     cfg.Sessions.Redis.Addr,
			Password: cfg.Sessions.Redis.Password,
			DB:       cfg.Sessions.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				slog.Error("Error closing redis client", "error", err)
			}
		}()
		slog.Info("Connected to Redis", "addr", cfg.Sessions.Redis.Addr)
	}

	// 4. Visitor sessions
	var tokens session.TokenStore = session.NewMemoryTokenStore()
	if cfg.Sessions.Backend == config.BackendRedis {
		tokens = session.NewRedisTokenStore(redisClient, "")
	}
	sessions := session.NewManager(tokens,
		session.WithIdleTTL(cfg.Sessions.IdleTTL),
		session.WithWidgetOptions(widgetOptions(cfg.Chat)...))

	sweeper := session.NewSweeper(sessions, cfg.Sessions.SweepInterval)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	// 5. HTTP server
	httpServer := api.NewServer(cfg, sessions, catalog)
	if redisClient != nil {
		httpServer.SetRedis(redisClient)
	}

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("HTTP server listening", "addr", addr)
		if err := httpServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	var serveErr error
	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case serveErr = <-errCh:
		slog.Error("Server error triggered shutdown", "error", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	return serveErr
}

// widgetOptions maps the chat section onto widget options. Unset fields
// keep the widget defaults.
func widgetOptions(cfg *config.ChatConfig) []chat.Option {
	var opts []chat.Option
	if cfg.ReplyDelay != nil {
		opts = append(opts, chat.WithReplyDelay(*cfg.ReplyDelay))
	}
	if cfg.Greeting != nil {
		opts = append(opts, chat.WithGreeting(*cfg.Greeting))
	}
	return opts
}
