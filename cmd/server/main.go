package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"driftway/internal"
	"driftway/repositories"
	"driftway/runtime"
	"driftway/runtime/workers"
	"driftway/server"
	"driftway/services"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// os.Exit never runs here directly, so 'defer' statements (like the database close) always execute.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := internal.NewLogger(config.LogLevel)
	ctx := context.Background()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// Full-text index (Bluge)
	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge index...")
		_ = blugeWriter.Close()
	}()

	// 3. Repositories & Services
	searchIndex := repositories.NewSearchIndex(blugeWriter, logger, 50, 50)
	userRepository := repositories.NewUserRepository(db)
	sessionRepository := repositories.NewSessionRepository(db, logger)
	conversationRepository := repositories.NewConversationRepository(db)
	messageRepository := repositories.NewMessageRepository(db, searchIndex, logger, lo.ToPtr(50))
	keyBundleRepository := repositories.NewKeyBundleRepository(db)

	authService := services.NewAuthService(
		userRepository, sessionRepository,
		[]byte(config.JWTSecret), config.SessionTTL, logger,
	)
	keyService := services.NewKeyService(keyBundleRepository, conversationRepository, logger)

	registry := runtime.NewRegistry()
	coordinator := runtime.NewCoordinator(
		logger, registry,
		userRepository, conversationRepository, messageRepository,
		config.PersistenceTimeout,
	)
	chatService := services.NewChatService(coordinator, messageRepository, searchIndex)

	// 4. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Background Workers
	sup := workers.NewSupervisor(logger)
	sup.Add(
		workers.NewSessionSweeper(authService, config.SweepInterval, logger),
		workers.NewHealthMonitoringWorker(logger, registry, config.MetricInterval),
	)
	go sup.Run(ctx)

	// 6. HTTP Server (REST + websocket)
	app := server.NewApp(ctx, logger, server.Config{
		Addr:                 fmt.Sprintf("%s:%d", config.Host, config.Port),
		ReadTimeout:          config.ReadTimeout,
		DeliveryTimeout:      config.DeliveryTimeout,
		SessionTTL:           config.SessionTTL,
		ConnectionBufferSize: config.ConnectionBufferSize,
		MaxContentLength:     config.MaxContentLength,
	}, chatService, authService, keyService, conversationRepository)

	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Run()
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
		// Run finishes its graceful shutdown before returning.
		if err := <-errChan; err != nil {
			return exitRuntime, fmt.Errorf("http shutdown error: %w", err)
		}
	case err := <-errChan:
		if err != nil {
			return exitRuntime, fmt.Errorf("http server error: %w", err)
		}
	}

	// 8. Final Cleanup (Graceful Shutdown)
	logger.Info("Shutting down gracefully...")
	sup.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
