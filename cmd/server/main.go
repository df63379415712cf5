package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"personal-chat/auth"
	"personal-chat/infrastructure/httpapi"
	"personal-chat/infrastructure/ws"
	"personal-chat/internal"
	"personal-chat/moderation"
	"personal-chat/repositories"
	"personal-chat/runtime"
	"personal-chat/runtime/workers"
	"personal-chat/services"
	"personal-chat/storage"
)

// Exit codes to provide meaningful status to the operating system or
// service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// main acts as a thin wrapper; its only responsibility is to call
	// run() and hand the exit code to the OS.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer (database close, upload
// flush) executes before the process exits.
func run() (int, error) {
	// 1. Configuration & logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	maskChar, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := internal.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Database (BadgerDB)
	options := badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(options)
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories, moderation, delivery engine
	conversationRepo := repositories.NewConversationRepository(db, logger)
	userRepo := repositories.NewUserRepository(db)

	moderator, err := moderation.NewModerator(censoredWords(config.CensoredWords), maskChar)
	if err != nil {
		return exitRuntime, fmt.Errorf("building moderator: %w", err)
	}

	presence := runtime.NewPresenceRegistry()
	registry := runtime.NewRegistry()
	supervisor := workers.NewSupervisor(logger)
	engine := runtime.NewEngine(logger, supervisor, presence, registry,
		conversationRepo, moderator, config.BufferSize, config.SinkTimeout)

	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		engine.Start(ctx, config.MetricInterval, config.LowCapacityThreshold)
	}()

	// 4. Services & HTTP surface
	tokens := auth.NewTokenIssuer(config.JwtSecret, config.AuthTokenDuration)
	authService := services.NewAuthService(userRepo, tokens)
	chatService := services.NewChatService(engine)

	files, err := storage.NewDiskStore(logger, config.UploadDir, config.PublicBaseURL)
	if err != nil {
		return exitRuntime, err
	}

	wsHandler := ws.NewHandler(logger, chatService, config.ConnectionBufferSize)
	router := httpapi.NewRouter(logger, tokens, authService, chatService, files, wsHandler)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", server.Addr)
		serverErr <- server.ListenAndServe()
	}()

	// 5. Wait for shutdown signal or server failure
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err = <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return exitRuntime, fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}

	stop()
	<-engineDone
	logger.Info("All workers drained, bye")
	return exitOK, nil
}

func censoredWords(raw string) []string {
	if raw == "" {
		return nil
	}
	var words []string
	for _, word := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(word); trimmed != "" {
			words = append(words, trimmed)
		}
	}
	return words
}
