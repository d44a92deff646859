package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"sala-chat/api"
	"sala-chat/moderation"
	"sala-chat/repositories"
	"sala-chat/runtime/workers"
	"sala-chat/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting. Keeping the logic out of main ensures every
// defer (database and index cleanup) executes before the process exits, and
// gives the reaper and the HTTP server one shared shutdown path.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB) & Search Index (Bluge)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		log.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	// 3. Moderation
	replacement, err := CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}
	moderator, err := moderation.NewModerator(config.CensoredWordList(), replacement)
	if err != nil {
		return fmt.Errorf("moderator setup failed: %w", err)
	}

	// 4. Repositories & Services
	participantRepo := repositories.NewParticipantRepository(db, log)
	messageRepo := repositories.NewMessageRepository(db, log)
	searchRepo := repositories.NewSearchRepository(blugeWriter, log)
	evictionRepo := repositories.NewEvictionRepository(db, log)

	participantService := services.NewParticipantService(participantRepo, messageRepo, searchRepo, log)
	messageService := services.NewMessageService(
		participantRepo, messageRepo, searchRepo, moderator, log, config.SearchLimit,
	)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Background workers under supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	reaper := workers.NewReaper(
		participantRepo, evictionRepo,
		config.ReapInterval, config.StaleAfter, log,
	)
	heartbeat := workers.NewHeartbeat(participantRepo, config.HeartbeatEvery, log)
	go sup.Add(reaper, heartbeat).Run(ctx)

	// 7. HTTP Server Setup
	handler := api.NewHandler(participantService, messageService, log)
	router := gin.New()
	router.Use(gin.Recovery())
	handler.RegisterRoutes(router)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: router}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
