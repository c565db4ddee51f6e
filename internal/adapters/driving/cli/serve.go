package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/retainhq/retain/internal/adapters/driven/ai"
	"github.com/retainhq/retain/internal/adapters/driven/config/file"
	"github.com/retainhq/retain/internal/adapters/driven/storage/sqlite"
	"github.com/retainhq/retain/internal/adapters/driving/rest"
	"github.com/retainhq/retain/internal/cache"
	"github.com/retainhq/retain/internal/core/services"
	"github.com/retainhq/retain/internal/extractors"
	"github.com/retainhq/retain/internal/logger"
)

const (
	contentCacheTTL    = 5 * time.Minute
	cacheSweepInterval = time.Minute
	shutdownGrace      = 10 * time.Second
)

var flagListenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&flagListenAddr, "listen", "l", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := file.NewConfigStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if cfg.Verbose() {
		logger.SetVerbose(true)
	}

	dataDir := flagDataDir
	if dataDir == "" {
		dataDir = cfg.DataDir()
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	contentCache := cache.New[string](contentCacheTTL)
	contentCache.StartSweeper(cacheSweepInterval)
	defer contentCache.Stop()

	registry := extractors.NewRegistry()
	factory := ai.NewFactory()

	library := services.NewLibraryService(store.KnowledgeBaseStore(), store.DocumentStore(), registry, cfg.UploadDir(), contentCache)
	quiz := services.NewQuizService(store.QuizStore(), store.DocumentStore(), store.AIConfigStore(), factory, contentCache)
	review := services.NewReviewService(store.ReviewStore(), store.QuizStore(), store.KnowledgeBaseStore(), quiz)
	settings := services.NewSettingsService(store.AIConfigStore(), factory)

	server := rest.NewServer(rest.Services{
		Library:  library,
		Quiz:     quiz,
		Review:   review,
		Settings: settings,
	}, rest.Options{})

	addr := flagListenAddr
	if addr == "" {
		addr = cfg.ListenAddr()
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-sigCh:
		logger.Info("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(cmd.Context(), shutdownGrace)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
	}
	return nil
}
