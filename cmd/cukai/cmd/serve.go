/*
serve.go - HTTP server command

PURPOSE:
  Starts the questionnaire API. Handles configuration, dependency
  injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (file, then CUKAI_* env, then flags)
  2. Initialize SQLite checkpoint store
  3. Start the collaborator dispatcher
  4. Create API handler, register an external schedule if configured
  5. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (shutdown_timeout)
  3. Drain queued checkpoint and email jobs
  4. Close database connection

EXAMPLES:
  # Run with file database
  cukai serve --db ./data/cukai.db

  # Run with in-memory database
  cukai serve --db :memory:

  # Run on different address
  cukai serve --addr :3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/dispatcher.go: Background jobs
  - config/config.go: Settings and environment overrides
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cukaiku/tax-engine/api"
	"github.com/cukaiku/tax-engine/factory"
	"github.com/cukaiku/tax-engine/logging"
	"github.com/cukaiku/tax-engine/render"
	"github.com/cukaiku/tax-engine/store/sqlite"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(opts *options) *cobra.Command {
	var addr, dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				opts.cfg.Server.Addr = addr
			}
			if dbPath != "" {
				opts.cfg.Store.Path = dbPath
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, opts)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&dbPath, "db", "", `SQLite database path, ":memory:" for in-memory`)
	return cmd
}

// runServer serves until ctx is cancelled, then shuts down gracefully.
func runServer(ctx context.Context, opts *options) error {
	cfg := opts.cfg
	log := logging.Named("server")

	// Initialize store
	store, err := sqlite.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	// Background jobs
	disp := api.NewDispatcher(cfg.Dispatcher.Workers, cfg.Dispatcher.QueueSize, cfg.GetJobTimeout(), logging.Logger)
	disp.Start()
	defer disp.Stop()

	// Initialize handler
	mailer := api.NewLogMailer(cfg.Mail.From, logging.Logger)
	handler, err := api.NewHandler(store, disp, mailer, logging.Logger)
	if err != nil {
		return err
	}
	handler.Locale = render.ParseLocale(cfg.Mail.Locale)

	if cfg.Tax.ScheduleFile != "" {
		s, err := factory.NewScheduleFactory().ParseFile(cfg.Tax.ScheduleFile)
		if err != nil {
			return err
		}
		if err := handler.AddSchedule(s); err != nil {
			return err
		}
		log.Info("schedule loaded", zap.String("file", cfg.Tax.ScheduleFile), zap.Int("year", s.Year))
	}
	if cfg.Tax.Year != 0 {
		if err := handler.SetDefaultYear(cfg.Tax.Year); err != nil {
			return err
		}
	}

	// Create server
	server := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: api.NewRouter(handler, api.RouterOptions{
			CORSOrigins: cfg.Server.CORSOrigins,
			Logger:      logging.Logger,
		}),
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
		IdleTimeout:  cfg.GetIdleTimeout(),
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("addr", cfg.Server.Addr),
			zap.String("db", cfg.Store.Path),
			zap.Int("default_year", handler.DefaultYear()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
