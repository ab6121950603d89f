package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"inbound/internal/config"
	"inbound/internal/handler"
	"inbound/internal/metrics"
	"inbound/internal/security"
	"inbound/internal/service"
	"inbound/internal/storage"
	"inbound/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

// runServe blocks until ctx is cancelled, then drains the server within
// SHUTDOWN_TIMEOUT.
func runServe(ctx context.Context) error {
	app, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := app.Log.NewLogger()
	if !app.Info.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := storage.Open(ctx, app.Database.URL, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()
	logger.Log("Database initialized")

	if !app.WebhookSecretConfigured() {
		logger.Warn("WEBHOOK_SECRET is not configured, webhook requests will be rejected")
	}

	collector := metrics.NewCollector(app.Info.Version, metrics.DefaultSampleCap)
	collector.MarkStarted(time.Now())

	verifier := security.NewSignatureVerifier(app.WebhookSecret, logger)
	ingest := service.NewIngestService(store, verifier, validation.New(), logger)

	router := handler.NewRouter(handler.Handlers{
		Webhook:  handler.NewWebhookHandler(ingest, logger),
		Messages: handler.NewMessageHandler(store, logger),
		Health:   handler.NewHealthHandler(store, app.WebhookSecretConfigured(), logger),
	}, collector, logger)

	server := &http.Server{
		Addr:              app.Server.Address(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Logf("%s %s listening on %s", app.Info.Name, app.Info.Version, server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Log("Shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
