package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gasdoc/internal/app"
	"gasdoc/internal/config"
	_ "gasdoc/internal/extractor/claude"
	_ "gasdoc/internal/extractor/gemini"
	_ "gasdoc/internal/extractor/openai"
	_ "gasdoc/internal/extractor/vertex"
	"gasdoc/internal/handler"
	"gasdoc/internal/logger"
	"gasdoc/internal/metrics"
	"gasdoc/internal/router"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()

	// The server reads uploads only; S3 is used by the batch CLI.
	pipeline, err := app.New(cfg, nil, m, zl)
	if err != nil {
		return err
	}

	// Initialize handlers
	docH := handler.NewDocumentHandler(pipeline.Files, pipeline.Documents, zl)
	healthH := handler.NewHealthHandler(map[string]handler.ReadinessCheck{
		"extractor": func() error { return app.ExtractorReady(&cfg.Extractor) },
	})

	// Setup router
	maxUpload := cfg.Pipeline.MaxFileSizeMB * 1024 * 1024
	r := router.Setup(docH, healthH, m, zl, cfg.CORS.AllowedOrigins, maxUpload)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("extractor_mode", cfg.Extractor.Mode),
			zap.String("signal_source", cfg.Classifier.SignalSource))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zl.Info("shutting down, waiting for in-flight requests")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	zl.Info("shutdown complete")
	return nil
}
