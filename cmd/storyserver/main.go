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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"StoryBuilder/internal/config"
	"StoryBuilder/internal/generator"
	"StoryBuilder/internal/hub"
	"StoryBuilder/internal/proxy"
	"StoryBuilder/internal/script"
	"StoryBuilder/internal/story"
	"StoryBuilder/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := telemetry.Options{Dir: cfg.LogDir, Service: "storyserver", Level: telemetry.ParseLevel(cfg.LogLevel)}
	logger, closeLog, err := telemetry.InitLogger(opts)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer closeLog()

	tracer, meter, cleanup, err := telemetry.InitTelemetry(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer cleanup()

	gen, err := generator.New(cfg, generator.WithTelemetry(tracer, meter))
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	var sc *script.Script
	if cfg.ScriptPath != "" {
		if sc, err = script.Load(cfg.ScriptPath); err != nil {
			return fmt.Errorf("failed to load script: %w", err)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	teller := story.TellerFunc(func(ctx context.Context, prompt string) (string, error) {
		text, err := gen.Generate(ctx, prompt)
		return strings.TrimSpace(text), err
	})

	srv := proxy.NewServer(proxy.ServerOptions{
		Address:         cfg.Addr,
		ShutdownTimeout: time.Duration(cfg.ShutdownTimeout) * time.Second,
		Generate:        proxy.NewHandler(gen, cfg.Backend, logger, proxy.NewMetrics(registry)),
		Sessions:        hub.NewHandler(teller, sc, logger, hub.WithAllowedOrigins(cfg.AllowedOrigins...)),
		Registry:        registry,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("story server listening", "addr", cfg.Addr, "backend", cfg.Backend, "model", cfg.Model)
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
