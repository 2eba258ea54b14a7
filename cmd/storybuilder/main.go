package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"StoryBuilder/internal/chatbot"
	"StoryBuilder/internal/config"
	"StoryBuilder/internal/script"
	"StoryBuilder/internal/session"
	"StoryBuilder/internal/story"
	"StoryBuilder/internal/telemetry"
	"StoryBuilder/internal/ui"
)

func main() {
	var cfg config.Config

	flag.StringVar(&cfg.Endpoint, "endpoint", "http://localhost:8080"+config.GeneratePath, "Story generation endpoint")
	flag.StringVar(&cfg.ScriptPath, "script", "", "YAML script replacing the built-in lesson")
	flag.StringVar(&cfg.Theme, "theme", "bubblegum", "Color theme ("+strings.Join(ui.ThemeNames(), "|")+")")
	flag.StringVar(&cfg.LogDir, "log-dir", "logs", "Directory for log, trace and metric files")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&cfg.Offline, "offline", false, "Never call the endpoint; always use the placeholder story")
	flag.BoolVar(&cfg.Plain, "plain", false, "Line-oriented chat instead of the full-screen UI")

	flag.Parse()

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	opts := telemetry.Options{Dir: cfg.LogDir, Service: "storybuilder", Level: level}

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

	sessOpts := []session.Option{session.WithLogger(logger)}
	if cfg.ScriptPath != "" {
		sc, err := script.Load(cfg.ScriptPath)
		if err != nil {
			return fmt.Errorf("failed to load script: %w", err)
		}
		sessOpts = append(sessOpts, session.WithScript(sc))
	}

	var teller story.Teller
	if !cfg.Offline && cfg.Endpoint != "" {
		teller = story.NewClient(cfg.Endpoint, story.WithTelemetry(tracer, meter))
	}
	sess := session.New(story.NewPipeline(teller, logger), sessOpts...)

	logger.Info("story builder started", "endpoint", cfg.Endpoint, "offline", cfg.Offline, "plain", cfg.Plain)

	if cfg.Plain {
		return chatbot.NewChatBot(sess, logger).Run(ctx, os.Stdin, os.Stdout)
	}
	return ui.Run(ctx, sess, cfg.Theme, logger)
}
