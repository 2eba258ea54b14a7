package telemetry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const version = "1.0.0"

// Options selects where logs, traces and metrics are written.
type Options struct {
	Dir     string // defaults to "logs"
	Service string // file prefix and otel service name
	Level   slog.Level
}

func (o Options) withDefaults() Options {
	if o.Dir == "" {
		o.Dir = "logs"
	}
	if o.Service == "" {
		o.Service = "storybuilder"
	}
	return o
}

func rotating(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // 10 MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}

// ParseLevel maps "debug", "info", "warn" and "error" to a slog level.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitLogger initializes structured logging with rotation and installs it as
// the slog default. The returned func closes the log file.
func InitLogger(opts Options) (*slog.Logger, func(), error) {
	opts = opts.withDefaults()
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	logFile := rotating(filepath.Join(opts.Dir, opts.Service+".log"))

	// File only; the terminal belongs to the UI.
	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: opts.Level})).
		With("service", opts.Service, "version", version)
	slog.SetDefault(logger)

	return logger, func() { _ = logFile.Close() }, nil
}

// InitTelemetry installs global OpenTelemetry tracer and meter providers.
// Spans are exported to <dir>/<service>_traces.log and metrics to
// <dir>/<service>_metrics.log every 10 seconds.
func InitTelemetry(ctx context.Context, opts Options) (trace.Tracer, metric.Meter, func(), error) {
	opts = opts.withDefaults()

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(opts.Service),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	traceFile := rotating(filepath.Join(opts.Dir, opts.Service+"_traces.log"))
	tp, err := newTracerProvider(traceFile, res)
	if err != nil {
		_ = traceFile.Close()
		return nil, nil, nil, err
	}

	metricsFile := rotating(filepath.Join(opts.Dir, opts.Service+"_metrics.log"))
	mp, err := newMeterProvider(metricsFile, res)
	if err != nil {
		_ = traceFile.Close()
		_ = metricsFile.Close()
		return nil, nil, nil, err
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, step := range []struct {
			what string
			fn   func() error
		}{
			{"tracer provider", func() error { return tp.Shutdown(ctx) }},
			{"meter provider", func() error { return mp.Shutdown(ctx) }},
			{"trace file", traceFile.Close},
			{"metrics file", metricsFile.Close},
		} {
			if err := step.fn(); err != nil {
				slog.Error("failed to shut down "+step.what, "error", err)
			}
		}
	}

	return tp.Tracer(opts.Service), mp.Meter(opts.Service), cleanup, nil
}

func newTracerProvider(w io.Writer, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}

func newMeterProvider(w io.Writer, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w), stdoutmetric.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	), nil
}
