package core

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger receives structured service events. Arguments follow the slog
// convention of alternating keys and values.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// SlogLogger adapts a *slog.Logger to the Logger interface.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps an existing slog logger.
func NewSlogLogger(logger *slog.Logger) SlogLogger {
	return SlogLogger{logger: logger}
}

// NewStdLogger returns a text-format logger writing to stderr.
func NewStdLogger() SlogLogger {
	return SlogLogger{logger: slog.New(slog.NewTextHandler(os.Stderr, nil))}
}

func (l SlogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l SlogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l SlogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l SlogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// MetricsRecorder aggregates per-operation outcomes and timings.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}

// TraceSpan represents a single in-flight operation span.
type TraceSpan interface {
	End(err error)
}

// Tracer opens spans around service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

type noopTracer struct{}

type noopSpan struct{}

func (noopSpan) End(error) {}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

// instrument opens a span and returns a completion func recording metrics and
// logs for the operation.
func (s *Service) instrument(ctx context.Context, operation string) (context.Context, func(err error)) {
	start := s.nowFn()
	ctx, span := s.tracer.Start(ctx, operation)
	return ctx, func(err error) {
		duration := s.nowFn().Sub(start)
		s.metrics.Observe(ctx, operation, err == nil, duration)
		span.End(err)
		if err != nil {
			s.logger.Warn("operation failed", "operation", operation, "error", err)
			return
		}
		s.logger.Debug("operation complete", "operation", operation, "duration_ms", float64(duration)/float64(time.Millisecond))
	}
}
