package bridge

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/roach88/corebridge/internal/bridge"

type config struct {
	recorder Recorder
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Option configures a Bridge or Shell.
type Option func(*config)

// WithRecorder registers a recorder for successful exchanges.
func WithRecorder(r Recorder) Option {
	return func(c *config) {
		c.recorder = r
	}
}

// WithLogger sets the logger. Without it, slog.Default() is looked up on each
// call so package-level shells follow later slog.SetDefault calls.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTracerProvider sets the tracer provider. Defaults to the global
// provider from otel.GetTracerProvider().
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) {
		c.tracer = tp.Tracer(tracerName)
	}
}

func newConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	return c
}

func (c *config) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}
