package sux

import (
	"log/slog"

	"github.com/hupe1980/sux/codec"
	"github.com/hupe1980/sux/persistence"
	"github.com/hupe1980/sux/resource"
)

type options struct {
	codec            codec.Codec
	compression      persistence.Compression
	prefix           string
	metricsCollector MetricsCollector
	logger           *Logger
	rc               *resource.Controller
	buildWorkers     int
}

// Option configures Open.
type Option func(*options)

// WithCodec configures the codec used to write the catalog. Catalogs record
// their codec, so existing catalogs are read regardless of this setting.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression configures the payload compression of saved vectors.
// Default: persistence.CompressionZSTD.
func WithCompression(c persistence.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithPrefix places every blob of the archive under prefix, so several
// archives can share one store.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithResourceController configures memory accounting, worker slots and IO
// throttling. Pass nil to disable all limits.
//
// Example:
//
//	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 32 << 20})
//	a, _ := sux.Open(ctx, store, sux.WithResourceController(rc))
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithBuildWorkers bounds the goroutines used by BuildVec.
// If 0, the resource controller decides.
func WithBuildWorkers(n int) Option {
	return func(o *options) {
		o.buildWorkers = n
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &sux.BasicMetricsCollector{}
//	a, _ := sux.Open(ctx, store, sux.WithMetricsCollector(metrics))
//	// ... use a ...
//	stats := metrics.GetStats()
//	fmt.Printf("Saves: %d, bytes: %d\n", stats.SaveCount, stats.SaveBytes)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := sux.NewJSONLogger(slog.LevelInfo)
//	a, _ := sux.Open(ctx, store, sux.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		compression:      persistence.CompressionZSTD,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
