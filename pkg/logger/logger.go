// Package logger owns the process-wide zap logger shared by the pools and
// the simulator, and the context keys that tag log lines with the scene and
// frame they belong to.
package logger

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	global *zap.Logger
)

// contextKey is the type for context keys
type contextKey string

const (
	// SceneKey is the context key for the scene name
	SceneKey contextKey = "scene"
	// FrameKey is the context key for the frame number
	FrameKey contextKey = "frame"
)

// Config represents logger configuration
type Config struct {
	Level       string
	Development bool
	Encoding    string // json or console
	OutputPaths []string
}

// Init replaces the process logger with one built from cfg. Loggers already
// handed out keep writing to the previous one.
func Init(cfg Config) error {
	l, err := build(cfg)
	if err != nil {
		return err
	}

	mu.Lock()
	global = l
	mu.Unlock()
	return nil
}

func build(cfg Config) (*zap.Logger, error) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "timestamp"
	enc.MessageKey = "message"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeDuration = zapcore.StringDurationEncoder
	if cfg.Development {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zc := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Development,
		Encoding:         cfg.Encoding,
		EncoderConfig:    enc,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}
	if zc.Encoding == "" {
		zc.Encoding = "json"
	}
	if len(zc.OutputPaths) == 0 {
		zc.OutputPaths = []string{"stderr"}
	}

	opts := []zap.Option{}
	if cfg.Development {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	l, err := zc.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l, nil
}

// Get returns the process logger, building an info-level JSON logger on
// stderr if Init was never called.
func Get() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()

	if global == nil {
		l, err := build(Config{})
		if err != nil {
			l = zap.NewNop()
		}
		global = l
	}
	return global
}

// Fields extracts the scene and frame carried by ctx as log fields
func Fields(ctx context.Context) []zap.Field {
	var fields []zap.Field

	if scene, ok := ctx.Value(SceneKey).(string); ok {
		fields = append(fields, zap.String("scene", scene))
	}
	if frame, ok := ctx.Value(FrameKey).(uint64); ok {
		fields = append(fields, zap.Uint64("frame", frame))
	}
	return fields
}

// WithContext returns base, or the process logger when base is nil, with the
// scene and frame carried by ctx attached.
func WithContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		base = Get()
	}
	fields := Fields(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// Sync flushes the process logger.
func Sync() error {
	mu.Lock()
	l := global
	mu.Unlock()

	if l == nil {
		return nil
	}
	return l.Sync()
}
