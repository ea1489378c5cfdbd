// Package observability provides structured logging for the battle tracker.
package observability

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/battletracker/internal/config"
)

// ServiceName tags every entry written by loggers from NewLogger.
const ServiceName = "battletracker"

// LoggerOption configures NewLogger.
type LoggerOption func(*loggerOptions)

type loggerOptions struct {
	out zapcore.WriteSyncer
}

// WithOutput sends entries to ws instead of stderr.
func WithOutput(ws zapcore.WriteSyncer) LoggerOption {
	return func(o *loggerOptions) { o.out = ws }
}

// NewLogger creates a structured logger from the given logging configuration.
// JSON output uses production encoding with sampling; console output is
// colorized and reports callers.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig, opts ...LoggerOption) (*zap.Logger, error) {
	o := loggerOptions{out: zapcore.Lock(os.Stderr)}
	for _, opt := range opts {
		opt(&o)
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var (
		encoder  zapcore.Encoder
		zapOpts  = []zap.Option{zap.Fields(zap.String("service", ServiceName))}
		encCfg   zapcore.EncoderConfig
		sampling bool
	)
	switch cfg.Format {
	case "json":
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
		sampling = true
	case "console":
		encCfg = zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
		zapOpts = append(zapOpts, zap.AddCaller())
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	core := zapcore.NewCore(encoder, o.out, zap.NewAtomicLevelAt(level))
	if sampling {
		core = zapcore.NewSamplerWithOptions(core, 1e9, 100, 100)
	}
	zapOpts = append(zapOpts, zap.AddStacktrace(zapcore.ErrorLevel))
	return zap.New(core, zapOpts...), nil
}

// SessionLogger scopes logger to one console session.
//
// Precondition: logger must be non-nil.
func SessionLogger(logger *zap.Logger, sessionID, remoteAddr string) *zap.Logger {
	return logger.Named("session").With(
		zap.String("session_id", sessionID),
		zap.String("remote_addr", remoteAddr),
	)
}

// FightFields returns the fields identifying a fight in log entries.
func FightFields(name string, characters int) []zap.Field {
	return []zap.Field{
		zap.String("fight", name),
		zap.Int("characters", characters),
	}
}

// CharacterFields returns the fields identifying a character and its health.
func CharacterFields(id, name string, hp, maxHP int) []zap.Field {
	return []zap.Field{
		zap.String("character_id", id),
		zap.String("character", name),
		zap.Int("hp", hp),
		zap.Int("max_hp", maxHP),
	}
}
