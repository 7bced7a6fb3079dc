package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configures the root zap logger.
type Config struct {
	ServiceName   string
	Environment   string
	Version       string
	Level         string
	Format        string
	Debug         bool
	IncludeCaller bool
}

// New builds the root structured logger every service derives its named
// logger from.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(cfg.Level); err == nil {
		level = parsed
	}
	if cfg.Debug {
		level = zapcore.DebugLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "console" || cfg.Debug {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.DisableCaller = !cfg.IncludeCaller

	log, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}

	return log.With(
		zap.String("service", cfg.ServiceName),
		zap.String("environment", cfg.Environment),
		zap.String("version", cfg.Version),
	), nil
}
