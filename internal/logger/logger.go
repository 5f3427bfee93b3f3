package logger

import (
	"fmt"

	"github.com/Torrentov/calories-count-bot/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New создает zap логгер по настройкам из конфигурации.
// Формат "console" включает человекочитаемый вывод, иначе JSON.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	var zcfg zap.Config
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}

// Sync сбрасывает буферы, игнорируя ошибки для stdout/stderr.
func Sync(l *zap.Logger) {
	if l != nil {
		_ = l.Sync()
	}
}
