package logger

import (
	"context"

	"straico-gateway/config"
)

// ConfigAdapter adapts config.Config to the LoggerConfig interface the
// ContextLogger consults for level and masking decisions.
type ConfigAdapter struct {
	config *config.Config
}

// NewConfigAdapter creates a new ConfigAdapter.
func NewConfigAdapter(cfg *config.Config) LoggerConfig {
	return &ConfigAdapter{config: cfg}
}

// ShouldLogForModel is always true; this gateway has no per-model log
// suppression (the teacher's small-model quieting does not apply here,
// there being only one upstream).
func (c *ConfigAdapter) ShouldLogForModel(model string) bool {
	return true
}

// GetMinLogLevel maps the configured LOG_LEVEL string to a Level.
func (c *ConfigAdapter) GetMinLogLevel() Level {
	switch c.config.LogLevel {
	case "debug":
		return DEBUG
	case "warn":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// ShouldMaskAPIKeys reports whether log output should mask bearer
// tokens, per MASK_API_KEYS.
func (c *ConfigAdapter) ShouldMaskAPIKeys() bool {
	return c.config.MaskAPIKeys
}

// NewFromConfig creates a logger using the loaded Config.
func NewFromConfig(ctx context.Context, cfg *config.Config) Logger {
	return New(ctx, NewConfigAdapter(cfg))
}

// ContextLoggerFromConfig creates a logger and stores it in context for
// easy retrieval by downstream calls.
func ContextLoggerFromConfig(ctx context.Context, cfg *config.Config) (context.Context, Logger) {
	l := NewFromConfig(ctx, cfg)
	return context.WithValue(ctx, loggerContextKey, l), l
}
