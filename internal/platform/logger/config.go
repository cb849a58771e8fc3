package logger

import (
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// LoggerConfig selects the level, encoding and destination of a Logger.
type LoggerConfig struct {
	Level      string
	Format     string
	OutputFile string
}

// NewLoggerConfig normalizes raw settings. Empty values fall back to info, json and stdout.
func NewLoggerConfig(level, format, outputFile string) *LoggerConfig {
	cfg := &LoggerConfig{
		Level:      strings.ToLower(strings.TrimSpace(level)),
		Format:     strings.ToLower(strings.TrimSpace(format)),
		OutputFile: strings.TrimSpace(outputFile),
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = "json"
	}
	if cfg.OutputFile == "" {
		cfg.OutputFile = "stdout"
	}
	return cfg
}

// DefaultConfig is used before the service configuration has been loaded.
func DefaultConfig() *LoggerConfig {
	return NewLoggerConfig(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), os.Getenv("LOG_OUTPUT_FILE"))
}

// ToZapLevel parses the level, defaulting to info.
func (c *LoggerConfig) ToZapLevel() zapcore.Level {
	name := c.Level
	if name == "warning" {
		name = "warn"
	}
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}
