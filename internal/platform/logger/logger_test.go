package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestToZapLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"warn":    zapcore.WarnLevel,
		"fatal":   zapcore.FatalLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for level, want := range cases {
		cfg := &LoggerConfig{Level: level}
		assert.Equal(t, want, cfg.ToZapLevel(), level)
	}
}

func TestDefaultConfigReadsEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "Console")

	cfg := DefaultConfig()
	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stdout", cfg.OutputFile)
}

func TestNewLoggerConfigDefaults(t *testing.T) {
	cfg := NewLoggerConfig(" ", "", "")
	assert.Equal(t, &LoggerConfig{Level: "info", Format: "json", OutputFile: "stdout"}, cfg)

	cfg = NewLoggerConfig("DEBUG", "Text", "/var/log/crops.log")
	assert.Equal(t, zapcore.DebugLevel, cfg.ToZapLevel())
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "/var/log/crops.log", cfg.OutputFile)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	l := New(&LoggerConfig{Level: "info", Format: "json", OutputFile: path})

	l.Named("test").Info("hello", zap.String("crop_id", "abc"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"crop_id":"abc"`)
	assert.Contains(t, string(data), `"logger":"test"`)
}

func TestNopLogger(t *testing.T) {
	l := NewNop().With(zap.String("k", "v")).Named("x")
	assert.NotPanics(t, func() { l.Info("ignored") })
}
