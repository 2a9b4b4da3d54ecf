package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"debug console", Config{Level: "debug", Format: "console"}, false},
		{"unknown level", Config{Level: "loud", Format: "json"}, true},
		{"unknown format", Config{Level: "info", Format: "xml"}, true},
		{"empty", Config{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew(t *testing.T) {
	logger, err := New(DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = New(Config{Level: "nope", Format: "json"})
	assert.Error(t, err)
}

func TestLevelFiltering(t *testing.T) {
	tl := NewTestLogger()

	tl.Debug("debug msg")
	tl.Info("info msg", zap.String("key", "value"))
	tl.Warn("warn msg")
	tl.Error("error msg")

	require.Len(t, tl.All(), 4)
	tl.AssertLogged(t, zapcore.InfoLevel, "info msg")
	tl.AssertLogged(t, zapcore.ErrorLevel, "error msg")
}

func TestWithAndNamed(t *testing.T) {
	tl := NewTestLogger()

	tl.Logger.With(zap.String("run_id", "abc")).Named("executor").Info("phase done")

	entries := tl.FilterMessage("phase done").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "executor", entries[0].LoggerName)

	fields := entries[0].ContextMap()
	assert.Equal(t, "abc", fields["run_id"])
}

func TestNopDiscards(t *testing.T) {
	logger := Nop()
	logger.Info("goes nowhere")
	assert.NoError(t, logger.Sync())
}
