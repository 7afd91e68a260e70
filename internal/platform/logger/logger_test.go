package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stmtc233/rawviewer/internal/config"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		name    string
		want    slog.Level
		wantErr bool
	}{
		{name: "debug", want: slog.LevelDebug},
		{name: "info", want: slog.LevelInfo},
		{name: "warn", want: slog.LevelWarn},
		{name: "error", want: slog.LevelError},
		{name: "DEBUG", want: slog.LevelDebug},
		{name: "Error", want: slog.LevelError},
		{name: "verbose", want: slog.LevelInfo, wantErr: true},
		{name: "", want: slog.LevelInfo, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			level, err := ParseLevel(tc.name)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.want, level)
		})
	}
}

func TestSetupHonorsConfiguredLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := setup(config.LoggingConfig{Level: "warn"}, &buf)

	require.NotNil(t, logger)
	ctx := context.Background()
	assert.False(t, logger.Enabled(ctx, slog.LevelInfo), "info should be suppressed at warn level")
	assert.True(t, logger.Enabled(ctx, slog.LevelWarn))

	logger.Info("dropped")
	logger.Warn("kept", "key", "value")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record), "output should be a single JSON record")
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "value", record["key"])
}

func TestSetupInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := setup(config.LoggingConfig{Level: "shouty"}, &buf)

	require.NotNil(t, logger)
	ctx := context.Background()
	assert.True(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.False(t, logger.Enabled(ctx, slog.LevelDebug))
}

func TestSetupInstallsDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := setup(config.LoggingConfig{Level: "info"}, &buf)

	assert.Same(t, logger, slog.Default())
}
