package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/pensiondb/pkg/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestFromContext_AddsRunID(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(&buf, config.LoggerConfig{Level: "info", Format: "json"})

	ctx := WithRunID(context.Background(), "run-42")
	FromContext(ctx, base).Info("seeding started", "tables", 9)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "run-42", entry["run_id"])
	assert.Equal(t, "seeding started", entry["msg"])
	assert.EqualValues(t, 9, entry["tables"])
}

func TestNewWithWriter_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, config.LoggerConfig{Level: "warn"})

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pensiondb.log")
	l, err := New(config.LoggerConfig{Level: "info", Output: "file", FilePath: path, MaxSize: 1})
	require.NoError(t, err)

	l.Info("written to file")
	require.NoError(t, l.Close())
	assert.FileExists(t, path)
}

func TestRunID_Empty(t *testing.T) {
	assert.Empty(t, RunID(context.Background()))
}
