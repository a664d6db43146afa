package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONSchema(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(Options{Service: "user-service", Format: "json", Console: &buf})
	require.NoError(t, err)
	defer logger.Close()

	logger.Info("Database initialized")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "user-service", record["service"])
	assert.Equal(t, "Database initialized", record["message"])
	assert.Contains(t, record, "timestamp")
	assert.NotContains(t, record, "time")
	assert.NotContains(t, record, "msg")
}

func TestNew_WritesConsoleAndFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "user-service.log")

	var console bytes.Buffer
	logger, err := New(Options{Service: "user-service", FilePath: path, Console: &console})
	require.NoError(t, err)

	logger.Info("first")
	logger.Warn("second", slog.Int("id", 7))
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, console.String(), string(data))

	var lines int
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var record map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &record))
		lines++
	}
	assert.Equal(t, 2, lines)
}

func TestNew_AppendsToExistingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("existing\n"), 0o644))

	logger, err := New(Options{FilePath: path, Console: &bytes.Buffer{}})
	require.NoError(t, err)
	logger.Info("appended")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("existing\n")))
	assert.Contains(t, string(data), `"message":"appended"`)
}

func TestNew_LevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Console: &buf})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Error("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestNew_TextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(Options{Format: "text", Console: &buf})
	require.NoError(t, err)

	logger.Info("hello")

	assert.Contains(t, buf.String(), "message=hello")
}

func TestClose_Idempotent(t *testing.T) {
	t.Parallel()

	logger, err := New(Options{FilePath: filepath.Join(t.TempDir(), "x.log"), Console: &bytes.Buffer{}})
	require.NoError(t, err)

	assert.NoError(t, logger.Close())
	assert.NoError(t, logger.Close())
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}
