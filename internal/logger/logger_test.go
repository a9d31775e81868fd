package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(Options{Writer: &buf})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("Uploaded file", "key", "images/a.png")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=\"Uploaded file\"")
	assert.Contains(t, out, "key=images/a.png")
}

func TestNewLogger_JSONDebug(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(Options{Level: "debug", Format: "json", Writer: &buf})
	require.NoError(t, err)

	log.Debug("Starting List operation", "bucket", "media")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "media", entry["bucket"])
	assert.Same(t, log, slog.Default())
}

func TestNewLogger_Invalid(t *testing.T) {
	_, err := NewLogger(Options{Format: "xml"})
	assert.Error(t, err)

	_, err = NewLogger(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
