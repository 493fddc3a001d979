package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"", zapcore.InfoLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat("json"))
	assert.True(t, ValidFormat("console"))
	assert.False(t, ValidFormat("xml"))
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "json", zapcore.InfoLevel)

	logger.Debug("hidden")
	logger.Info("suggestion shown", zap.Int("len", 12))
	require.NoError(t, logger.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "suggestion shown", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.EqualValues(t, 12, entry["len"])
	assert.Contains(t, entry, "ts")
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proofline.log")
	logger, closeFn, err := New(Config{Level: "debug", Format: "console", File: path})
	require.NoError(t, err)

	logger.Debug("written to file")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, string(data), "DEBUG")
}

func TestNew_RejectsBadConfig(t *testing.T) {
	_, _, err := New(Config{Level: "loud"})
	assert.Error(t, err)

	_, _, err = New(Config{Format: "xml"})
	assert.Error(t, err)
}

func TestRedactedString(t *testing.T) {
	f := RedactedString("apiKey", "sk-12345")
	assert.Equal(t, "[REDACTED:8]", f.String)
	assert.NotContains(t, f.String, "sk-")
}
