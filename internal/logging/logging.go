// Package logging builds the zap logger used across Proofline.
package logging

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level, encoding and destination of log output.
type Config struct {
	// Level is debug, info, warn or error.
	Level string
	// Format is console or json.
	Format string
	// File receives the output. Empty means stderr.
	File string
}

// ParseLevel parses a level name. Unknown names are an error.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// ValidLevel reports whether ParseLevel accepts s.
func ValidLevel(s string) bool {
	_, err := ParseLevel(s)
	return err == nil
}

// ValidFormat reports whether s names an encoding.
func ValidFormat(s string) bool {
	switch strings.ToLower(s) {
	case "", "console", "json":
		return true
	}
	return false
}

// New builds a logger from cfg. The returned close function flushes the
// logger and closes the log file, if any.
func New(cfg Config) (*zap.Logger, func() error, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	if !ValidFormat(cfg.Format) {
		return nil, nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	var (
		out    io.Writer = os.Stderr
		closer           = func() error { return nil }
	)
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		out = f
		closer = f.Close
	}

	logger := NewWithWriter(out, cfg.Format, level)
	return logger, func() error {
		_ = logger.Sync()
		return closer()
	}, nil
}

// NewWithWriter builds a logger writing to w.
func NewWithWriter(w io.Writer, format string, level zapcore.Level) *zap.Logger {
	core := zapcore.NewCore(newEncoder(format), zapcore.AddSync(w), level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if strings.EqualFold(format, "json") {
		return zapcore.NewJSONEncoder(encoderCfg)
	}
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(encoderCfg)
}

// RedactedString creates a field that shows only the length of val.
func RedactedString(key, val string) zap.Field {
	return zap.String(key, "[REDACTED:"+strconv.Itoa(len(val))+"]")
}
