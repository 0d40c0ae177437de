package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CustomWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})
	logger.Info("test message")

	assert.Contains(t, buf.String(), "test message")
	assert.Contains(t, buf.String(), "\"level\":\"INFO\"")
}

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		environment string
		wantJSON    bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Config{Writer: &buf, Environment: tt.environment, Level: slog.LevelInfo})
			logger.Info("hello")

			isJSON := strings.HasPrefix(buf.String(), "{")
			assert.Equal(t, tt.wantJSON, isJSON, buf.String())
		})
	}
}

func TestForEnvironment(t *testing.T) {
	var buf bytes.Buffer
	logger := ForEnvironment("development", "debug", &buf)
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "logger_test.go:", "development adds source")

	buf.Reset()
	logger = ForEnvironment("production", "warn", &buf)
	logger.Info("hidden")
	assert.Empty(t, buf.String())
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "logger_test.go")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestPrettyHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, nil))

	logger.Info("author created", "id", "author-1", "name", "Le Guin, Ursula", "took", 5*time.Millisecond)

	out := buf.String()
	assert.Contains(t, out, "INF")
	assert.Contains(t, out, "author created")
	assert.Contains(t, out, "id=author-1")
	assert.Contains(t, out, `name="Le Guin, Ursula"`)
	assert.Contains(t, out, "took=5ms")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestPrettyHandler_Enabled(t *testing.T) {
	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	ctx := context.Background()

	assert.False(t, h.Enabled(ctx, slog.LevelInfo))
	assert.True(t, h.Enabled(ctx, slog.LevelWarn))
	assert.True(t, h.Enabled(ctx, slog.LevelError))

	assert.True(t, NewPrettyHandler(&bytes.Buffer{}, nil).Enabled(ctx, slog.LevelInfo))
	assert.False(t, NewPrettyHandler(&bytes.Buffer{}, nil).Enabled(ctx, slog.LevelDebug))
}

func TestPrettyHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, nil)).
		With("component", "store").
		WithGroup("badger").
		With("path", "/data")

	logger.Info("opened", slog.Group("opts", "sync", true), "keys", 3)

	out := buf.String()
	assert.Contains(t, out, "component=store")
	assert.Contains(t, out, "badger.path=/data")
	assert.Contains(t, out, "badger.opts.sync=true")
	assert.Contains(t, out, "badger.keys=3")
}

func TestPrettyHandler_WithAttrsDoesNotShare(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(NewPrettyHandler(&buf, nil)).With("a", 1)
	_ = base.With("b", 2)

	base.Info("msg")
	assert.NotContains(t, buf.String(), "b=2")
}

func TestFormatLevel(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, "DBG"},
		{slog.LevelInfo, "INF"},
		{slog.LevelWarn, "WRN"},
		{slog.LevelError, "ERR"},
	}
	for _, tt := range tests {
		got, _ := formatLevel(tt.level)
		assert.Equal(t, tt.want, got)
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "plain", formatValue(slog.StringValue("plain")))
	assert.Equal(t, `""`, formatValue(slog.StringValue("")))
	assert.Equal(t, `"two words"`, formatValue(slog.StringValue("two words")))
	assert.Equal(t, "42", formatValue(slog.IntValue(42)))
	assert.Equal(t, "1.5s", formatValue(slog.DurationValue(1500*time.Millisecond)))

	ts := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-14T12:00:00Z", formatValue(slog.TimeValue(ts)))
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Writer: &buf, Format: "json", Level: slog.LevelInfo})

	logger.WithError(errors.New("disk full")).Error("write failed")

	require.Contains(t, buf.String(), `"error":"disk full"`)
	assert.Contains(t, buf.String(), "write failed")
}
