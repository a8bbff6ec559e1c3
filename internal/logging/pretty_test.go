package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestNewPrettyHandler(t *testing.T) {
	var buf bytes.Buffer
	handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

	require.NotNil(t, handler)
	assert.NotNil(t, handler.Handler)
	assert.NotNil(t, handler.l)
}

func TestPrettyHandler_Handle(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		level slog.Level
		attr  slog.Attr
		want  []string
	}{
		{"debug", slog.LevelDebug, slog.String("key", "value"), []string{"DEBUG:", `"key":"value"`}},
		{"info", slog.LevelInfo, slog.Int("videos_scanned", 42), []string{"INFO:", `"videos_scanned":42`}},
		{"warn", slog.LevelWarn, slog.Bool("partial", true), []string{"WARN:", `"partial":true`}},
		{"error", slog.LevelError, slog.Any("error", errors.New("disk full")), []string{"ERROR:", `"error":"disk full"`}},
		{"duration", slog.LevelInfo, slog.Duration("backoff", 5*time.Second), []string{`"backoff":"5s"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := NewPrettyHandler(&buf, PrettyHandlerOptions{
				SlogOpts: slog.HandlerOptions{Level: slog.LevelDebug},
			})

			record := slog.NewRecord(time.Now(), tt.level, "collect message", 0)
			record.AddAttrs(tt.attr)

			require.NoError(t, handler.Handle(ctx, record))

			output := buf.String()
			assert.Contains(t, output, "collect message")
			for _, w := range tt.want {
				assert.Contains(t, output, w)
			}
		})
	}
}

func TestPrettyHandler_NoAttrs(t *testing.T) {
	var buf bytes.Buffer
	handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "simple message", 0)
	require.NoError(t, handler.Handle(context.Background(), record))

	assert.Contains(t, buf.String(), "{}")
	assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\.\d{3}\] INFO: simple message \{\}\n$`, buf.String())
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{Level: slog.LevelWarn},
	}))

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestPrettyHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, PrettyHandlerOptions{})).With("run_id", "r-1")

	logger.Info("run finished", "records_written", 2)

	assert.Contains(t, buf.String(), `"run_id":"r-1"`)
	assert.Contains(t, buf.String(), `"records_written":2`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestPrettyHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

	grouped := handler.WithGroup("youtube")
	_, ok := grouped.(*PrettyHandler)
	require.True(t, ok, "WithGroup must keep the pretty format")

	logger := slog.New(handler).With("run_id", "r-1").WithGroup("youtube").With("video_id", "v1")
	logger.Info("page fetched", "count", 3, slog.Group("page", "number", 2))

	output := buf.String()
	assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\.\d{3}\] INFO: page fetched `, output)
	assert.Contains(t, output, `"run_id":"r-1"`)
	assert.Contains(t, output, `"youtube":{"count":3,"page":{"number":2},"video_id":"v1"}`)
}

func TestPrettyHandler_EmptyGroupNameIsNoop(t *testing.T) {
	handler := NewPrettyHandler(&bytes.Buffer{}, PrettyHandlerOptions{})

	assert.Same(t, handler, handler.WithGroup(""))
}
