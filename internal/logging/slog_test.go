package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufLogger(level slog.Level) (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewTextLogger(&buf, level), &buf
}

func TestNewTextLogger_HonorsLevel(t *testing.T) {
	log, buf := newBufLogger(slog.LevelWarn)
	ctx := context.Background()

	log.Info(ctx, "quiet")
	log.Warn(ctx, "loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "loud")
}

func TestLevels(t *testing.T) {
	log, buf := newBufLogger(slog.LevelDebug)
	ctx := context.Background()

	log.Debug(ctx, "d", "k", 1)
	log.Info(ctx, "i")
	log.Warn(ctx, "w")
	log.Error(ctx, "e")

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "k=1")
}

func TestWith_AddsAttrs(t *testing.T) {
	log, buf := newBufLogger(slog.LevelInfo)

	child := log.With("component", "sync")
	require.NotNil(t, child)
	child.Info(context.Background(), "hello")

	assert.Contains(t, buf.String(), "component=sync")
}
