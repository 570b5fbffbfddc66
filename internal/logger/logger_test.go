package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Run("logger stored in context", func(t *testing.T) {
		expected := NewLogger(TestConfig())
		ctx := ContextWithLogger(t.Context(), expected)
		assert.Equal(t, expected, FromContext(ctx))
	})

	t.Run("falls back to default", func(t *testing.T) {
		require.NotNil(t, FromContext(t.Context()))
		assert.Equal(t, GetDefault(), FromContext(context.WithValue(t.Context(), LoggerCtxKey, "not a logger")))
	})
}

func TestLogLevel_ToCharmlogLevel(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  int
	}{
		{DebugLevel, -4},
		{InfoLevel, 0},
		{WarnLevel, 4},
		{ErrorLevel, 8},
		{DisabledLevel, 1000},
		{LogLevel("unknown"), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, int(tt.level.ToCharmlogLevel()), "level %s", tt.level)
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("json output", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: DebugLevel, Output: &buf, JSON: true})
		l.With("file", "User.swift").Info("generated", "count", 2)

		out := buf.String()
		assert.Contains(t, out, `"msg":"generated"`)
		assert.Contains(t, out, `"file":"User.swift"`)
		assert.Contains(t, out, `"count":2`)
	})

	t.Run("level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: WarnLevel, Output: &buf})
		l.Info("hidden")
		l.Debug("hidden")
		assert.Empty(t, buf.String())

		l.Warn("shown")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("disabled", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: DisabledLevel, Output: &buf})
		l.Error("nothing")
		assert.Empty(t, buf.String())
	})
}
