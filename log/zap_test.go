package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGetFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithCore(core)

	ctx := AddToContext(context.Background(), l)
	GetFromContext(ctx).Named("ctx").Info("hello", String("k", "v"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "ctx", entry.LoggerName)
	assert.Equal(t, "v", entry.ContextMap()["k"])

	assert.Same(t, Default(), GetFromContext(context.Background()))
}

func TestWithFilter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	filter, err := WithFilter("*:* -debug:noisy")
	require.NoError(t, err)
	l := NewWithCore(core, filter)

	l.Named("noisy").Debug("dropped")
	l.Named("noisy").Info("kept")
	l.Named("other").Debug("kept too")

	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, 0, logs.FilterMessage("dropped").Len())
}

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WarnLevel)
	l.Info("not written")
	l.Warn("written", Int("n", 3))

	assert.NotContains(t, buf.String(), "not written")
	assert.Contains(t, buf.String(), `"msg":"written"`)
	assert.Contains(t, buf.String(), `"n":3`)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DebugLevel, lvl)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}
