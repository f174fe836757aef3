package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":      zerolog.InfoLevel,
		"debug": zerolog.DebugLevel,
		"WARN":  zerolog.WarnLevel,
		"off":   zerolog.Disabled,
		"trace": zerolog.TraceLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func keepGlobalLevel(t *testing.T) {
	t.Helper()
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })
}

func TestNewJSONToWriter(t *testing.T) {
	keepGlobalLevel(t)
	var buf bytes.Buffer
	l, c, err := New(Options{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	defer c.Close()

	l.Info().Msg("hidden")
	l.Warn().Str("model", "m").Msg("shown")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"model":"m"`)
	assert.Contains(t, out, `"time"`)
}

func TestNewConsole(t *testing.T) {
	keepGlobalLevel(t)
	var buf bytes.Buffer
	l, _, err := New(Options{}, &buf)
	require.NoError(t, err)
	l.Info().Msg("hello")
	assert.True(t, strings.Contains(buf.String(), "hello"))
	assert.False(t, strings.HasPrefix(buf.String(), "{"))
}

func TestNewFileRotates(t *testing.T) {
	keepGlobalLevel(t)
	p := filepath.Join(t.TempDir(), "modelcore.log")
	l, c, err := New(Options{Format: "json", File: p}, nil)
	require.NoError(t, err)
	l.Info().Msg("to file")
	require.NoError(t, c.Close())

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), "to file")
}

func TestNewRejectsBadOptions(t *testing.T) {
	_, _, err := New(Options{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
	_, _, err = New(Options{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestApplyLevel(t *testing.T) {
	keepGlobalLevel(t)
	require.NoError(t, ApplyLevel("error"))
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())
	assert.Error(t, ApplyLevel("nope"))
}

func TestApplyLevelLowersBelowStartupLevel(t *testing.T) {
	keepGlobalLevel(t)
	var buf bytes.Buffer
	l, _, err := New(Options{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)

	l.Debug().Msg("before")
	assert.NotContains(t, buf.String(), "before")

	require.NoError(t, ApplyLevel("debug"))
	l.Debug().Msg("after")
	assert.Contains(t, buf.String(), "after")

	require.NoError(t, ApplyLevel("warn"))
	l.Info().Msg("quiet")
	assert.NotContains(t, buf.String(), "quiet")
}
