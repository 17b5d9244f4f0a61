package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestConfigStore_UpdateRunsListeners(t *testing.T) {
	cs := NewConfigStore(nil)
	_, level := NewLogger(cs.Get().Log)

	var seen []string
	cs.OnReload(func(old, cur *Config) {
		seen = append(seen, old.Log.Level+"->"+cur.Log.Level)
		level.SetLevel(ParseLevel(cur.Log.Level))
	})

	next := DefaultConfig()
	next.Log.Level = "debug"
	require.NoError(t, cs.Update(next))

	assert.Equal(t, []string{"info->debug"}, seen)
	assert.Equal(t, zapcore.DebugLevel, level.Level())
	assert.Equal(t, "debug", cs.GetSnapshot()["log.level"])
}

func TestConfigStore_InvalidUpdateIgnored(t *testing.T) {
	cs := NewConfigStore(DefaultConfig())
	called := false
	cs.OnReload(func(_, _ *Config) { called = true })

	bad := DefaultConfig()
	bad.Console.Chunk = 0
	require.Error(t, cs.Update(bad))
	assert.False(t, called)
	assert.Equal(t, 512, cs.Get().Console.Chunk)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("anything"))
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, level := NewLogger(LogConfig{Level: "warn", Format: format})
		require.NotNil(t, logger)
		assert.Equal(t, zapcore.WarnLevel, level.Level())
		assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	}
}

func TestNewLogger_FallbackOnBadPath(t *testing.T) {
	logger, level := NewLogger(LogConfig{Level: "error", Format: "json", OutputPaths: []string{"/nonexistent-dir/x/y.log"}})
	require.NotNil(t, logger)
	assert.Equal(t, zapcore.ErrorLevel, level.Level())
}
