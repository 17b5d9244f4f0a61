package control

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-stream/api"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"stderr"}, cfg.Log.OutputPaths)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoader_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hiostream.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
  format: json
arena:
  budget: 4096
console:
  rx_capacity: 32
  idle: 10ms
`), 0o600))

	t.Setenv("HIOSTREAM_CONSOLE_RX_CAPACITY", "64")
	t.Setenv("HIOSTREAM_METRICS_ENABLED", "true")
	t.Setenv("HIOSTREAM_LOG_OUTPUT_PATHS", "stderr, /tmp/hiostream.log")

	cfg, err := NewLoader().WithConfigPath(path).WithValidator(Validate).Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, int64(4096), cfg.Arena.Budget)
	assert.Equal(t, 64, cfg.Console.RxCapacity, "env wins over file")
	assert.Equal(t, 256, cfg.Console.TxCapacity, "default kept")
	assert.Equal(t, 10*time.Millisecond, cfg.Console.Idle)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, []string{"stderr", "/tmp/hiostream.log"}, cfg.Log.OutputPaths)
}

func TestLoader_CustomPrefix(t *testing.T) {
	t.Setenv("STREAMCAT_CONSOLE_CHUNK", "8")
	cfg, err := NewLoader().WithEnvPrefix("STREAMCAT").Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Console.Chunk)
}

func TestLoader_BadEnvValue(t *testing.T) {
	t.Setenv("HIOSTREAM_CONSOLE_IDLE", "soon")
	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HIOSTREAM_CONSOLE_IDLE")
}

func TestLoader_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log: [unclosed"), 0o600))
	_, err := NewLoader().WithConfigPath(path).Load()
	require.Error(t, err)
}

func TestValidate_Rejects(t *testing.T) {
	cases := map[string]func(*Config){
		"level":       func(c *Config) { c.Log.Level = "trace" },
		"format":      func(c *Config) { c.Log.Format = "xml" },
		"stdout":      func(c *Config) { c.Log.OutputPaths = []string{"stdout"} },
		"listen":      func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Listen = "" },
		"budget":      func(c *Config) { c.Arena.Budget = -1 },
		"rx_capacity": func(c *Config) { c.Console.RxCapacity = 0 },
		"tx_capacity": func(c *Config) { c.Console.TxCapacity = -4 },
		"chunk":       func(c *Config) { c.Console.Chunk = 0 },
		"cpu":         func(c *Config) { c.Console.CPU = -2 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, api.ErrInvalidArgument)
			assert.Equal(t, api.ErrCodeInvalidArgument, api.CodeOf(err))
		})
	}
}
