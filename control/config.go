// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Typed configuration: defaults, then YAML file, then environment, then
// validators.
//
//	cfg, err := control.NewLoader().
//	    WithConfigPath("hiostream.yaml").
//	    WithEnvPrefix("HIOSTREAM").
//	    WithValidator(control.Validate).
//	    Load()

package control

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/momentics/hioload-stream/api"
)

// DefaultEnvPrefix prefixes every environment override.
const DefaultEnvPrefix = "HIOSTREAM"

// Config is the complete runtime configuration.
type Config struct {
	Log     LogConfig     `yaml:"log" env:"LOG"`
	Metrics MetricsConfig `yaml:"metrics" env:"METRICS"`
	Arena   ArenaConfig   `yaml:"arena" env:"ARENA"`
	Console ConsoleConfig `yaml:"console" env:"CONSOLE"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	// debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// json or console
	Format       string   `yaml:"format" env:"FORMAT"`
	OutputPaths  []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	EnableCaller bool     `yaml:"enable_caller" env:"ENABLE_CALLER"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" env:"ENABLED"`
	Listen    string `yaml:"listen" env:"LISTEN"`
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
}

// ArenaConfig bounds buffer memory.
type ArenaConfig struct {
	// Budget in bytes; 0 is unbounded.
	Budget int64 `yaml:"budget" env:"BUDGET"`
}

// ConsoleConfig sizes the console streams.
type ConsoleConfig struct {
	RxCapacity int           `yaml:"rx_capacity" env:"RX_CAPACITY"`
	TxCapacity int           `yaml:"tx_capacity" env:"TX_CAPACITY"`
	Chunk      int           `yaml:"chunk" env:"CHUNK"`
	Raw        bool          `yaml:"raw" env:"RAW"`
	Idle       time.Duration `yaml:"idle" env:"IDLE"`
	// CPU pins the I/O goroutine's thread; -1 leaves scheduling alone.
	CPU int `yaml:"cpu" env:"CPU"`
}

// DefaultConfig returns the built-in configuration. Logs go to stderr
// because stdout carries payload.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:       "info",
			Format:      "console",
			OutputPaths: []string{"stderr"},
		},
		Metrics: MetricsConfig{
			Listen:    "127.0.0.1:9464",
			Namespace: "hiostream",
		},
		Arena: ArenaConfig{Budget: 1 << 20},
		Console: ConsoleConfig{
			RxCapacity: 256,
			TxCapacity: 256,
			Chunk:      512,
			Idle:       50 * time.Millisecond,
			CPU:        -1,
		},
	}
}

// Validate checks cross-field constraints.
func Validate(cfg *Config) error {
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log.level", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "console" {
		return invalid("log.format", cfg.Log.Format)
	}
	for _, p := range cfg.Log.OutputPaths {
		if p == "stdout" {
			return invalid("log.output_paths", p)
		}
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		return invalid("metrics.listen", "")
	}
	if cfg.Arena.Budget < 0 {
		return invalid("arena.budget", cfg.Arena.Budget)
	}
	if cfg.Console.RxCapacity <= 0 {
		return invalid("console.rx_capacity", cfg.Console.RxCapacity)
	}
	if cfg.Console.TxCapacity <= 0 {
		return invalid("console.tx_capacity", cfg.Console.TxCapacity)
	}
	if cfg.Console.Chunk <= 0 {
		return invalid("console.chunk", cfg.Console.Chunk)
	}
	if cfg.Console.CPU < -1 {
		return invalid("console.cpu", cfg.Console.CPU)
	}
	return nil
}

// Validate checks cfg with the package validator.
func (c *Config) Validate() error { return Validate(c) }

func invalid(field string, value any) error {
	return api.NewError(api.ErrCodeInvalidArgument, "invalid configuration value").
		Wrap(api.ErrInvalidArgument).
		WithContext("field", field).
		WithContext("value", value)
}

// Loader builds a Config.
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a loader with the default env prefix and no file.
func NewLoader() *Loader {
	return &Loader{envPrefix: DefaultEnvPrefix}
}

// WithConfigPath sets the YAML file. A missing file is not an error.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix sets the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator appends a validator run after all sources are applied.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load applies defaults, file, environment and validators in that order.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}
	if err := l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix); err != nil {
		return nil, fmt.Errorf("load config env: %w", err)
	}
	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation: %w", err)
		}
	}
	return cfg, nil
}

func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		tag := t.Field(i).Tag.Get("env")
		if tag == "" || tag == "-" {
			continue
		}
		key := prefix + "_" + tag
		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, key); err != nil {
				return err
			}
			continue
		}
		value, ok := os.LookupEnv(key)
		if !ok || value == "" {
			continue
		}
		if err := setFieldValue(field, value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(i)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}
	return nil
}
