// control/store.go
// Author: momentics <momentics@gmail.com>
//
// Thread-safe configuration store with validated replacement and reload
// listeners.

package control

import (
	"sync"
)

// ReloadFunc observes a configuration replacement.
type ReloadFunc func(old, cur *Config)

// ConfigStore holds the active configuration.
type ConfigStore struct {
	mu        sync.RWMutex
	config    *Config
	listeners []ReloadFunc
}

// NewConfigStore initializes a store with cfg, or the defaults when nil.
func NewConfigStore(cfg *Config) *ConfigStore {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &ConfigStore{config: cfg}
}

// Get returns the active configuration. Callers must not modify it.
func (cs *ConfigStore) Get() *Config {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.config
}

// GetSnapshot returns the active configuration as a flat map for probes.
func (cs *ConfigStore) GetSnapshot() map[string]any {
	cfg := cs.Get()
	return map[string]any{
		"log.level":           cfg.Log.Level,
		"log.format":          cfg.Log.Format,
		"metrics.enabled":     cfg.Metrics.Enabled,
		"metrics.listen":      cfg.Metrics.Listen,
		"arena.budget":        cfg.Arena.Budget,
		"console.rx_capacity": cfg.Console.RxCapacity,
		"console.tx_capacity": cfg.Console.TxCapacity,
		"console.chunk":       cfg.Console.Chunk,
		"console.raw":         cfg.Console.Raw,
	}
}

// Update validates cfg, makes it active and runs the reload listeners
// synchronously in registration order. An invalid cfg leaves the store
// unchanged.
func (cs *ConfigStore) Update(cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	cs.mu.Lock()
	old := cs.config
	cs.config = cfg
	listeners := append([]ReloadFunc(nil), cs.listeners...)
	cs.mu.Unlock()

	for _, fn := range listeners {
		fn(old, cfg)
	}
	return nil
}

// OnReload registers a listener hook called on config changes.
func (cs *ConfigStore) OnReload(fn ReloadFunc) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}
