// Package config handles engine configuration file management: the
// probe's ray-casting tunables, ray-cache match tolerances, listener
// reverb-derivation tunables, and the debug histogram's bin geometry.
//
// Grounded directly on the teacher's Manager: same configDir/configPath
// split, same Load-creates-defaults-if-absent behavior, same
// json.MarshalIndent-on-save. Retargeted from a flat daemon Config to
// one that embeds the sibling packages' own Config types so a single
// file on disk holds every subsystem's tunables. The ray-cache section
// is loaded and saved but not applied (see CacheConfig).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/resonantfield/auralcore/internal/histogram"
	"github.com/resonantfield/auralcore/internal/listener"
	"github.com/resonantfield/auralcore/internal/probe"
	"github.com/resonantfield/auralcore/internal/raycache"
)

// Config is the complete set of engine tunables, persisted as one JSON
// document.
type Config struct {
	// Probe holds spec §4.4's per-tick ray-casting tunables (ray
	// count, bounce/transmit caps, reflect/transmit thresholds).
	Probe probe.Config `json:"probe"`

	// Cache holds the spec §4.6 ray-cache match tolerances.
	Cache CacheConfig `json:"cache"`

	// Listener holds the spec §4.5 reverb-derivation tunables
	// (smoothing factor, user reflections/late-reverb factors).
	Listener listener.Config `json:"listener"`

	// Histogram holds the debug energy-histogram's bin geometry.
	Histogram HistogramConfig `json:"histogram"`
}

// CacheConfig mirrors raycache.Cache's two exported match tolerances,
// kept as plain fields here (rather than importing *raycache.Cache
// itself) since the cache is per-model state, not configuration.
// These values are loaded and saved only: nothing passes them to a
// model's cache, and every cache made by raycache.New uses
// raycache.DefaultCacheRange and raycache.DefaultSpreadAngle.
type CacheConfig struct {
	// Range is the origin-proximity match radius, in meters.
	Range float64 `json:"range"`

	// SpreadAngle is the direction-cone match angle, in radians.
	SpreadAngle float64 `json:"spreadAngle"`
}

// HistogramConfig holds the debug energy-histogram's bin geometry.
type HistogramConfig struct {
	// BinCount is the number of time bins.
	BinCount int `json:"binCount"`

	// Span is the total time range covered by the bins, in seconds.
	Span float64 `json:"span"`
}

// DefaultConfig returns every subsystem's own defaults, bundled.
func DefaultConfig() *Config {
	return &Config{
		Probe: probe.DefaultConfig(),
		Cache: CacheConfig{
			Range:       raycache.DefaultCacheRange,
			SpreadAngle: raycache.DefaultSpreadAngle,
		},
		Listener: listener.DefaultConfig(),
		Histogram: HistogramConfig{
			BinCount: histogram.DefaultBinCount,
			Span:     histogram.DefaultSpan,
		},
	}
}

// Manager handles loading and saving the engine configuration.
type Manager struct {
	configDir  string
	configPath string
	config     *Config
}

// NewManager creates a new configuration manager rooted at configDir.
func NewManager(configDir string) *Manager {
	return &Manager{
		configDir:  configDir,
		configPath: filepath.Join(configDir, "config.json"),
		config:     DefaultConfig(),
	}
}

// Load reads the configuration from disk, writing a fresh default file
// if none exists yet.
func (m *Manager) Load() error {
	if err := os.MkdirAll(m.configDir, 0700); err != nil {
		return fmt.Errorf("config: failed to create config directory: %w", err)
	}

	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		m.config = DefaultConfig()
		return m.Save()
	}

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return fmt.Errorf("config: failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: failed to parse config: %w", err)
	}

	m.config = cfg
	return nil
}

// Save writes the configuration to disk.
func (m *Manager) Save() error {
	if err := os.MkdirAll(m.configDir, 0700); err != nil {
		return fmt.Errorf("config: failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return fmt.Errorf("config: failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		return fmt.Errorf("config: failed to write config: %w", err)
	}

	return nil
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	return m.config
}

// GetPath returns the config file path.
func (m *Manager) GetPath() string {
	return m.configPath
}

// Update replaces the configuration and saves it.
func (m *Manager) Update(cfg *Config) error {
	m.config = cfg
	return m.Save()
}
