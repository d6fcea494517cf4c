package config

import (
	"path/filepath"
	"testing"
)

func TestNewManager_LoadCreatesDefaultFile(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)

	if err := m.Load(); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if _, err := filepath.Abs(m.GetPath()); err != nil {
		t.Fatalf("GetPath returned an unusable path: %v", err)
	}

	cfg := m.Get()
	if cfg.Probe.RayCount != DefaultConfig().Probe.RayCount {
		t.Fatalf("RayCount = %v, want default %v", cfg.Probe.RayCount, DefaultConfig().Probe.RayCount)
	}
}

func TestManager_SaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)
	if err := m.Load(); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	cfg := m.Get()
	cfg.Probe.RayCount = 256
	cfg.Listener.SmoothingFactor = 0.9
	cfg.Cache.Range = 0.2
	cfg.Histogram.BinCount = 100
	if err := m.Update(cfg); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	reloaded := NewManager(dir)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("second Load returned error: %v", err)
	}

	got := reloaded.Get()
	if got.Probe.RayCount != 256 {
		t.Fatalf("RayCount = %v, want 256", got.Probe.RayCount)
	}
	if got.Listener.SmoothingFactor != 0.9 {
		t.Fatalf("SmoothingFactor = %v, want 0.9", got.Listener.SmoothingFactor)
	}
	if got.Cache.Range != 0.2 {
		t.Fatalf("Cache.Range = %v, want 0.2", got.Cache.Range)
	}
	if got.Histogram.BinCount != 100 {
		t.Fatalf("Histogram.BinCount = %v, want 100", got.Histogram.BinCount)
	}
}

func TestDefaultConfig_MatchesSubsystemDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Cache.Range <= 0 {
		t.Fatalf("Cache.Range = %v, want > 0", cfg.Cache.Range)
	}
	if cfg.Cache.SpreadAngle <= 0 {
		t.Fatalf("Cache.SpreadAngle = %v, want > 0", cfg.Cache.SpreadAngle)
	}
	if cfg.Histogram.BinCount <= 0 {
		t.Fatalf("Histogram.BinCount = %v, want > 0", cfg.Histogram.BinCount)
	}
}
