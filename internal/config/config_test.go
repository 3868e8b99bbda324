package config

import (
	"os"
	"path/filepath"
	"testing"
)

func loadFromString(t *testing.T, content string) *Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "viewer.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if cfg.Data.NChannels != 3 {
		t.Errorf("expected 3 default channels, got %d", cfg.Data.NChannels)
	}
	if cfg.Query.Neighbors != 10 {
		t.Errorf("expected default neighbor count 10, got %d", cfg.Query.Neighbors)
	}
	if cfg.Display.Colormap != "greys_r" {
		t.Errorf("unexpected default colormap %q", cfg.Display.Colormap)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg := loadFromString(t, `
data:
  channel: 0
  nchannels: 2
  field_name: AREA
  monitor_field: MEAN_INTENSITY_CH2
display:
  colormap: greens_r
  y_min: 90
  y_max: 130
query:
  neighbors: 5
`)

	if cfg.Data.Channel != 0 || cfg.Data.NChannels != 2 {
		t.Errorf("channel settings not applied: %+v", cfg.Data)
	}
	if cfg.Data.MonitorField != "MEAN_INTENSITY_CH2" {
		t.Errorf("unexpected monitor field %q", cfg.Data.MonitorField)
	}
	if cfg.Query.Neighbors != 5 {
		t.Errorf("neighbor count not applied: %d", cfg.Query.Neighbors)
	}
	if cfg.Display.YMin == nil || *cfg.Display.YMin != 90 {
		t.Errorf("y_min not applied: %v", cfg.Display.YMin)
	}
	// Unset fields keep their defaults.
	if cfg.Display.MaxVelocity != 10 {
		t.Errorf("max velocity default lost: %g", cfg.Display.MaxVelocity)
	}
}

func TestValidateChannelRange(t *testing.T) {
	cfg := Default()
	cfg.Data.Channel = 5
	cfg.Data.NChannels = 3
	if err := cfg.Validate(); err == nil {
		t.Error("expected channel-out-of-range error")
	}
}

func TestValidateYRange(t *testing.T) {
	cfg := Default()
	lo, hi := 10.0, 5.0
	cfg.Display.YMin = &lo
	cfg.Display.YMax = &hi
	if err := cfg.Validate(); err == nil {
		t.Error("expected inverted y-range error")
	}
}

func TestValidateNeighborBound(t *testing.T) {
	cfg := Default()
	cfg.Query.Neighbors = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected neighbor bound error")
	}
}
