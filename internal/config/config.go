// Package config handles configuration loading for the track viewer.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the viewer configuration.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Display DisplayConfig `yaml:"display"`
	Query   QueryConfig   `yaml:"query"`
	Journal JournalConfig `yaml:"journal"`
}

// DataConfig describes how the tabular and volumetric inputs are read.
type DataConfig struct {
	// SkipRows is the number of header-echo rows after the CSV header
	// (TrackMate exports carry three).
	SkipRows int `yaml:"skip_rows" validate:"gte=0"`

	// Channel is the volume channel displayed as slices.
	Channel int `yaml:"channel" validate:"gte=0"`

	// NChannels is the de-interleave stride of the multi-channel stack.
	NChannels int `yaml:"nchannels" validate:"gte=1"`

	// FieldName is the measurement shown in the neighbor table and the
	// trend plot (e.g. RADIUS). Validated against the loaded columns.
	FieldName string `yaml:"field_name" validate:"required"`

	// MonitorField is the intensity field tracked in the trend plot
	// (e.g. MEAN_INTENSITY_CH1).
	MonitorField string `yaml:"monitor_field" validate:"required"`
}

// DisplayConfig contains rendering settings.
type DisplayConfig struct {
	Colormap    string  `yaml:"colormap"`
	MaxVelocity float64 `yaml:"max_velocity" validate:"gt=0"`
	LabelSize   float64 `yaml:"label_size" validate:"gt=0"`
	LabelColor  string  `yaml:"label_color"`

	// YMin/YMax fix the trend plot y-range; nil means automatic.
	YMin *float64 `yaml:"y_min"`
	YMax *float64 `yaml:"y_max"`

	// Zoom and center give the initial camera pose over the slice.
	// Zero values mean fit-to-window.
	Zoom    float64 `yaml:"zoom" validate:"gte=0"`
	CenterX float64 `yaml:"center_x"`
	CenterY float64 `yaml:"center_y"`
}

// QueryConfig bounds the neighbor search.
type QueryConfig struct {
	// Neighbors is the maximum number of results of a nearest-neighbor
	// query (the k bound).
	Neighbors int `yaml:"neighbors" validate:"gte=1"`

	// RegionSamples is the number of points the freehand boundary is
	// resampled to before the containment scan.
	RegionSamples int `yaml:"region_samples" validate:"gte=8"`
}

// JournalConfig locates the edit journal database.
type JournalConfig struct {
	// Path of the SQLite journal; empty disables journaling.
	Path string `yaml:"path"`
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults; a malformed or invalid file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the default configuration, matching the conventions of
// the microscopy exports this viewer was built around.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			SkipRows:     3,
			Channel:      2,
			NChannels:    3,
			FieldName:    "RADIUS",
			MonitorField: "MEAN_INTENSITY_CH1",
		},
		Display: DisplayConfig{
			Colormap:    "greys_r",
			MaxVelocity: 10,
			LabelSize:   6,
			LabelColor:  "white",
		},
		Query: QueryConfig{
			Neighbors:     10,
			RegionSamples: 128,
		},
	}
}

// Validate checks field constraints and cross-field consistency.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}
	if c.Data.Channel >= c.Data.NChannels {
		return fmt.Errorf("channel %d out of range for %d channels",
			c.Data.Channel, c.Data.NChannels)
	}
	if c.Display.YMin != nil && c.Display.YMax != nil && *c.Display.YMin >= *c.Display.YMax {
		return fmt.Errorf("y_min %g must be below y_max %g",
			*c.Display.YMin, *c.Display.YMax)
	}
	return nil
}
