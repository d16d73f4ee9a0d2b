// Package config loads simulation tuning from a YAML file, falling back to
// defaults when no file is present.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the static tuning for a simulation run.
type Config struct {
	// World sizing.
	Seed     int64 `yaml:"seed" json:"seed"`
	Factions int   `yaml:"factions" json:"factions"` // population/faith/econ/tech/psyche/divine/end-game slots
	Units    int   `yaml:"units" json:"units"`       // combat/movement slots
	Cells    int   `yaml:"cells" json:"cells"`       // environment cells

	// Tick pacing.
	TickMillis int     `yaml:"tick_millis" json:"tick_millis"`
	DT         float32 `yaml:"dt" json:"dt"`

	// Engine tuning.
	TempRate         float32 `yaml:"temp_rate" json:"temp_rate"`
	FireSpreadProb   float32 `yaml:"fire_spread_prob" json:"fire_spread_prob"`
	InflationRate    float32 `yaml:"inflation_rate" json:"inflation_rate"`
	HPRegenRate      float32 `yaml:"hp_regen_rate" json:"hp_regen_rate"`
	DroughtBelow     float32 `yaml:"drought_below" json:"drought_below"`
	FloodAbove       float32 `yaml:"flood_above" json:"flood_above"`
	GridCellSize     float32 `yaml:"grid_cell_size" json:"grid_cell_size"`
	FlockRadius      float32 `yaml:"flock_radius" json:"flock_radius"`
	FlockStrength    float32 `yaml:"flock_strength" json:"flock_strength"`
	GoldenAgeCulture float32 `yaml:"golden_age_culture" json:"golden_age_culture"`

	// Infrastructure.
	DBPath  string `yaml:"db_path" json:"db_path"`
	APIPort int    `yaml:"api_port" json:"api_port"`
}

// Default returns a reasonable starting configuration.
func Default() Config {
	return Config{
		Seed:             42,
		Factions:         8,
		Units:            64,
		Cells:            256,
		TickMillis:       1000,
		DT:               1.0,
		TempRate:         0.05,
		FireSpreadProb:   0.2,
		InflationRate:    0.0001,
		HPRegenRate:      0.01,
		DroughtBelow:     0.2,
		FloodAbove:       8.0,
		GridCellSize:     10.0,
		FlockRadius:      5.0,
		FlockStrength:    0.5,
		GoldenAgeCulture: 500.0,
		DBPath:           "data/pantheon.db",
		APIPort:          8080,
	}
}

// Load reads a YAML config from path, layered over the defaults. A missing
// file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Factions < 1 {
		cfg.Factions = 1
	}
	if cfg.Units < 1 {
		cfg.Units = 1
	}
	if cfg.Cells < 1 {
		cfg.Cells = 1
	}
	if cfg.DT <= 0 {
		cfg.DT = 1.0
	}
	return cfg, nil
}
