package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical simulation defaults file.
const DefaultConfigPath = "config/sim.defaults.json"

// SimConfig is the root configuration for simulation tuning. Fields are
// pointers so a partial JSON file only overrides what it names; the Get*
// accessors supply defaults for everything else.
type SimConfig struct {
	// GridMargin sizes the lattice relative to the walk length: side
	// length = grid_margin*N + 3. Must leave the boundary unreachable.
	GridMargin *int `json:"grid_margin,omitempty"`

	// Trials is the default per-ensemble trial count.
	Trials *int `json:"trials,omitempty"`

	// Workers bounds ensemble parallelism; 0 means one worker per CPU.
	Workers *int `json:"workers,omitempty"`

	// BaseSeed seeds the per-trial generators.
	BaseSeed *int64 `json:"base_seed,omitempty"`

	// SweepRange is the default walk-length range for scaling sweeps,
	// in "min:max:step" form.
	SweepRange *string `json:"sweep_range,omitempty"`
}

// EmptySimConfig returns a SimConfig with all fields unset.
func EmptySimConfig() *SimConfig {
	return &SimConfig{}
}

// LoadDefaultSimConfig loads DefaultConfigPath when the file exists and
// returns an empty config when it does not, so running outside a checkout
// still works.
func LoadDefaultSimConfig() (*SimConfig, error) {
	if _, err := os.Stat(DefaultConfigPath); err != nil {
		return EmptySimConfig(), nil
	}
	return LoadSimConfig(DefaultConfigPath)
}

// LoadSimConfig loads a SimConfig from a JSON file. Fields omitted from the
// file keep their defaults, so partial configs are safe.
func LoadSimConfig(path string) (*SimConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptySimConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configured values are usable.
func (c *SimConfig) Validate() error {
	if c.GridMargin != nil && *c.GridMargin < 2 {
		// Margin 2 is the floor: side 2N+3 is the smallest lattice that
		// keeps an N-step walk off the boundary.
		return fmt.Errorf("grid_margin must be at least 2, got %d", *c.GridMargin)
	}
	if c.Trials != nil && *c.Trials < 1 {
		return fmt.Errorf("trials must be positive, got %d", *c.Trials)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	return nil
}

// GetGridMargin returns the grid_margin value or the default.
func (c *SimConfig) GetGridMargin() int {
	if c.GridMargin == nil {
		return 3
	}
	return *c.GridMargin
}

// GetTrials returns the trials value or the default.
func (c *SimConfig) GetTrials() int {
	if c.Trials == nil {
		return 1000
	}
	return *c.Trials
}

// GetWorkers returns the workers value or the default.
func (c *SimConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

// GetBaseSeed returns the base_seed value or the default.
func (c *SimConfig) GetBaseSeed() int64 {
	if c.BaseSeed == nil {
		return 1
	}
	return *c.BaseSeed
}

// GetSweepRange returns the sweep_range value or the default.
func (c *SimConfig) GetSweepRange() string {
	if c.SweepRange == nil {
		return "4:255:1"
	}
	return *c.SweepRange
}
