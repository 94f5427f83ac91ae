// Package config holds the processing configuration for sound velocity
// correction runs. Fields are pointers so a partial JSON file only
// overrides what it names; the Get* accessors supply defaults for the rest.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ProcessConfig represents a correction run configuration.
type ProcessConfig struct {
	// ChunkSize is the number of pings dispatched to a worker at a time.
	ChunkSize *int `json:"chunk_size,omitempty"`
	// Workers sizes the chunk worker pool; 0 means one per CPU.
	Workers *int `json:"workers,omitempty"`
	// MaxLayerGapMeters is the widest cast layer spacing tolerated before
	// gap interpolation.
	MaxLayerGapMeters *float64 `json:"max_layer_gap_meters,omitempty"`
	// WaterlineOffsetMeters is the transducer-to-waterline offset, positive down.
	WaterlineOffsetMeters *float64 `json:"waterline_offset_meters,omitempty"`
	// Lever arm from the vessel reference point to the transducer, meters.
	LeverAlongMeters  *float64 `json:"lever_along_meters,omitempty"`
	LeverAcrossMeters *float64 `json:"lever_across_meters,omitempty"`
	LeverDownMeters   *float64 `json:"lever_down_meters,omitempty"`
	// TxReversed and RxReversed mark arrays installed 180 degrees off in yaw.
	TxReversed *bool `json:"tx_reversed,omitempty"`
	RxReversed *bool `json:"rx_reversed,omitempty"`
}

// Empty returns a ProcessConfig with all fields unset.
func Empty() *ProcessConfig {
	return &ProcessConfig{}
}

// Load reads a ProcessConfig from a JSON file. Fields omitted from the file
// fall back to defaults through the Get* accessors, so partial configs are
// safe.
func Load(path string) (*ProcessConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that set fields carry usable values.
func (c *ProcessConfig) Validate() error {
	if c.ChunkSize != nil && *c.ChunkSize < 1 {
		return fmt.Errorf("chunk_size must be positive, got %d", *c.ChunkSize)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	if c.MaxLayerGapMeters != nil && *c.MaxLayerGapMeters <= 0 {
		return fmt.Errorf("max_layer_gap_meters must be positive, got %f", *c.MaxLayerGapMeters)
	}
	return nil
}

// GetChunkSize returns the chunk_size value or the default.
func (c *ProcessConfig) GetChunkSize() int {
	if c.ChunkSize == nil {
		return 1000 // default
	}
	return *c.ChunkSize
}

// GetWorkers returns the workers value or the default.
func (c *ProcessConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0 // default: one per CPU
	}
	return *c.Workers
}

// GetMaxLayerGapMeters returns the max_layer_gap_meters value or the default.
func (c *ProcessConfig) GetMaxLayerGapMeters() float64 {
	if c.MaxLayerGapMeters == nil {
		return 100.0 // default
	}
	return *c.MaxLayerGapMeters
}

// GetWaterlineOffsetMeters returns the waterline_offset_meters value or the default.
func (c *ProcessConfig) GetWaterlineOffsetMeters() float64 {
	if c.WaterlineOffsetMeters == nil {
		return 0.0 // default
	}
	return *c.WaterlineOffsetMeters
}

// GetLeverAlongMeters returns the lever_along_meters value or the default.
func (c *ProcessConfig) GetLeverAlongMeters() float64 {
	if c.LeverAlongMeters == nil {
		return 0.0
	}
	return *c.LeverAlongMeters
}

// GetLeverAcrossMeters returns the lever_across_meters value or the default.
func (c *ProcessConfig) GetLeverAcrossMeters() float64 {
	if c.LeverAcrossMeters == nil {
		return 0.0
	}
	return *c.LeverAcrossMeters
}

// GetLeverDownMeters returns the lever_down_meters value or the default.
func (c *ProcessConfig) GetLeverDownMeters() float64 {
	if c.LeverDownMeters == nil {
		return 0.0
	}
	return *c.LeverDownMeters
}

// GetTxReversed returns the tx_reversed value or the default.
func (c *ProcessConfig) GetTxReversed() bool {
	if c.TxReversed == nil {
		return false
	}
	return *c.TxReversed
}

// GetRxReversed returns the rx_reversed value or the default.
func (c *ProcessConfig) GetRxReversed() bool {
	if c.RxReversed == nil {
		return false
	}
	return *c.RxReversed
}
