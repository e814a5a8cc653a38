package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/takane-go/takane/pkg/types"
)

// fileConfig is the YAML shape of the optional --config file. Only the
// library's runtime knobs are configurable here; strict-check callbacks
// are code, not configuration, and stay library-only.
type fileConfig struct {
	ParallelReads  *bool `yaml:"parallel_reads"`
	HDF5BufferSize int   `yaml:"hdf5_buffer_size"`
}

var baseOptions = types.DefaultOptions()

func loadConfig(path string) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %q: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return fmt.Errorf("parse config %q: %w", path, err)
	}
	if cfg.ParallelReads != nil {
		baseOptions.ParallelReads = *cfg.ParallelReads
	}
	if cfg.HDF5BufferSize > 0 {
		baseOptions.HDF5BufferSize = cfg.HDF5BufferSize
	}
	return nil
}
