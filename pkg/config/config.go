// Package config holds the run settings of the voxelizer command: voxel
// size, meshing resolution, script timeout and report format. Settings
// are read from an INI file (gcfg syntax) or a TOML file.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/gcfg.v1"
)

// Report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Duration is a time.Duration written as "250ms", "5s" and so on in
// configuration files.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type VoxelConfig struct {
	Size float64 `toml:"size"`
}

type MeshConfig struct {
	// Cells is the marching-cubes resolution along the longest axis of
	// an analytic solid.
	Cells int `toml:"cells"`
}

type EngineConfig struct {
	Timeout Duration `toml:"timeout"`
}

type OutputConfig struct {
	Format string `toml:"format"`
}

// Config is the full set of settings. Each field is one [section] of the
// file.
type Config struct {
	Voxel  VoxelConfig  `toml:"voxel"`
	Mesh   MeshConfig   `toml:"mesh"`
	Engine EngineConfig `toml:"engine"`
	Output OutputConfig `toml:"output"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Voxel:  VoxelConfig{Size: 1},
		Mesh:   MeshConfig{Cells: 200},
		Engine: EngineConfig{Timeout: Duration{5 * time.Second}},
		Output: OutputConfig{Format: FormatText},
	}
}

// Load reads the file at path over Default and validates the result.
// Files ending in .toml are TOML; anything else is read as INI.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	} else if err := gcfg.ReadFileInto(&cfg, path); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// ParseINI reads INI settings from src over Default.
func ParseINI(src string) (Config, error) {
	cfg := Default()
	if err := gcfg.ReadStringInto(&cfg, src); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseTOML reads TOML settings from src over Default.
func ParseTOML(src []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(src, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if c.Voxel.Size <= 0 || math.IsNaN(c.Voxel.Size) || math.IsInf(c.Voxel.Size, 0) {
		return fmt.Errorf("voxel size must be positive and finite, but is %g", c.Voxel.Size)
	}
	if c.Mesh.Cells <= 0 {
		return fmt.Errorf("mesh cells must be positive, but is %d", c.Mesh.Cells)
	}
	if c.Engine.Timeout.Duration <= 0 {
		return fmt.Errorf("engine timeout must be positive, but is %v", c.Engine.Timeout.Duration)
	}
	switch c.Output.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("output format must be %s, %s or %s, but is %q",
			FormatText, FormatJSON, FormatYAML, c.Output.Format)
	}
	return nil
}
