// Package config provides configuration loading and management for neqrscramble.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"neqrscramble/pkg/qerr"
	"neqrscramble/pkg/qindex"
)

// Patterns lists the synthetic image patterns the CLI can generate
var Patterns = []string{"checker", "gradient", "diagonal", "ramp"}

// Config represents the application configuration loaded from YAML
type Config struct {
	// Image parameters
	Image struct {
		// XDim is the image width in pixels, a power of two
		XDim int `yaml:"xDim"`

		// YDim is the image height in pixels, a power of two
		YDim int `yaml:"yDim"`

		// PixelDepth is the number of bits per pixel intensity
		PixelDepth int `yaml:"pixelDepth"`

		// Pattern selects the synthetic test image
		Pattern string `yaml:"pattern"`
	} `yaml:"image"`

	// Decode parameters
	Decode struct {
		// Shots is the number of simulated measurements
		Shots int `yaml:"shots"`

		// Seed seeds the measurement random source
		Seed uint64 `yaml:"seed"`
	} `yaml:"decode"`

	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores to use for parallel processing
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// Scramble applies the baker map between encoding and decoding
		Scramble bool `yaml:"scramble"`

		// Dir is where stage images are written; empty disables saving
		Dir string `yaml:"dir"`

		// Format is the stage image format, "png" or "bmp"
		Format string `yaml:"format"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Image.XDim = 4
	cfg.Image.YDim = 4
	cfg.Image.PixelDepth = 2
	cfg.Image.Pattern = "gradient"

	cfg.Decode.Shots = 1000
	cfg.Decode.Seed = 1

	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default

	cfg.Output.Scramble = true
	cfg.Output.Format = "png"
	cfg.Output.Verbose = false

	return cfg
}

// Validate checks the configuration before any computation starts
func (c *Config) Validate() error {
	if _, err := qindex.NewLayout(c.Image.PixelDepth, c.Image.XDim, c.Image.YDim); err != nil {
		return fmt.Errorf("image: %w", err)
	}
	if c.Decode.Shots < 0 {
		return fmt.Errorf("decode shots %d is negative: %w", c.Decode.Shots, qerr.ErrOutOfRange)
	}
	if c.Processing.NumCores < 0 {
		return fmt.Errorf("numCores %d is negative: %w", c.Processing.NumCores, qerr.ErrOutOfRange)
	}

	known := false
	for _, p := range Patterns {
		if p == c.Image.Pattern {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown pattern %q, expected one of %v", c.Image.Pattern, Patterns)
	}

	switch c.Output.Format {
	case "png", "bmp":
	default:
		return fmt.Errorf("unknown output format %q, expected png or bmp", c.Output.Format)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
