package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Solver    SolverConfig    `yaml:"solver"`
	Output    OutputConfig    `yaml:"output"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// SolverConfig holds default search parameters
type SolverConfig struct {
	Algorithm string `yaml:"algorithm"` // one, alltheway, dynamicLookahead, dtrts, dydtrts
	Expansion string `yaml:"expansion"` // astar, fhat
	Lookahead uint   `yaml:"lookahead"` // expansions per decision, >= 2
}

// OutputConfig holds output settings
type OutputConfig struct {
	Directory       string `yaml:"directory"`
	PreserveHistory bool   `yaml:"preserve_history"`
}

// TelemetryConfig holds metric export settings
type TelemetryConfig struct {
	Enabled        bool   `yaml:"enabled"`
	PushgatewayURL string `yaml:"pushgateway_url"`
	InfluxURL      string `yaml:"influx_url"`
	InfluxOrg      string `yaml:"influx_org"`
	InfluxBucket   string `yaml:"influx_bucket"`
	InfluxToken    string `yaml:"influx_token"` // supports ${ENV_VAR} interpolation
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Solver: SolverConfig{
			Algorithm: "dtrts",
			Expansion: "astar",
			Lookahead: 100,
		},
		Output: OutputConfig{
			Directory:       "./results",
			PreserveHistory: true,
		},
		Telemetry: TelemetryConfig{
			Enabled:        false,
			PushgatewayURL: "http://localhost:9091",
			InfluxURL:      "http://localhost:8086",
			InfluxOrg:      "udr",
			InfluxBucket:   "rtsearch",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if file doesn't exist
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the config
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ExampleConfig returns a commented example config
func ExampleConfig() string {
	return `# rtsearch configuration file

solver:
  # Decision algorithm: one, alltheway, dynamicLookahead, dtrts, dydtrts
  algorithm: dtrts
  # Expansion order: astar (sort by f) or fhat (sort by corrected f)
  expansion: astar
  # Expansion budget per decision, must be at least 2
  lookahead: 100

output:
  directory: ./results
  preserve_history: true

telemetry:
  enabled: false
  pushgateway_url: http://localhost:9091
  influx_url: http://localhost:8086
  influx_org: udr
  influx_bucket: rtsearch
  # Supports environment interpolation: ${INFLUX_TOKEN}
  influx_token: ""
`
}
