package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the symgraph.yaml configuration.
type Config struct {
	Repo      string       `yaml:"repo"`
	Ignore    []string     `yaml:"ignore"`
	FrontEnds []string     `yaml:"frontends"`
	Output    OutputConfig `yaml:"output"`
	Debug     bool         `yaml:"debug"`
}

// OutputConfig controls where and how the fact graph is written.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"` // "json" (grouped by predicate) or "jsonl"
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Repo: ".",
		Ignore: []string{
			"vendor/**",
			"node_modules/**",
			".git/**",
			"**/*.test.ts",
			"**/*.test.tsx",
			"**/*.spec.ts",
			"**/*.spec.tsx",
			".symgraph/**",
		},
		FrontEnds: []string{"typescript"},
		Output: OutputConfig{
			Dir:    ".symgraph",
			Format: "json",
		},
	}
}

// Load reads a configuration file from the given path.
// Missing fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Ensure required defaults
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = ".symgraph"
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "json"
	}
	if cfg.Output.Format != "json" && cfg.Output.Format != "jsonl" {
		return nil, fmt.Errorf("config %s: unknown output format %q", path, cfg.Output.Format)
	}

	return cfg, nil
}

// IsFrontEndEnabled returns true if the named front end is enabled.
func (c *Config) IsFrontEndEnabled(name string) bool {
	for _, v := range c.FrontEnds {
		if v == name {
			return true
		}
	}
	return false
}
