package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/stmtconv/internal/profile"
)

// FileName is the workspace configuration file.
const FileName = "stmtconv.yaml"

// Config represents the top-level stmtconv.yaml configuration.
type Config struct {
	Bank      string               `yaml:"bank,omitempty"`
	CodesFile string               `yaml:"codes_file,omitempty"`
	Output    OutputConfig         `yaml:"output"`
	Workers   int                  `yaml:"workers"`
	LogLevel  string               `yaml:"log_level"`
	Git       GitConfig            `yaml:"git"`
	Profiles  []profile.Definition `yaml:"profiles,omitempty"`
}

// OutputConfig controls where and how tables are written.
type OutputConfig struct {
	Format string `yaml:"format"` // xlsx or csv
	Dir    string `yaml:"dir"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a stmtconv.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default(bank string) *Config {
	return &Config{
		Bank: bank,
		Output: OutputConfig{
			Format: "xlsx",
			Dir:    "output",
		},
		Workers:  1,
		LogLevel: "info",
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "stmtconv",
			AuthorEmail: "stmtconv@localhost",
		},
	}
}

// Registry returns the built-in profiles plus those defined in the config.
func (c *Config) Registry() (*profile.Registry, error) {
	reg := profile.DefaultRegistry()
	if err := reg.AddDefinitions(c.Profiles); err != nil {
		return nil, fmt.Errorf("config profiles: %w", err)
	}
	return reg, nil
}
