// Package config manages the server configuration stored in config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the configuration file within the data directory.
const FileName = "config.yaml"

// Config stores all server-wide configuration.
// Loaded from config.yaml, created with defaults if missing.
type Config struct {
	// Tables names the table files within the data directory.
	Tables Tables `yaml:"tables"`

	// Limits defines request limits.
	Limits Limits `yaml:"limits"`

	// History configures versioning of the table files.
	History History `yaml:"history"`
}

// Tables names the table files.
type Tables struct {
	Users    string `yaml:"users"`
	Posts    string `yaml:"posts"`
	Comments string `yaml:"comments"`
}

// Validate checks that every file name is a plain, distinct file name.
func (t *Tables) Validate() error {
	seen := map[string]string{}
	for _, f := range []struct{ key, name string }{
		{"users", t.Users},
		{"posts", t.Posts},
		{"comments", t.Comments},
	} {
		if f.name == "" {
			return fmt.Errorf("%s is required", f.key)
		}
		if filepath.Base(f.name) != f.name || f.name == "." || f.name == ".." {
			return fmt.Errorf("%s must be a file name, got %q", f.key, f.name)
		}
		if f.name == FileName {
			return fmt.Errorf("%s must not be %s", f.key, FileName)
		}
		if other, ok := seen[f.name]; ok {
			return fmt.Errorf("%s and %s use the same file %q", other, f.key, f.name)
		}
		seen[f.name] = f.key
	}
	return nil
}

// Limits defines request limits.
type Limits struct {
	// WriteRatePerMin limits mutating requests per client IP.
	// 0 means unlimited.
	WriteRatePerMin int `yaml:"write_rate_per_min"`

	// WriteBurst is the number of mutating requests allowed at once.
	// Defaults to WriteRatePerMin when 0.
	WriteBurst int `yaml:"write_burst"`

	// MaxRequestBodyBytes limits the size of any single HTTP request body.
	// 0 means unlimited.
	MaxRequestBodyBytes int64 `yaml:"max_request_body_bytes"`
}

// Validate checks that limit values are non-negative.
func (l *Limits) Validate() error {
	if l.WriteRatePerMin < 0 {
		return errors.New("write_rate_per_min must be non-negative")
	}
	if l.WriteBurst < 0 {
		return errors.New("write_burst must be non-negative")
	}
	if l.MaxRequestBodyBytes < 0 {
		return errors.New("max_request_body_bytes must be non-negative")
	}
	return nil
}

// History configures versioning of the table files in a git repository.
type History struct {
	Enabled     bool   `yaml:"enabled"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Validate checks that an author is set when history is enabled.
func (h *History) Validate() error {
	if !h.Enabled {
		return nil
	}
	if h.AuthorName == "" {
		return errors.New("author_name is required when history is enabled")
	}
	if h.AuthorEmail == "" {
		return errors.New("author_email is required when history is enabled")
	}
	return nil
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Tables: Tables{
			Users:    "users.json",
			Posts:    "posts.json",
			Comments: "comments.json",
		},
		Limits: Limits{
			WriteRatePerMin:     60,
			WriteBurst:          10,
			MaxRequestBodyBytes: 1024 * 1024, // 1 MiB
		},
		History: History{
			Enabled:     true,
			AuthorName:  "blogdb",
			AuthorEmail: "blogdb@localhost",
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Tables.Validate(); err != nil {
		return fmt.Errorf("tables: %w", err)
	}
	if err := c.Limits.Validate(); err != nil {
		return fmt.Errorf("limits: %w", err)
	}
	if err := c.History.Validate(); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	return nil
}

// Load loads configuration from dataDir/config.yaml.
// Creates the file with defaults if it doesn't exist. Keys missing from an
// existing file keep their default values.
func Load(dataDir string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filepath.Join(dataDir, FileName)) //nolint:gosec // G304: path is constructed from dataDir, not user input
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
		}
		if err := cfg.Save(dataDir); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", FileName, err)
	}
	return &cfg, nil
}

// Save saves configuration to dataDir/config.yaml.
func (c *Config) Save(dataDir string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for data directories
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, FileName), data, 0o644); err != nil { //nolint:gosec // G306: no secrets in config.yaml
		return fmt.Errorf("failed to write %s: %w", FileName, err)
	}
	return nil
}
