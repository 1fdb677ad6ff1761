// Package config loads procmap settings from .procmap.yaml and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/procmap/internal/discover"
	"github.com/phobologic/procmap/internal/summarize"
)

// FileName is the conventional config file name looked up in the working
// directory.
const FileName = ".procmap.yaml"

// Output formats.
const (
	FormatText = "text"
	FormatTOON = "toon"
	FormatJSON = "json"
)

// Config is the persisted procmap configuration.
type Config struct {
	Root             string   `yaml:"root"`
	Marker           string   `yaml:"marker"`
	Suffix           string   `yaml:"suffix"`
	Format           string   `yaml:"format"`
	Output           string   `yaml:"output,omitempty"`
	RespectGitignore bool     `yaml:"respect_gitignore"`
	MaxFileSize      int64    `yaml:"max_file_size"`
	Verbose          bool     `yaml:"verbose"`
	AI               AIConfig `yaml:"ai"`
}

// AIConfig selects the description provider.
type AIConfig struct {
	Provider          string `yaml:"provider"`
	Model             string `yaml:"model,omitempty"`
	CacheSize         int    `yaml:"cache_size"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Root:             ".",
		Marker:           discover.DefaultMarker,
		Suffix:           discover.DefaultSuffix,
		Format:           FormatText,
		AI: AIConfig{
			Provider:          summarize.ProviderGemini,
			CacheSize:         summarize.DefaultCacheSize,
			RequestsPerMinute: 30,
			TimeoutSeconds:    30,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values no run could use.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Marker) == "" {
		return errors.New("marker must not be empty")
	}
	if strings.ContainsAny(c.Marker, `/\`) {
		return fmt.Errorf("marker %q must be a single directory name", c.Marker)
	}
	if c.Suffix == "" {
		return errors.New("suffix must not be empty")
	}
	switch c.Format {
	case FormatText, FormatTOON, FormatJSON:
	default:
		return fmt.Errorf("unsupported format %q", c.Format)
	}
	if c.MaxFileSize < 0 {
		return errors.New("max_file_size must not be negative")
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Save writes the configuration to path, creating parent directories.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config missing")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// APIKey returns the key for provider from the environment.
func APIKey(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case summarize.ProviderAnthropic:
		return strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	case summarize.ProviderGemini, "":
		if k := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); k != "" {
			return k
		}
		return strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	}
	return ""
}
