package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/OfficiallySp/Audiology/internal/metadata"
)

// Config contains the program configuration
type Config struct {
	APIToken      string   `yaml:"api_token"`
	Providers     []string `yaml:"providers"`
	Review        bool     `yaml:"review"`
	Merge         string   `yaml:"merge"`
	Rename        bool     `yaml:"rename"`
	SampleSeconds int      `yaml:"sample_seconds"`
	DryRun        bool     `yaml:"dry_run"`
	Verbose       bool     `yaml:"verbose"`
	LogFile       string   `yaml:"log_file"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Providers:     []string{"apple_music", "spotify"},
		Merge:         "replace",
		Rename:        true,
		SampleSeconds: 10,
	}
}

// LoadConfigFile loads configuration from a YAML file.
// If path is empty, searches standard locations. Returns defaults if no file found.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.LogFile = ExpandHome(cfg.LogFile)

	return cfg, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./audiology.yaml",
		"./audiology.yml",
		filepath.Join(home, ".config", "audiology", "config.yaml"),
		filepath.Join(home, ".config", "audiology", "config.yml"),
		filepath.Join(home, ".audiology.yaml"),
		filepath.Join(home, ".audiology.yml"),
	}

	for _, path := range locations {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// SaveConfigFile saves the current configuration to a YAML file
func SaveConfigFile(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// The file holds the API token, so keep it private.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default config file path
func GetDefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "audiology", "config.yaml")
}

// GetDefaultLogPath returns the default log directory path
func GetDefaultLogPath() string {
	return filepath.Join(homeDir(), ".local", "share", "audiology", "logs")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

// validProviders are the catalogs the recognition service can cross-
// reference via its "return" form field.
var validProviders = map[string]bool{
	"apple_music": true,
	"spotify":     true,
	"deezer":      true,
	"napster":     true,
	"musicbrainz": true,
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Dry runs still query the recognition service, so the token is
	// required either way.
	if c.APIToken == "" {
		return fmt.Errorf("api_token is required (set it in the config file or via AUDD_API_TOKEN)")
	}

	if _, err := metadata.ParseMergeMode(c.Merge); err != nil {
		return err
	}

	if c.SampleSeconds < 1 || c.SampleSeconds > 30 {
		return fmt.Errorf("sample_seconds must be between 1 and 30, got %d", c.SampleSeconds)
	}

	if len(c.Providers) == 0 {
		return fmt.Errorf("providers cannot be empty")
	}
	for _, p := range c.Providers {
		if !validProviders[p] {
			return fmt.Errorf("unknown provider %q, valid providers: apple_music, spotify, deezer, napster, musicbrainz", p)
		}
	}

	return nil
}
