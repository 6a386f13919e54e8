package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config contains the program configuration
type Config struct {
	Port    int  `yaml:"port"`
	Verbose bool `yaml:"verbose"`

	// Catalog backend: "spotify" (auth'd, embed-page preview fallback) or
	// "itunes" (auth-free, inline previews).
	Catalog             string `yaml:"catalog"`
	SpotifyClientID     string `yaml:"spotify_client_id"`
	SpotifyClientSecret string `yaml:"spotify_client_secret"`

	// Suggestion backend credentials. Anthropic is preferred when both
	// keys are set.
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	OpenAIModel     string `yaml:"openai_model"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Port:    8080,
		Catalog: "spotify",
	}
}

// LoadConfigFile loads configuration from a YAML file, then applies
// environment overrides for credentials. If path is empty, searches
// standard locations. Returns defaults if no file found.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	return cfg, nil
}

// applyEnv overrides credentials from the environment, loading a .env
// file first when one is present in the working directory.
func (c *Config) applyEnv() {
	godotenv.Load()

	setIfPresent := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setIfPresent(&c.SpotifyClientID, "SPOTIFY_CLIENT_ID")
	setIfPresent(&c.SpotifyClientSecret, "SPOTIFY_CLIENT_SECRET")
	setIfPresent(&c.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setIfPresent(&c.OpenAIAPIKey, "OPENAI_API_KEY")
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./songquiz.yaml",
		"./songquiz.yml",
		filepath.Join(home, ".config", "songquiz", "config.yaml"),
		filepath.Join(home, ".config", "songquiz", "config.yml"),
		filepath.Join(home, ".songquiz.yaml"),
		filepath.Join(home, ".songquiz.yml"),
	}

	for _, path := range locations {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// GetDefaultLogPath returns the default log directory path
func GetDefaultLogPath() string {
	return filepath.Join(homeDir(), ".local", "share", "songquiz", "logs")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	switch strings.ToLower(c.Catalog) {
	case "spotify":
		if c.SpotifyClientID == "" {
			return fmt.Errorf("spotify_client_id is required when catalog is spotify (or set SPOTIFY_CLIENT_ID)")
		}
		if c.SpotifyClientSecret == "" {
			return fmt.Errorf("spotify_client_secret is required when catalog is spotify (or set SPOTIFY_CLIENT_SECRET)")
		}
	case "itunes":
		// No credentials needed
	default:
		return fmt.Errorf("unknown catalog backend %q, valid backends: spotify, itunes", c.Catalog)
	}

	if c.AnthropicAPIKey == "" && c.OpenAIAPIKey == "" {
		return fmt.Errorf("a suggestion backend key is required: set anthropic_api_key or openai_api_key (or ANTHROPIC_API_KEY / OPENAI_API_KEY)")
	}

	return nil
}
