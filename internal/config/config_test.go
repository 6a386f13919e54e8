package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Catalog != "spotify" {
		t.Errorf("Catalog = %q, want spotify", cfg.Catalog)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "songquiz.yaml")
	data := `
port: 9090
catalog: itunes
anthropic_api_key: file-key
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	// Make sure an ambient key does not shadow the file value
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.Catalog != "itunes" {
		t.Errorf("Catalog = %q, want itunes", cfg.Catalog)
	}
	if cfg.AnthropicAPIKey != "file-key" {
		t.Errorf("AnthropicAPIKey = %q", cfg.AnthropicAPIKey)
	}
}

func TestLoadConfigFileEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "songquiz.yaml")
	if err := os.WriteFile(path, []byte("anthropic_api_key: file-key\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ANTHROPIC_API_KEY", "env-key")

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if cfg.AnthropicAPIKey != "env-key" {
		t.Errorf("AnthropicAPIKey = %q, want env override", cfg.AnthropicAPIKey)
	}
}

func TestLoadConfigFileMissingPathUsesDefaults(t *testing.T) {
	cfg, err := LoadConfigFile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want default", cfg.Port)
	}
}

func TestLoadConfigFileInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "songquiz.yaml")
	if err := os.WriteFile(path, []byte("port: [not a number\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfigFile(path); err == nil {
		t.Error("LoadConfigFile() with invalid YAML returned nil error")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Port:                8080,
		Catalog:             "spotify",
		SpotifyClientID:     "id",
		SpotifyClientSecret: "secret",
		AnthropicAPIKey:     "key",
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid spotify", mutate: func(c *Config) {}},
		{name: "valid itunes without spotify creds", mutate: func(c *Config) {
			c.Catalog = "itunes"
			c.SpotifyClientID = ""
			c.SpotifyClientSecret = ""
		}},
		{name: "openai key alone is enough", mutate: func(c *Config) {
			c.AnthropicAPIKey = ""
			c.OpenAIAPIKey = "key"
		}},
		{name: "port too low", mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
		{name: "port too high", mutate: func(c *Config) { c.Port = 70000 }, wantErr: true},
		{name: "spotify missing client id", mutate: func(c *Config) { c.SpotifyClientID = "" }, wantErr: true},
		{name: "spotify missing secret", mutate: func(c *Config) { c.SpotifyClientSecret = "" }, wantErr: true},
		{name: "unknown catalog", mutate: func(c *Config) { c.Catalog = "tidal" }, wantErr: true},
		{name: "no suggestion backend", mutate: func(c *Config) {
			c.AnthropicAPIKey = ""
			c.OpenAIAPIKey = ""
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate() = nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}
