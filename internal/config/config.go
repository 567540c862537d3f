package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override values from the config file.
const (
	EnvAPIURL     = "TRACKSHELF_API_URL"
	EnvNgrokToken = "NGROK_AUTHTOKEN"
)

// Config represents the application configuration
type Config struct {
	API       APIConfig       `toml:"api"`
	Catalog   CatalogConfig   `toml:"catalog"`
	Favorites FavoritesConfig `toml:"favorites"`
	Server    ServerConfig    `toml:"server"`
	Logging   LoggingConfig   `toml:"logging"`
	Tunnel    TunnelConfig    `toml:"tunnel"`
}

// APIConfig describes the remote track catalog endpoint
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// CatalogConfig controls how the catalog is shaped for display
type CatalogConfig struct {
	FacetLimit int `toml:"facet_limit"` // includes the "All" facet; 0 disables the cap
}

// FavoritesConfig controls the favorites set
type FavoritesConfig struct {
	Seed    []int  `toml:"seed"`
	Persist bool   `toml:"persist"`
	Path    string `toml:"path"`
}

// ServerConfig contains settings for the local view server
type ServerConfig struct {
	Port        string `toml:"port"`
	Host        string `toml:"host"`
	EnableCORS  bool   `toml:"enable_cors"`
	ReadTimeout int    `toml:"read_timeout_seconds"`
	WatchConfig bool   `toml:"watch_config"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level          string `toml:"level"`
	Format         string `toml:"format"`
	File           string `toml:"file"`
	MaxSizeMB      int    `toml:"max_size_mb"`
	MaxBackups     int    `toml:"max_backups"`
	RequestLogging bool   `toml:"request_logging"`
}

// TunnelConfig contains ngrok tunnel configuration
type TunnelConfig struct {
	Enabled      bool   `toml:"enabled"`
	AuthToken    string `toml:"auth_token"`
	Domain       string `toml:"domain"`
	EnableAuth   bool   `toml:"enable_auth"`
	AuthProvider string `toml:"auth_provider"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:4000",
			TimeoutSeconds: 10,
		},
		Catalog: CatalogConfig{
			FacetLimit: 5,
		},
		Favorites: FavoritesConfig{
			Seed:    []int{1, 2},
			Persist: false,
			Path:    "./trackshelf.db",
		},
		Server: ServerConfig{
			Port:        "8090",
			Host:        "127.0.0.1",
			EnableCORS:  true,
			ReadTimeout: 30,
			WatchConfig: false,
		},
		Logging: LoggingConfig{
			Level:          "info",
			Format:         "text",
			File:           "",
			MaxSizeMB:      10,
			MaxBackups:     3,
			RequestLogging: true,
		},
		Tunnel: TunnelConfig{
			Enabled:      false,
			EnableAuth:   false,
			AuthProvider: "google",
		},
	}
}

// LoadConfig loads configuration from a TOML file. A missing file is created
// with defaults. Values from .env and the environment are applied last.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := cfg.SaveToFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config file: %w", err)
		}
	} else if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnv loads .env from the working directory (if present) and applies
// environment overrides.
func (c *Config) applyEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.API.BaseURL = v
	}
	if c.Tunnel.AuthToken == "" {
		c.Tunnel.AuthToken = os.Getenv(EnvNgrokToken)
	}
	return nil
}

// SaveToFile saves the configuration to a TOML file
func (c *Config) SaveToFile(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	header := `# trackshelf configuration
# api.base_url points at the remote catalog serving GET/POST /musics.
# TRACKSHELF_API_URL overrides it.

`
	if _, err := file.WriteString(header); err != nil {
		return fmt.Errorf("failed to write config header: %w", err)
	}

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config to TOML: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base url cannot be empty")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api base url must use http or https: %s", c.API.BaseURL)
	}
	if c.API.TimeoutSeconds < 1 {
		return fmt.Errorf("api timeout must be at least 1 second")
	}

	if c.Catalog.FacetLimit < 0 {
		return fmt.Errorf("catalog facet limit cannot be negative")
	}
	if c.Catalog.FacetLimit == 1 {
		return fmt.Errorf("catalog facet limit of 1 leaves only the All facet")
	}

	if c.Favorites.Persist && c.Favorites.Path == "" {
		return fmt.Errorf("favorites path cannot be empty when persistence is enabled")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	if c.Tunnel.Enabled && c.Tunnel.AuthToken == "" {
		return fmt.Errorf("tunnel enabled but no auth token found; set %s in .env or config", EnvNgrokToken)
	}

	return nil
}

// GetAddress returns the full server address
func (c *Config) GetAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}
