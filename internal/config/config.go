// Package config loads the placedex API configuration from YAML files with
// environment-variable expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the placedex API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Cache     CacheConfig     `yaml:"cache"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Overpass  OverpassConfig  `yaml:"overpass"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CacheConfig holds tile cache store settings (Redis).
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// PostgresConfig holds the relational store settings.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// OverpassConfig holds third-party POI service settings.
type OverpassConfig struct {
	BaseURL         string  `yaml:"base_url"`
	TimeoutSec      int     `yaml:"timeout_sec"`
	MaxRadiusMeters float64 `yaml:"max_radius_meters"`
	MaxElements     int     `yaml:"max_elements"`
}

// DiscoveryConfig holds query clamps and cache tuning.
type DiscoveryConfig struct {
	MinRadiusMeters   float64 `yaml:"min_radius_meters"`
	MaxRadiusMeters   float64 `yaml:"max_radius_meters"`
	MaxLimit          int     `yaml:"max_limit"`
	CacheTTLSec       int     `yaml:"cache_ttl_sec"`
	TileMaxEntries    int     `yaml:"tile_max_entries"`
	CacheMaxItems     int     `yaml:"cache_max_items"`
	LookaheadDays     int     `yaml:"schedule_lookahead_days"`
	DisableOverpass   bool    `yaml:"disable_overpass"`
	DisableVenueTable bool    `yaml:"disable_venue_table"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 15
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Overpass.BaseURL == "" {
		c.Overpass.BaseURL = "https://overpass-api.de/api/interpreter"
	}
	if c.Overpass.TimeoutSec <= 0 {
		c.Overpass.TimeoutSec = 10
	}
	if c.Overpass.MaxRadiusMeters <= 0 {
		c.Overpass.MaxRadiusMeters = 5000
	}
	if c.Overpass.MaxElements <= 0 {
		c.Overpass.MaxElements = 100
	}
	if c.Discovery.MinRadiusMeters <= 0 {
		c.Discovery.MinRadiusMeters = 100
	}
	if c.Discovery.MaxRadiusMeters <= 0 {
		c.Discovery.MaxRadiusMeters = 50_000
	}
	if c.Discovery.MaxLimit <= 0 {
		c.Discovery.MaxLimit = 50
	}
	if c.Discovery.CacheTTLSec <= 0 {
		c.Discovery.CacheTTLSec = 600
	}
	if c.Discovery.TileMaxEntries <= 0 {
		c.Discovery.TileMaxEntries = 16
	}
	if c.Discovery.CacheMaxItems <= 0 {
		c.Discovery.CacheMaxItems = 50
	}
	if c.Discovery.LookaheadDays <= 0 {
		c.Discovery.LookaheadDays = 45
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required")
	}
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required")
	}
	if c.Discovery.MinRadiusMeters > c.Discovery.MaxRadiusMeters {
		return fmt.Errorf(
			"discovery.min_radius_meters (%v) must not exceed discovery.max_radius_meters (%v)",
			c.Discovery.MinRadiusMeters, c.Discovery.MaxRadiusMeters,
		)
	}
	// A limit above the cache item cap would make hits serve fewer items than
	// the miss that wrote them.
	if c.Discovery.CacheMaxItems > 0 && c.Discovery.MaxLimit > c.Discovery.CacheMaxItems {
		return fmt.Errorf(
			"discovery.max_limit (%d) must not exceed discovery.cache_max_items (%d)",
			c.Discovery.MaxLimit, c.Discovery.CacheMaxItems,
		)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
