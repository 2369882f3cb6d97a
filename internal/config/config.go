package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds the feedex configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Records   RecordsConfig   `yaml:"records"`
	Feed      FeedConfig      `yaml:"feed"`
	Images    ImagesConfig    `yaml:"images"`
	Reindex   ReindexConfig   `yaml:"reindex"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: determined by env)
	Format string `yaml:"format"` // json, console (default: determined by env)
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

// DatabaseConfig holds the Redis search index connection.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// RecordsConfig holds the SQL record store connection.
type RecordsConfig struct {
	Dialect string `yaml:"dialect"` // postgres, sqlite (default: sqlite)
	DSN     string `yaml:"dsn"`
	Migrate bool   `yaml:"migrate"`
}

// FeedConfig holds feed assembly and pagination settings.
type FeedConfig struct {
	Window      int `yaml:"window"`
	PageSize    int `yaml:"page_size"`
	MaxPageSize int `yaml:"max_page_size"`
}

// ImagesConfig holds the background image worker settings.
type ImagesConfig struct {
	Enabled       bool  `yaml:"enabled"`
	MaxBytes      int64 `yaml:"max_bytes"`
	FetchTimeout  int   `yaml:"fetch_timeout_sec"`
	PollTimeout   int   `yaml:"poll_timeout_sec"`
	MaxDimensions int   `yaml:"max_dimensions"`
}

// ReindexConfig holds the background reindex schedule.
type ReindexConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
	OnStart  bool   `yaml:"on_start"`
}

// RateLimitConfig holds per-client request limits. Zero RPS disables limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// FetchTimeoutDuration returns the image download timeout.
func (c ImagesConfig) FetchTimeoutDuration() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

// PollTimeoutDuration returns how long the worker blocks on an empty queue.
func (c ImagesConfig) PollTimeoutDuration() time.Duration {
	return time.Duration(c.PollTimeout) * time.Second
}

// Load reads configuration from a YAML file by environment name (development, prod, ...).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML with ${VAR} expansion, then applies defaults and validates.
func Parse(data []byte) (Config, error) {
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

// GetEnv returns the current environment from FEEDEX_ENV, defaulting to "development".
func GetEnv() string {
	if env := os.Getenv("FEEDEX_ENV"); env != "" {
		return env
	}
	return "development"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Records.Dialect == "" {
		c.Records.Dialect = "sqlite"
	}
	if c.Feed.Window <= 0 {
		c.Feed.Window = 1000
	}
	if c.Feed.PageSize <= 0 {
		c.Feed.PageSize = 25
	}
	if c.Feed.MaxPageSize <= 0 {
		c.Feed.MaxPageSize = 100
	}
	if c.Images.MaxBytes <= 0 {
		c.Images.MaxBytes = 5 << 20
	}
	if c.Images.FetchTimeout <= 0 {
		c.Images.FetchTimeout = 10
	}
	if c.Images.PollTimeout <= 0 {
		c.Images.PollTimeout = 5
	}
	if c.Images.MaxDimensions <= 0 {
		c.Images.MaxDimensions = 4096
	}
	if c.Reindex.Schedule == "" {
		c.Reindex.Schedule = "@every 10m"
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = int(c.RateLimit.RPS) + 1
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Records.Dialect {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("records.dialect must be \"postgres\" or \"sqlite\", got %q", c.Records.Dialect)
	}
	if c.Records.DSN == "" {
		return fmt.Errorf("records.dsn is required")
	}
	if c.Feed.PageSize > c.Feed.MaxPageSize {
		return fmt.Errorf("feed.page_size (%d) exceeds feed.max_page_size (%d)", c.Feed.PageSize, c.Feed.MaxPageSize)
	}
	if c.Feed.Window < c.Feed.MaxPageSize {
		return fmt.Errorf("feed.window (%d) must be at least feed.max_page_size (%d)", c.Feed.Window, c.Feed.MaxPageSize)
	}
	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("rate_limit.rps must not be negative")
	}
	if c.Reindex.Enabled {
		if _, err := cron.ParseStandard(c.Reindex.Schedule); err != nil {
			return fmt.Errorf("reindex.schedule %q: %w", c.Reindex.Schedule, err)
		}
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
