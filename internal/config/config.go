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

// Config holds the reelrank API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Data      DataConfig      `yaml:"data"`
	TMDB      TMDBConfig      `yaml:"tmdb"`
	Cache     CacheConfig     `yaml:"cache"`
	Recommend RecommendConfig `yaml:"recommend"`
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

// DataConfig holds the data blob locations. Blobs missing from the data dir
// are downloaded from source_urls (keyed by blob file name) before loading.
type DataConfig struct {
	Dir             string            `yaml:"dir"`
	CatalogFile     string            `yaml:"catalog_file"`
	SimilarityFile  string            `yaml:"similarity_file"`
	VectorizerFile  string            `yaml:"vectorizer_file"`
	SourceURLs      map[string]string `yaml:"source_urls"`
	FetchTimeoutSec int               `yaml:"fetch_timeout_sec"`
}

// TMDBConfig holds metadata provider settings. An empty api_key disables
// enrichment entirely.
type TMDBConfig struct {
	BaseURL         string  `yaml:"base_url"`
	ImageBaseURL    string  `yaml:"image_base_url"`
	APIKey          string  `yaml:"api_key"`
	TimeoutSec      int     `yaml:"timeout_sec"`
	RequestsPerSec  float64 `yaml:"requests_per_sec"`
	Burst           int     `yaml:"burst"`
	BreakerFailures uint32  `yaml:"breaker_failures"`
	BreakerResetSec int     `yaml:"breaker_reset_sec"`
}

// CacheConfig holds metadata cache settings. Driver "none" disables caching.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // none, redis, valkey (default: none)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLHours         int      `yaml:"ttl_hours"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// RecommendConfig holds ranking and enrichment fan-out settings.
type RecommendConfig struct {
	DefaultCount      int `yaml:"default_count"`
	MaxCount          int `yaml:"max_count"`
	EnrichConcurrency int `yaml:"enrich_concurrency"`
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
		// Write timeout covers the enrichment fan-out, so it is wider
		// than the read timeout.
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if c.Data.CatalogFile == "" {
		c.Data.CatalogFile = "catalog.json"
	}
	if c.Data.SimilarityFile == "" {
		c.Data.SimilarityFile = "similarity.bin"
	}
	if c.Data.VectorizerFile == "" {
		c.Data.VectorizerFile = "vectorizer.json"
	}
	if c.Data.FetchTimeoutSec <= 0 {
		c.Data.FetchTimeoutSec = 300
	}
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = "https://api.themoviedb.org/3"
	}
	if c.TMDB.ImageBaseURL == "" {
		c.TMDB.ImageBaseURL = "https://image.tmdb.org/t/p/w342"
	}
	if c.TMDB.TimeoutSec <= 0 {
		c.TMDB.TimeoutSec = 5
	}
	if c.TMDB.RequestsPerSec <= 0 {
		c.TMDB.RequestsPerSec = 20
	}
	if c.TMDB.Burst <= 0 {
		c.TMDB.Burst = 10
	}
	if c.TMDB.BreakerFailures == 0 {
		c.TMDB.BreakerFailures = 5
	}
	if c.TMDB.BreakerResetSec <= 0 {
		c.TMDB.BreakerResetSec = 30
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "none"
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 24
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Recommend.DefaultCount <= 0 {
		c.Recommend.DefaultCount = 10
	}
	if c.Recommend.MaxCount <= 0 {
		c.Recommend.MaxCount = 50
	}
	if c.Recommend.EnrichConcurrency <= 0 {
		c.Recommend.EnrichConcurrency = 8
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Cache.Driver {
	case "none":
		// ok
	case "redis", "valkey":
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %q", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("cache.driver must be \"none\", \"redis\" or \"valkey\", got %q", c.Cache.Driver)
	}
	if c.Recommend.DefaultCount > c.Recommend.MaxCount {
		return fmt.Errorf("recommend.default_count %d exceeds max_count %d",
			c.Recommend.DefaultCount, c.Recommend.MaxCount)
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
