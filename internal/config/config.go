package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Fundable/internal/matching"
	"github.com/MikeSquared-Agency/Fundable/internal/recommend"
	"github.com/MikeSquared-Agency/Fundable/internal/scoring"
)

type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Database  DatabaseConfig   `yaml:"database"`
	Hermes    HermesConfig     `yaml:"hermes"`
	Redis     RedisConfig      `yaml:"redis"`
	Directory DirectoryConfig  `yaml:"lender_directory"`
	Scoring   scoring.Config   `yaml:"scoring"`
	Recommend recommend.Config `yaml:"recommendations"`
	Matching  matching.Config  `yaml:"matching"`
	Logging   LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
	// RateLimit is requests per minute per client; 0 disables limiting.
	RateLimit int `yaml:"rate_limit"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DirectoryConfig selects the lender source. With no URL the lenders table in
// Postgres is used.
type DirectoryConfig struct {
	URL        string `yaml:"url"`
	Token      string `yaml:"token"`
	CacheTTLMs int    `yaml:"cache_ttl_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Directory.CacheTTLMs) * time.Millisecond
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
			RateLimit:   120,
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Directory: DirectoryConfig{
			CacheTTLMs: 300000,
		},
		Scoring:   scoring.DefaultConfig(),
		Recommend: recommend.DefaultConfig(),
		Matching:  matching.DefaultConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load applies defaults, then the YAML file at path (if any), then FUNDABLE_*
// environment overrides. Maps in the file merge into the default tables;
// lists replace them.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// Validate checks the domain tables and the server settings.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server port must be positive"))
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort == c.Server.Port {
		errs = append(errs, fmt.Errorf("metrics port must be positive and differ from the API port"))
	}
	if c.Database.URL == "" {
		errs = append(errs, fmt.Errorf("database url required"))
	}
	if err := c.Scoring.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("scoring: %w", err))
	}
	if err := c.Recommend.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("recommendations: %w", err))
	}
	if err := c.Matching.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("matching: %w", err))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Logging.Level))
	}
	return errors.Join(errs...)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FUNDABLE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("FUNDABLE_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("FUNDABLE_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("FUNDABLE_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimit = n
		}
	}
	if v := os.Getenv("FUNDABLE_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v, ok := os.LookupEnv("FUNDABLE_HERMES_URL"); ok {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("FUNDABLE_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("FUNDABLE_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("FUNDABLE_LENDER_DIRECTORY_URL"); v != "" {
		cfg.Directory.URL = v
	}
	if v := os.Getenv("FUNDABLE_LENDER_DIRECTORY_TOKEN"); v != "" {
		cfg.Directory.Token = v
	}
	if v := os.Getenv("FUNDABLE_LENDER_CACHE_TTL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Directory.CacheTTLMs = n
		}
	}
	if v := os.Getenv("FUNDABLE_RECOMMENDATION_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Recommend.Threshold = f
		}
	}
	if v := os.Getenv("FUNDABLE_MIN_MATCH_SCORE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Matching.MinMatchScore = f
		}
	}
	if v := os.Getenv("FUNDABLE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
