// Package config loads service settings from defaults, a YAML or JSON file
// and the environment, in that order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Server struct {
	Port string `yaml:"port" json:"port"`
}

type Endpoints struct {
	SearchURL string `yaml:"search_url" json:"search_url"`
	QuoteURL  string `yaml:"quote_url" json:"quote_url"`
	Region    string `yaml:"region" json:"region"`
}

type Fetch struct {
	UserAgent  string `yaml:"user_agent" json:"user_agent"`
	TimeoutSec int    `yaml:"timeout_sec" json:"timeout_sec"`
	Attempts   int    `yaml:"attempts" json:"attempts"`
	// RetryDelayMs is the pause between attempts when Attempts > 1.
	RetryDelayMs int  `yaml:"retry_delay_ms" json:"retry_delay_ms"`
	Browser      bool `yaml:"browser" json:"browser"`
	BrowserPool  int  `yaml:"browser_pool" json:"browser_pool"`
}

type Extract struct {
	ParenthesesNegative bool `yaml:"parentheses_negative" json:"parentheses_negative"`
}

type Pipeline struct {
	Workers      int `yaml:"workers" json:"workers"`
	MaxCompanies int `yaml:"max_companies" json:"max_companies"`
}

type Cache struct {
	RedisAddr     string `yaml:"redis_addr" json:"redis_addr"`
	RedisPassword string `yaml:"redis_password" json:"redis_password"`
	RedisDB       int    `yaml:"redis_db" json:"redis_db"`
	// TTLSec of zero disables symbol caching.
	TTLSec int `yaml:"ttl_sec" json:"ttl_sec"`
}

type Config struct {
	Server    Server    `yaml:"server" json:"server"`
	Endpoints Endpoints `yaml:"endpoints" json:"endpoints"`
	Fetch     Fetch     `yaml:"fetch" json:"fetch"`
	Extract   Extract   `yaml:"extract" json:"extract"`
	Pipeline  Pipeline  `yaml:"pipeline" json:"pipeline"`
	Cache     Cache     `yaml:"cache" json:"cache"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8000"},
		Endpoints: Endpoints{
			SearchURL: "https://query1.finance.yahoo.com/v1/finance/search",
			QuoteURL:  "https://finance.yahoo.com/quote",
			Region:    "us",
		},
		Fetch: Fetch{
			TimeoutSec:   10,
			Attempts:     1,
			RetryDelayMs: 500,
			BrowserPool:  2,
		},
		Pipeline: Pipeline{Workers: 1, MaxCompanies: 20},
	}
}

// Load reads config from path. If path is empty it falls back to config.yaml
// in the working directory, and to defaults when that is absent too.
// Environment variables override file values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := decode(path, b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(path string, b []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return json.Unmarshal(b, cfg)
	}
	return yaml.Unmarshal(b, cfg)
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Endpoints.SearchURL == "" {
		errs = append(errs, errors.New("endpoints.search_url is required"))
	}
	if c.Endpoints.QuoteURL == "" {
		errs = append(errs, errors.New("endpoints.quote_url is required"))
	}
	if _, ok := RegionConfigs[c.Endpoints.Region]; !ok {
		errs = append(errs, fmt.Errorf("unknown region %q", c.Endpoints.Region))
	}
	if c.Fetch.TimeoutSec <= 0 {
		errs = append(errs, errors.New("fetch.timeout_sec must be positive"))
	}
	if c.Fetch.Attempts <= 0 {
		errs = append(errs, errors.New("fetch.attempts must be positive"))
	}
	if c.Fetch.Browser && c.Fetch.BrowserPool <= 0 {
		errs = append(errs, errors.New("fetch.browser_pool must be positive when fetch.browser is set"))
	}
	if c.Pipeline.Workers <= 0 {
		errs = append(errs, errors.New("pipeline.workers must be positive"))
	}
	if c.Pipeline.MaxCompanies <= 0 {
		errs = append(errs, errors.New("pipeline.max_companies must be positive"))
	}
	if c.Cache.TTLSec < 0 {
		errs = append(errs, errors.New("cache.ttl_sec must not be negative"))
	}
	return errors.Join(errs...)
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSec) * time.Second
}

func (c Config) RetryDelay() time.Duration {
	return time.Duration(c.Fetch.RetryDelayMs) * time.Millisecond
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSec) * time.Second
}

func (c Config) Region() RegionConfig {
	return RegionConfigs[c.Endpoints.Region]
}

// applyEnv overrides cfg from the environment. Unset or empty variables are
// skipped; a value that does not parse is an error naming the variable.
func applyEnv(cfg *Config) error {
	var errs []error

	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("SEARCH_URL"); v != "" {
		cfg.Endpoints.SearchURL = v
	}
	if v := os.Getenv("QUOTE_URL"); v != "" {
		cfg.Endpoints.QuoteURL = v
	}
	if v := os.Getenv("REGION"); v != "" {
		cfg.Endpoints.Region = strings.ToLower(v)
	}
	if v := os.Getenv("USER_AGENT"); v != "" {
		cfg.Fetch.UserAgent = v
	}
	envInt("FETCH_TIMEOUT_SEC", &cfg.Fetch.TimeoutSec, &errs)
	envInt("FETCH_ATTEMPTS", &cfg.Fetch.Attempts, &errs)
	envBool("FETCH_BROWSER", &cfg.Fetch.Browser, &errs)
	envBool("PARENTHESES_NEGATIVE", &cfg.Extract.ParenthesesNegative, &errs)
	envInt("PIPELINE_WORKERS", &cfg.Pipeline.Workers, &errs)
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	envInt("CACHE_TTL_SEC", &cfg.Cache.TTLSec, &errs)

	return errors.Join(errs...)
}

func envInt(key string, dst *int, errs *[]error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	x, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return
	}
	*dst = x
}

func envBool(key string, dst *bool, errs *[]error) {
	v := strings.TrimSpace(os.Getenv(key))
	switch strings.ToLower(v) {
	case "":
	case "1", "true", "yes", "y":
		*dst = true
	case "0", "false", "no", "n":
		*dst = false
	default:
		*errs = append(*errs, fmt.Errorf("%s: invalid boolean %q", key, v))
	}
}
