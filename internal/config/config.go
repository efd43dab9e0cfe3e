package config

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"quadriga-client/quadriga"
)

const (
	EnvAPIKey    = "QUADRIGA_API_KEY"
	EnvAPISecret = "QUADRIGA_API_SECRET"
	EnvClientID  = "QUADRIGA_CLIENT_ID"
	EnvBaseURL   = "QUADRIGA_BASE_URL"
)

type Config struct {
	Book     string         `yaml:"book"`
	Exchange ExchangeConfig `yaml:"exchange"`
	Log      LogConfig      `yaml:"log"`
}

type ExchangeConfig struct {
	BaseURL         string  `yaml:"base_url"`
	APIKey          string  `yaml:"api_key"`
	APISecret       string  `yaml:"api_secret"`
	ClientID        int64   `yaml:"client_id"`
	HTTPTimeoutSec  int64   `yaml:"http_timeout_sec"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	MonotonicNonce  *bool   `yaml:"monotonic_nonce"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Load reads path, overlays credentials from the environment and validates
// the result. An empty path yields defaults plus the environment.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return Config{}, err
		}
		if err := dec.Decode(&struct{}{}); err != io.EOF {
			if err == nil {
				return Config{}, fmt.Errorf("config must contain a single YAML document")
			}
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides exchange settings with any QUADRIGA_* variables set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAPIKey); ok {
		c.Exchange.APIKey = v
	}
	if v, ok := lookup(EnvAPISecret); ok {
		c.Exchange.APISecret = v
	}
	if v, ok := lookup(EnvBaseURL); ok {
		c.Exchange.BaseURL = v
	}
	if v, ok := lookup(EnvClientID); ok && strings.TrimSpace(v) != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", EnvClientID, err)
		}
		c.Exchange.ClientID = id
	}
	return nil
}

func (c *Config) normalize() {
	c.Book = strings.ToLower(strings.TrimSpace(c.Book))
	c.Exchange.BaseURL = strings.TrimSpace(c.Exchange.BaseURL)
	c.Exchange.APIKey = strings.TrimSpace(c.Exchange.APIKey)
	c.Exchange.APISecret = strings.TrimSpace(c.Exchange.APISecret)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
}

func (c *Config) applyDefaults() {
	if c.Exchange.BaseURL == "" {
		c.Exchange.BaseURL = quadriga.DefaultBaseURL
	}
	if c.Exchange.HTTPTimeoutSec == 0 {
		c.Exchange.HTTPTimeoutSec = 15
	}
	if c.Exchange.RateLimitBurst == 0 {
		c.Exchange.RateLimitBurst = 1
	}
	if c.Exchange.MonotonicNonce == nil {
		enabled := true
		c.Exchange.MonotonicNonce = &enabled
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c Config) Validate() error {
	u, err := url.Parse(c.Exchange.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("exchange.base_url must be an absolute http(s) URL")
	}
	if c.Exchange.HTTPTimeoutSec < 1 || c.Exchange.HTTPTimeoutSec > 300 {
		return fmt.Errorf("exchange.http_timeout_sec must be between 1 and 300")
	}
	if c.Exchange.RateLimitPerSec < 0 {
		return fmt.Errorf("exchange.rate_limit_per_sec must be >= 0")
	}
	if c.Exchange.RateLimitBurst < 1 {
		return fmt.Errorf("exchange.rate_limit_burst must be >= 1")
	}
	if c.Exchange.ClientID < 0 {
		return fmt.Errorf("exchange.client_id must be >= 0")
	}
	if (c.Exchange.APIKey == "") != (c.Exchange.APISecret == "") {
		return fmt.Errorf("exchange.api_key and exchange.api_secret must be set together")
	}
	if c.HasCredentials() && c.Exchange.ClientID == 0 {
		return fmt.Errorf("exchange.client_id is required with credentials")
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level %q is invalid", c.Log.Level)
	}
	return nil
}

func (c Config) HasCredentials() bool {
	return c.Exchange.APIKey != "" && c.Exchange.APISecret != ""
}

func (c Config) Credentials() quadriga.Credentials {
	return quadriga.Credentials{
		APIKey:    c.Exchange.APIKey,
		APISecret: c.Exchange.APISecret,
		ClientID:  c.Exchange.ClientID,
	}
}

func (e ExchangeConfig) HTTPOptions(logger *zap.Logger) quadriga.HTTPOptions {
	return quadriga.HTTPOptions{
		Timeout:    time.Duration(e.HTTPTimeoutSec) * time.Second,
		RatePerSec: e.RateLimitPerSec,
		Burst:      e.RateLimitBurst,
		Logger:     logger,
	}
}

// NonceSource is a monotonic wall clock unless monotonic_nonce is false.
func (e ExchangeConfig) NonceSource() quadriga.NonceSource {
	if e.MonotonicNonce != nil && !*e.MonotonicNonce {
		return quadriga.WallClock{}
	}
	return quadriga.NewMonotonicNonce(quadriga.WallClock{})
}

func (l LogConfig) NewLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(l.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}
