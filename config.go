package apikit

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML form of Config, for apps that prefer a
// config file over wiring everything in code.
type FileConfig struct {
	BaseURL        string       `yaml:"base_url"`
	TimeoutSeconds int          `yaml:"timeout_seconds"`
	RateLimit      int          `yaml:"rate_limit"`
	QueryTTL       string       `yaml:"query_ttl"`
	SessionCookie  string       `yaml:"session_cookie"`
	LogoutPath     string       `yaml:"logout_path"`
	LiveFeedURL    string       `yaml:"live_feed_url"`
	Redis          *RedisConfig `yaml:"redis,omitempty"`
}

func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var conf FileConfig
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	conf.applyEnvOverrides()
	if conf.BaseURL == "" {
		return nil, fmt.Errorf("config: base_url is required")
	}
	return &conf, nil
}

// Secrets come from the environment so config files stay committable.
func (fc *FileConfig) applyEnvOverrides() {
	if v := os.Getenv("APIKIT_BASE_URL"); v != "" {
		fc.BaseURL = v
	}
	if fc.Redis != nil {
		if v := os.Getenv("APIKIT_REDIS_PASSWORD"); v != "" {
			fc.Redis.Password = v
		}
	}
}

// ClientConfig converts the file form into a Config, connecting the redis
// cache backend when one is enabled.
func (fc *FileConfig) ClientConfig() (Config, error) {
	config := Config{
		BaseURL:       fc.BaseURL,
		RateLimit:     fc.RateLimit,
		SessionCookie: fc.SessionCookie,
		LogoutPath:    fc.LogoutPath,
	}
	if fc.TimeoutSeconds > 0 {
		config.HTTPClient = &http.Client{
			Timeout: time.Duration(fc.TimeoutSeconds) * time.Second,
		}
	}
	if fc.QueryTTL != "" {
		ttl, err := time.ParseDuration(fc.QueryTTL)
		if err != nil {
			return Config{}, fmt.Errorf("config: parse query_ttl: %w", err)
		}
		config.QueryTTL = ttl
	}
	if fc.Redis != nil && fc.Redis.Enabled {
		cache, err := NewRedisCache(fc.Redis)
		if err != nil {
			return Config{}, err
		}
		config.Cache = cache
	}
	return config, nil
}
