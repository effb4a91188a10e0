package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig represents client configuration loaded from YAML.
type FileConfig struct {
	APIBaseURL     string `yaml:"apiBaseURL"`
	LogLevel       string `yaml:"logLevel"`
	RequestTimeout string `yaml:"requestTimeout"`
	TokenStore     string `yaml:"tokenStore"`
	TokenPath      string `yaml:"tokenPath"`
	RedisAddr      string `yaml:"redisAddr"`
	RedisPassword  string `yaml:"redisPassword"`
}

const (
	defaultAPIBaseURL     = "http://localhost:8080/api"
	defaultRequestTimeout = "10s"
	defaultTokenStore     = "file"
)

// Load reads config from path. A missing file is not an error for a client
// tool: defaults apply and environment overrides are still honored.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if v := os.Getenv("ELIBRARY_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("ELIBRARY_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("ELIBRARY_REQUEST_TIMEOUT"); v != "" {
		cfg.RequestTimeout = strings.TrimSpace(v)
	}
	if v := os.Getenv("ELIBRARY_TOKEN_STORE"); v != "" {
		cfg.TokenStore = strings.TrimSpace(v)
	}
	if v := os.Getenv("ELIBRARY_TOKEN_PATH"); v != "" {
		cfg.TokenPath = strings.TrimSpace(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.RequestTimeout == "" {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.TokenStore == "" {
		cfg.TokenStore = defaultTokenStore
	}
	if cfg.TokenPath == "" {
		cfg.TokenPath = defaultTokenPath()
	}

	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DefaultPath is the config file location unless overridden by flag or env.
func DefaultPath() string {
	if v := os.Getenv("ELIBRARY_CONFIG"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "elibrary", "config.yaml")
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".elibrary-token"
	}
	return filepath.Join(home, ".config", "elibrary", "token")
}

func validateConfig(cfg FileConfig) error {
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: apiBaseURL %q is not a valid URL", cfg.APIBaseURL)
	}
	switch cfg.TokenStore {
	case "file":
		if strings.TrimSpace(cfg.TokenPath) == "" {
			return errors.New("config: tokenPath is required for the file token store")
		}
	case "redis":
		if strings.TrimSpace(cfg.RedisAddr) == "" {
			return errors.New("config: redisAddr is required for the redis token store (set in config or REDIS_ADDR)")
		}
	default:
		return fmt.Errorf("config: tokenStore must be \"file\" or \"redis\", got %q", cfg.TokenStore)
	}
	if _, err := ParseRequestTimeout(cfg.RequestTimeout); err != nil {
		return err
	}
	return nil
}

// ParseRequestTimeout parses the request timeout duration string.
func ParseRequestTimeout(timeoutStr string) (time.Duration, error) {
	if timeoutStr == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return 0, fmt.Errorf("invalid requestTimeout duration: %w", err)
	}
	if dur < 0 {
		return 0, errors.New("requestTimeout must be >= 0")
	}
	return dur, nil
}
