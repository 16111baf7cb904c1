package portal

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

//go:embed example-config.yaml
var ExampleConfig string

// EnvPrefix is prepended to every environment override, e.g.
// AUTHQR_API_BASE_URL.
const EnvPrefix = "AUTHQR_"

type Config struct {
	API       APIConfig       `yaml:"api" envPrefix:"API_"`
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`
	Storage   StorageConfig   `yaml:"storage" envPrefix:"STORAGE_"`
	Session   SessionConfig   `yaml:"session" envPrefix:"SESSION_"`
	Logging   LoggingConfig   `yaml:"logging" envPrefix:"LOG_"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"BASE_URL"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	Proxy   string        `yaml:"proxy" env:"PROXY"`
}

type TelemetryConfig struct {
	BaseURL   string `yaml:"base_url" env:"BASE_URL"`
	ChannelID string `yaml:"channel_id" env:"CHANNEL_ID"`
	ReadKey   string `yaml:"read_key" env:"READ_KEY"`
}

type StorageConfig struct {
	MediaBaseURL string `yaml:"media_base_url" env:"MEDIA_BASE_URL"`
}

type SessionConfig struct {
	StatePath    string        `yaml:"state_path" env:"STATE_PATH"`
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`
}

type LoggingConfig struct {
	MinLevel   string `yaml:"min_level" env:"MIN_LEVEL"`
	FilePath   string `yaml:"file_path" env:"FILE_PATH"`
	MaxSize    int    `yaml:"max_size" env:"MAX_SIZE"`
	MaxBackups int    `yaml:"max_backups" env:"MAX_BACKUPS"`
	MaxAge     int    `yaml:"max_age" env:"MAX_AGE"`
}

type umConfig Config

func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	err := node.Decode((*umConfig)(c))
	if err != nil {
		return err
	}
	c.expandPaths()
	return nil
}

func (c *Config) expandPaths() {
	c.Session.StatePath = expandHome(c.Session.StatePath)
	c.Logging.FilePath = expandHome(c.Logging.FilePath)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// LoadConfig reads the embedded defaults, then the file at path if one is
// given, then AUTHQR_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(ExampleConfig), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse default config: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.expandPaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if err := validateBaseURL("api.base_url", c.API.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if err := validateBaseURL("telemetry.base_url", c.Telemetry.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if c.Storage.MediaBaseURL != "" {
		if err := validateBaseURL("storage.media_base_url", c.Storage.MediaBaseURL); err != nil {
			errs = append(errs, err)
		}
	}
	if c.API.Timeout < 0 {
		errs = append(errs, errors.New("api.timeout must not be negative"))
	}
	if c.Session.PollInterval <= 0 {
		errs = append(errs, errors.New("session.poll_interval must be positive"))
	}
	if c.Session.StatePath == "" {
		errs = append(errs, errors.New("session.state_path is required"))
	}
	if _, err := zerolog.ParseLevel(c.Logging.MinLevel); err != nil {
		errs = append(errs, fmt.Errorf("logging.min_level: %w", err))
	}
	return errors.Join(errs...)
}

func validateBaseURL(key, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s: expected an http or https URL, got %q", key, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s: missing host in %q", key, value)
	}
	return nil
}
