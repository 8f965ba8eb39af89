package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config defines application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Journal JournalConfig `yaml:"journal"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

type StoreConfig struct {
	// Namespace is the hidden directory under the project root.
	Namespace      string `yaml:"namespace"`
	MaxRounds      int    `yaml:"max_rounds"`
	CleanupMinutes int    `yaml:"cleanup_minutes"`
}

type JournalConfig struct {
	Enabled bool `yaml:"enabled"`
}

type ServerConfig struct {
	// Transport is "stdio" or "http".
	Transport string `yaml:"transport"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	AuthToken string `yaml:"auth_token"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Path, when set, receives logs in addition to stderr.
	Path string `yaml:"path"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Namespace:      ".cc-codex",
			MaxRounds:      5,
			CleanupMinutes: 120,
		},
		Journal: JournalConfig{
			Enabled: true,
		},
		Server: ServerConfig{
			Transport: "stdio",
			Host:      "127.0.0.1",
			Port:      8080,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("TOPICS_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if ns := os.Getenv("TOPICS_NAMESPACE"); ns != "" {
		cfg.Store.Namespace = ns
	}
	if err := envInt("TOPICS_MAX_ROUNDS", &cfg.Store.MaxRounds); err != nil {
		return Config{}, err
	}
	if err := envInt("TOPICS_CLEANUP_MINUTES", &cfg.Store.CleanupMinutes); err != nil {
		return Config{}, err
	}
	if journal := os.Getenv("TOPICS_JOURNAL"); journal != "" {
		enabled, err := parseSwitch(journal)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TOPICS_JOURNAL: %w", err)
		}
		cfg.Journal.Enabled = enabled
	}
	if transport := os.Getenv("TOPICS_TRANSPORT"); transport != "" {
		cfg.Server.Transport = transport
	}
	if host := os.Getenv("TOPICS_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if err := envInt("TOPICS_SERVER_PORT", &cfg.Server.Port); err != nil {
		return Config{}, err
	}
	if token := os.Getenv("TOPICS_AUTH_TOKEN"); token != "" {
		cfg.Server.AuthToken = token
	}
	if level := os.Getenv("TOPICS_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if path := os.Getenv("TOPICS_LOG_PATH"); path != "" {
		cfg.Log.Path = path
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be used as given.
func (c Config) Validate() error {
	if c.Store.Namespace == "" || strings.ContainsAny(c.Store.Namespace, `/\`) || c.Store.Namespace == ".." {
		return fmt.Errorf("invalid namespace %q: must be a single directory name", c.Store.Namespace)
	}
	if c.Store.MaxRounds < 1 {
		return fmt.Errorf("invalid max_rounds %d: must be positive", c.Store.MaxRounds)
	}
	if c.Store.CleanupMinutes < 0 {
		return fmt.Errorf("invalid cleanup_minutes %d: must not be negative", c.Store.CleanupMinutes)
	}
	switch c.Server.Transport {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport %q: want stdio or http", c.Server.Transport)
	}
	return nil
}

func envInt(name string, dst *int) error {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = n
	return nil
}

func parseSwitch(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("unrecognised value %q", raw)
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
