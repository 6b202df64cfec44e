package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DBPath        string `yaml:"db_path"`
	Addr          string `yaml:"addr"`
	PageSize      int    `yaml:"page_size"`
	Storage       string `yaml:"storage"`
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	Seed          bool   `yaml:"seed"`
	SecureCookies bool   `yaml:"secure_cookies"`
}

func defaultConfig() Config {
	return Config{
		DBPath:    "board.db",
		Addr:      ":8080",
		PageSize:  defaultPageSize,
		Storage:   "sqlite",
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// loadConfig layers the YAML file at path (if it exists) and then the
// environment on top of the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("reading config %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config %q: %w", path, err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("BOARD_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("BOARD_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("BOARD_STORAGE"); v != "" {
		cfg.Storage = v
	}
	if v := os.Getenv("BOARD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("BOARD_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("BOARD_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BOARD_PAGE_SIZE: %w", err)
		}
		cfg.PageSize = n
	}
	if v := os.Getenv("BOARD_SEED"); v != "" {
		cfg.Seed = v == "true"
	}
	if v := os.Getenv("SECURE_COOKIES"); v != "" {
		cfg.SecureCookies = v == "true"
	}
	return nil
}

func (c Config) validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	switch c.Storage {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	return nil
}
