package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	SnapshotURL string        `yaml:"snapshot_url"`
	Port        string        `yaml:"port"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	LogLevel    slog.Level    `yaml:"log_level"`
	PageSize    int           `yaml:"page_size"`
	LoadRetries int           `yaml:"load_retries"`
	RetryBase   time.Duration `yaml:"retry_base"`
}

func Default() Config {
	return Config{
		Port:        "8080",
		HTTPTimeout: 15 * time.Second,
		LogLevel:    slog.LevelInfo,
		PageSize:    50,
		LoadRetries: 2,
		RetryBase:   100 * time.Millisecond,
	}
}

func FromEnv() Config {
	cfg := Default()
	applyEnv(&cfg)
	return cfg
}

// Load reads an optional YAML file on top of the defaults; environment
// variables that are set win over the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page_size must be > 0, got %d", c.PageSize))
	}
	if c.LoadRetries < 0 {
		errs = append(errs, fmt.Errorf("load_retries must be >= 0, got %d", c.LoadRetries))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("port must not be empty"))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("http_timeout must be > 0, got %s", c.HTTPTimeout))
	}
	return errors.Join(errs...)
}

func applyEnv(c *Config) {
	if v := os.Getenv("SNAPSHOT_URL"); v != "" {
		c.SnapshotURL = v
	}
	c.Port = envOr("PORT", c.Port)
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			c.HTTPTimeout = d
		}
	}
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		c.LogLevel = slog.LevelDebug
	case "info":
		c.LogLevel = slog.LevelInfo
	case "warn":
		c.LogLevel = slog.LevelWarn
	case "error":
		c.LogLevel = slog.LevelError
	}
	c.PageSize = envInt("PAGE_SIZE", c.PageSize)
	c.LoadRetries = envInt("LOAD_RETRIES", c.LoadRetries)
	if v := envInt("RETRY_BASE_MS", -1); v >= 0 {
		c.RetryBase = time.Duration(v) * time.Millisecond
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}
