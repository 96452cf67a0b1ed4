package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type Server struct {
	Addr          string `yaml:"addr" env:"SERVER_ADDR"`
	DBDSN         string `yaml:"db_dsn" env:"SESSIONREPLAY_DB_DSN"`
	MigrationsDir string `yaml:"migrations_dir" env:"MIGRATIONS_DIR"`
}

type Replay struct {
	BaseURL      string        `yaml:"base_url" env:"REPLAY_BASE_URL"`
	Delay        time.Duration `yaml:"delay" env:"REPLAY_DELAY"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"REPLAY_FETCH_TIMEOUT"`
}

type NATS struct {
	URL           string `yaml:"url" env:"NATS_URL"`
	SubjectPrefix string `yaml:"subject_prefix" env:"NATS_SUBJECT_PREFIX"`
}

type Metrics struct {
	Addr string `yaml:"addr" env:"METRICS_ADDR"`
}

type Config struct {
	Server   Server  `yaml:"server"`
	Replay   Replay  `yaml:"replay"`
	NATS     NATS    `yaml:"nats"`
	Metrics  Metrics `yaml:"metrics"`
	LogLevel string  `yaml:"log_level" env:"LOG_LEVEL"`
}

func Default() Config {
	return Config{
		Server: Server{
			Addr:          ":8080",
			MigrationsDir: "db/migrations",
		},
		Replay: Replay{
			BaseURL:      "http://localhost:8080",
			Delay:        1500 * time.Millisecond,
			FetchTimeout: 10 * time.Second,
		},
		NATS:     NATS{SubjectPrefix: "replay.state"},
		LogLevel: "info",
	}
}

// Load layers defaults, the optional YAML file at path, then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path = strings.TrimSpace(path); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Replay.Delay <= 0 {
		return fmt.Errorf("%w: replay.delay must be positive", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Replay.BaseURL) == "" {
		return fmt.Errorf("%w: replay.base_url is required", ErrInvalidConfig)
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// ApplyLogLevel sets the hlog level; unknown names leave it unchanged.
func (c Config) ApplyLogLevel() {
	if lv, ok := parseLevel(c.LogLevel); ok {
		hlog.SetLevel(lv)
	}
}

func parseLevel(name string) (hlog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return hlog.LevelDebug, true
	case "", "info":
		return hlog.LevelInfo, true
	case "warn", "warning":
		return hlog.LevelWarn, true
	case "error":
		return hlog.LevelError, true
	default:
		return 0, false
	}
}
