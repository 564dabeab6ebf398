package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

type ServerConfig struct {
	Port         string `json:"port"`
	AllowOrigins string `json:"allow_origins"`
	LogLevel     string `json:"log_level"`

	// DefaultRating is used when a request carries neither rating nor settings.
	DefaultRating int `json:"default_rating"`
	TTMaxEntries  int `json:"tt_max_entries"`
	QueueCapacity int `json:"queue_capacity"`
	// HardDeadlineGraceMs is how long past its time budget a search may run
	// before the service answers with the best result it has seen.
	HardDeadlineGraceMs    int `json:"hard_deadline_grace_ms"`
	ResultTTLSeconds       int `json:"result_ttl_seconds"`
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds"`
	MaxPerftDepth          int `json:"max_perft_depth"`
}

var (
	cfg      *ServerConfig
	loadOnce sync.Once
	loadErr  error
)

func Default() ServerConfig {
	return ServerConfig{
		Port:                   "3000",
		AllowOrigins:           "http://localhost:5173",
		LogLevel:               "info",
		DefaultRating:          1500,
		TTMaxEntries:           1 << 20,
		QueueCapacity:          64,
		HardDeadlineGraceMs:    500,
		ResultTTLSeconds:       600,
		ShutdownTimeoutSeconds: 10,
		MaxPerftDepth:          5,
	}
}

// Load reads the server configuration once. An empty path means defaults
// plus environment overrides.
func Load(path string) error {
	loadOnce.Do(func() {
		c := Default()
		if path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				loadErr = fmt.Errorf("failed to read server config: %w", err)
				return
			}
			if c, err = parse(data); err != nil {
				loadErr = err
				return
			}
		}
		applyEnv(&c, os.Getenv)
		cfg = &c
	})
	return loadErr
}

// Get returns the loaded configuration, or the defaults if Load was never
// called or failed.
func Get() *ServerConfig {
	if cfg == nil {
		c := Default()
		return &c
	}
	return cfg
}

// parse overlays data on the defaults so a partial file keeps sane values.
func parse(data []byte) (ServerConfig, error) {
	c := Default()
	if err := json.Unmarshal(data, &c); err != nil {
		return ServerConfig{}, fmt.Errorf("failed to unmarshal server config: %w", err)
	}
	if err := c.validate(); err != nil {
		return ServerConfig{}, err
	}
	return c, nil
}

func applyEnv(c *ServerConfig, getenv func(string) string) {
	if port := getenv("PORT"); port != "" {
		c.Port = port
	}
	if level := getenv("MINECHESS_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
}

func (c ServerConfig) validate() error {
	switch {
	case c.Port == "":
		return fmt.Errorf("server config: port is empty")
	case c.TTMaxEntries < 1:
		return fmt.Errorf("server config: tt_max_entries must be positive")
	case c.QueueCapacity < 1:
		return fmt.Errorf("server config: queue_capacity must be positive")
	case c.HardDeadlineGraceMs < 0:
		return fmt.Errorf("server config: hard_deadline_grace_ms is negative")
	}
	return nil
}

func (c ServerConfig) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Origins splits AllowOrigins into trimmed, non-empty entries.
func (c ServerConfig) Origins() []string {
	origins := lo.Map(strings.Split(c.AllowOrigins, ","), func(o string, _ int) string {
		return strings.TrimSpace(o)
	})
	return lo.Compact(origins)
}

func (c ServerConfig) HardDeadlineGrace() time.Duration {
	return time.Duration(c.HardDeadlineGraceMs) * time.Millisecond
}

func (c ServerConfig) ResultTTL() time.Duration {
	return time.Duration(c.ResultTTLSeconds) * time.Second
}

func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}
