package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/fasim/internal/logging"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// DefaultFiles are probed, in order, when no config path is given.
var DefaultFiles = []string{"fasim.yaml", "fasim.yml", "fasim.json"}

// Config is the runtime configuration shared by every command.
type Config struct {
	// Store selects the automaton and session backend.
	Store string `mapstructure:"store"`
	// Dir is the file store directory.
	Dir string `mapstructure:"dir"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	HTTP    HTTPConfig    `mapstructure:"http"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Session SessionConfig `mapstructure:"session"`
	Play    PlayConfig    `mapstructure:"play"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type SessionConfig struct {
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

type PlayConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Store:     StoreFile,
		Dir:       ".",
		LogLevel:  "info",
		LogFormat: "text",
		HTTP:      HTTPConfig{Addr: ":8080"},
		Redis:     RedisConfig{Addr: "localhost:6379", Prefix: "fasim:"},
		Session:   SessionConfig{LockTTL: 30 * time.Second},
		Play:      PlayConfig{Interval: time.Second},
	}
}

// envKeys maps environment variables to config key paths.
var envKeys = map[string][]string{
	"FASIM_STORE":            {"store"},
	"FASIM_DIR":              {"dir"},
	"FASIM_LOG_LEVEL":        {"log_level"},
	"FASIM_LOG_FORMAT":       {"log_format"},
	"FASIM_HTTP_ADDR":        {"http", "addr"},
	"FASIM_REDIS_ADDR":       {"redis", "addr"},
	"FASIM_REDIS_PASSWORD":   {"redis", "password"},
	"FASIM_REDIS_DB":         {"redis", "db"},
	"FASIM_REDIS_PREFIX":     {"redis", "prefix"},
	"FASIM_REDIS_TTL":        {"redis", "ttl"},
	"FASIM_SESSION_LOCK_TTL": {"session", "lock_ttl"},
	"FASIM_PLAY_INTERVAL":    {"play", "interval"},
}

// Load builds the configuration from defaults, an optional YAML or JSON file and FASIM_*
// environment variables, in increasing precedence.
// An empty path probes DefaultFiles; an explicit path must exist.
func Load(path string) (Config, error) {
	raw := map[string]any{}

	if path == "" {
		for _, candidate := range DefaultFiles {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path != "" {
		var err error
		if raw, err = readFile(path); err != nil {
			return Config{}, err
		}
	}

	for env, keys := range envKeys {
		if v, ok := os.LookupEnv(env); ok {
			setPath(raw, keys, v)
		}
	}

	cfg := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("invalid configuration: unknown store %q", c.Store)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid configuration: unknown log format %q", c.LogFormat)
	}
	if c.Play.Interval <= 0 {
		return fmt.Errorf("invalid configuration: play interval must be positive")
	}
	return nil
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

func setPath(m map[string]any, keys []string, value string) {
	for _, k := range keys[:len(keys)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[k] = next
		}
		m = next
	}
	m[keys[len(keys)-1]] = value
}
