package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers for the durable session copy.
const (
	StorageBolt   = "bolt"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// DevelopmentAPIURL is used when no backend address is configured in a
// development environment.
const DevelopmentAPIURL = "http://localhost:8000/api/v1/"

// Config aggregates all runtime settings required by the console.
type Config struct {
	AppName     string
	Environment string
	API         APIConfig
	Storage     StorageConfig
	Redis       RedisConfig
	Session     SessionConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Watch       WatchConfig
}

type APIConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

type StorageConfig struct {
	Driver    string
	Path      string
	Namespace string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
	TTL      time.Duration
}

type SessionConfig struct {
	LoginPath       string
	ProactiveExpiry bool
}

type ContextConfig struct {
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type WatchConfig struct {
	Interval time.Duration
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults suited to an operator workstation.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "dspctl"),
		Environment: getString("APP_ENV", "development"),
		API: APIConfig{
			BaseURL:        os.Getenv("DSP_API_URL"),
			RequestTimeout: getDuration("REQUEST_TIMEOUT", 30*time.Second),
		},
		Storage: StorageConfig{
			Driver:    strings.ToLower(getString("STORAGE_DRIVER", StorageBolt)),
			Path:      getString("SESSION_DB_PATH", defaultSessionPath()),
			Namespace: getString("SESSION_NAMESPACE", "auth-storage"),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
			TTL:      getDuration("SESSION_TTL", 0),
		},
		Session: SessionConfig{
			LoginPath:       getString("LOGIN_PATH", "/login"),
			ProactiveExpiry: getBool("SESSION_PROACTIVE_EXPIRY", false),
		},
		Context: ContextConfig{
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "warn"),
			Encoding: getString("LOG_ENCODING", "console"),
		},
		Watch: WatchConfig{
			Interval: getDuration("WATCH_INTERVAL", 30*time.Second),
		},
	}

	if err := cfg.ResolveAPIURL(cfg.API.BaseURL); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// ResolveAPIURL selects the backend address: an explicit value wins, a
// development environment falls back to the local backend, anything else
// must be configured.
func (c *Config) ResolveAPIURL(explicit string) error {
	raw := strings.TrimSpace(explicit)
	if raw == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("DSP_API_URL is required in %s environment", c.Environment)
		}
		raw = DevelopmentAPIURL
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	c.API.BaseURL = raw
	return nil
}

// IsDevelopment reports whether the console runs against a dev backend.
func (c *Config) IsDevelopment() bool {
	switch strings.ToLower(c.Environment) {
	case "", "dev", "development", "local":
		return true
	}
	return false
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageBolt, StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Storage.Namespace == "" {
		return fmt.Errorf("SESSION_NAMESPACE must not be empty")
	}
	return nil
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".dsp", "session.db")
	}
	return filepath.Join(home, ".dsp", "session.db")
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
