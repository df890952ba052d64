// Package config loads client and dev-server settings from an optional YAML
// file, a .env file and the environment, in increasing order of priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"plantblog/pkg/session"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

var ErrUnknownStore = errors.New("unknown session store")

type Config struct {
	BackendURL  string        `yaml:"backend_url"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	Session     struct {
		Store string        `yaml:"store"`
		File  string        `yaml:"file"`
		TTL   time.Duration `yaml:"ttl"`
	} `yaml:"session"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
	} `yaml:"redis"`
	Log struct {
		Development bool `yaml:"development"`
	} `yaml:"log"`
	DevServer struct {
		Addr      string `yaml:"addr"`
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"dev_server"`
}

func Default() *Config {
	cfg := &Config{
		BackendURL:  "http://localhost:3001",
		HTTPTimeout: 15 * time.Second,
	}
	cfg.Session.Store = StoreFile
	cfg.Session.File = defaultSessionFile()
	cfg.Session.TTL = 24 * time.Hour
	cfg.Redis.Addr = "localhost:6379"
	cfg.DevServer.Addr = ":3001"
	cfg.DevServer.JWTSecret = "plantblog-dev-secret"
	return cfg
}

func defaultSessionFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "plantblog", "session.json")
}

// Load reads path (if not empty), then .env, then the environment. A
// missing .env file is not an error; a missing YAML file named explicitly is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		js, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(js, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	switch cfg.Session.Store {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.Session.Store)
	}
	return cfg, nil
}

func (cfg *Config) applyEnv() error {
	cfg.BackendURL = getEnv("BACKEND_URL", cfg.BackendURL)
	cfg.Session.Store = getEnv("PLANTBLOG_SESSION_STORE", cfg.Session.Store)
	cfg.Session.File = getEnv("PLANTBLOG_SESSION_FILE", cfg.Session.File)
	cfg.Redis.Addr = getEnv("PLANTBLOG_REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("PLANTBLOG_REDIS_PASSWORD", cfg.Redis.Password)
	cfg.DevServer.Addr = getEnv("PLANTBLOG_DEV_ADDR", cfg.DevServer.Addr)
	cfg.DevServer.JWTSecret = getEnv("PLANTBLOG_JWT_SECRET", cfg.DevServer.JWTSecret)

	var err error
	if cfg.HTTPTimeout, err = getDuration("PLANTBLOG_HTTP_TIMEOUT", cfg.HTTPTimeout); err != nil {
		return err
	}
	if cfg.Session.TTL, err = getDuration("PLANTBLOG_SESSION_TTL", cfg.Session.TTL); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("PLANTBLOG_LOG_DEV"); ok {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PLANTBLOG_LOG_DEV: %w", err)
		}
		cfg.Log.Development = dev
	}
	return nil
}

// getEnv returns the variable's value, or fallback when it is unset.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func (cfg *Config) HTTPClient() *http.Client {
	return &http.Client{Timeout: cfg.HTTPTimeout}
}

func (cfg *Config) Logger() (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Log.Development {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// SessionStorage builds the configured backend. The returned close func
// releases its connections and is never nil.
func (cfg *Config) SessionStorage() (session.Storage, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Session.Store {
	case StoreMemory:
		return session.NewMemoryStorage(), noop, nil
	case StoreFile:
		return session.NewFileStorage(cfg.Session.File, cfg.Session.TTL), noop, nil
	case StoreRedis:
		client := session.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password)
		return session.NewRedisStorage(client, "plantblog", cfg.Session.TTL), client.Close, nil
	}
	return nil, noop, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.Session.Store)
}
