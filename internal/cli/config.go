package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/riskflow/pkg/errors"
)

// Backend names accepted in the config file and on the command line.
const (
	backendNone   = "none"
	backendFile   = "file"
	backendRedis  = "redis"
	backendMemory = "memory"
	backendMongo  = "mongo"
)

// Config is the optional TOML configuration file. Command-line flags take
// precedence over every value here.
type Config struct {
	Capacity      int     `toml:"capacity"`
	DefaultRisk   float64 `toml:"default_risk"`
	DefaultWeight float64 `toml:"default_weight"`
	LogLevel      string  `toml:"log_level"`

	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
}

// ServerConfig configures "riskflow serve".
type ServerConfig struct {
	Addr        string        `toml:"addr"`
	SessionTTL  time.Duration `toml:"session_ttl"`
	MaxSessions int           `toml:"max_sessions"`
}

// CacheConfig selects the result cache.
type CacheConfig struct {
	Backend   string `toml:"backend"` // file (default), redis, none
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	Prefix    string `toml:"prefix"`
}

// StoreConfig selects the snapshot store.
type StoreConfig struct {
	Backend  string `toml:"backend"` // file (default), memory, mongo
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":8090", SessionTTL: time.Hour, MaxSessions: 1024},
		Cache:  CacheConfig{Backend: backendFile, RedisAddr: "localhost:6379"},
		Store:  StoreConfig{Backend: backendFile, Database: "riskflow"},
	}
}

// loadConfig reads path over the defaults. An empty path reads the default
// location, where a missing file is not an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.DefaultRisk != 0 {
		if err := errors.ValidateRisk(c.DefaultRisk); err != nil {
			return err
		}
	}
	if c.DefaultWeight != 0 {
		if err := errors.ValidateWeight(c.DefaultWeight); err != nil {
			return err
		}
	}
	switch c.Cache.Backend {
	case backendFile, backendRedis, backendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case backendFile, backendMemory, backendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q (must be one of: file, memory, mongo)", c.Store.Backend)
	}
	return nil
}

// configDir returns the config directory using XDG standard (~/.config/riskflow/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
