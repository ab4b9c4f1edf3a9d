package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/riskflow/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeConfigAt(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig(\"\") error: %v", err)
	}
	if cfg.Server.Addr != ":8090" {
		t.Errorf("Server.Addr = %q, want :8090", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != backendFile || cfg.Store.Backend != backendFile {
		t.Errorf("backends = %q/%q, want file/file", cfg.Cache.Backend, cfg.Store.Backend)
	}
}

func TestLoadConfigFromXDG(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	writeConfigAt(t, filepath.Join(home, appName, "config.toml"), "default_risk = 0.05\n")

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.DefaultRisk != 0.05 {
		t.Errorf("DefaultRisk = %v, want 0.05", cfg.DefaultRisk)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
capacity = 500
default_risk = 0.01
default_weight = 0.8

[server]
addr = ":9000"
session_ttl = "30m"
max_sessions = 10

[cache]
backend = "redis"
redis_addr = "cache:6379"

[store]
backend = "mongo"
mongo_uri = "mongodb://db:27017"
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.Capacity != 500 || cfg.DefaultRisk != 0.01 || cfg.DefaultWeight != 0.8 {
		t.Errorf("graph settings = %d/%v/%v", cfg.Capacity, cfg.DefaultRisk, cfg.DefaultWeight)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.SessionTTL != 30*time.Minute || cfg.Server.MaxSessions != 10 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Cache.Backend != backendRedis || cfg.Cache.RedisAddr != "cache:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Store.Backend != backendMongo || cfg.Store.Database != "riskflow" {
		t.Errorf("store = %+v, want mongo with default database", cfg.Store)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"syntax", "capacity = [", errors.ErrCodeInvalidFormat},
		{"risk", "default_risk = 1.5", errors.ErrCodeInvalidRisk},
		{"weight", "default_weight = -1", errors.ErrCodeInvalidWeight},
		{"cache backend", "[cache]\nbackend = \"memcached\"", errors.ErrCodeInvalidInput},
		{"store backend", "[store]\nbackend = \"s3\"", errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.body))
			if !errors.Is(err, tt.code) {
				t.Errorf("loadConfig = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("loadConfig = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}
