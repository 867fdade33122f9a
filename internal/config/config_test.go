package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"BlogEngine/internal/ai"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected default addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Database.MaxOpenConns != 10 {
		t.Fatalf("unexpected default pool size: %d", cfg.Database.MaxOpenConns)
	}
	route, ok := cfg.Routing[ai.TaskArticleGeneration]["free"]
	if !ok {
		t.Fatal("free plan must have a generation route by default")
	}
	if route.Provider != "deepseek" || route.Model != "deepseek-chat" {
		t.Fatalf("unexpected default route: %+v", route)
	}
	if _, ok := cfg.Routing[ai.TaskEditorialReview]["free"]; ok {
		t.Fatal("free plan must not have a review route by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	raw := `
database:
  dsn: postgres://file:file@db:5432/blog
  maxOpenConns: 25
http:
  addr: ":9000"
scheduler:
  interval: 15m
providers:
  deepseek:
    apiKey: file-key
ai_routing:
  generacion_articulo:
    free:
      provider: claude
      model: haiku
logging:
  level: warn
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if cfg.Database.DSN != "postgres://file:file@db:5432/blog" {
		t.Fatalf("dsn not taken from file: %s", cfg.Database.DSN)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Fatalf("pool size not taken from file: %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns != 5 {
		t.Fatalf("unset field must keep default: %d", cfg.Database.MaxIdleConns)
	}
	if cfg.HTTP.Addr != ":9000" {
		t.Fatalf("addr not taken from file: %s", cfg.HTTP.Addr)
	}
	if cfg.Scheduler.Interval.Std() != 15*time.Minute {
		t.Fatalf("interval not taken from file: %s", cfg.Scheduler.Interval.Std())
	}
	if cfg.Providers.DeepSeek.APIKey != "file-key" {
		t.Fatalf("api key not taken from file: %s", cfg.Providers.DeepSeek.APIKey)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("level not taken from file: %s", cfg.Logging.Level)
	}

	route := cfg.Routing[ai.TaskArticleGeneration]["free"]
	if route.Provider != "claude" || route.Model != "haiku" {
		t.Fatalf("routing not taken from file: %+v", route)
	}
	// A file routing table replaces the whole default table.
	if _, ok := cfg.Routing[ai.TaskEditorialReview]; ok {
		t.Fatal("default review routes must not survive a file override")
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	raw := `
database:
  dsn: postgres://file:file@db:5432/blog
providers:
  claude:
    apiKey: file-key
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)
	t.Setenv(databaseDSNEnv, "postgres://env:env@db:5432/blog")
	t.Setenv(anthropicAPIKeyEnv, "env-key")

	cfg := Load()

	if cfg.Database.DSN != "postgres://env:env@db:5432/blog" {
		t.Fatalf("env must override file: %s", cfg.Database.DSN)
	}
	if cfg.Providers.Claude.APIKey != "env-key" {
		t.Fatalf("env must override file: %s", cfg.Providers.Claude.APIKey)
	}
}
