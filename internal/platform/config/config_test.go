package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Database.Driver != DriverSqlite || cfg.Database.Sqlite.Path != "lifesim.db" {
		t.Fatalf("unexpected database defaults: %+v", cfg.Database)
	}
	if cfg.Event.Provider != ProviderScripted || cfg.Event.Timeout != 8*time.Second {
		t.Fatalf("unexpected event defaults: %+v", cfg.Event)
	}
	if cfg.Event.Bounds.Stress != 20 || cfg.Event.Bounds.Money != 0 {
		t.Fatalf("unexpected bounds: %+v", cfg.Event.Bounds)
	}
	if cfg.Redis.Enabled || cfg.Redis.StateTTL != 30*time.Minute {
		t.Fatalf("unexpected redis defaults: %+v", cfg.Redis)
	}
}

func TestLoadConfigFinancialBoundsFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("EVENT_BOUNDS_MONEY", "250")
	t.Setenv("EVENT_BOUNDS_WEEKLYINCOME", "40")
	t.Setenv("EVENT_BOUNDS_WEEKLYEXPENSE", "30")
	t.Setenv("EVENT_BOUNDS_FREETIME", "12.5")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b := cfg.Event.Bounds
	if b.Money != 250 || b.WeeklyIncome != 40 || b.WeeklyExpense != 30 || b.FreeTime != 12.5 {
		t.Fatalf("env bounds not applied without a config file: %+v", b)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := `
server:
  address: ":9090"
redis:
  enabled: true
  stateTTL: 5m
event:
  timeout: 3s
  bounds:
    money: 500
`
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("EVENT_PROVIDER", "gemini")
	t.Setenv("EVENT_GEMINI_APIKEY", "test-key")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != ":9090" || !cfg.Redis.Enabled || cfg.Redis.StateTTL != 5*time.Minute {
		t.Fatalf("file values not applied: %+v %+v", cfg.Server, cfg.Redis)
	}
	if cfg.Event.Timeout != 3*time.Second || cfg.Event.Bounds.Money != 500 || cfg.Event.Bounds.Health != 20 {
		t.Fatalf("event values not applied: %+v", cfg.Event)
	}
	if cfg.Event.Provider != ProviderGemini || cfg.Event.Gemini.APIKey != "test-key" {
		t.Fatalf("env overrides not applied: %+v", cfg.Event)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Mode: "release"},
			Database: DatabaseConfig{Driver: DriverSqlite, Sqlite: SqliteConfig{Path: "x.db"}},
			Event:    EventConfig{Provider: ProviderScripted, Timeout: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad mode", func(c *Config) { c.Server.Mode = "prod" }, "服务器模式"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "数据库驱动"},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = DriverPostgres }, "postgres.dsn"},
		{"gemini without key", func(c *Config) { c.Event.Provider = ProviderGemini }, "apiKey"},
		{"unknown provider", func(c *Config) { c.Event.Provider = "openai" }, "事件生成器"},
		{"zero timeout", func(c *Config) { c.Event.Timeout = 0 }, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

// chdir 切换工作目录并在测试结束时恢复（等价于 Go 1.24 的 t.Chdir）
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Errorf("restore wd: %v", err)
		}
	})
}
