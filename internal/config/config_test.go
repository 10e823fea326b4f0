package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("APP_PORT", "")
	t.Setenv("ADVISORY_DEBOUNCE", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("default port %q", cfg.Server.Port)
	}
	if cfg.MongoDB.StateKey != "liveshock_v1_storage" {
		t.Fatalf("default state key %q", cfg.MongoDB.StateKey)
	}
	if cfg.AI.Debounce != 2*time.Second {
		t.Fatalf("default debounce %v", cfg.AI.Debounce)
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "MONGODB_URI=mongodb://db:27017\nADVISORY_DEBOUNCE=500ms\nWHATSAPP_MANAGER_ID=224600000000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"MONGODB_URI", "ADVISORY_DEBOUNCE", "WHATSAPP_MANAGER_ID"} {
		t.Setenv(key, "")
		// godotenv never overrides variables that already exist
		_ = os.Unsetenv(key)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MongoDB.URI != "mongodb://db:27017" || cfg.AI.Debounce != 500*time.Millisecond {
		t.Fatalf("env file not applied: %+v", cfg)
	}
	if cfg.WhatsApp.ManagerID != "224600000000" {
		t.Fatalf("manager id %q", cfg.WhatsApp.ManagerID)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost")
	t.Setenv("ADVISORY_DEBOUNCE", "soon")
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err == nil {
		t.Fatalf("expected duration error")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: "8080"},
			MongoDB:   MongoDBConfig{URI: "mongodb://x", DBName: "herdfeed", StateKey: "k"},
			Reporting: ReportingConfig{CronSchedule: "0 20 * * 5", Timezone: "UTC"},
			AI:        AIConfig{Debounce: time.Second, Timeout: time.Second},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := map[string]func(c *Config){
		"missing port":      func(c *Config) { c.Server.Port = "" },
		"missing mongo uri": func(c *Config) { c.MongoDB.URI = "" },
		"half sheets":       func(c *Config) { c.Sheets.SpreadsheetID = "sheet" },
		"missing cron":      func(c *Config) { c.Reporting.CronSchedule = "" },
		"zero timeout":      func(c *Config) { c.AI.Timeout = 0 },
		"whatsapp no url": func(c *Config) {
			c.WhatsApp.AccessToken = "token"
			c.WhatsApp.APIVersion = "v20.0"
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}

	var nilCfg *Config
	if err := nilCfg.Validate(); err == nil {
		t.Fatalf("nil config must fail")
	}
}
