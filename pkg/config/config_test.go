package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "TELEGRAM_BOT_TOKEN", "PORT", "PATHWISE_DB"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":5000" || cfg.Memory.Path != "pathwise.db" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Governance.RateLimit.Requests != 100 || cfg.RateWindow() != 15*time.Minute {
		t.Errorf("unexpected rate limit %+v", cfg.Governance.RateLimit)
	}
	if name, _ := cfg.GetDefaultProvider(); name != "" {
		t.Errorf("expected no provider, got %s", name)
	}
}

func TestLoadConfig_JSON(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"server": {"addr": ":8080"},
		"providers": {"openai": {"api_key": "sk-test", "model": "gpt-4o-mini", "enabled": true}},
		"gateways": {"telegram": {"token": "tg", "enabled": false}},
		"planner": {"timeout_seconds": 20}
	}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %s", cfg.Server.Addr)
	}
	if cfg.Memory.Path != "pathwise.db" {
		t.Errorf("defaults must survive a partial file, got %s", cfg.Memory.Path)
	}
	name, p := cfg.GetDefaultProvider()
	if name != "openai" || p.Model != "gpt-4o-mini" {
		t.Errorf("provider = %s %+v", name, p)
	}
	if _, ok := cfg.GetTelegramConfig(); ok {
		t.Error("disabled telegram must not be returned")
	}
	if cfg.PlannerTimeout() != 20*time.Second {
		t.Errorf("timeout = %v", cfg.PlannerTimeout())
	}
}

func TestLoadConfig_YAMLAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
auth:
  tokens:
    secret-token: alice
governance:
  deny_patterns: ["(?i)malware"]
reminders:
  interval_hours: 24
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("PORT", "9000")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Auth.Tokens["secret-token"] != "alice" {
		t.Errorf("tokens = %v", cfg.Auth.Tokens)
	}
	if len(cfg.Governance.DenyPatterns) != 1 || cfg.ReminderInterval() != 24*time.Hour {
		t.Errorf("unexpected governance/reminders %+v %+v", cfg.Governance, cfg.Reminders)
	}
	name, p := cfg.GetDefaultProvider()
	if name != "googleai" || p.APIKey != "g-key" || p.Model != "gemini-2.5-flash" {
		t.Errorf("provider = %s %+v", name, p)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr = %s", cfg.Server.Addr)
	}
}

func TestLoadConfig_BadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected decode error")
	}
}
