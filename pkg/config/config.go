package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig                 `json:"app" yaml:"app"`
	Server     ServerConfig              `json:"server" yaml:"server"`
	Gateways   map[string]GatewayConfig  `json:"gateways" yaml:"gateways"`
	Providers  map[string]ProviderConfig `json:"providers" yaml:"providers"`
	Memory     MemoryConfig              `json:"memory" yaml:"memory"`
	Planner    PlannerConfig             `json:"planner" yaml:"planner"`
	Auth       AuthConfig                `json:"auth" yaml:"auth"`
	Governance GovernanceConfig          `json:"governance" yaml:"governance"`
	Reminders  ReminderConfig            `json:"reminders" yaml:"reminders"`
}

type AppConfig struct {
	Name string `json:"name" yaml:"name"`
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

type GatewayConfig struct {
	Token   string `json:"token" yaml:"token"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

type ProviderConfig struct {
	APIKey  string `json:"api_key" yaml:"api_key"`
	Model   string `json:"model" yaml:"model"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

type MemoryConfig struct {
	Type string `json:"type" yaml:"type"`
	Path string `json:"path" yaml:"path"`
}

type PlannerConfig struct {
	PromptsDir     string `json:"prompts_dir" yaml:"prompts_dir"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds"`
	UseTools       bool   `json:"use_tools" yaml:"use_tools"`
}

// AuthConfig maps bearer tokens to owner ids.
type AuthConfig struct {
	Tokens map[string]string `json:"tokens" yaml:"tokens"`
}

type GovernanceConfig struct {
	DenyPatterns []string        `json:"deny_patterns" yaml:"deny_patterns"`
	RateLimit    RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`
}

type RateLimitConfig struct {
	Requests      int `json:"requests" yaml:"requests"`
	WindowSeconds int `json:"window_seconds" yaml:"window_seconds"`
}

type ReminderConfig struct {
	IntervalHours int `json:"interval_hours" yaml:"interval_hours"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		App:       AppConfig{Name: "pathwise"},
		Server:    ServerConfig{Addr: ":5000"},
		Gateways:  map[string]GatewayConfig{},
		Providers: map[string]ProviderConfig{},
		Memory:    MemoryConfig{Type: "sqlite", Path: "pathwise.db"},
		Auth:      AuthConfig{Tokens: map[string]string{}},
		Governance: GovernanceConfig{
			RateLimit: RateLimitConfig{Requests: 100, WindowSeconds: 15 * 60},
		},
	}
}

// LoadConfig reads path over the defaults, then applies .env and
// environment overrides. A missing file is not an error. Files ending in
// .yaml or .yml are decoded as YAML, everything else as JSON.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to open config file: %w", err)
		default:
			if err := decode(path, data, cfg); err != nil {
				return nil, fmt.Errorf("failed to decode config file: %w", err)
			}
		}
	}

	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()
	cfg.applyEnv()
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func (c *Config) applyEnv() {
	if c.Gateways == nil {
		c.Gateways = map[string]GatewayConfig{}
	}
	if c.Providers == nil {
		c.Providers = map[string]ProviderConfig{}
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		p := c.Providers["googleai"]
		p.APIKey = key
		p.Enabled = true
		if p.Model == "" {
			p.Model = "gemini-2.5-flash"
		}
		c.Providers["googleai"] = p
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		p := c.Providers["openai"]
		p.APIKey = key
		p.Enabled = true
		c.Providers["openai"] = p
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		c.Gateways["telegram"] = GatewayConfig{Token: token, Enabled: true}
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if dbPath := os.Getenv("PATHWISE_DB"); dbPath != "" {
		c.Memory.Path = dbPath
	}
}

// providerPreference breaks ties between several enabled providers.
var providerPreference = []string{"googleai", "openai", "openrouter"}

// GetDefaultProvider returns the enabled provider with a key, preferring
// googleai, then openai, then openrouter, then any other name.
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	for _, name := range providerPreference {
		if p, ok := c.Providers[name]; ok && p.Enabled && p.APIKey != "" {
			return name, p
		}
	}
	for name, p := range c.Providers {
		if p.Enabled && p.APIKey != "" {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// GetTelegramConfig returns telegram config if enabled
func (c *Config) GetTelegramConfig() (GatewayConfig, bool) {
	tg, ok := c.Gateways["telegram"]
	if ok && tg.Enabled && tg.Token != "" {
		return tg, true
	}
	return GatewayConfig{}, false
}

// PlannerTimeout is zero when the provider call is unbounded.
func (c *Config) PlannerTimeout() time.Duration {
	return time.Duration(c.Planner.TimeoutSeconds) * time.Second
}

func (c *Config) RateWindow() time.Duration {
	return time.Duration(c.Governance.RateLimit.WindowSeconds) * time.Second
}

func (c *Config) ReminderInterval() time.Duration {
	return time.Duration(c.Reminders.IntervalHours) * time.Hour
}
