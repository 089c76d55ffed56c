// Package config provides configuration types and defaults for habitline
// Supports dependency injection for customizable behavior
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configurable bot parameters
type Config struct {
	Host string `yaml:"host"` // Host to bind (default: "0.0.0.0")
	Port int    `yaml:"port"` // Port to listen (default: 3000)

	ChannelSecret string `yaml:"channelSecret"` // LINE channel secret (required)
	ChannelToken  string `yaml:"channelToken"`  // LINE channel access token (required)

	Timezone  string   `yaml:"timezone"`  // IANA timezone for day keys (default: "Asia/Taipei")
	TaskNames []string `yaml:"taskNames"` // Fixed daily task roster

	ReadTimeout    time.Duration `yaml:"readTimeout"`    // HTTP read timeout (default: 30s)
	WriteTimeout   time.Duration `yaml:"writeTimeout"`   // HTTP write timeout (default: 60s)
	IdleTimeout    time.Duration `yaml:"idleTimeout"`    // HTTP idle timeout (default: 120s)
	MaxBodyWebhook int64         `yaml:"maxBodyWebhook"` // Max webhook body size (default: 1MB)

	AIEnabled   bool   `yaml:"aiEnabled"`   // Use a generative provider for chat fallback
	AIProvider  string `yaml:"aiProvider"`  // "google" or "openai" (default: "google")
	GeminiKey   string `yaml:"geminiKey"`   // Gemini API key
	GeminiModel string `yaml:"geminiModel"` // default: "gemini-2.0-flash"
	OpenAIKey   string `yaml:"openaiKey"`   // OpenAI API key
	OpenAIModel string `yaml:"openaiModel"` // default: "gpt-4o-mini"

	PromptTokenBudget int           `yaml:"promptTokenBudget"` // Max prompt tokens sent to a provider (default: 1024)
	LookupTimeout     time.Duration `yaml:"lookupTimeout"`     // Timeout for search/price/AI calls (default: 5s)

	SearchEnabled bool `yaml:"searchEnabled"` // Web search command (default: true)
	PriceEnabled  bool `yaml:"priceEnabled"`  // Price lookup command (default: true)

	DBPath   string        `yaml:"dbPath"`   // SQLite activity log path ("" disables)
	DedupDir string        `yaml:"dedupDir"` // Badger dedup dir ("" = in-memory)
	DedupTTL time.Duration `yaml:"dedupTTL"` // How long webhook event IDs are remembered (default: 1h)
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *Config {
	return &Config{
		Host:              "0.0.0.0",
		Port:              3000,
		Timezone:          "Asia/Taipei",
		TaskNames:         []string{"日文", "健身", "閱讀"},
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxBodyWebhook:    1 << 20,
		AIProvider:        "google",
		GeminiModel:       "gemini-2.0-flash",
		OpenAIModel:       "gpt-4o-mini",
		PromptTokenBudget: 1024,
		LookupTimeout:     5 * time.Second,
		SearchEnabled:     true,
		PriceEnabled:      true,
		DedupTTL:          time.Hour,
	}
}

// LoadFile merges a YAML config file into c. A missing file is not an error.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides config values from environment variables.
// Names match the original deployment (.env style).
func (c *Config) ApplyEnv() {
	if v := os.Getenv("HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			c.Port = p
		}
	}
	if v := os.Getenv("CHANNEL_SECRET"); v != "" {
		c.ChannelSecret = v
	}
	if v := os.Getenv("CHANNEL_ACCESS_TOKEN"); v != "" {
		c.ChannelToken = v
	}
	if v := os.Getenv("BOT_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("ENABLE_AI_FEATURES"); v != "" {
		c.AIEnabled = parseBool(v)
	}
	if v := os.Getenv("AI_PROVIDER"); v != "" {
		c.AIProvider = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.GeminiKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.GeminiModel = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.OpenAIModel = v
	}
	if v := os.Getenv("BOT_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("BOT_DEDUP_DIR"); v != "" {
		c.DedupDir = v
	}
}

// Validate checks that required secrets are present.
// A bot without LINE credentials must not start serving.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ChannelSecret) == "" {
		return fmt.Errorf("CHANNEL_SECRET is required")
	}
	if strings.TrimSpace(c.ChannelToken) == "" {
		return fmt.Errorf("CHANNEL_ACCESS_TOKEN is required")
	}
	if len(c.TaskNames) == 0 {
		return fmt.Errorf("at least one task name is required")
	}
	seen := make(map[string]bool, len(c.TaskNames))
	for _, name := range c.TaskNames {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("task names must be non-empty")
		}
		if seen[name] {
			return fmt.Errorf("duplicate task name: %s", name)
		}
		seen[name] = true
	}
	switch c.AIProvider {
	case "", "google", "openai":
	default:
		return fmt.Errorf("unknown AI provider: %s", c.AIProvider)
	}
	return nil
}

// Location resolves the configured timezone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
