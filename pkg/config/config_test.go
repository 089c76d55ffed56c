package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port != 3000 {
		t.Errorf("expected port 3000, got %d", cfg.Port)
	}
	if cfg.Timezone != "Asia/Taipei" {
		t.Errorf("expected timezone Asia/Taipei, got %s", cfg.Timezone)
	}
	if len(cfg.TaskNames) != 3 {
		t.Errorf("expected 3 default tasks, got %d", len(cfg.TaskNames))
	}
	if cfg.LookupTimeout != 5*time.Second {
		t.Errorf("expected 5s lookup timeout, got %v", cfg.LookupTimeout)
	}
	if !cfg.SearchEnabled || !cfg.PriceEnabled {
		t.Error("search and price should be enabled by default")
	}
	if cfg.AIEnabled {
		t.Error("AI should be disabled by default")
	}
}

func TestValidateRequiresSecrets(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing secrets")
	}

	cfg.ChannelSecret = "secret"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing access token")
	}

	cfg.ChannelToken = "token"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateTaskNames(t *testing.T) {
	tests := []struct {
		name    string
		tasks   []string
		wantErr bool
	}{
		{"default roster", []string{"日文", "健身", "閱讀"}, false},
		{"empty roster", []string{}, true},
		{"blank name", []string{"日文", " "}, true},
		{"duplicate name", []string{"日文", "日文"}, true},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.ChannelSecret = "s"
		cfg.ChannelToken = "t"
		cfg.TaskNames = tt.tasks
		err := cfg.Validate()
		if tt.wantErr && err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
		}
	}
}

func TestValidateProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChannelSecret = "s"
	cfg.ChannelToken = "t"
	cfg.AIProvider = "anthropic"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "port: 8080\nchannelSecret: filesecret\ntaskNames:\n  - 日文\n  - 游泳\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if cfg.ChannelSecret != "filesecret" {
		t.Errorf("expected filesecret, got %s", cfg.ChannelSecret)
	}
	if len(cfg.TaskNames) != 2 || cfg.TaskNames[1] != "游泳" {
		t.Errorf("task roster not overridden: %v", cfg.TaskNames)
	}
	// Untouched fields keep defaults
	if cfg.Timezone != "Asia/Taipei" {
		t.Errorf("timezone should keep default, got %s", cfg.Timezone)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Errorf("missing file should not error: %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CHANNEL_SECRET", "envsecret")
	t.Setenv("CHANNEL_ACCESS_TOKEN", "envtoken")
	t.Setenv("PORT", "9090")
	t.Setenv("ENABLE_AI_FEATURES", "true")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	if cfg.ChannelSecret != "envsecret" {
		t.Errorf("expected envsecret, got %s", cfg.ChannelSecret)
	}
	if cfg.ChannelToken != "envtoken" {
		t.Errorf("expected envtoken, got %s", cfg.ChannelToken)
	}
	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if !cfg.AIEnabled {
		t.Error("expected AI enabled")
	}
}

func TestReadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	data := "# comment\nCHANNEL_SECRET=abc\nCHANNEL_ACCESS_TOKEN=\"quoted\"\n\nBROKEN_LINE\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	env := ReadEnvFile(path)
	if env["CHANNEL_SECRET"] != "abc" {
		t.Errorf("expected abc, got %q", env["CHANNEL_SECRET"])
	}
	if env["CHANNEL_ACCESS_TOKEN"] != "quoted" {
		t.Errorf("expected quotes stripped, got %q", env["CHANNEL_ACCESS_TOKEN"])
	}
	if _, ok := env["BROKEN_LINE"]; ok {
		t.Error("lines without = should be skipped")
	}
}

func TestLocationFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timezone = "Not/AZone"
	if loc := cfg.Location(); loc != time.UTC {
		t.Errorf("expected UTC fallback, got %v", loc)
	}
}
