package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points HOME at a temp dir and clears the env overrides so each
// test sees a clean config environment.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	for _, key := range []string{
		"TRUTHWATCH_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_API_KEY",
		"TRUTHWATCH_BASE_URL", "TRUTHWATCH_MODEL", "TRUTHWATCH_ACCOUNT",
		"TRUTHWATCH_FEED_TOKEN", "TRUTHWATCH_INTERVAL",
		"TRUTHWATCH_NTFY_TOPIC", "TRUTHWATCH_TELEGRAM_TOKEN",
		"TRUTHWATCH_TELEGRAM_CHAT_ID",
	} {
		t.Setenv(key, "")
	}
	return tmpDir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Account.Handle != DefaultAccountHandle {
		t.Errorf("handle = %q, want %q", cfg.Account.Handle, DefaultAccountHandle)
	}
	if cfg.Poll.Interval != "5m" {
		t.Errorf("interval = %q, want 5m", cfg.Poll.Interval)
	}
	if cfg.Poll.Lookback != "24h" {
		t.Errorf("lookback = %q, want 24h", cfg.Poll.Lookback)
	}
	if !cfg.Channels.Ntfy.Enabled {
		t.Error("ntfy should be enabled by default")
	}
	if cfg.Channels.Telegram.Enabled {
		t.Error("telegram should be disabled by default")
	}
}

func TestLoadConfig_NoFile(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Account.Handle != DefaultAccountHandle {
		t.Errorf("handle = %q, want default", cfg.Account.Handle)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	tmpDir := isolate(t)

	cfgDir := filepath.Join(tmpDir, ".truthwatch")
	os.MkdirAll(cfgDir, 0755)
	fileCfg := map[string]any{
		"account": map[string]any{"handle": "someaccount"},
		"poll":    map[string]any{"interval": "1m"},
		"channels": map[string]any{
			"ntfy": map[string]any{"enabled": true, "topic": "my-topic"},
		},
	}
	data, _ := json.Marshal(fileCfg)
	os.WriteFile(filepath.Join(cfgDir, "config.json"), data, 0644)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Account.Handle != "someaccount" {
		t.Errorf("handle = %q, want someaccount", cfg.Account.Handle)
	}
	if cfg.Poll.Interval != "1m" {
		t.Errorf("interval = %q, want 1m", cfg.Poll.Interval)
	}
	if cfg.Channels.Ntfy.Topic != "my-topic" {
		t.Errorf("topic = %q, want my-topic", cfg.Channels.Ntfy.Topic)
	}
	// Defaults backfilled for fields the file omitted
	if cfg.Account.BaseURL != DefaultFeedBaseURL {
		t.Errorf("baseUrl = %q, want default", cfg.Account.BaseURL)
	}
	if cfg.Channels.Ntfy.Server != DefaultNtfyServer {
		t.Errorf("ntfy server = %q, want default", cfg.Channels.Ntfy.Server)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("TRUTHWATCH_API_KEY", "tw-key")
	t.Setenv("TRUTHWATCH_ACCOUNT", "another")
	t.Setenv("TRUTHWATCH_NTFY_TOPIC", "alerts")
	t.Setenv("TRUTHWATCH_TELEGRAM_CHAT_ID", "12345")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Provider.APIKey != "tw-key" {
		t.Errorf("apiKey = %q, want tw-key", cfg.Provider.APIKey)
	}
	if cfg.Account.Handle != "another" {
		t.Errorf("handle = %q, want another", cfg.Account.Handle)
	}
	if cfg.Channels.Ntfy.Topic != "alerts" {
		t.Errorf("topic = %q, want alerts", cfg.Channels.Ntfy.Topic)
	}
	if cfg.Channels.Telegram.ChatID != 12345 {
		t.Errorf("chatId = %d, want 12345", cfg.Channels.Telegram.ChatID)
	}
}

func TestLoadConfig_OpenAIKeyImpliesType(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "oa-key")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Provider.Type != "openai" {
		t.Errorf("type = %q, want openai", cfg.Provider.Type)
	}
	if cfg.Provider.APIKey != "oa-key" {
		t.Errorf("apiKey = %q, want oa-key", cfg.Provider.APIKey)
	}
}

func TestLoadConfig_ExplicitKeyWinsOverProviderKeys(t *testing.T) {
	isolate(t)
	t.Setenv("TRUTHWATCH_API_KEY", "explicit")
	t.Setenv("ANTHROPIC_API_KEY", "fallback")

	cfg, _ := LoadConfig()
	if cfg.Provider.APIKey != "explicit" {
		t.Errorf("apiKey = %q, want explicit", cfg.Provider.APIKey)
	}
}

func TestPollConfig_Durations(t *testing.T) {
	p := PollConfig{Interval: "30s", Lookback: "12h"}
	if p.IntervalDuration() != 30*time.Second {
		t.Errorf("interval = %v, want 30s", p.IntervalDuration())
	}
	if p.LookbackDuration() != 12*time.Hour {
		t.Errorf("lookback = %v, want 12h", p.LookbackDuration())
	}

	bad := PollConfig{Interval: "nonsense", Lookback: ""}
	if bad.IntervalDuration() != 5*time.Minute {
		t.Errorf("fallback interval = %v, want 5m", bad.IntervalDuration())
	}
	if bad.LookbackDuration() != 24*time.Hour {
		t.Errorf("fallback lookback = %v, want 24h", bad.LookbackDuration())
	}
}

func TestProviderConfig_ModelName(t *testing.T) {
	if got := (ProviderConfig{Model: "custom"}).ModelName(); got != "custom" {
		t.Errorf("model = %q, want custom", got)
	}
	if got := (ProviderConfig{}).ModelName(); got != DefaultAnthropicModel {
		t.Errorf("model = %q, want anthropic default", got)
	}
	if got := (ProviderConfig{Type: "openai"}).ModelName(); got != DefaultOpenAIModel {
		t.Errorf("model = %q, want openai default", got)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	isolate(t)

	cfg := DefaultConfig()
	cfg.Channels.Ntfy.Topic = "saved-topic"
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig error: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if loaded.Channels.Ntfy.Topic != "saved-topic" {
		t.Errorf("topic = %q, want saved-topic", loaded.Channels.Ntfy.Topic)
	}
}
