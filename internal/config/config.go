package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	DefaultAccountHandle  = "realDonaldTrump"
	DefaultFeedBaseURL    = "https://truthsocial.com"
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultMaxTokens      = 1024
	DefaultInterval       = "5m"
	DefaultLookback       = "24h"
	DefaultNtfyServer     = "https://ntfy.sh"
)

type Config struct {
	Account  AccountConfig  `json:"account"`
	Provider ProviderConfig `json:"provider"`
	Poll     PollConfig     `json:"poll"`
	Channels ChannelsConfig `json:"channels"`
	State    StateConfig    `json:"state"`
}

type AccountConfig struct {
	Handle  string `json:"handle"`
	BaseURL string `json:"baseUrl,omitempty"`
	Token   string `json:"token,omitempty"`
}

type ProviderConfig struct {
	Type      string `json:"type,omitempty"` // "anthropic" (default) or "openai"
	APIKey    string `json:"apiKey"`
	BaseURL   string `json:"baseUrl,omitempty"`
	Model     string `json:"model,omitempty"`
	MaxTokens int    `json:"maxTokens,omitempty"`
}

type PollConfig struct {
	Interval string `json:"interval"`
	Schedule string `json:"schedule,omitempty"` // cron expression, overrides Interval
	Lookback string `json:"lookback"`
}

type ChannelsConfig struct {
	Ntfy     NtfyConfig     `json:"ntfy"`
	Telegram TelegramConfig `json:"telegram"`
}

type NtfyConfig struct {
	Enabled bool   `json:"enabled"`
	Server  string `json:"server,omitempty"`
	Topic   string `json:"topic"`
}

type TelegramConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  int64  `json:"chatId"`
}

type StateConfig struct {
	Dir string `json:"dir,omitempty"`
}

// IntervalDuration parses the poll interval, falling back to the default
// when unset or unparsable.
func (p PollConfig) IntervalDuration() time.Duration {
	if d, err := time.ParseDuration(p.Interval); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultInterval)
	return d
}

// LookbackDuration parses the cold-start lookback window, falling back to
// the default when unset or unparsable.
func (p PollConfig) LookbackDuration() time.Duration {
	if d, err := time.ParseDuration(p.Lookback); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultLookback)
	return d
}

// ModelName returns the configured model, or the provider's default.
func (p ProviderConfig) ModelName() string {
	if p.Model != "" {
		return p.Model
	}
	if p.Type == "openai" {
		return DefaultOpenAIModel
	}
	return DefaultAnthropicModel
}

func DefaultConfig() *Config {
	return &Config{
		Account: AccountConfig{
			Handle:  DefaultAccountHandle,
			BaseURL: DefaultFeedBaseURL,
		},
		Provider: ProviderConfig{
			MaxTokens: DefaultMaxTokens,
		},
		Poll: PollConfig{
			Interval: DefaultInterval,
			Lookback: DefaultLookback,
		},
		Channels: ChannelsConfig{
			Ntfy: NtfyConfig{
				Enabled: true,
				Server:  DefaultNtfyServer,
			},
		},
	}
}

func ConfigDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".truthwatch")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// StateDir is where the cursor lives; defaults to the config directory.
func (c *Config) StateDir() string {
	if c.State.Dir != "" {
		return c.State.Dir
	}
	return ConfigDir()
}

func (c *Config) CursorPath() string {
	return filepath.Join(c.StateDir(), "cursor.json")
}

func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if key := os.Getenv("TRUTHWATCH_API_KEY"); key != "" {
		cfg.Provider.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = key
		if cfg.Provider.Type == "" {
			cfg.Provider.Type = "openai"
		}
	}
	if url := os.Getenv("TRUTHWATCH_BASE_URL"); url != "" {
		cfg.Provider.BaseURL = url
	}
	if model := os.Getenv("TRUTHWATCH_MODEL"); model != "" {
		cfg.Provider.Model = model
	}
	if handle := os.Getenv("TRUTHWATCH_ACCOUNT"); handle != "" {
		cfg.Account.Handle = handle
	}
	if token := os.Getenv("TRUTHWATCH_FEED_TOKEN"); token != "" {
		cfg.Account.Token = token
	}
	if interval := os.Getenv("TRUTHWATCH_INTERVAL"); interval != "" {
		cfg.Poll.Interval = interval
	}
	if topic := os.Getenv("TRUTHWATCH_NTFY_TOPIC"); topic != "" {
		cfg.Channels.Ntfy.Topic = topic
	}
	if token := os.Getenv("TRUTHWATCH_TELEGRAM_TOKEN"); token != "" {
		cfg.Channels.Telegram.Token = token
	}
	if chatID := os.Getenv("TRUTHWATCH_TELEGRAM_CHAT_ID"); chatID != "" {
		if parsed, err := strconv.ParseInt(chatID, 10, 64); err == nil {
			cfg.Channels.Telegram.ChatID = parsed
		}
	}

	if cfg.Account.Handle == "" {
		cfg.Account.Handle = DefaultAccountHandle
	}
	if cfg.Account.BaseURL == "" {
		cfg.Account.BaseURL = DefaultFeedBaseURL
	}
	if cfg.Provider.MaxTokens <= 0 {
		cfg.Provider.MaxTokens = DefaultMaxTokens
	}
	if cfg.Channels.Ntfy.Server == "" {
		cfg.Channels.Ntfy.Server = DefaultNtfyServer
	}

	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(ConfigPath(), data, 0644)
}
