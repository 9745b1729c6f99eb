package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EngineConfig describes how to reach the transcription engine.
type EngineConfig struct {
	URL          string   `json:"url"`                     // websocket endpoint of the streaming engine
	ProcessHints []string `json:"process_hints,omitempty"` // bundle IDs / app names for the local helper check (darwin)
}

// ForwardConfig describes the transcript forwarding target.
type ForwardConfig struct {
	Enabled         bool   `json:"enabled"`
	Target          string `json:"target"`                  // ssh destination, e.g. "user@host"
	IdentityPath    string `json:"identity_path,omitempty"` // optional private key
	CommandTemplate string `json:"command_template"`        // contains the ${text} placeholder
}

// HoldConfig tunes the post-detection silence hold.
type HoldConfig struct {
	MaxHoldSeconds int `json:"max_hold_seconds"` // absolute cap from session start
	SilenceGapMs   int `json:"silence_gap_ms"`   // trailing-silence threshold
	PollIntervalMs int `json:"poll_interval_ms"` // hold loop poll interval
}

// Config holds all openclaw settings.
type Config struct {
	Triggers   []string      `json:"triggers"`
	Locale     string        `json:"locale"`
	Microphone string        `json:"microphone,omitempty"` // preferred input device, passed through to the engine
	AutoListen bool          `json:"auto_listen"`          // re-arm a new session after each terminal state
	Engine     EngineConfig  `json:"engine"`
	Forward    ForwardConfig `json:"forward"`
	Hold       HoldConfig    `json:"hold"`
}

// Default returns the built-in configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Triggers:   []string{"hey clawdis"},
		Locale:     "en-US",
		AutoListen: true,
		Engine: EngineConfig{
			URL: "ws://localhost:4460/v1/stream",
		},
		Forward: ForwardConfig{
			Enabled:         false,
			CommandTemplate: `agent --message "${text}"`,
		},
		Hold: HoldConfig{
			MaxHoldSeconds: 10,
			SilenceGapMs:   1000,
			PollIntervalMs: 250,
		},
	}
}

// Path returns the config file location, ~/.config/openclaw/config.json.
func Path() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "openclaw", "config.json")
}

// Load reads configuration from ~/.config/openclaw/config.json.
// Falls back to Default() if the file doesn't exist yet.
func Load() (*Config, error) {
	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			// Create the config directory so a later Save succeeds
			if err := os.MkdirAll(filepath.Dir(Path()), 0755); err != nil {
				return nil, fmt.Errorf("failed to create config directory: %w", err)
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes configuration to ~/.config/openclaw/config.json.
func Save(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(Path()), 0755); err != nil {
		return err
	}

	// Write with indentation for readability
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(Path(), data, 0644)
}

// Validate checks Config for validity.
func (c *Config) Validate() error {
	hasTrigger := false
	for _, t := range c.Triggers {
		if strings.TrimSpace(t) != "" {
			hasTrigger = true
			break
		}
	}
	if !hasTrigger {
		return fmt.Errorf("at least one non-empty trigger phrase is required")
	}

	if c.Engine.URL == "" {
		return fmt.Errorf("engine.url is required")
	}

	if c.Hold.MaxHoldSeconds < 1 || c.Hold.MaxHoldSeconds > 120 {
		return fmt.Errorf("hold.max_hold_seconds must be between 1 and 120, got %d", c.Hold.MaxHoldSeconds)
	}
	if c.Hold.SilenceGapMs < 100 || c.Hold.SilenceGapMs > 30000 {
		return fmt.Errorf("hold.silence_gap_ms must be between 100 and 30000, got %d", c.Hold.SilenceGapMs)
	}
	if c.Hold.PollIntervalMs < 10 || c.Hold.PollIntervalMs > c.Hold.SilenceGapMs {
		return fmt.Errorf("hold.poll_interval_ms must be between 10 and silence_gap_ms, got %d", c.Hold.PollIntervalMs)
	}

	if c.Forward.Enabled && strings.TrimSpace(c.Forward.Target) == "" {
		return fmt.Errorf("forward.target is required when forwarding is enabled")
	}

	return nil
}
