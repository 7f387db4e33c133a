package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

const DefaultPath = "~/.config/tuck/config.toml"

type Config struct {
	AppName    string          `toml:"app_name"`
	SocketPath string          `toml:"socket_path"`
	StateDir   string          `toml:"state_dir"`
	LogFile    string          `toml:"log_file"`
	PidFile    string          `toml:"pid_file"`
	StylePath  string          `toml:"style_path"`
	Bar        BarConfig       `toml:"bar"`
	Shortcuts  ShortcutsConfig `toml:"shortcuts"`
}

type BarConfig struct {
	Height            int    `toml:"height"`
	HiddenExtent      int    `toml:"hidden_extent"`
	Margin            int    `toml:"margin"`
	SeparatorAutosave string `toml:"separator_autosave"`
	ChevronTooltip    string `toml:"chevron_tooltip"`
	ExpandIcon        string `toml:"expand_icon"`
	CollapseIcon      string `toml:"collapse_icon"`
	SeparatorIcon     string `toml:"separator_icon"`
	IconCacheSize     int    `toml:"icon_cache_size"`
}

type ShortcutsConfig struct {
	Enabled       bool   `toml:"enabled"`
	Toggle        string `toml:"toggle"`
	ResetModifier string `toml:"reset_modifier"`
}

var DefaultConfig = Config{
	AppName:    "tuck",
	SocketPath: "/tmp/tuck_socket",
	StateDir:   "~/.local/state/tuck",
	LogFile:    "~/.cache/tuck/tuck.log",
	PidFile:    "~/.cache/tuck/tuck.pid",
	StylePath:  "~/.config/tuck/style.css",
	Bar: BarConfig{
		Height:            24,
		HiddenExtent:      10000,
		Margin:            0,
		SeparatorAutosave: "tuck.separator",
		ChevronTooltip:    "Left click: toggle | Right click: menu",
		ExpandIcon:        "pan-end-symbolic",
		CollapseIcon:      "pan-start-symbolic",
		SeparatorIcon:     "",
		IconCacheSize:     16,
	},
	Shortcuts: ShortcutsConfig{
		Enabled:       true,
		Toggle:        "Mod4+Ctrl+m",
		ResetModifier: "Mod1",
	},
}

// LoadConfig reads path on top of DefaultConfig. A missing file yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	expandedPath := expandPath(path)

	cfg := DefaultConfig
	if _, err := os.Stat(expandedPath); os.IsNotExist(err) {
		cfg.expandPaths()
		return &cfg, nil
	}

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.expandPaths()
	return &cfg, nil
}

func LoadAndValidateConfig(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) expandPaths() {
	c.SocketPath = expandPath(c.SocketPath)
	c.StateDir = expandPath(c.StateDir)
	c.LogFile = expandPath(c.LogFile)
	c.PidFile = expandPath(c.PidFile)
	c.StylePath = expandPath(c.StylePath)
}

func expandPath(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}

func SaveConfig(cfg *Config, path string) error {
	expandedPath := expandPath(path)

	dir := filepath.Dir(expandedPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(expandedPath, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateBar(); err != nil {
		return err
	}
	if err := c.validateShortcuts(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.SocketPath == "" {
		return fmt.Errorf("socket_path must not be empty")
	}
	if c.StateDir == "" {
		return fmt.Errorf("state_dir must not be empty")
	}
	return nil
}

func (c *Config) validateBar() error {
	b := c.Bar
	if b.Height < 10 || b.Height > 100 {
		return fmt.Errorf("invalid bar height: %d (must be 10-100px)", b.Height)
	}
	if b.HiddenExtent < 1000 || b.HiddenExtent > 100000 {
		return fmt.Errorf("invalid hidden_extent: %d (must be 1000-100000px)", b.HiddenExtent)
	}
	if b.Margin < 0 || b.Margin > 200 {
		return fmt.Errorf("invalid bar margin: %d (must be 0-200px)", b.Margin)
	}
	if b.SeparatorAutosave == "" {
		return fmt.Errorf("separator_autosave must not be empty")
	}
	if strings.ContainsAny(b.SeparatorAutosave, `/\`) {
		return fmt.Errorf("invalid separator_autosave: %q (must not contain path separators)", b.SeparatorAutosave)
	}
	if b.IconCacheSize < 1 || b.IconCacheSize > 1000 {
		return fmt.Errorf("invalid icon_cache_size: %d (must be 1-1000)", b.IconCacheSize)
	}
	return nil
}

func (c *Config) validateShortcuts() error {
	s := c.Shortcuts
	if !s.Enabled {
		return nil
	}
	if !strings.Contains(s.Toggle, "+") {
		return fmt.Errorf("invalid toggle chord: %q (need modifier+key)", s.Toggle)
	}
	if s.ResetModifier == "" {
		return fmt.Errorf("reset_modifier must not be empty")
	}
	return nil
}

func ValidateConfig(path string) error {
	_, err := LoadAndValidateConfig(path)
	return err
}
