package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tomz197/tetris/internal/game"
)

// Settings are the game options read from the YAML settings file.
type Settings struct {
	InitialDelayMs int     `yaml:"initial_delay_ms"`
	DelayFactor    float64 `yaml:"delay_factor"`
	LevelUp        int     `yaml:"level_up"`
	Seed           int64   `yaml:"seed"`
	ShowHelp       bool    `yaml:"show_help"`
	ShowNext       bool    `yaml:"show_next"`
	Color          bool    `yaml:"color"`
}

// DefaultSettings returns the settings used when no file is given.
func DefaultSettings() Settings {
	rules := game.DefaultRules()
	return Settings{
		InitialDelayMs: int(rules.InitialDelay / time.Millisecond),
		DelayFactor:    rules.DelayFactor,
		LevelUp:        rules.LevelUp,
		ShowHelp:       true,
		ShowNext:       true,
		Color:          true,
	}
}

// Rules converts the settings into game rules.
func (s Settings) Rules() game.Rules {
	return game.Rules{
		InitialDelay: time.Duration(s.InitialDelayMs) * time.Millisecond,
		DelayFactor:  s.DelayFactor,
		LevelUp:      s.LevelUp,
	}
}

// ParseSettings decodes YAML on top of the defaults and validates the result.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("config: unmarshal settings: %w", err)
	}
	if err := s.Rules().Validate(); err != nil {
		return Settings{}, fmt.Errorf("config: %w", err)
	}
	return s, nil
}

// LoadSettings reads the settings file at path. An empty path or a missing
// file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	if path == "" {
		return DefaultSettings(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	s, err := ParseSettings(data)
	if err != nil {
		return Settings{}, fmt.Errorf("%w (%s)", err, path)
	}
	return s, nil
}
