// Package config handles application configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/casper/internal/game/ai"
)

// Config holds all settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Audio   AudioConfig   `yaml:"audio"`
	Pet     PetConfig     `yaml:"pet"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	FPSLimit   int    `yaml:"fps_limit"`
}

// AudioConfig holds audio settings.
type AudioConfig struct {
	MasterVolume float32           `yaml:"master_volume"`
	SFXVolume    float32           `yaml:"sfx_volume"`
	Muted        bool              `yaml:"muted"`
	Cues         map[string]string `yaml:"cues"` // cue name -> WAV path
}

// PetConfig holds character behavior settings.
type PetConfig struct {
	Name           string   `yaml:"name"`
	Intents        []string `yaml:"intents"`
	DashCues       []string `yaml:"dash_cues"`
	IdleTimeout    float32  `yaml:"idle_timeout"`
	TicksPerSecond float32  `yaml:"ticks_per_second"`
	Scale          float32  `yaml:"scale"`
	StatesFile     string   `yaml:"states_file"`
	SpritesFile    string   `yaml:"sprites_file"`
	Watch          bool     `yaml:"watch"`
	Seed           uint64   `yaml:"seed"` // 0 picks a time-based seed
	SitOnArrival   bool     `yaml:"sit_on_arrival"`
}

// LoggingConfig holds logging settings. The rotation fields apply only
// when LogFile is set.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "Casper",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Audio: AudioConfig{
			MasterVolume: 0.8,
			SFXVolume:    0.5,
			Muted:        false,
		},
		Pet: PetConfig{
			Name:           "Casper",
			Intents:        []string{"sit", "dash", "lie_down", "look_around"},
			DashCues:       []string{"zoom1", "zoom2"},
			IdleTimeout:    ai.DefaultIdleTimeout,
			TicksPerSecond: 60,
			Scale:          3,
			SitOnArrival:   true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// ParsedIntents returns the configured intent pool.
func (p PetConfig) ParsedIntents() ([]ai.Intent, error) {
	return ai.ParseIntents(p.Intents)
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Pet.TicksPerSecond <= 0 {
		return errors.New("pet.ticks_per_second must be positive")
	}
	if c.Pet.Scale <= 0 {
		return errors.New("pet.scale must be positive")
	}
	if c.Pet.IdleTimeout < 0 {
		return errors.New("pet.idle_timeout must not be negative")
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAgeDays < 0 {
		return errors.New("logging rotation limits must not be negative")
	}
	if len(c.Pet.Intents) == 0 {
		return errors.New("pet.intents must not be empty")
	}
	if _, err := c.Pet.ParsedIntents(); err != nil {
		return fmt.Errorf("pet.intents: %w", err)
	}
	return nil
}
