package animplay

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/opd-ai/animplay/clock"
)

// Config is the YAML-loadable form of Options for deployments that keep
// playback tuning in a config file rather than code.
type Config struct {
	// RepeatCount is the number of loops to play; 0 loops forever.
	RepeatCount int `yaml:"repeatCount"`

	// Window is the preload window width; 0 decodes eagerly.
	Window int `yaml:"window"`

	// MaxTimeStepMillis clamps a single tick's elapsed time; 0 selects
	// the default.
	MaxTimeStepMillis int `yaml:"maxTimeStepMillis"`

	Canvas struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"canvas"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the config for values no animator could run with.
func (c *Config) Validate() error {
	if c.RepeatCount < 0 {
		return fmt.Errorf("%w: repeatCount %d", ErrInvalidOptions, c.RepeatCount)
	}
	if c.Window < 0 {
		return fmt.Errorf("%w: window %d", ErrInvalidOptions, c.Window)
	}
	if c.MaxTimeStepMillis < 0 {
		return fmt.Errorf("%w: maxTimeStepMillis %d", ErrInvalidOptions, c.MaxTimeStepMillis)
	}
	if c.Canvas.Width < 0 || c.Canvas.Height < 0 {
		return fmt.Errorf("%w: canvas %dx%d", ErrInvalidOptions, c.Canvas.Width, c.Canvas.Height)
	}
	return nil
}

// Options converts the config into runnable animator options.
func (c *Config) Options() Options {
	opts := DefaultOptions()
	if c.RepeatCount > 0 {
		opts.Repeat = clock.RepeatCount(c.RepeatCount)
	}
	opts.Window = c.Window
	if c.MaxTimeStepMillis > 0 {
		opts.MaxTimeStep = time.Duration(c.MaxTimeStepMillis) * time.Millisecond
	}
	opts.CanvasWidth = c.Canvas.Width
	opts.CanvasHeight = c.Canvas.Height
	return opts
}
