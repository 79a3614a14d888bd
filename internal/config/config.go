// Package config holds the run configuration. A Config is built once at
// startup and passed by value; nothing reads it from global state.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jwulff/img2wled/internal/domain"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultHost       = "wled.local"
	DefaultBrightness = 255
	DefaultBudget     = 256
	DefaultDelay      = 3000 * time.Millisecond
)

// Config is the configuration of one run.
type Config struct {
	Images []string `yaml:"images"`

	Rows int    `yaml:"rows"`
	Cols int    `yaml:"cols"`
	Host string `yaml:"host"`

	Brightness   int  `yaml:"brightness"`
	TransitionMs int  `yaml:"transition_ms"`
	Frozen       bool `yaml:"frozen"`
	Budget       int  `yaml:"budget"`

	DelayMs   int    `yaml:"delay_ms"`
	Loop      bool   `yaml:"loop"`
	Curl      bool   `yaml:"curl"`
	TestColor string `yaml:"test_color,omitempty"`
	Watch     bool   `yaml:"watch"`

	Verbose bool `yaml:"verbose"`
	Scan    bool `yaml:"-"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Rows:         domain.DefaultGridSize,
		Cols:         domain.DefaultGridSize,
		Host:         DefaultHost,
		Brightness:   DefaultBrightness,
		TransitionMs: 0,
		Budget:       DefaultBudget,
		DelayMs:      int(DefaultDelay / time.Millisecond),
	}
}

// Load reads a YAML config file. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Delay returns the pause inserted between images.
func (c Config) Delay() time.Duration {
	return time.Duration(c.DelayMs) * time.Millisecond
}

// SolidColor returns the test color, if one is set.
func (c Config) SolidColor() (domain.RGB, bool, error) {
	if c.TestColor == "" {
		return domain.RGB{}, false, nil
	}
	rgb, err := domain.ParseHexColor(c.TestColor)
	if err != nil {
		return domain.RGB{}, false, &InputError{Field: "test-color", Reason: err.Error()}
	}
	return rgb, true, nil
}

// Validate checks the configuration. All failures are InputErrors.
func (c Config) Validate() error {
	if c.Rows <= 0 {
		return &InputError{Field: "rows", Reason: fmt.Sprintf("must be positive, got %d", c.Rows)}
	}
	if c.Cols <= 0 {
		return &InputError{Field: "cols", Reason: fmt.Sprintf("must be positive, got %d", c.Cols)}
	}
	if c.Host == "" {
		return &InputError{Field: "ip", Reason: "is required"}
	}
	if c.Brightness < 0 || c.Brightness > 255 {
		return &InputError{Field: "brightness", Reason: fmt.Sprintf("must be within 0-255, got %d", c.Brightness)}
	}
	if c.TransitionMs < 0 {
		return &InputError{Field: "transition", Reason: fmt.Sprintf("must not be negative, got %d", c.TransitionMs)}
	}
	if c.Budget < 3 {
		return &InputError{Field: "budget", Reason: fmt.Sprintf("must be at least 3, got %d", c.Budget)}
	}
	if c.DelayMs < 0 {
		return &InputError{Field: "delay", Reason: fmt.Sprintf("must not be negative, got %d", c.DelayMs)}
	}

	if _, _, err := c.SolidColor(); err != nil {
		return err
	}

	if c.Scan {
		return nil
	}

	if c.Watch && (c.Loop || c.TestColor != "") {
		return &InputError{Field: "watch", Reason: "cannot be combined with loop or test-color"}
	}

	if len(c.Images) == 0 && c.TestColor == "" {
		return &InputError{Field: "filename", Reason: "required image file name"}
	}
	for _, path := range c.Images {
		if path == "" {
			return &InputError{Field: "filename", Reason: "image file name is empty"}
		}
	}

	return nil
}

// InputError is returned for invalid user input. It is fatal to the run.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsInputError checks if an error is an input error.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
