package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// RuntimeConfig carries optional overrides loaded from a configuration
// file. Pointer fields distinguish unset from zero.
type RuntimeConfig struct {
	PulseR *uint8
	PulseG *uint8
	PulseB *uint8

	SpectrumR *uint8
	SpectrumG *uint8
	SpectrumB *uint8

	Sensitivity *float64
}

// DefaultPulseColor is the accent of the beat pulse display.
func DefaultPulseColor() (r, g, b uint8) {
	return 255, 45, 120
}

// DefaultSpectrumColor is the accent of the spectrum display.
func DefaultSpectrumColor() (r, g, b uint8) {
	return 0, 229, 255
}

// GetPulseColor returns the pulse accent. The override applies only
// when every component is set.
func (c *RuntimeConfig) GetPulseColor() (r, g, b uint8) {
	if c != nil && c.PulseR != nil && c.PulseG != nil && c.PulseB != nil {
		return *c.PulseR, *c.PulseG, *c.PulseB
	}
	return DefaultPulseColor()
}

// GetSpectrumColor returns the spectrum accent. The override applies
// only when every component is set.
func (c *RuntimeConfig) GetSpectrumColor() (r, g, b uint8) {
	if c != nil && c.SpectrumR != nil && c.SpectrumG != nil && c.SpectrumB != nil {
		return *c.SpectrumR, *c.SpectrumG, *c.SpectrumB
	}
	return DefaultSpectrumColor()
}

// GetSensitivity returns the spectrum gain override or the default.
func (c *RuntimeConfig) GetSensitivity() float64 {
	if c != nil && c.Sensitivity != nil {
		return *c.Sensitivity
	}
	return SpectrumSensitivity
}

// ParseHexColor parses "#RRGGBB" or "RRGGBB" into components.
func ParseHexColor(s string) (r, g, b uint8, err error) {
	trimmed := strings.TrimPrefix(s, "#")
	if len(trimmed) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid hex color %q", s)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

// Load reads the configuration file at path into a RuntimeConfig. An
// empty path yields defaults.
func Load(path string) (*RuntimeConfig, error) {
	cfg := &RuntimeConfig{}
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	setViperDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if s := v.GetString("colors.pulse"); s != "" {
		r, g, b, err := ParseHexColor(s)
		if err != nil {
			return nil, fmt.Errorf("colors.pulse: %w", err)
		}
		cfg.PulseR, cfg.PulseG, cfg.PulseB = &r, &g, &b
	}
	if s := v.GetString("colors.spectrum"); s != "" {
		r, g, b, err := ParseHexColor(s)
		if err != nil {
			return nil, fmt.Errorf("colors.spectrum: %w", err)
		}
		cfg.SpectrumR, cfg.SpectrumG, cfg.SpectrumB = &r, &g, &b
	}
	if f := v.GetFloat64("spectrum.sensitivity"); f != 0 {
		if f < 0 {
			return nil, fmt.Errorf("spectrum.sensitivity must be positive, got %v", f)
		}
		cfg.Sensitivity = &f
	}

	return cfg, nil
}

func setViperDefaults(v *viper.Viper) {
	v.SetDefault("colors.pulse", "")
	v.SetDefault("colors.spectrum", "")
	v.SetDefault("spectrum.sensitivity", 0.0)
}
