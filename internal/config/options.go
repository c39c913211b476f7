package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// OptionNames lists every name accepted by Set, sorted
func OptionNames() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromOptions applies the flat named options on top of the defaults
func FromOptions(opts map[string]string) (Config, error) {
	cfg := Default()
	if err := cfg.Apply(opts); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Apply sets every option in opts, in name order so errors are
// reproducible
func (c *Config) Apply(opts map[string]string) error {
	names := make([]string, 0, len(opts))
	for name := range opts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := c.Set(name, opts[name]); err != nil {
			return err
		}
	}
	return c.Validate()
}

// Set assigns a single named option such as "minTileSize" or "imageColor"
func (c *Config) Set(name, value string) error {
	set, ok := setters[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrUnknownOption)
	}
	if err := set(c, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%s=%q: %w", name, value, err)
	}
	return nil
}

// ParseAssignments turns "name=value" strings into an options map
func ParseAssignments(assignments []string) (map[string]string, error) {
	opts := make(map[string]string, len(assignments))
	for _, a := range assignments {
		name, value, ok := strings.Cut(a, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("option %q: %w (want name=value)", a, ErrInvalidValue)
		}
		opts[strings.TrimSpace(name)] = value
	}
	return opts, nil
}

type setter func(c *Config, value string) error

var setters = map[string]setter{
	"ambientLight":      intSetter(func(c *Config) *int { return &c.AmbientLight }),
	"heightScaleFactor": floatSetter(func(c *Config) *float64 { return &c.HeightScaleFactor }),
	"minTileSize":       intSetter(func(c *Config) *int { return &c.MinTileSize }),
	"autoResize":        boolSetter(func(c *Config) *bool { return &c.AutoResize }),
	"squarify":          boolSetter(func(c *Config) *bool { return &c.Squarify }),
	"cushionShading":    boolSetter(func(c *Config) *bool { return &c.CushionShading }),
	"ensureContrast":    boolSetter(func(c *Config) *bool { return &c.EnsureContrast }),
	"forceCushionGrid":  boolSetter(func(c *Config) *bool { return &c.ForceCushionGrid }),
	"lightX":            floatSetter(func(c *Config) *float64 { return &c.LightX }),
	"lightY":            floatSetter(func(c *Config) *float64 { return &c.LightY }),
	"lightZ":            floatSetter(func(c *Config) *float64 { return &c.LightZ }),

	"highlightColor":   colorSetter(func(c *Config) *string { return &c.Palette.Highlight }),
	"cushionGridColor": colorSetter(func(c *Config) *string { return &c.Palette.CushionGrid }),
	"outlineColor":     colorSetter(func(c *Config) *string { return &c.Palette.Outline }),
	"fileFillColor":    colorSetter(func(c *Config) *string { return &c.Palette.FileFill }),
	"dirFillColor":     colorSetter(func(c *Config) *string { return &c.Palette.DirFill }),
	"imageColor":       colorSetter(func(c *Config) *string { return &c.Palette.Image }),
	"executableColor":  colorSetter(func(c *Config) *string { return &c.Palette.Executable }),
	"audioColor":       colorSetter(func(c *Config) *string { return &c.Palette.Audio }),
	"backupColor":      colorSetter(func(c *Config) *string { return &c.Palette.Backup }),
	"archiveColor":     colorSetter(func(c *Config) *string { return &c.Palette.Archive }),
	"documentColor":    colorSetter(func(c *Config) *string { return &c.Palette.Document }),
	"sourceColor":      colorSetter(func(c *Config) *string { return &c.Palette.Source }),
	"videoColor":       colorSetter(func(c *Config) *string { return &c.Palette.Video }),
	"objectColor":      colorSetter(func(c *Config) *string { return &c.Palette.Object }),
	"directoryColor":   colorSetter(func(c *Config) *string { return &c.Palette.Directory }),
	"genericColor":     colorSetter(func(c *Config) *string { return &c.Palette.Generic }),
}

func intSetter(field func(*Config) *int) setter {
	return func(c *Config, value string) error {
		v, err := strconv.Atoi(value)
		if err != nil {
			return ErrInvalidValue
		}
		*field(c) = v
		return nil
	}
}

func floatSetter(field func(*Config) *float64) setter {
	return func(c *Config, value string) error {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return ErrInvalidValue
		}
		*field(c) = v
		return nil
	}
}

func boolSetter(field func(*Config) *bool) setter {
	return func(c *Config, value string) error {
		v, err := strconv.ParseBool(value)
		if err != nil {
			return ErrInvalidValue
		}
		*field(c) = v
		return nil
	}
}

func colorSetter(field func(*Config) *string) setter {
	return func(c *Config, value string) error {
		if _, err := ParseColor(value); err != nil {
			return ErrInvalidValue
		}
		*field(c) = value
		return nil
	}
}
