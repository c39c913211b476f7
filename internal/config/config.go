// Package config holds the treemap settings passed explicitly into layout,
// shading and navigation.
package config

import (
	"errors"
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Defaults taken from KDirStat's treemap settings. The light source is the
// one used in Wijk / Wetering's paper about cushion treemaps.
const (
	DefaultAmbientLight      = 40
	DefaultHeightScaleFactor = 1.0
	DefaultMinTileSize       = 3

	DefaultLightX = 0.09759
	DefaultLightY = 0.19518
	DefaultLightZ = 0.9759
)

var (
	ErrUnknownOption = errors.New("unknown option")
	ErrInvalidValue  = errors.New("invalid value")
)

// Config holds every setting the treemap core reads
type Config struct {
	AmbientLight      int     `toml:"ambient_light"`
	HeightScaleFactor float64 `toml:"height_scale_factor"`
	MinTileSize       int     `toml:"min_tile_size"`
	AutoResize        bool    `toml:"auto_resize"`
	Squarify          bool    `toml:"squarify"`
	CushionShading    bool    `toml:"cushion_shading"`
	EnsureContrast    bool    `toml:"ensure_contrast"`
	ForceCushionGrid  bool    `toml:"force_cushion_grid"`

	LightX float64 `toml:"light_x"`
	LightY float64 `toml:"light_y"`
	LightZ float64 `toml:"light_z"`

	Palette Palette `toml:"colors"`
}

// Palette holds colors as hex strings ("#rrggbb")
type Palette struct {
	Highlight   string `toml:"highlight"`
	CushionGrid string `toml:"cushion_grid"`
	Outline     string `toml:"outline"`
	FileFill    string `toml:"file_fill"`
	DirFill     string `toml:"dir_fill"`

	// Category colors
	Image      string `toml:"image"`
	Executable string `toml:"executable"`
	Audio      string `toml:"audio"`
	Backup     string `toml:"backup"`
	Archive    string `toml:"archive"`
	Document   string `toml:"document"`
	Source     string `toml:"source"`
	Video      string `toml:"video"`
	Object     string `toml:"object"`
	Directory  string `toml:"directory"`
	Generic    string `toml:"generic"`
}

// Colors is a Palette with every entry parsed
type Colors struct {
	Highlight   color.RGBA
	CushionGrid color.RGBA
	Outline     color.RGBA
	FileFill    color.RGBA
	DirFill     color.RGBA

	Image      color.RGBA
	Executable color.RGBA
	Audio      color.RGBA
	Backup     color.RGBA
	Archive    color.RGBA
	Document   color.RGBA
	Source     color.RGBA
	Video      color.RGBA
	Object     color.RGBA
	Directory  color.RGBA
	Generic    color.RGBA
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		AmbientLight:      DefaultAmbientLight,
		HeightScaleFactor: DefaultHeightScaleFactor,
		MinTileSize:       DefaultMinTileSize,
		AutoResize:        true,
		Squarify:          true,
		CushionShading:    true,
		EnsureContrast:    true,
		ForceCushionGrid:  false,
		LightX:            DefaultLightX,
		LightY:            DefaultLightY,
		LightZ:            DefaultLightZ,
		Palette:           DefaultPalette(),
	}
}

// DefaultPalette returns KDirStat's colors plus a separate source code color
func DefaultPalette() Palette {
	return Palette{
		Highlight:   "#ff0000",
		CushionGrid: "#808080",
		Outline:     "#000000",
		FileFill:    "#de8d53",
		DirFill:     "#107db4",

		Image:      "#00ffff",
		Executable: "#ff00ff",
		Audio:      "#ffff00",
		Backup:     "#ff0000",
		Archive:    "#00ff00",
		Document:   "#0000ff",
		Source:     "#a0a0ff",
		Video:      "#a0ff00",
		Object:     "#ffa000",
		Directory:  "#0000ff",
		Generic:    "#ffffff",
	}
}

// Validate checks ranges and colors
func (c Config) Validate() error {
	if c.AmbientLight < 0 || c.AmbientLight > 200 {
		return fmt.Errorf("ambientLight %d: %w (want 0..200)", c.AmbientLight, ErrInvalidValue)
	}
	if c.HeightScaleFactor <= 0 || c.HeightScaleFactor > 5 {
		return fmt.Errorf("heightScaleFactor %g: %w (want >0 and <=5)", c.HeightScaleFactor, ErrInvalidValue)
	}
	if c.MinTileSize < 0 {
		return fmt.Errorf("minTileSize %d: %w", c.MinTileSize, ErrInvalidValue)
	}
	_, err := c.Palette.Resolve()
	return err
}

// Colors parses the palette, falling back to the default palette entry for
// any color that does not parse.
func (c Config) Colors() Colors {
	colors, err := c.Palette.Resolve()
	if err == nil {
		return colors
	}
	fallback, _ := DefaultPalette().Resolve()
	p := c.Palette
	return Colors{
		Highlight:   parseOr(p.Highlight, fallback.Highlight),
		CushionGrid: parseOr(p.CushionGrid, fallback.CushionGrid),
		Outline:     parseOr(p.Outline, fallback.Outline),
		FileFill:    parseOr(p.FileFill, fallback.FileFill),
		DirFill:     parseOr(p.DirFill, fallback.DirFill),
		Image:       parseOr(p.Image, fallback.Image),
		Executable:  parseOr(p.Executable, fallback.Executable),
		Audio:       parseOr(p.Audio, fallback.Audio),
		Backup:      parseOr(p.Backup, fallback.Backup),
		Archive:     parseOr(p.Archive, fallback.Archive),
		Document:    parseOr(p.Document, fallback.Document),
		Source:      parseOr(p.Source, fallback.Source),
		Video:       parseOr(p.Video, fallback.Video),
		Object:      parseOr(p.Object, fallback.Object),
		Directory:   parseOr(p.Directory, fallback.Directory),
		Generic:     parseOr(p.Generic, fallback.Generic),
	}
}

// Resolve parses every palette entry
func (p Palette) Resolve() (Colors, error) {
	var c Colors
	entries := []struct {
		name string
		hex  string
		dst  *color.RGBA
	}{
		{"highlight", p.Highlight, &c.Highlight},
		{"cushion_grid", p.CushionGrid, &c.CushionGrid},
		{"outline", p.Outline, &c.Outline},
		{"file_fill", p.FileFill, &c.FileFill},
		{"dir_fill", p.DirFill, &c.DirFill},
		{"image", p.Image, &c.Image},
		{"executable", p.Executable, &c.Executable},
		{"audio", p.Audio, &c.Audio},
		{"backup", p.Backup, &c.Backup},
		{"archive", p.Archive, &c.Archive},
		{"document", p.Document, &c.Document},
		{"source", p.Source, &c.Source},
		{"video", p.Video, &c.Video},
		{"object", p.Object, &c.Object},
		{"directory", p.Directory, &c.Directory},
		{"generic", p.Generic, &c.Generic},
	}
	for _, e := range entries {
		rgba, err := ParseColor(e.hex)
		if err != nil {
			return Colors{}, fmt.Errorf("color %s: %w", e.name, err)
		}
		*e.dst = rgba
	}
	return c, nil
}

// ParseColor parses "#rrggbb" into an opaque color
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%q: %w", hex, ErrInvalidValue)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

func parseOr(hex string, fallback color.RGBA) color.RGBA {
	c, err := ParseColor(hex)
	if err != nil {
		return fallback
	}
	return c
}
