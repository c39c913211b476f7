package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestFromOptions(t *testing.T) {
	cfg, err := FromOptions(map[string]string{
		"ambientLight":      "60",
		"heightScaleFactor": "0.75",
		"minTileSize":       "5",
		"squarify":          "false",
		"cushionShading":    "false",
		"ensureContrast":    "false",
		"forceCushionGrid":  "true",
		"imageColor":        "#112233",
	})
	if err != nil {
		t.Fatalf("FromOptions failed: %v", err)
	}

	if cfg.AmbientLight != 60 || cfg.HeightScaleFactor != 0.75 || cfg.MinTileSize != 5 {
		t.Errorf("numeric options not applied: %+v", cfg)
	}
	if cfg.Squarify || cfg.CushionShading || cfg.EnsureContrast || !cfg.ForceCushionGrid {
		t.Errorf("bool options not applied: %+v", cfg)
	}
	want := color.RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0xff}
	if got := cfg.Colors().Image; got != want {
		t.Errorf("image color = %v, want %v", got, want)
	}
}

func TestFromOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts map[string]string
		want error
	}{
		{"unknown", map[string]string{"bogus": "1"}, ErrUnknownOption},
		{"not a number", map[string]string{"minTileSize": "big"}, ErrInvalidValue},
		{"out of range", map[string]string{"ambientLight": "500"}, ErrInvalidValue},
		{"bad color", map[string]string{"outlineColor": "black"}, ErrInvalidValue},
		{"bad bool", map[string]string{"squarify": "maybe"}, ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromOptions(tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseAssignments(t *testing.T) {
	opts, err := ParseAssignments([]string{"minTileSize=4", "squarify = false"})
	if err != nil {
		t.Fatalf("ParseAssignments failed: %v", err)
	}
	if opts["minTileSize"] != "4" || opts["squarify"] != " false" {
		t.Errorf("unexpected options: %v", opts)
	}

	if _, err := ParseAssignments([]string{"novalue"}); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[treemaps]
min_tile_size = 7
squarify = false

[treemaps.colors]
dir_fill = "#010203"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MinTileSize != 7 || cfg.Squarify {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.AmbientLight != DefaultAmbientLight || !cfg.CushionShading {
		t.Errorf("missing keys should keep defaults: %+v", cfg)
	}
	if cfg.Palette.DirFill != "#010203" || cfg.Palette.Image != DefaultPalette().Image {
		t.Errorf("palette not merged: %+v", cfg.Palette)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("expected defaults for missing file, got %v", err)
	}
	if cfg.MinTileSize != DefaultMinTileSize {
		t.Errorf("expected default min tile size, got %d", cfg.MinTileSize)
	}

	if _, err := Load(path, false); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDecodeUnknownKey(t *testing.T) {
	cfg := Default()
	err := Decode("[treemaps]\nshiny = true\n", &cfg)
	if !errors.Is(err, ErrUnknownOption) {
		t.Errorf("expected ErrUnknownOption, got %v", err)
	}
}

func TestColorsFallback(t *testing.T) {
	cfg := Default()
	cfg.Palette.Audio = "not-a-color"

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error")
	}
	defaults, _ := DefaultPalette().Resolve()
	if got := cfg.Colors().Audio; got != defaults.Audio {
		t.Errorf("expected fallback %v, got %v", defaults.Audio, got)
	}
}
