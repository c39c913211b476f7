package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// file mirrors the on-disk layout: everything lives in a [treemaps] table
type file struct {
	Treemaps Config `toml:"treemaps"`
}

// DefaultPath returns the default config file location
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "treemapview.toml"
	}
	return filepath.Join(dir, "treemapview", "config.toml")
}

// Load reads a TOML config file. Keys missing from the file keep their
// default values. A missing file is not an error when allowMissing is set.
func Load(path string, allowMissing bool) (Config, error) {
	f := file{Treemaps: Default()}

	data, err := os.ReadFile(path)
	if err != nil {
		if allowMissing && os.IsNotExist(err) {
			return f.Treemaps, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := Decode(string(data), &f.Treemaps); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return f.Treemaps, nil
}

// Decode parses TOML text into cfg, keeping fields the text does not set
func Decode(text string, cfg *Config) error {
	f := file{Treemaps: *cfg}
	md, err := toml.Decode(text, &f)
	if err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("key %s: %w", undecoded[0].String(), ErrUnknownOption)
	}
	if err := f.Treemaps.Validate(); err != nil {
		return err
	}
	*cfg = f.Treemaps
	return nil
}
