// Package config resolves sdfkit settings from an optional TOML file,
// SDFKIT_* environment variables and command-line flags, in that order of
// increasing precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
)

// DefaultPath is read when no --config flag is given. A missing file at
// this location is not an error.
const DefaultPath = "~/.sdfkit.toml"

// Config holds every tunable the command line exposes.
type Config struct {
	// Dim is the samples per axis for shapes and meshes.
	Dim int `toml:"dim"`
	// Padding is the fraction of each axis extent added around a shape.
	Padding float64 `toml:"padding"`
	// Resolution is the grid size for booleans and sweeps.
	Resolution int `toml:"resolution"`
	// Cells is the marching cubes resolution used for export.
	Cells int `toml:"cells"`
	// Workers bounds grid fill goroutines. Zero means GOMAXPROCS.
	Workers int `toml:"workers"`
	LogLevel string `toml:"log_level"`
	OutDir   string `toml:"out_dir"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Dim:        64,
		Padding:    0.1,
		Resolution: 64,
		Cells:      200,
		Workers:    0,
		LogLevel:   "warn",
		OutDir:     ".",
	}
}

// ReadFile decodes path over c. Keys absent from the file keep their
// current values; unknown keys are an error.
func (c *Config) ReadFile(path string) error {
	full, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return fmt.Errorf("config: %s:%d:%d: %w", full, row, col, err)
		}
		return fmt.Errorf("config: %s: %w", full, err)
	}
	return nil
}

// Write encodes c as TOML to path.
func (c *Config) Write(path string) error {
	full, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return os.WriteFile(full, data, 0o644)
}

// Load resolves the configuration for a parsed flag set registered with
// BindFlags. The file named by --config is required to exist; the default
// file is optional.
func Load(flags *pflag.FlagSet) (Config, error) {
	c := Default()

	path, explicit := DefaultPath, false
	if f := flags.Lookup(FlagConfig); f != nil && f.Changed {
		path, explicit = f.Value.String(), true
	}
	if err := c.ReadFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	if err := c.readEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := c.readFlags(flags); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
