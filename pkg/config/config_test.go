package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

// isolateHome points the default config path at an empty directory.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	return home
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolateHome(t)

	c, err := Load(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadHomeFile(t *testing.T) {
	home := isolateHome(t)
	writeFile(t, home, ".sdfkit.toml", "dim = 32\nout_dir = \"build\"\n")

	c, err := Load(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, 32, c.Dim)
	assert.Equal(t, "build", c.OutDir)
	assert.Equal(t, Default().Cells, c.Cells)
}

func TestPrecedence(t *testing.T) {
	isolateHome(t)
	path := writeFile(t, t.TempDir(), "sdfkit.toml", `
dim = 32
padding = 0.25
resolution = 48
cells = 100
log_level = "info"
`)
	t.Setenv("SDFKIT_DIM", "40")
	t.Setenv("SDFKIT_CELLS", "120")
	t.Setenv("SDFKIT_LOG_LEVEL", "")

	c, err := Load(newFlags(t, "--config", path, "--dim", "50", "--workers", "3"))
	require.NoError(t, err)

	assert.Equal(t, 50, c.Dim, "flag beats env and file")
	assert.Equal(t, 120, c.Cells, "env beats file")
	assert.Equal(t, 0.25, c.Padding, "file beats default")
	assert.Equal(t, 48, c.Resolution)
	assert.Equal(t, 3, c.Workers)
	assert.Equal(t, "info", c.LogLevel, "empty env value is ignored")
}

func TestExplicitConfigMustExist(t *testing.T) {
	isolateHome(t)
	_, err := Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "missing.toml")))
	require.Error(t, err)
}

func TestUnknownKey(t *testing.T) {
	isolateHome(t)
	path := writeFile(t, t.TempDir(), "bad.toml", "dim = 32\ncolour = \"red\"\n")

	_, err := Load(newFlags(t, "--config", path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.toml")
}

func TestBadEnv(t *testing.T) {
	isolateHome(t)
	t.Setenv("SDFKIT_PADDING", "lots")

	_, err := Load(newFlags(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SDFKIT_PADDING")
}

func TestWriteReadFile(t *testing.T) {
	c := Default()
	c.Dim = 17
	c.LogLevel = "debug"
	path := filepath.Join(t.TempDir(), "out.toml")
	require.NoError(t, c.Write(path))

	got := Default()
	require.NoError(t, got.ReadFile(path))
	assert.Equal(t, c, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		want   string
	}{
		{"dim too small", func(c *Config) { c.Dim = 1 }, "dim 1"},
		{"dim too large", func(c *Config) { c.Dim = 5000 }, "dim 5000"},
		{"resolution", func(c *Config) { c.Resolution = 0 }, "resolution 0"},
		{"negative padding", func(c *Config) { c.Padding = -0.1 }, "padding"},
		{"cells", func(c *Config) { c.Cells = 4 }, "cells 4"},
		{"workers", func(c *Config) { c.Workers = -2 }, "workers -2"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"out dir", func(c *Config) { c.OutDir = "  " }, "out_dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(&c)
			err := c.Validate()
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateNormalizesLogLevel(t *testing.T) {
	c := Default()
	c.LogLevel = "DEBUG"
	require.NoError(t, c.Validate())
	assert.Equal(t, "debug", c.LogLevel)
}
