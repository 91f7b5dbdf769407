package config

import (
	"github.com/spf13/pflag"
)

// Flag names shared with the command line.
const (
	FlagConfig     = "config"
	FlagDim        = "dim"
	FlagPadding    = "padding"
	FlagResolution = "resolution"
	FlagCells      = "cells"
	FlagWorkers    = "workers"
	FlagLogLevel   = "log-level"
	FlagOutDir     = "out-dir"
)

// BindFlags registers the configuration flags on flags. Flag defaults are
// for help text only; Load applies a flag only when it was set.
func BindFlags(flags *pflag.FlagSet) {
	def := Default()
	flags.String(FlagConfig, "", "config file (default "+DefaultPath+")")
	flags.Int(FlagDim, def.Dim, "samples per axis for shapes and meshes")
	flags.Float64(FlagPadding, def.Padding, "fraction of the extent added around each shape")
	flags.Int(FlagResolution, def.Resolution, "grid size for booleans and sweeps")
	flags.Int(FlagCells, def.Cells, "marching cubes cells along the longest axis")
	flags.Int(FlagWorkers, def.Workers, "grid fill goroutines (0 = GOMAXPROCS)")
	flags.String(FlagLogLevel, def.LogLevel, "log level")
	flags.String(FlagOutDir, def.OutDir, "directory for exported meshes")
}

// readFlags applies every flag the user set explicitly.
func (c *Config) readFlags(flags *pflag.FlagSet) error {
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case FlagDim:
			c.Dim, err = flags.GetInt(f.Name)
		case FlagPadding:
			c.Padding, err = flags.GetFloat64(f.Name)
		case FlagResolution:
			c.Resolution, err = flags.GetInt(f.Name)
		case FlagCells:
			c.Cells, err = flags.GetInt(f.Name)
		case FlagWorkers:
			c.Workers, err = flags.GetInt(f.Name)
		case FlagLogLevel:
			c.LogLevel = f.Value.String()
		case FlagOutDir:
			c.OutDir = f.Value.String()
		}
	})
	return err
}
