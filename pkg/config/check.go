package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chazu/sdfkit/pkg/logging"
	"github.com/samber/lo"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// Grid sizes outside this range are either degenerate or too large to
// allocate comfortably.
const (
	MinGrid = 2
	MaxGrid = 1024
)

type checkFunc func(c *Config) error

// Validate reports the first setting that is out of range.
func (c *Config) Validate() error {
	checkFuncs := []checkFunc{
		checkGrid,
		checkPadding,
		checkCells,
		checkWorkers,
		checkLogLevel,
		checkOutDir,
	}
	for _, check := range checkFuncs {
		if err := check(c); err != nil {
			return err
		}
	}
	return nil
}

func checkGrid(c *Config) error {
	if c.Dim < MinGrid || c.Dim > MaxGrid {
		return fmt.Errorf("%w: dim %d not in [%d, %d]", ErrInvalid, c.Dim, MinGrid, MaxGrid)
	}
	if c.Resolution < MinGrid || c.Resolution > MaxGrid {
		return fmt.Errorf("%w: resolution %d not in [%d, %d]", ErrInvalid, c.Resolution, MinGrid, MaxGrid)
	}
	return nil
}

func checkPadding(c *Config) error {
	if c.Padding < 0 || c.Padding > 10 {
		return fmt.Errorf("%w: padding %g not in [0, 10]", ErrInvalid, c.Padding)
	}
	return nil
}

func checkCells(c *Config) error {
	if c.Cells < 8 || c.Cells > 4096 {
		return fmt.Errorf("%w: cells %d not in [8, 4096]", ErrInvalid, c.Cells)
	}
	return nil
}

func checkWorkers(c *Config) error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers %d is negative", ErrInvalid, c.Workers)
	}
	return nil
}

func checkLogLevel(c *Config) error {
	c.LogLevel = strings.ToLower(c.LogLevel)
	if !lo.Contains(logging.Levels, c.LogLevel) {
		return fmt.Errorf("%w: log_level %q, one of: %s", ErrInvalid, c.LogLevel, strings.Join(logging.Levels, ", "))
	}
	return nil
}

func checkOutDir(c *Config) error {
	if strings.TrimSpace(c.OutDir) == "" {
		return fmt.Errorf("%w: out_dir is empty", ErrInvalid)
	}
	return nil
}
