package config

import (
	"fmt"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment override, e.g. SDFKIT_DIM.
const EnvPrefix = "SDFKIT_"

type lookupFunc func(key string) (string, bool)

func envKey(key string) string {
	return EnvPrefix + strings.ToUpper(key)
}

// readEnv applies SDFKIT_* overrides. Empty values are ignored.
func (c *Config) readEnv(lookup lookupFunc) error {
	ints := map[string]*int{
		"dim":        &c.Dim,
		"resolution": &c.Resolution,
		"cells":      &c.Cells,
		"workers":    &c.Workers,
	}
	for key, dst := range ints {
		val, ok := lookup(envKey(key))
		if !ok || val == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("config: %s: %w", envKey(key), err)
		}
		*dst = n
	}

	if val, ok := lookup(envKey("padding")); ok && val != "" {
		p, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", envKey("padding"), err)
		}
		c.Padding = p
	}

	strs := map[string]*string{
		"log_level": &c.LogLevel,
		"out_dir":   &c.OutDir,
	}
	for key, dst := range strs {
		if val, ok := lookup(envKey(key)); ok && val != "" {
			*dst = val
		}
	}
	return nil
}
