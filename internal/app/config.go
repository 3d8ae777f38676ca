package app

import (
	"errors"
	"fmt"
)

// outputFormats are the accepted values of the Output field. "text" is the
// colored key=value listing; the rest select a codec.
var outputFormats = map[string]bool{
	"text":       true,
	"properties": true,
	"json":       true,
	"yaml":       true,
	"hcl":        true,
	"url":        true,
}

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Seeds are the root resource URIs, resolved in the given order.
	Seeds []string
	// Vars are externally supplied variables, the last interpolation tier.
	Vars map[string]string
	// Args are key=value tokens served by the args: scheme.
	Args []string

	LogFormat string
	LogLevel  string
	Output    string
	NoColor   bool
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Seeds) == 0 {
		return nil, errors.New("at least one resource URI is required")
	}
	if cfg.Output == "" {
		cfg.Output = "text"
	}
	if !outputFormats[cfg.Output] {
		return nil, fmt.Errorf("invalid output format %q", cfg.Output)
	}
	return &cfg, nil
}
