package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateSimilarity(); err != nil {
		return err
	}
	if err := c.validateExecution(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScan() error {
	if len(c.Scan.Extensions) == 0 {
		return errors.New("scan.extensions must list at least one extension")
	}
	if c.Scan.Workers < 0 {
		return errors.New("scan.workers must not be negative")
	}
	return nil
}

func (c *Config) validateSimilarity() error {
	s := c.Similarity
	if s.Threshold < 0 || s.Threshold > 1 {
		return errors.New("similarity.threshold must be between 0 and 1")
	}
	if s.DurationAbsTolerance < 0 {
		return errors.New("similarity.duration_abs_tolerance must not be negative")
	}
	if s.DurationRelTolerance < 0 || s.DurationRelTolerance >= 1 {
		return errors.New("similarity.duration_rel_tolerance must be in [0, 1)")
	}
	if s.DurationMaxDrift <= 0 {
		return errors.New("similarity.duration_max_drift must be positive")
	}
	for _, check := range []struct {
		name  string
		value float64
	}{
		{"duration_weight", s.DurationWeight},
		{"title_weight", s.TitleWeight},
		{"plausibility_weight", s.PlausibilityWeight},
		{"duration_floor", s.DurationFloor},
		{"title_floor", s.TitleFloor},
	} {
		if check.value < 0 || check.value > 1 {
			return fmt.Errorf("similarity.%s must be between 0 and 1", check.name)
		}
	}
	if s.DurationWeight+s.TitleWeight <= 0 {
		return errors.New("similarity.duration_weight and title_weight must not both be zero")
	}
	return nil
}

func (c *Config) validateExecution() error {
	switch c.Execution.Mode {
	case "dry-run", "delete":
		return nil
	case "move":
		if c.Execution.MoveDest == "" {
			return errors.New("execution.move_dest must be set when execution.mode is move")
		}
		return nil
	default:
		return fmt.Errorf("execution.mode must be dry-run, move, or delete (got %q)", c.Execution.Mode)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}
