package config

import (
	"fmt"
)

// ParseError is returned when an environment variable cannot be parsed.
type ParseError struct {
	Variable string
	Value    string
	Cause    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %v", e.Value, e.Variable, e.Cause)
}
func (e *ParseError) Unwrap() error { return e.Cause }

// Validate checks config values for correctness.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	var errs []string

	switch c.Provider {
	case "openai", "gemini":
	default:
		errs = append(errs, fmt.Sprintf("provider must be \"openai\" or \"gemini\", got %q", c.Provider))
	}
	if c.APIKey == "" {
		errs = append(errs, "api key is required (set OPENAI_API_KEY, GEMINI_API_KEY or MERLIN_API_KEY)")
	}
	if c.Model == "" {
		errs = append(errs, "model must not be empty")
	}
	if c.FuzzySearchThreshold < 0 || c.FuzzySearchThreshold > 100 {
		errs = append(errs, "fuzzy search threshold must be between 0 and 100")
	}
	if c.DefaultSearchResults < 1 {
		errs = append(errs, "default search results must be >= 1")
	}
	if c.MaxToolCycles < 1 {
		errs = append(errs, "max tool cycles must be >= 1")
	}
	if c.CommandTimeoutSeconds < 1 {
		errs = append(errs, "command timeout must be >= 1 second")
	}
	if c.MaxCommandOutputBytes < 1 {
		errs = append(errs, "max command output bytes must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}
	return nil
}
