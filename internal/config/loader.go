package config

import (
	"os"
	"strconv"
	"strings"
)

// RootPrefix is the environment variable prefix for sandbox root directories.
// MERLIN_DIR_WORK=/path/to/work becomes the root named "work".
const RootPrefix = "MERLIN_DIR_"

// Environment abstracts environment access for testability.
type Environment interface {
	Getenv(key string) string
	Environ() []string
}

// OSEnvironment implements Environment using the real process environment.
type OSEnvironment struct{}

func (OSEnvironment) Getenv(key string) string { return os.Getenv(key) }
func (OSEnvironment) Environ() []string        { return os.Environ() }

// Loader handles configuration loading with an injected environment.
type Loader struct {
	env Environment
}

// NewLoader creates a production Loader using the real environment.
func NewLoader() *Loader {
	return &Loader{env: OSEnvironment{}}
}

// NewLoaderWithEnv creates a Loader with a custom environment (for testing).
func NewLoaderWithEnv(env Environment) *Loader {
	return &Loader{env: env}
}

// Load builds a Config from defaults overlaid with environment values.
// Missing variables leave the defaults untouched. Returns an error for
// malformed values or failed validation; a missing API key is a validation
// error because nothing downstream can work without it.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if v := l.env.Getenv("MERLIN_PROVIDER"); v != "" {
		cfg.Provider = strings.ToLower(v)
	}
	if v := l.env.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	if v := l.env.Getenv("MODEL_NAME"); v != "" {
		cfg.Model = v
	}
	if v := strings.TrimSpace(l.env.Getenv("SYSTEM_PROMPT")); v != "" {
		cfg.SystemPrompt = v
	}

	cfg.APIKey = l.apiKey(cfg.Provider)

	intFields := []struct {
		key string
		dst *int
	}{
		{"FUZZY_SEARCH_THRESHOLD", &cfg.FuzzySearchThreshold},
		{"DEFAULT_SEARCH_RESULTS", &cfg.DefaultSearchResults},
		{"MAX_TOOL_CYCLES", &cfg.MaxToolCycles},
		{"COMMAND_TIMEOUT_SECONDS", &cfg.CommandTimeoutSeconds},
	}
	for _, f := range intFields {
		raw := l.env.Getenv(f.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &ParseError{Variable: f.key, Value: raw, Cause: err}
		}
		*f.dst = n
	}

	if raw := l.env.Getenv("MAX_COMMAND_OUTPUT_BYTES"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, &ParseError{Variable: "MAX_COMMAND_OUTPUT_BYTES", Value: raw, Cause: err}
		}
		cfg.MaxCommandOutputBytes = n
	}

	cfg.Roots = l.rootDirs()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apiKey resolves the credential for the selected provider. MERLIN_API_KEY
// always wins so one variable can drive either backend.
func (l *Loader) apiKey(provider string) string {
	if v := l.env.Getenv("MERLIN_API_KEY"); v != "" {
		return v
	}
	if provider == "gemini" {
		return l.env.Getenv("GEMINI_API_KEY")
	}
	return l.env.Getenv("OPENAI_API_KEY")
}

// rootDirs collects MERLIN_DIR_* variables into a name -> path map.
// "MERLIN_DIR_WORK" becomes "work".
func (l *Loader) rootDirs() map[string]string {
	roots := make(map[string]string)
	for _, kv := range l.env.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" {
			continue
		}
		if !strings.HasPrefix(key, RootPrefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, RootPrefix))
		if name == "" {
			continue
		}
		roots[name] = value
	}
	return roots
}

// Load is a convenience function using the default loader.
func Load() (*Config, error) {
	return NewLoader().Load()
}
