package config

// Config holds all application configuration values.
// It is built once at startup from the environment and treated as immutable;
// components receive it explicitly rather than reading the environment themselves.
type Config struct {
	// Provider selects the model backend: "openai" (default) or "gemini".
	Provider string

	// APIKey authenticates against the selected provider.
	APIKey string

	// BaseURL overrides the OpenAI-compatible endpoint. Ignored by the Gemini provider.
	BaseURL string

	// Model is the model identifier sent with every generation request.
	Model string

	// SystemPrompt is the base system prompt. The sandbox root listing is
	// appended to it at agent construction.
	SystemPrompt string

	// FuzzySearchThreshold is the minimum fuzzy score (0-100) for find_files results.
	FuzzySearchThreshold int

	// DefaultSearchResults is the number of find_files results when the model
	// does not ask for a specific top_k.
	DefaultSearchResults int

	// MaxToolCycles bounds consecutive tool-dispatch cycles within one turn.
	MaxToolCycles int

	// CommandTimeoutSeconds is the wall-clock budget for a single command.
	CommandTimeoutSeconds int

	// MaxCommandOutputBytes caps captured stdout/stderr per stream.
	MaxCommandOutputBytes int64

	// Roots maps sandbox root names to directory paths, from MERLIN_DIR_* variables.
	// The process working directory is added under a reserved name at startup.
	Roots map[string]string
}

const (
	DefaultProvider      = "openai"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultModel         = "gpt-4o"

	DefaultSystemPrompt = "You are an autonomous developer agent. Follow the user's goal using " +
		"an explicit multi-step plan. Each step must be atomic (one terminal command or one tool call)."
)

// DefaultConfig returns the default configuration. Environment values are
// layered on top by the Loader.
func DefaultConfig() *Config {
	return &Config{
		Provider:              DefaultProvider,
		BaseURL:               DefaultOpenAIBaseURL,
		Model:                 DefaultModel,
		SystemPrompt:          DefaultSystemPrompt,
		FuzzySearchThreshold:  60,
		DefaultSearchResults:  3,
		MaxToolCycles:         20,
		CommandTimeoutSeconds: 600,
		MaxCommandOutputBytes: 10 * 1024 * 1024,
		Roots:                 map[string]string{},
	}
}
