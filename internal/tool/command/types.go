package command

// Request represents a run_commands invocation from the model.
type Request struct {
	Commands       []string `mapstructure:"commands"`
	WorkingDir     string   `mapstructure:"working_dir"`
	Background     bool     `mapstructure:"background"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
}

// Validate checks the request against the declared schema constraints.
func (r Request) Validate() error {
	if len(r.Commands) == 0 {
		return &CommandsRequiredError{}
	}
	for _, c := range r.Commands {
		if c == "" {
			return &EmptyCommandError{}
		}
	}
	if r.TimeoutSeconds < 0 {
		return &NegativeTimeoutError{Value: r.TimeoutSeconds}
	}
	return nil
}

// Step is the outcome of one command in the request, in issue order.
type Step struct {
	Command   string `json:"command"`
	ExitCode  int    `json:"exit_code"`
	Stdout    string `json:"stdout"`
	Stderr    string `json:"stderr"`
	Truncated bool   `json:"truncated,omitempty"`
	TimedOut  bool   `json:"timed_out,omitempty"`
	Note      string `json:"note,omitempty"`
}

// Response is the aggregated result of all commands in the request.
type Response struct {
	Steps      []Step `json:"steps"`
	WorkingDir string `json:"working_dir"`
}
