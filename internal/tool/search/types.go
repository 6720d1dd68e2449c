package search

// Request represents a find_files invocation from the model.
type Request struct {
	Query string `mapstructure:"query"`
	Root  string `mapstructure:"root"`
	TopK  int    `mapstructure:"top_k"`
}

// Validate checks the request against the declared schema constraints.
func (r Request) Validate() error {
	if r.Query == "" {
		return &QueryRequiredError{}
	}
	if r.TopK < 0 {
		return &NegativeTopKError{Value: r.TopK}
	}
	return nil
}

// Match is a single search hit. Score is the fuzzy similarity in [0,100].
type Match struct {
	Path  string `json:"path"`
	Score int    `json:"score"`
}

// Response holds matches ordered by score descending, ties broken by
// ascending path. An empty match list is a valid result, not an error.
type Response struct {
	Matches []Match `json:"matches"`
}
