package adapter

import (
	provider "github.com/Cyclone1070/merlin/internal/provider/models"
	"github.com/Cyclone1070/merlin/internal/tool/command"
	"github.com/Cyclone1070/merlin/internal/tool/search"
)

// This file consolidates the concrete tool adapters using the BaseAdapter
// pattern. Each adapter is a constructor pairing a schema with a tool method.

// NewRunCommands creates a run_commands adapter.
func NewRunCommands(tool *command.Tool) Tool {
	return NewBaseAdapter(
		"run_commands",
		"Runs shell commands sequentially in the sandboxed working directory",
		&provider.ParameterSchema{
			Type: "object",
			Properties: map[string]provider.PropertySchema{
				"commands": {
					Type:        "array",
					Description: "Shell command strings to execute in order",
					Items: &provider.PropertySchema{
						Type: "string",
					},
				},
				"working_dir": {
					Type:        "string",
					Description: "Working directory (must be inside a sandbox root; defaults to the session directory)",
				},
				"background": {
					Type:        "boolean",
					Description: "Start commands detached without waiting for completion",
				},
				"timeout_seconds": {
					Type:        "integer",
					Description: "Per-command timeout in seconds (default from configuration)",
				},
			},
			Required: []string{"commands"},
		},
		tool.Run,
	)
}

// NewFindFiles creates a find_files adapter.
func NewFindFiles(tool *search.Tool) Tool {
	return NewBaseAdapter(
		"find_files",
		"Returns file paths fuzzy-matching a query, best matches first",
		&provider.ParameterSchema{
			Type: "object",
			Properties: map[string]provider.PropertySchema{
				"query": {
					Type:        "string",
					Description: "Text to match against file names",
				},
				"root": {
					Type:        "string",
					Description: "Directory to search (must be inside a sandbox root; defaults to all roots)",
				},
				"top_k": {
					Type:        "integer",
					Description: "Maximum number of results (default from configuration)",
				},
			},
			Required: []string{"query"},
		},
		tool.Run,
	)
}
