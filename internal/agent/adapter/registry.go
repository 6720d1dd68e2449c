package adapter

import (
	"context"

	"github.com/Cyclone1070/merlin/internal/agent/models"
	provider "github.com/Cyclone1070/merlin/internal/provider/models"
)

// Registry maps tool names to handlers. It is built once at startup and
// immutable afterwards, so it is safely shareable without locking.
type Registry struct {
	tools map[string]Tool
	order []string // registration order, preserved for schema advertisement
}

// NewRegistry creates a Registry from the given tools.
// Duplicate names are a programming error and fail construction.
func NewRegistry(tools []Tool) (*Registry, error) {
	r := &Registry{
		tools: make(map[string]Tool, len(tools)),
		order: make([]string, 0, len(tools)),
	}
	for _, t := range tools {
		name := t.Name()
		if _, exists := r.tools[name]; exists {
			return nil, &DuplicateToolError{Name: name}
		}
		r.tools[name] = t
		r.order = append(r.order, name)
	}
	return r, nil
}

// Definitions returns the tool schemas advertised to the model, in
// registration order.
func (r *Registry) Definitions() []provider.ToolDefinition {
	defs := make([]provider.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Dispatch resolves and executes a single tool call. Every outcome, including
// unknown tools, invalid arguments, sandbox violations and execution
// failures, is returned as a ToolResult so the model sees the failure and can
// adapt; dispatch never propagates an error to the loop.
func (r *Registry) Dispatch(ctx context.Context, call models.ToolCall) models.ToolResult {
	tool, exists := r.tools[call.Name]
	if !exists {
		return models.ToolResult{
			ID:    call.ID,
			Name:  call.Name,
			Error: (&UnknownToolError{Name: call.Name}).Error(),
		}
	}

	content, err := tool.Execute(ctx, call.Args)
	if err != nil {
		return models.ToolResult{
			ID:    call.ID,
			Name:  call.Name,
			Error: err.Error(),
		}
	}

	return models.ToolResult{
		ID:      call.ID,
		Name:    call.Name,
		Content: content,
	}
}
