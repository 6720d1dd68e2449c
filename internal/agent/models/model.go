package models

// Message roles. The log is append-only: a tool message always follows the
// assistant message whose ToolCall it answers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents a single message in the conversation log.
type Message struct {
	Role    string
	Content string

	// For assistant messages requesting actions
	ToolCalls []ToolCall

	// For tool messages, linking the result back to its originating call
	ToolCallID string
	ToolName   string
}

// ToolCall represents a structured tool invocation from the model.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult represents the result of a tool execution. A non-empty Error
// marks a failed call; the error text is fed back to the model so it can
// adapt, it is never raised as a fatal condition.
type ToolResult struct {
	ID      string // matches ToolCall.ID
	Name    string // tool name
	Content string // result content
	Error   string // error message if the tool failed
}

// Message converts the result into the tool message appended to the log.
func (r ToolResult) Message() Message {
	content := r.Content
	if r.Error != "" {
		content = "Error: " + r.Error
	}
	return Message{
		Role:       RoleTool,
		Content:    content,
		ToolCallID: r.ID,
		ToolName:   r.Name,
	}
}
