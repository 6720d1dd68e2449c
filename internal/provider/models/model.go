package models

import (
	"github.com/Cyclone1070/merlin/internal/agent/models"
)

// GenerateRequest encapsulates all parameters for a generation request.
type GenerateRequest struct {
	// SystemPrompt is sent once per request, ahead of the history
	SystemPrompt string

	// History contains the full conversation log
	History []models.Message

	// Tools contains tool definitions advertised for native tool calling
	Tools []ToolDefinition
}

// GenerateResponse contains the model's response.
type GenerateResponse struct {
	Content ResponseContent
}

// ResponseContent is a union type representing different response types.
type ResponseContent struct {
	// Type indicates what the model produced
	Type ResponseType

	// For Type = ResponseTypeText
	Text string

	// For Type = ResponseTypeToolCall
	ToolCalls []models.ToolCall
}

// ResponseType indicates the type of response from the model.
type ResponseType string

const (
	ResponseTypeText     ResponseType = "text"
	ResponseTypeToolCall ResponseType = "tool_call"
)

// ToolDefinition defines a tool that the model can invoke.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  *ParameterSchema // nil means no parameters
}

// ParameterSchema maps directly to standard JSON Schema.
type ParameterSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required,omitempty"`
}

// PropertySchema defines a single parameter property.
type PropertySchema struct {
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	Enum        []string        `json:"enum,omitempty"`
	Items       *PropertySchema `json:"items,omitempty"`
}
