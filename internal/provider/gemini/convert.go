package gemini

import (
	"fmt"

	"github.com/Cyclone1070/merlin/internal/agent/models"
	provider "github.com/Cyclone1070/merlin/internal/provider/models"
	"google.golang.org/genai"
)

// toGeminiContents converts the conversation history to Gemini Content format.
func toGeminiContents(history []models.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		if content := messageToGeminiContent(msg); content != nil {
			contents = append(contents, content)
		}
	}
	return contents
}

// messageToGeminiContent converts a single message to Gemini Content format.
// Assistant tool calls become FunctionCall parts; tool messages become
// FunctionResponse parts keyed by tool name (Gemini has no call IDs).
func messageToGeminiContent(msg models.Message) *genai.Content {
	role := "user"
	if msg.Role == models.RoleAssistant {
		role = "model"
	}

	parts := make([]*genai.Part, 0)

	if msg.Role == models.RoleTool {
		parts = append(parts, &genai.Part{
			FunctionResponse: &genai.FunctionResponse{
				Name: msg.ToolName,
				Response: map[string]any{
					"content": msg.Content,
				},
			},
		})
		return &genai.Content{Role: "user", Parts: parts}
	}

	if msg.Content != "" {
		parts = append(parts, genai.NewPartFromText(msg.Content))
	}

	for _, toolCall := range msg.ToolCalls {
		parts = append(parts, &genai.Part{
			FunctionCall: &genai.FunctionCall{
				Name: toolCall.Name,
				Args: toolCall.Args,
			},
		})
	}

	if len(parts) == 0 {
		return nil
	}
	return &genai.Content{Role: role, Parts: parts}
}

// toGeminiConfig builds the generation config carrying the system prompt and
// tool declarations.
func toGeminiConfig(systemPrompt string, tools []provider.ToolDefinition) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(systemPrompt)},
		}
	}
	if len(tools) > 0 {
		config.Tools = toGeminiTools(tools)
	}
	return config
}

// toGeminiTools converts internal ToolDefinition to Gemini tools.
func toGeminiTools(tools []provider.ToolDefinition) []*genai.Tool {
	functionDeclarations := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		fd := &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
		}
		if tool.Parameters != nil {
			fd.Parameters = toGeminiSchema(tool.Parameters)
		}
		functionDeclarations = append(functionDeclarations, fd)
	}
	return []*genai.Tool{
		{FunctionDeclarations: functionDeclarations},
	}
}

// toGeminiSchema converts ParameterSchema to Gemini Schema.
func toGeminiSchema(params *provider.ParameterSchema) *genai.Schema {
	schema := &genai.Schema{
		Type: genai.TypeObject,
	}

	if params.Properties != nil {
		schema.Properties = make(map[string]*genai.Schema)
		for name, prop := range params.Properties {
			schema.Properties[name] = &genai.Schema{
				Type:        toGeminiType(prop.Type),
				Description: prop.Description,
			}
			if len(prop.Enum) > 0 {
				schema.Properties[name].Enum = prop.Enum
			}
			if prop.Items != nil {
				schema.Properties[name].Items = &genai.Schema{
					Type:        toGeminiType(prop.Items.Type),
					Description: prop.Items.Description,
				}
			}
		}
	}

	if len(params.Required) > 0 {
		schema.Required = params.Required
	}
	return schema
}

// toGeminiType converts string type to Gemini Type.
func toGeminiType(typeStr string) genai.Type {
	switch typeStr {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// fromGeminiResponse converts a Gemini response to the internal union.
// Gemini does not assign tool call IDs, so synthetic per-message IDs are
// generated to satisfy the message log's linking invariant.
func fromGeminiResponse(resp *genai.GenerateContentResponse) (*provider.GenerateResponse, error) {
	if len(resp.Candidates) == 0 {
		return nil, &provider.ProviderError{
			Code:       provider.ErrorCodeMalformedResponse,
			Message:    "no candidates in response",
			Underlying: provider.ErrMalformedResponse,
		}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return nil, &provider.ProviderError{
			Code:       provider.ErrorCodeMalformedResponse,
			Message:    "candidate carries no content",
			Underlying: provider.ErrMalformedResponse,
		}
	}

	var text string
	var toolCalls []models.ToolCall
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
		if part.FunctionCall != nil {
			toolCalls = append(toolCalls, models.ToolCall{
				ID:   fmt.Sprintf("call_%d", len(toolCalls)+1),
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		}
	}

	if len(toolCalls) > 0 {
		return &provider.GenerateResponse{
			Content: provider.ResponseContent{
				Type:      provider.ResponseTypeToolCall,
				Text:      text,
				ToolCalls: toolCalls,
			},
		}, nil
	}

	return &provider.GenerateResponse{
		Content: provider.ResponseContent{
			Type: provider.ResponseTypeText,
			Text: text,
		},
	}, nil
}

// mapGeminiError maps Gemini API errors to provider errors.
func mapGeminiError(err error) error {
	if err == nil {
		return nil
	}

	if apiErr, ok := err.(*genai.APIError); ok {
		switch apiErr.Code {
		case 401, 403:
			return &provider.ProviderError{
				Code:       provider.ErrorCodeAuth,
				Message:    "authentication failed",
				Underlying: err,
			}
		case 429:
			return &provider.ProviderError{
				Code:       provider.ErrorCodeRateLimit,
				Message:    "rate limit exceeded",
				Underlying: err,
				Retryable:  true,
			}
		case 400:
			return &provider.ProviderError{
				Code:       provider.ErrorCodeInvalidRequest,
				Message:    fmt.Sprintf("invalid request: %s", apiErr.Message),
				Underlying: err,
			}
		case 500, 502, 503, 504:
			return &provider.ProviderError{
				Code:       provider.ErrorCodeUnavailable,
				Message:    "service unavailable",
				Underlying: err,
				Retryable:  true,
			}
		default:
			return &provider.ProviderError{
				Code:       provider.ErrorCodeNetwork,
				Message:    fmt.Sprintf("API error: %s", apiErr.Message),
				Underlying: err,
				Retryable:  true,
			}
		}
	}

	return &provider.ProviderError{
		Code:       provider.ErrorCodeNetwork,
		Message:    "network error",
		Underlying: err,
		Retryable:  true,
	}
}
