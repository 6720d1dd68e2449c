package openai

import (
	"encoding/json"
	"fmt"

	agentmodels "github.com/Cyclone1070/merlin/internal/agent/models"
	provider "github.com/Cyclone1070/merlin/internal/provider/models"
)

// OpenAI wire types for JSON serialization.

type oaiRequest struct {
	Model    string       `json:"model"`
	Messages []oaiMessage `json:"messages"`
	Tools    []oaiTool    `json:"tools,omitempty"`
}

type oaiMessage struct {
	Role       string        `json:"role"`
	Content    string        `json:"content"`
	Name       string        `json:"name,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
	ToolCalls  []oaiToolCall `json:"tool_calls,omitempty"`
}

type oaiToolCall struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Function oaiToolFunction `json:"function"`
}

type oaiToolFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type oaiTool struct {
	Type     string     `json:"type"`
	Function oaiToolDef `json:"function"`
}

type oaiToolDef struct {
	Name        string                    `json:"name"`
	Description string                    `json:"description,omitempty"`
	Parameters  *provider.ParameterSchema `json:"parameters,omitempty"`
}

type oaiResponse struct {
	Choices []oaiChoice `json:"choices"`
}

type oaiChoice struct {
	Message      oaiMessage `json:"message"`
	FinishReason string     `json:"finish_reason"`
}

type oaiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// buildRequest converts a provider.GenerateRequest into the chat-completions
// wire format. The system prompt becomes the first message.
func buildRequest(model string, req *provider.GenerateRequest) oaiRequest {
	messages := make([]oaiMessage, 0, len(req.History)+1)

	if req.SystemPrompt != "" {
		messages = append(messages, oaiMessage{
			Role:    agentmodels.RoleSystem,
			Content: req.SystemPrompt,
		})
	}

	for _, m := range req.History {
		msg := oaiMessage{
			Role:    m.Role,
			Content: m.Content,
		}
		if m.ToolCallID != "" {
			msg.ToolCallID = m.ToolCallID
			msg.Name = m.ToolName
		}
		if len(m.ToolCalls) > 0 {
			msg.ToolCalls = make([]oaiToolCall, len(m.ToolCalls))
			for j, tc := range m.ToolCalls {
				msg.ToolCalls[j] = oaiToolCall{
					ID:   tc.ID,
					Type: "function",
					Function: oaiToolFunction{
						Name:      tc.Name,
						Arguments: marshalArgs(tc.Args),
					},
				}
			}
		}
		messages = append(messages, msg)
	}

	oai := oaiRequest{
		Model:    model,
		Messages: messages,
	}

	if len(req.Tools) > 0 {
		oai.Tools = make([]oaiTool, len(req.Tools))
		for i, t := range req.Tools {
			oai.Tools[i] = oaiTool{
				Type: "function",
				Function: oaiToolDef{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.Parameters,
				},
			}
		}
	}

	return oai
}

// parseResponse converts a chat-completions response body into the internal
// response union: tool calls when present, final text otherwise.
func parseResponse(body []byte) (*provider.GenerateResponse, error) {
	var resp oaiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &provider.ProviderError{
			Code:       provider.ErrorCodeMalformedResponse,
			Message:    "failed to decode response body",
			Underlying: err,
		}
	}
	if len(resp.Choices) == 0 {
		return nil, &provider.ProviderError{
			Code:       provider.ErrorCodeMalformedResponse,
			Message:    "response contains no choices",
			Underlying: provider.ErrMalformedResponse,
		}
	}

	msg := resp.Choices[0].Message

	if len(msg.ToolCalls) > 0 {
		calls := make([]agentmodels.ToolCall, len(msg.ToolCalls))
		for i, tc := range msg.ToolCalls {
			args, err := unmarshalArgs(tc.Function.Arguments)
			if err != nil {
				return nil, &provider.ProviderError{
					Code:       provider.ErrorCodeMalformedResponse,
					Message:    fmt.Sprintf("tool call %s carries malformed arguments", tc.ID),
					Underlying: err,
				}
			}
			calls[i] = agentmodels.ToolCall{
				ID:   tc.ID,
				Name: tc.Function.Name,
				Args: args,
			}
		}
		return &provider.GenerateResponse{
			Content: provider.ResponseContent{
				Type:      provider.ResponseTypeToolCall,
				Text:      msg.Content,
				ToolCalls: calls,
			},
		}, nil
	}

	return &provider.GenerateResponse{
		Content: provider.ResponseContent{
			Type: provider.ResponseTypeText,
			Text: msg.Content,
		},
	}, nil
}

func marshalArgs(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func unmarshalArgs(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
