// Package agent drives the conversation state machine: it interleaves model
// turns and tool-execution turns until the model produces a final answer.
package agent

import (
	"context"
	"fmt"

	"github.com/Cyclone1070/merlin/internal/agent/adapter"
	"github.com/Cyclone1070/merlin/internal/agent/models"
	"github.com/Cyclone1070/merlin/internal/config"
	provider "github.com/Cyclone1070/merlin/internal/provider/models"
)

// Agent owns the conversation for one run. It processes one user utterance to
// completion before the next is accepted; there is no concurrent turn state.
type Agent struct {
	config       *config.Config
	provider     provider.Provider
	registry     *adapter.Registry
	conversation *models.Conversation
}

// New creates an Agent. The system prompt combines the configured prompt with
// the sandbox root listing so the model knows where it may operate.
func New(cfg *config.Config, p provider.Provider, registry *adapter.Registry, rootListing string) *Agent {
	if cfg == nil {
		panic("cfg is required")
	}
	if p == nil {
		panic("provider is required")
	}
	if registry == nil {
		panic("registry is required")
	}

	systemPrompt := cfg.SystemPrompt
	if rootListing != "" {
		systemPrompt += "\n\nKnown directories:\n" + rootListing
	}

	return &Agent{
		config:       cfg,
		provider:     p,
		registry:     registry,
		conversation: models.NewConversation(systemPrompt, cfg.Model),
	}
}

// Conversation exposes the message log for inspection.
func (a *Agent) Conversation() *models.Conversation {
	return a.conversation
}

// RunTurn processes one user utterance through as many model/tool cycles as
// the model needs, bounded by MaxToolCycles, and returns the model's final
// text.
//
// A model-service failure aborts the turn and rolls the log back to its
// pre-turn state, so a failed turn leaves no half-appended messages behind.
// Tool failures never abort the turn; they flow back to the model as tool
// results. Exhausting the cycle budget ends the turn with a LoopBoundError;
// the executed tool work stays in the log since it already happened.
func (a *Agent) RunTurn(ctx context.Context, userText string) (string, error) {
	snapshot := a.conversation.Len()
	a.conversation.Append(models.Message{Role: models.RoleUser, Content: userText})

	for range a.config.MaxToolCycles {
		if err := ctx.Err(); err != nil {
			a.conversation.TruncateTo(snapshot)
			return "", err
		}

		resp, err := a.provider.Generate(ctx, &provider.GenerateRequest{
			SystemPrompt: a.conversation.SystemPrompt(),
			History:      a.conversation.Messages(),
			Tools:        a.registry.Definitions(),
		})
		if err != nil {
			a.conversation.TruncateTo(snapshot)
			return "", fmt.Errorf("model service error: %w", err)
		}

		switch resp.Content.Type {
		case provider.ResponseTypeText:
			a.conversation.Append(models.Message{
				Role:    models.RoleAssistant,
				Content: resp.Content.Text,
			})
			return resp.Content.Text, nil

		case provider.ResponseTypeToolCall:
			if len(resp.Content.ToolCalls) == 0 {
				a.conversation.TruncateTo(snapshot)
				return "", fmt.Errorf("model service error: %w", provider.ErrMalformedResponse)
			}
			a.dispatchToolCalls(ctx, resp.Content.Text, resp.Content.ToolCalls)

		default:
			a.conversation.TruncateTo(snapshot)
			return "", fmt.Errorf("model service error: %w: unknown response type %q",
				provider.ErrMalformedResponse, resp.Content.Type)
		}
	}

	return "", &LoopBoundError{Cycles: a.config.MaxToolCycles}
}

// dispatchToolCalls appends the assistant message carrying the calls, then
// executes each call in the order issued and appends one tool message per
// call. Calls run sequentially and independently; a later call observes the
// effects of an earlier one.
func (a *Agent) dispatchToolCalls(ctx context.Context, text string, calls []models.ToolCall) {
	a.conversation.Append(models.Message{
		Role:      models.RoleAssistant,
		Content:   text,
		ToolCalls: calls,
	})

	for _, call := range calls {
		result := a.registry.Dispatch(ctx, call)
		a.conversation.Append(result.Message())
	}
}
