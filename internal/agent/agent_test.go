package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Cyclone1070/merlin/internal/agent/adapter"
	"github.com/Cyclone1070/merlin/internal/agent/models"
	"github.com/Cyclone1070/merlin/internal/config"
	provider "github.com/Cyclone1070/merlin/internal/provider/models"
)

// MockProvider implements provider.Provider for testing.
type MockProvider struct {
	GenerateFunc func(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error)
	GetModelFunc func() string
}

func (m *MockProvider) Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *MockProvider) GetModel() string {
	if m.GetModelFunc != nil {
		return m.GetModelFunc()
	}
	return "test-model"
}

// MockTool implements adapter.Tool for testing.
type MockTool struct {
	NameFunc    func() string
	ExecuteFunc func(ctx context.Context, args map[string]any) (string, error)
}

func (m *MockTool) Name() string {
	if m.NameFunc != nil {
		return m.NameFunc()
	}
	return "mock_tool"
}

func (m *MockTool) Description() string { return "Mock tool for testing" }

func (m *MockTool) Definition() provider.ToolDefinition {
	return provider.ToolDefinition{Name: m.Name(), Description: m.Description()}
}

func (m *MockTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, args)
	}
	return "mock result", nil
}

func textResponse(text string) *provider.GenerateResponse {
	return &provider.GenerateResponse{
		Content: provider.ResponseContent{Type: provider.ResponseTypeText, Text: text},
	}
}

func toolCallResponse(calls ...models.ToolCall) *provider.GenerateResponse {
	return &provider.GenerateResponse{
		Content: provider.ResponseContent{Type: provider.ResponseTypeToolCall, ToolCalls: calls},
	}
}

func newTestAgent(t *testing.T, p provider.Provider, tools ...adapter.Tool) *Agent {
	t.Helper()
	registry, err := adapter.NewRegistry(tools)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	cfg := config.DefaultConfig()
	cfg.APIKey = "test-key"
	return New(cfg, p, registry, "cwd: /work")
}

func TestNew_SystemPromptCarriesRootListing(t *testing.T) {
	ag := newTestAgent(t, &MockProvider{})

	prompt := ag.Conversation().SystemPrompt()
	if !strings.Contains(prompt, "cwd: /work") {
		t.Errorf("Expected root listing in system prompt, got: %q", prompt)
	}
	if !strings.HasPrefix(prompt, config.DefaultSystemPrompt) {
		t.Errorf("Expected configured prompt first, got: %q", prompt)
	}
}

func TestRunTurn_TextResponse(t *testing.T) {
	generateCalls := 0
	mockProvider := &MockProvider{
		GenerateFunc: func(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
			generateCalls++
			return textResponse("Hello, how can I help?"), nil
		},
	}
	ag := newTestAgent(t, mockProvider)

	reply, err := ag.RunTurn(context.Background(), "hi")
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}

	if reply != "Hello, how can I help?" {
		t.Errorf("Unexpected reply: %q", reply)
	}
	if generateCalls != 1 {
		t.Errorf("Expected 1 generation, got %d", generateCalls)
	}

	msgs := ag.Conversation().Messages()
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[0].Content != "hi" {
		t.Errorf("Unexpected user message: %+v", msgs[0])
	}
	if msgs[1].Role != models.RoleAssistant || msgs[1].Content != "Hello, how can I help?" {
		t.Errorf("Unexpected assistant message: %+v", msgs[1])
	}
}

func TestRunTurn_ToolCallCycle(t *testing.T) {
	var executed []string
	tool := &MockTool{
		NameFunc: func() string { return "find_files" },
		ExecuteFunc: func(ctx context.Context, args map[string]any) (string, error) {
			executed = append(executed, args["query"].(string))
			return `{"matches":[]}`, nil
		},
	}

	generateCalls := 0
	mockProvider := &MockProvider{
		GenerateFunc: func(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
			generateCalls++
			if generateCalls == 1 {
				return toolCallResponse(
					models.ToolCall{ID: "call_1", Name: "find_files", Args: map[string]any{"query": "first"}},
					models.ToolCall{ID: "call_2", Name: "find_files", Args: map[string]any{"query": "second"}},
				), nil
			}
			// The second generation sees the tool results in the history.
			last := req.History[len(req.History)-1]
			if last.Role != models.RoleTool || last.ToolCallID != "call_2" {
				t.Errorf("Expected last history message to be call_2's result, got: %+v", last)
			}
			return textResponse("done"), nil
		},
	}
	ag := newTestAgent(t, mockProvider, tool)

	reply, err := ag.RunTurn(context.Background(), "find my files")
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}

	if reply != "done" {
		t.Errorf("Unexpected reply: %q", reply)
	}
	if generateCalls != 2 {
		t.Errorf("Expected 2 generations, got %d", generateCalls)
	}
	// Calls dispatched sequentially in issue order.
	if len(executed) != 2 || executed[0] != "first" || executed[1] != "second" {
		t.Errorf("Unexpected dispatch order: %v", executed)
	}

	// Log: user, assistant(tool calls), tool x2, assistant(final).
	msgs := ag.Conversation().Messages()
	if len(msgs) != 5 {
		t.Fatalf("Expected 5 messages, got %d: %+v", len(msgs), msgs)
	}
	if len(msgs[1].ToolCalls) != 2 {
		t.Errorf("Expected assistant message carrying both calls, got: %+v", msgs[1])
	}
	if msgs[2].ToolCallID != "call_1" || msgs[3].ToolCallID != "call_2" {
		t.Errorf("Expected tool results linked in order, got: %+v %+v", msgs[2], msgs[3])
	}
}

func TestRunTurn_ToolFailureFlowsBackToModel(t *testing.T) {
	tool := &MockTool{
		NameFunc: func() string { return "run_commands" },
		ExecuteFunc: func(ctx context.Context, args map[string]any) (string, error) {
			return "", errors.New("path is outside the sandbox")
		},
	}

	generateCalls := 0
	mockProvider := &MockProvider{
		GenerateFunc: func(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
			generateCalls++
			if generateCalls == 1 {
				return toolCallResponse(models.ToolCall{ID: "call_1", Name: "run_commands"}), nil
			}
			last := req.History[len(req.History)-1]
			if !strings.Contains(last.Content, "Error: path is outside the sandbox") {
				t.Errorf("Expected error fed back to the model, got: %+v", last)
			}
			return textResponse("understood, staying inside"), nil
		},
	}
	ag := newTestAgent(t, mockProvider, tool)

	reply, err := ag.RunTurn(context.Background(), "escape the sandbox")
	if err != nil {
		t.Fatalf("Tool failure must not abort the turn: %v", err)
	}
	if reply != "understood, staying inside" {
		t.Errorf("Unexpected reply: %q", reply)
	}
}

func TestRunTurn_UnknownToolFlowsBackToModel(t *testing.T) {
	generateCalls := 0
	mockProvider := &MockProvider{
		GenerateFunc: func(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
			generateCalls++
			if generateCalls == 1 {
				return toolCallResponse(models.ToolCall{ID: "call_1", Name: "no_such_tool"}), nil
			}
			last := req.History[len(req.History)-1]
			if !strings.Contains(last.Content, "no_such_tool") {
				t.Errorf("Expected unknown tool reported to the model, got: %+v", last)
			}
			return textResponse("ok"), nil
		},
	}
	ag := newTestAgent(t, mockProvider)

	if _, err := ag.RunTurn(context.Background(), "use a made-up tool"); err != nil {
		t.Fatalf("Unknown tool must not abort the turn: %v", err)
	}
	if generateCalls != 2 {
		t.Errorf("Expected 2 generations, got %d", generateCalls)
	}
}

func TestRunTurn_ProviderFailureRollsBack(t *testing.T) {
	mockProvider := &MockProvider{
		GenerateFunc: func(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
			return textResponse("first answer"), nil
		},
	}
	ag := newTestAgent(t, mockProvider)

	if _, err := ag.RunTurn(context.Background(), "first"); err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}
	before := ag.Conversation().Messages()

	mockProvider.GenerateFunc = func(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
		return nil, &provider.ProviderError{
			Code:       provider.ErrorCodeUnavailable,
			Message:    "service unavailable",
			Underlying: provider.ErrServiceUnavailable,
			Retryable:  true,
		}
	}

	_, err := ag.RunTurn(context.Background(), "second")
	if err == nil {
		t.Fatal("Expected provider failure to surface")
	}
	if !errors.Is(err, provider.ErrServiceUnavailable) {
		t.Errorf("Expected wrapped provider error, got: %v", err)
	}

	after := ag.Conversation().Messages()
	if len(after) != len(before) {
		t.Fatalf("Expected log rolled back to %d messages, got %d", len(before), len(after))
	}
	for i := range before {
		if after[i].Role != before[i].Role || after[i].Content != before[i].Content {
			t.Errorf("Message %d changed after rollback: %+v vs %+v", i, before[i], after[i])
		}
	}
}

func TestRunTurn_MidTurnProviderFailureRollsBackToolMessages(t *testing.T) {
	tool := &MockTool{NameFunc: func() string { return "find_files" }}

	generateCalls := 0
	mockProvider := &MockProvider{
		GenerateFunc: func(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
			generateCalls++
			if generateCalls == 1 {
				return toolCallResponse(models.ToolCall{ID: "call_1", Name: "find_files"}), nil
			}
			return nil, provider.ErrNetwork
		},
	}
	ag := newTestAgent(t, mockProvider, tool)

	_, err := ag.RunTurn(context.Background(), "search")
	if err == nil {
		t.Fatal("Expected provider failure to surface")
	}

	// The turn's user message, assistant tool calls and tool results all roll back.
	if ag.Conversation().Len() != 0 {
		t.Errorf("Expected empty log after rollback, got %d messages", ag.Conversation().Len())
	}
}

func TestRunTurn_MalformedResponseRollsBack(t *testing.T) {
	mockProvider := &MockProvider{
		GenerateFunc: func(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
			// Tool-call type with no calls is malformed.
			return toolCallResponse(), nil
		},
	}
	ag := newTestAgent(t, mockProvider)

	_, err := ag.RunTurn(context.Background(), "hi")
	if !errors.Is(err, provider.ErrMalformedResponse) {
		t.Fatalf("Expected ErrMalformedResponse, got: %v", err)
	}
	if ag.Conversation().Len() != 0 {
		t.Errorf("Expected rollback, got %d messages", ag.Conversation().Len())
	}
}

func TestRunTurn_LoopBound(t *testing.T) {
	tool := &MockTool{NameFunc: func() string { return "find_files" }}

	generateCalls := 0
	mockProvider := &MockProvider{
		GenerateFunc: func(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
			generateCalls++
			return toolCallResponse(models.ToolCall{ID: "call_1", Name: "find_files"}), nil
		},
	}

	registry, err := adapter.NewRegistry([]adapter.Tool{tool})
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.MaxToolCycles = 3
	ag := New(cfg, mockProvider, registry, "")

	_, err = ag.RunTurn(context.Background(), "loop forever")
	if !errors.Is(err, ErrLoopBound) {
		t.Fatalf("Expected ErrLoopBound, got: %v", err)
	}
	var bound *LoopBoundError
	if !errors.As(err, &bound) || bound.Cycles != 3 {
		t.Errorf("Expected 3 cycles reported, got: %v", err)
	}
	if generateCalls != 3 {
		t.Errorf("Expected exactly 3 generations, got %d", generateCalls)
	}

	// Executed tool work stays in the log; it already happened.
	// user + 3 x (assistant + tool result).
	if got := ag.Conversation().Len(); got != 7 {
		t.Errorf("Expected 7 messages kept, got %d", got)
	}
}

func TestRunTurn_CancelledContextRollsBack(t *testing.T) {
	mockProvider := &MockProvider{
		GenerateFunc: func(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
			t.Fatal("Generate must not run with a cancelled context")
			return nil, nil
		},
	}
	ag := newTestAgent(t, mockProvider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ag.RunTurn(ctx, "hi")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got: %v", err)
	}
	if ag.Conversation().Len() != 0 {
		t.Errorf("Expected rollback, got %d messages", ag.Conversation().Len())
	}
}

func TestRunTurn_HistoryAccumulatesAcrossTurns(t *testing.T) {
	mockProvider := &MockProvider{
		GenerateFunc: func(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
			return textResponse("answer"), nil
		},
	}
	ag := newTestAgent(t, mockProvider)

	for i := 0; i < 3; i++ {
		if _, err := ag.RunTurn(context.Background(), "question"); err != nil {
			t.Fatalf("RunTurn failed: %v", err)
		}
	}

	if got := ag.Conversation().Len(); got != 6 {
		t.Errorf("Expected 6 messages over 3 turns, got %d", got)
	}
}
