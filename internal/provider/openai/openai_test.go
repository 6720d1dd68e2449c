package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	agentmodels "github.com/Cyclone1070/merlin/internal/agent/models"
	provider "github.com/Cyclone1070/merlin/internal/provider/models"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewWithClient(server.Client(), server.URL, "sk-test", "gpt-4o")
}

func TestGenerate_HappyPath(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody oaiRequest

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "hello"}, "finish_reason": "stop"},
			},
		})
	})

	resp, err := p.Generate(context.Background(), &provider.GenerateRequest{
		SystemPrompt: "be helpful",
		History:      []agentmodels.Message{{Role: agentmodels.RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if resp.Content.Type != provider.ResponseTypeText || resp.Content.Text != "hello" {
		t.Errorf("Unexpected response: %+v", resp.Content)
	}
	if gotPath != "/chat/completions" {
		t.Errorf("Expected /chat/completions, got %q", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Expected bearer auth, got %q", gotAuth)
	}
	if gotBody.Model != "gpt-4o" || len(gotBody.Messages) != 2 {
		t.Errorf("Unexpected request body: %+v", gotBody)
	}
}

func TestGenerate_StatusErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		sentinel  error
		retryable bool
	}{
		{"unauthorized", http.StatusUnauthorized, provider.ErrAuthentication, false},
		{"forbidden", http.StatusForbidden, provider.ErrPermissionDenied, false},
		{"model not found", http.StatusNotFound, provider.ErrInvalidModel, false},
		{"rate limited", http.StatusTooManyRequests, provider.ErrRateLimit, true},
		{"bad request", http.StatusBadRequest, provider.ErrInvalidRequest, false},
		{"server error", http.StatusInternalServerError, provider.ErrServiceUnavailable, true},
		{"bad gateway", http.StatusBadGateway, provider.ErrServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error": {"message": "nope", "type": "test"}}`))
			})

			_, err := p.Generate(context.Background(), &provider.GenerateRequest{})
			if err == nil {
				t.Fatal("Expected error")
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("Expected %v, got: %v", tt.sentinel, err)
			}
			if provider.IsRetryable(err) != tt.retryable {
				t.Errorf("Expected retryable=%v, got: %v", tt.retryable, err)
			}
		})
	}
}

func TestGenerate_ErrorMessageFromBody(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`))
	})

	_, err := p.Generate(context.Background(), &provider.GenerateRequest{})
	var provErr *provider.ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Expected *ProviderError, got %T", err)
	}
	if provErr.Code != provider.ErrorCodeAuth {
		t.Errorf("Expected auth code, got %q", provErr.Code)
	}
	if want := "Incorrect API key provided"; !strings.Contains(provErr.Message, want) {
		t.Errorf("Expected message %q in %q", want, provErr.Message)
	}
}

func TestGenerate_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	p := New(server.URL, "sk-test", "gpt-4o")
	_, err := p.Generate(context.Background(), &provider.GenerateRequest{})
	if !errors.Is(err, provider.ErrNetwork) {
		t.Errorf("Expected ErrNetwork, got: %v", err)
	}
	if !provider.IsRetryable(err) {
		t.Error("Expected network failure to be retryable")
	}
}

func TestGenerate_ContextCancellation(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Generate(ctx, &provider.GenerateRequest{}); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestGetModel(t *testing.T) {
	p := New("https://api.openai.com/v1", "sk-test", "gpt-4o-mini")
	if p.GetModel() != "gpt-4o-mini" {
		t.Errorf("Expected gpt-4o-mini, got %q", p.GetModel())
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	p := New("https://llm.example.com/v1/", "sk", "m")
	if p.baseURL != "https://llm.example.com/v1" {
		t.Errorf("Expected trailing slash trimmed, got %q", p.baseURL)
	}
}
