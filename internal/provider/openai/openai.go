// Package openai implements the Provider interface against any service
// exposing the OpenAI chat-completions API (OpenAI itself, or compatible
// endpoints via a configurable base URL).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	provider "github.com/Cyclone1070/merlin/internal/provider/models"
)

// maxErrorBodyBytes caps how much of an error response body is read for
// diagnostics.
const maxErrorBodyBytes = 16 * 1024

// Provider is an OpenAI-compatible chat-completions provider.
type Provider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// New creates a Provider for the given endpoint, credential and model.
func New(baseURL, apiKey, model string) *Provider {
	return &Provider{
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

// NewWithClient creates a Provider with a custom HTTP client (for testing).
func NewWithClient(client *http.Client, baseURL, apiKey, model string) *Provider {
	p := New(baseURL, apiKey, model)
	p.client = client
	return p
}

// Generate implements provider.Provider.
func (p *Provider) Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
	payload, err := json.Marshal(buildRequest(p.model, req))
	if err != nil {
		return nil, &provider.ProviderError{
			Code:       provider.ErrorCodeInvalidRequest,
			Message:    "failed to encode request",
			Underlying: err,
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, &provider.ProviderError{
			Code:       provider.ErrorCodeInvalidRequest,
			Message:    "failed to build request",
			Underlying: err,
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &provider.ProviderError{
			Code:       provider.ErrorCodeNetwork,
			Message:    "request failed",
			Underlying: fmt.Errorf("%w: %v", provider.ErrNetwork, err),
			Retryable:  true,
		}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, p.statusError(httpResp)
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &provider.ProviderError{
			Code:       provider.ErrorCodeNetwork,
			Message:    "failed to read response body",
			Underlying: fmt.Errorf("%w: %v", provider.ErrNetwork, err),
			Retryable:  true,
		}
	}

	return parseResponse(body)
}

// GetModel implements provider.Provider.
func (p *Provider) GetModel() string {
	return p.model
}

// statusError maps an HTTP error status to the provider error taxonomy.
func (p *Provider) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	message := strings.TrimSpace(string(body))
	var apiErr oaiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
	}

	code := provider.ErrorCodeUnavailable
	underlying := provider.ErrServiceUnavailable
	retryable := false

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		code, underlying = provider.ErrorCodeAuth, provider.ErrAuthentication
	case resp.StatusCode == http.StatusForbidden:
		code, underlying = provider.ErrorCodePermission, provider.ErrPermissionDenied
	case resp.StatusCode == http.StatusNotFound:
		code, underlying = provider.ErrorCodeInvalidModel, provider.ErrInvalidModel
	case resp.StatusCode == http.StatusTooManyRequests:
		code, underlying = provider.ErrorCodeRateLimit, provider.ErrRateLimit
		retryable = true
	case resp.StatusCode >= 500:
		retryable = true
	case resp.StatusCode >= 400:
		code, underlying = provider.ErrorCodeInvalidRequest, provider.ErrInvalidRequest
	}

	return &provider.ProviderError{
		Code:       code,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, message),
		Underlying: underlying,
		Retryable:  retryable,
	}
}
