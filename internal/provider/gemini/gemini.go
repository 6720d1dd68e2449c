// Package gemini implements the Provider interface for Google Gemini via the
// official genai SDK.
package gemini

import (
	"context"

	provider "github.com/Cyclone1070/merlin/internal/provider/models"
)

// GeminiProvider implements the Provider interface for Google Gemini.
type GeminiProvider struct {
	client    GeminiClient
	modelName string
}

// New creates a new GeminiProvider with the specified client and model.
func New(client GeminiClient, modelName string) *GeminiProvider {
	return &GeminiProvider{
		client:    client,
		modelName: modelName,
	}
}

// Generate sends a request to the Gemini API and returns the response.
func (p *GeminiProvider) Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.GenerateResponse, error) {
	contents := toGeminiContents(req.History)
	config := toGeminiConfig(req.SystemPrompt, req.Tools)

	resp, err := p.client.GenerateContent(ctx, p.modelName, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	return fromGeminiResponse(resp)
}

// GetModel returns the active model name.
func (p *GeminiProvider) GetModel() string {
	return p.modelName
}
