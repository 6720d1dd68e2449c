package models

import (
	"context"
)

// Provider defines the interface to the model service. The agent loop depends
// only on this contract, so a deterministic fake can drive the state machine
// in tests.
type Provider interface {
	// Generate sends the message log and tool schemas to the model and
	// returns either final text or a list of tool calls.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

	// GetModel returns the active model identifier.
	GetModel() string
}
