// Package llm provides abstractions for LLM provider integration.
//
// Providers handle API communication with LLM services and return simple
// StreamChunk instances. This keeps providers focused on transport concerns
// without coupling them to agent-level orchestration: the agent layer owns
// conversation state, tool parsing, and result routing, which also makes
// providers reusable outside of an agent loop.
package llm

import (
	"context"

	"github.com/entrhq/chrono/pkg/types"
)

// Provider defines the interface for LLM integrations.
type Provider interface {
	// StreamCompletion sends messages to the LLM and streams back response
	// chunks. The returned channel emits StreamChunk instances and is closed
	// when streaming completes or an error occurs; callers should read until
	// the channel is closed.
	//
	// Returns an error only if streaming cannot be initiated (invalid
	// configuration, network unavailable). Stream-time errors are delivered
	// as chunks with Error set.
	StreamCompletion(ctx context.Context, messages []*types.Message) (<-chan *StreamChunk, error)

	// Complete sends messages to the LLM and returns the full response.
	// This is a convenience wrapper around StreamCompletion for
	// non-streaming use cases.
	Complete(ctx context.Context, messages []*types.Message) (*types.Message, error)

	// GetModelInfo returns information about the LLM model being used.
	GetModelInfo() *types.ModelInfo

	// GetModel returns the model name being used.
	GetModel() string

	// GetBaseURL returns the base URL being used for API requests.
	GetBaseURL() string

	// GetAPIKey returns the API key being used for authentication.
	GetAPIKey() string
}
