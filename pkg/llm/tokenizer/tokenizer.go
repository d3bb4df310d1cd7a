// Package tokenizer wraps tiktoken for counting tokens in conversation
// messages, used by the agent's memory to enforce its context budget.
package tokenizer

import (
	"fmt"

	"github.com/entrhq/chrono/pkg/types"
	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is used when a model-specific encoding cannot be resolved.
// cl100k_base covers the GPT-4 family and most OpenAI-compatible models.
const DefaultEncoding = "cl100k_base"

// messageOverheadTokens approximates the per-message framing cost
// (role markers and separators) in the chat completion format.
const messageOverheadTokens = 4

// Tokenizer counts tokens using a tiktoken encoding.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenizer creates a tokenizer for the given model name, falling back to
// the default encoding for unknown models.
func NewTokenizer(model string) (*Tokenizer, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding(DefaultEncoding)
		if err != nil {
			return nil, fmt.Errorf("failed to load tokenizer encoding: %w", err)
		}
	}
	return &Tokenizer{encoding: encoding}, nil
}

// CountTokens returns the token count of a single text.
func (t *Tokenizer) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(t.encoding.Encode(text, nil, nil))
}

// CountMessageTokens returns the token count of one message including its
// framing overhead.
func (t *Tokenizer) CountMessageTokens(msg *types.Message) int {
	if msg == nil {
		return 0
	}
	return t.CountTokens(msg.Content) + messageOverheadTokens
}

// CountMessagesTokens returns the total token count of a message list.
func (t *Tokenizer) CountMessagesTokens(messages []*types.Message) int {
	total := 0
	for _, msg := range messages {
		total += t.CountMessageTokens(msg)
	}
	return total
}
