package agent

import (
	"sync"

	"github.com/entrhq/chrono/pkg/llm/tokenizer"
	"github.com/entrhq/chrono/pkg/types"
)

// DefaultMaxHistoryTokens bounds the conversation history kept in memory.
// The system prompt and per-turn messages are budgeted on top of this.
const DefaultMaxHistoryTokens = 60000

// ConversationMemory holds the conversation history under a token budget.
// When the budget is exceeded the oldest messages are dropped; scheduling
// conversations are short-lived, so summarization is not worth its cost here.
type ConversationMemory struct {
	mu        sync.Mutex
	messages  []*types.Message
	tokenizer *tokenizer.Tokenizer
	maxTokens int
}

// NewConversationMemory creates a memory with the given token budget.
// The tokenizer may be nil, in which case no trimming occurs.
func NewConversationMemory(tok *tokenizer.Tokenizer, maxTokens int) *ConversationMemory {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxHistoryTokens
	}
	return &ConversationMemory{
		tokenizer: tok,
		maxTokens: maxTokens,
	}
}

// Add appends a message and trims the oldest messages if over budget.
func (m *ConversationMemory) Add(msg *types.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, msg)
	m.trimLocked()
}

// GetAll returns a copy of the current history.
func (m *ConversationMemory) GetAll() []*types.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*types.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Len returns the number of messages currently held.
func (m *ConversationMemory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// Clear removes all history.
func (m *ConversationMemory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}

// trimLocked drops messages from the front until the history fits the
// budget. The newest message is always kept.
func (m *ConversationMemory) trimLocked() {
	if m.tokenizer == nil {
		return
	}

	for len(m.messages) > 1 && m.tokenizer.CountMessagesTokens(m.messages) > m.maxTokens {
		m.messages = m.messages[1:]
	}
}
