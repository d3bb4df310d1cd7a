// Package types defines the shared message and model types used across
// the Chrono agent, LLM providers, and tool system.
package types

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	// RoleSystem is the system prompt role.
	RoleSystem MessageRole = "system"

	// RoleUser is the human (or tool result) role.
	RoleUser MessageRole = "user"

	// RoleAssistant is the model response role.
	RoleAssistant MessageRole = "assistant"
)

// Message is a single conversation message exchanged with an LLM provider.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// NewSystemMessage creates a system-role message.
func NewSystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user-role message.
func NewUserMessage(content string) *Message {
	return &Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant-role message.
func NewAssistantMessage(content string) *Message {
	return &Message{Role: RoleAssistant, Content: content}
}

// ModelInfo describes the LLM model behind a provider.
type ModelInfo struct {
	// Provider is the provider family (e.g. "openai").
	Provider string

	// Name is the model identifier sent on API requests.
	Name string

	// MaxTokens is the advertised context window, when known.
	MaxTokens int

	// SupportsStreaming indicates SSE streaming support.
	SupportsStreaming bool

	// Metadata holds provider-specific extras (e.g. a custom base URL).
	Metadata map[string]interface{}
}
