// Package agent implements Chrono's conversational agent loop.
//
// The agent is synchronous: each user message is processed to completion and
// the assistant's reply is returned. Within one turn the agent may execute
// several tool calls, feeding each result back to the model, until the model
// answers in plain text or invokes a loop-breaking tool.
package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/entrhq/chrono/pkg/agent/tools"
	"github.com/entrhq/chrono/pkg/llm"
	"github.com/entrhq/chrono/pkg/llm/tokenizer"
	"github.com/entrhq/chrono/pkg/logging"
	"github.com/entrhq/chrono/pkg/types"
)

const (
	// DefaultMaxIterations bounds tool-call round trips within one turn.
	DefaultMaxIterations = 10

	// maxConsecutiveErrors trips the circuit breaker: repeated tool
	// failures end the turn instead of burning the iteration budget.
	maxConsecutiveErrors = 3
)

// Agent runs the conversation loop over an LLM provider and a tool registry.
type Agent struct {
	provider           llm.Provider
	memory             *ConversationMemory
	logger             *logging.Logger
	customInstructions string
	maxIterations      int

	mu    sync.RWMutex
	tools map[string]tools.Tool
}

// Option configures an Agent.
type Option func(*Agent)

// WithCustomInstructions sets the behavioral instructions prepended to the
// system prompt.
func WithCustomInstructions(instructions string) Option {
	return func(a *Agent) {
		a.customInstructions = instructions
	}
}

// WithMaxIterations overrides the per-turn tool round-trip limit.
func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

// WithMemory replaces the default conversation memory.
func WithMemory(memory *ConversationMemory) Option {
	return func(a *Agent) {
		a.memory = memory
	}
}

// New creates an agent for the given provider.
func New(provider llm.Provider, logger *logging.Logger, opts ...Option) *Agent {
	tok, err := tokenizer.NewTokenizer(provider.GetModel())
	if err != nil {
		// Memory falls back to unbounded history; conversations in this
		// CLI are short enough that this is a soft degradation.
		logger.Warnf("tokenizer unavailable for model %s: %v", provider.GetModel(), err)
		tok = nil
	}

	a := &Agent{
		provider:      provider,
		memory:        NewConversationMemory(tok, DefaultMaxHistoryTokens),
		logger:        logger,
		maxIterations: DefaultMaxIterations,
		tools:         make(map[string]tools.Tool),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// RegisterTool adds a tool to the agent's registry.
func (a *Agent) RegisterTool(tool tools.Tool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if _, exists := a.tools[name]; exists {
		return fmt.Errorf("tool %q is already registered", name)
	}

	a.tools[name] = tool
	return nil
}

// Tools returns the registered tools sorted by name.
func (a *Agent) Tools() []tools.Tool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	list := make([]tools.Tool, 0, len(a.tools))
	for _, tool := range a.tools {
		list = append(list, tool)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// HandleMessage processes one user message and returns the assistant's reply.
func (a *Agent) HandleMessage(ctx context.Context, userMessage string) (string, error) {
	a.memory.Add(types.NewUserMessage(userMessage))

	systemPrompt := buildSystemPrompt(a.customInstructions, a.Tools())
	consecutiveErrors := 0

	for i := 0; i < a.maxIterations; i++ {
		messages := a.buildMessages(systemPrompt)

		response, err := a.provider.Complete(ctx, messages)
		if err != nil {
			return "", fmt.Errorf("completion failed: %w", err)
		}

		prose, toolCall, _, parseErr := tools.ExtractThinkingAndToolCall(response.Content)
		a.memory.Add(types.NewAssistantMessage(response.Content))

		if parseErr != nil {
			a.logger.Warnf("malformed tool call: %v", parseErr)
			consecutiveErrors++
			if consecutiveErrors >= maxConsecutiveErrors {
				return "", fmt.Errorf("giving up after %d consecutive malformed tool calls", consecutiveErrors)
			}
			a.memory.Add(types.NewUserMessage(fmt.Sprintf(
				"Your tool call could not be parsed: %v. Reply again with a valid <tool> block.", parseErr)))
			continue
		}

		if toolCall == nil {
			// Plain text response ends the turn.
			return response.Content, nil
		}

		reply, done, err := a.executeTool(ctx, toolCall)
		if err != nil {
			consecutiveErrors++
			if consecutiveErrors >= maxConsecutiveErrors {
				return "", fmt.Errorf("giving up after %d consecutive tool errors: %w", consecutiveErrors, err)
			}
			a.memory.Add(types.NewUserMessage(fmt.Sprintf("Tool '%s' error:\n%s", toolCall.ToolName, err)))
			continue
		}
		consecutiveErrors = 0

		if done {
			if reply == "" {
				reply = prose
			}
			return reply, nil
		}
	}

	return "", fmt.Errorf("turn did not complete within %d iterations", a.maxIterations)
}

// executeTool looks up and runs one tool call. Returns the reply to surface
// and whether the loop should stop.
func (a *Agent) executeTool(ctx context.Context, toolCall *tools.ToolCall) (string, bool, error) {
	a.mu.RLock()
	tool, exists := a.tools[toolCall.ToolName]
	a.mu.RUnlock()

	if !exists {
		return "", false, fmt.Errorf("unknown tool %q", toolCall.ToolName)
	}

	a.logger.Infof("executing tool %s", toolCall.ToolName)
	result, _, err := tool.Execute(ctx, toolCall.GetArgumentsXML())
	if err != nil {
		a.logger.Errorf("tool %s failed: %v", toolCall.ToolName, err)
		return "", false, err
	}

	if tool.IsLoopBreaking() {
		return result, true, nil
	}

	a.memory.Add(types.NewUserMessage(fmt.Sprintf("Tool '%s' result:\n%s", toolCall.ToolName, result)))
	return "", false, nil
}

// buildMessages assembles the provider message list: system prompt first,
// then history with any stray system messages filtered out.
func (a *Agent) buildMessages(systemPrompt string) []*types.Message {
	history := a.memory.GetAll()

	messages := make([]*types.Message, 0, len(history)+1)
	messages = append(messages, types.NewSystemMessage(systemPrompt))
	for _, msg := range history {
		if msg.Role != types.RoleSystem {
			messages = append(messages, msg)
		}
	}
	return messages
}
