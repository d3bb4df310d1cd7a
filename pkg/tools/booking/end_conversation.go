package booking

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/entrhq/chrono/pkg/agent/tools"
)

// EndConversationTool lets the model close the conversation with a farewell
// message. It is loop-breaking: the agent returns the message to the user
// and stops iterating.
type EndConversationTool struct{}

// NewEndConversationTool creates the end_conversation tool.
func NewEndConversationTool() *EndConversationTool {
	return &EndConversationTool{}
}

type endConversationInput struct {
	XMLName xml.Name `xml:"arguments"`
	Message string   `xml:"message"`
}

// Name returns the tool identifier.
func (t *EndConversationTool) Name() string {
	return "end_conversation"
}

// Description returns the tool description shown to the model.
func (t *EndConversationTool) Description() string {
	return "End the conversation with a closing message once the user's scheduling needs are handled."
}

// Schema returns the JSON schema for the tool's parameters.
func (t *EndConversationTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(map[string]interface{}{
		"message": map[string]interface{}{
			"type":        "string",
			"description": "Closing message to show the user.",
		},
	}, []string{"message"})
}

// IsLoopBreaking returns true.
func (t *EndConversationTool) IsLoopBreaking() bool {
	return true
}

// Execute returns the closing message.
func (t *EndConversationTool) Execute(_ context.Context, argumentsXML []byte) (string, map[string]interface{}, error) {
	var input endConversationInput
	if err := tools.UnmarshalXMLWithFallback(argumentsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if input.Message == "" {
		input.Message = "Goodbye!"
	}
	return input.Message, map[string]interface{}{"ended": true}, nil
}
