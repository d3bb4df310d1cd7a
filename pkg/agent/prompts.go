package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/entrhq/chrono/pkg/agent/tools"
)

// toolCallingPrompt explains the XML tool invocation format to the model.
const toolCallingPrompt = `<tool_calling>
You invoke tools using an XML format. One tool may be called per message, and
you will receive the result of that call before deciding your next step.

Tool call structure:

<tool>
<server_name>local</server_name>
<tool_name>tool name here</tool_name>
<arguments>
  <param>value</param>
</arguments>
</tool>

The argument elements must match the tool's JSON schema property names.
Escape XML special characters in values (&amp; for &, &lt; for <).
</tool_calling>`

// toolUseRulesPrompt sets the ground rules for the agent loop.
const toolUseRulesPrompt = `<tool_use_rules>
1. Use exactly one tool per message when acting, and no tool when replying to the user.
2. Never invent tool results; always wait for the returned result before continuing.
3. If a tool reports missing required information, gather it from the user before retrying.
4. When the conversation has reached a natural end, call end_conversation.
</tool_use_rules>`

// buildSystemPrompt assembles the system prompt from custom instructions and
// the registered tool schemas.
func buildSystemPrompt(customInstructions string, toolsList []tools.Tool) string {
	var builder strings.Builder

	if customInstructions != "" {
		builder.WriteString("<custom_instructions>\n")
		builder.WriteString(customInstructions)
		builder.WriteString("\n</custom_instructions>\n\n")
	}

	builder.WriteString(toolCallingPrompt)
	builder.WriteString("\n\n")

	if len(toolsList) > 0 {
		builder.WriteString("<available_tools>\n")
		builder.WriteString(formatToolSchemas(toolsList))
		builder.WriteString("</available_tools>\n\n")
	}

	builder.WriteString(toolUseRulesPrompt)

	return builder.String()
}

// formatToolSchemas renders each tool's name, description, and JSON schema.
func formatToolSchemas(toolsList []tools.Tool) string {
	var builder strings.Builder

	for _, tool := range toolsList {
		builder.WriteString(fmt.Sprintf("## %s\n", tool.Name()))
		builder.WriteString(tool.Description())
		builder.WriteString("\n")

		schemaJSON, err := json.MarshalIndent(tool.Schema(), "", "  ")
		if err != nil {
			// A schema is a static map of primitives; marshal failure
			// means a programming error in the tool itself.
			builder.WriteString("(schema unavailable)\n\n")
			continue
		}
		builder.WriteString("Input schema:\n")
		builder.Write(schemaJSON)
		builder.WriteString("\n\n")
	}

	return builder.String()
}
