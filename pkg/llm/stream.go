package llm

// ContentType distinguishes the kinds of content a provider can stream.
type ContentType string

const (
	// ContentTypeMessage is regular assistant-visible content.
	ContentTypeMessage ContentType = "message"

	// ContentTypeThinking is content inside <thinking> tags, separated out
	// by the stream parser so callers can render or discard it.
	ContentTypeThinking ContentType = "thinking"
)

// StreamChunk is a single increment of a streaming LLM response.
type StreamChunk struct {
	// Role is set on the first chunk of a response (e.g. "assistant").
	Role string

	// Content is the text delta carried by this chunk.
	Content string

	// Type indicates whether Content is message or thinking text.
	Type ContentType

	// Finished is true on the final chunk of a successful stream.
	Finished bool

	// Error is set when the stream failed mid-flight.
	Error error
}

// IsError reports whether this chunk carries a stream error.
func (c *StreamChunk) IsError() bool {
	return c.Error != nil
}

// IsThinking reports whether this chunk is thinking content.
func (c *StreamChunk) IsThinking() bool {
	return c.Type == ContentTypeThinking
}
