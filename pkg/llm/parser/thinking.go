// Package parser provides utilities for parsing structured content from LLM streams.
package parser

import (
	"strings"

	"github.com/entrhq/chrono/pkg/llm"
)

const (
	openTag  = "<thinking>"
	closeTag = "</thinking>"
)

// ThinkingParser splits streaming content into <thinking> and regular message
// chunks. Tags may be split across arbitrary chunk boundaries, so the parser
// buffers from '<' until '>' before deciding whether a tag is a thinking
// marker or plain text.
type ThinkingParser struct {
	buffer     strings.Builder
	tagBuffer  strings.Builder
	inThinking bool
	inTag      bool
}

// NewThinkingParser creates a new thinking parser.
func NewThinkingParser() *ThinkingParser {
	return &ThinkingParser{}
}

// Parse processes one content delta and returns at most one thinking chunk and
// one message chunk accumulated from it. Either result may be nil.
func (p *ThinkingParser) Parse(content string) (thinkingChunk, messageChunk *llm.StreamChunk) {
	for _, ch := range content {
		switch {
		case ch == '<':
			// A second '<' means the buffered text was never a tag.
			if p.inTag {
				thinkingChunk, messageChunk = p.emit(thinkingChunk, messageChunk, p.drainTagBuffer())
			}
			thinkingChunk, messageChunk = p.emit(thinkingChunk, messageChunk, p.drainBuffer())
			p.inTag = true
			p.tagBuffer.Reset()
			p.tagBuffer.WriteRune(ch)

		case ch == '>' && p.inTag:
			p.tagBuffer.WriteRune(ch)
			tag := p.tagBuffer.String()
			p.tagBuffer.Reset()
			p.inTag = false

			switch tag {
			case openTag:
				p.inThinking = true
			case closeTag:
				p.inThinking = false
			default:
				// Not a thinking marker, pass it through as content.
				thinkingChunk, messageChunk = p.emit(thinkingChunk, messageChunk, p.chunkFor(tag))
			}

		case p.inTag:
			p.tagBuffer.WriteRune(ch)

		default:
			p.buffer.WriteRune(ch)
		}
	}

	thinkingChunk, messageChunk = p.emit(thinkingChunk, messageChunk, p.drainBuffer())
	return thinkingChunk, messageChunk
}

// Flush returns any buffered content that has not been emitted yet. Call at
// end of stream so an unterminated tag is not silently dropped.
func (p *ThinkingParser) Flush() (thinkingChunk, messageChunk *llm.StreamChunk) {
	if p.inTag {
		thinkingChunk, messageChunk = p.emit(thinkingChunk, messageChunk, p.drainTagBuffer())
		p.inTag = false
	}
	return p.emit(thinkingChunk, messageChunk, p.drainBuffer())
}

// IsInThinking returns true if currently inside a thinking block.
func (p *ThinkingParser) IsInThinking() bool {
	return p.inThinking
}

// Reset clears all parser state for a new stream.
func (p *ThinkingParser) Reset() {
	p.buffer.Reset()
	p.tagBuffer.Reset()
	p.inThinking = false
	p.inTag = false
}

func (p *ThinkingParser) drainBuffer() *llm.StreamChunk {
	if p.buffer.Len() == 0 {
		return nil
	}
	text := p.buffer.String()
	p.buffer.Reset()
	return p.chunkFor(text)
}

func (p *ThinkingParser) drainTagBuffer() *llm.StreamChunk {
	if p.tagBuffer.Len() == 0 {
		return nil
	}
	text := p.tagBuffer.String()
	p.tagBuffer.Reset()
	return p.chunkFor(text)
}

// chunkFor wraps text in a chunk typed by the current thinking state.
func (p *ThinkingParser) chunkFor(text string) *llm.StreamChunk {
	if text == "" {
		return nil
	}
	contentType := llm.ContentTypeMessage
	if p.inThinking {
		contentType = llm.ContentTypeThinking
	}
	return &llm.StreamChunk{Content: text, Type: contentType}
}

// emit folds a new chunk into the per-call thinking/message accumulators.
func (p *ThinkingParser) emit(thinkingChunk, messageChunk, next *llm.StreamChunk) (*llm.StreamChunk, *llm.StreamChunk) {
	if next == nil {
		return thinkingChunk, messageChunk
	}

	if next.Type == llm.ContentTypeThinking {
		if thinkingChunk == nil {
			return next, messageChunk
		}
		thinkingChunk.Content += next.Content
		return thinkingChunk, messageChunk
	}

	if messageChunk == nil {
		return thinkingChunk, next
	}
	messageChunk.Content += next.Content
	return thinkingChunk, messageChunk
}
