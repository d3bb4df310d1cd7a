package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsole(&buf)

	console.Banner("1.2.3")
	assert.Contains(t, buf.String(), "Chrono v1.2.3")

	buf.Reset()
	console.Assistant("Here are the open slots.")
	assert.Contains(t, buf.String(), "Here are the open slots.")

	buf.Reset()
	console.Assistant("   ")
	assert.Empty(t, buf.String(), "blank replies are suppressed")

	buf.Reset()
	console.Info("Starting browser...")
	assert.Contains(t, buf.String(), "Starting browser...")

	buf.Reset()
	console.Error(errors.New("something broke"))
	assert.Contains(t, buf.String(), "something broke")
}

func TestPromptIsNonEmpty(t *testing.T) {
	console := NewConsole(&bytes.Buffer{})
	assert.Contains(t, console.Prompt(), "you>")
}
