// Package completion defines the interface to the external large-language-
// model text-completion service.
//
// FinEcho ships three backends: OpenAI (cloud), Local (self-hosted via
// Ollama or any OpenAI-compatible server) and Gemini. Each Complete call is a
// single attempt; callers own retries and fallbacks.
package completion

import (
	"context"
	"strings"
)

// Request is one chat-style completion request.
type Request struct {
	// System is the fixed instruction for the model.
	System string

	// User is the user-turn content (a transcript, or a JSON payload).
	User string

	// JSON constrains the response to a JSON object.
	JSON bool

	// Temperature controls sampling; zero uses the backend default.
	Temperature float64
}

// Completer sends a prompt to a language model and returns the text of the
// first choice.
type Completer interface {
	// Name returns the backend identifier (e.g., "openai", "local", "gemini").
	Name() string

	// Complete issues exactly one request and returns the model's content.
	Complete(ctx context.Context, req Request) (string, error)

	// Close releases any resources held by the backend.
	Close() error
}

// CleanJSON strips Markdown code fences that models sometimes wrap around
// JSON output despite instructions.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening fence line (``` or ```json).
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[idx+1:]
	} else {
		return strings.Trim(s, "`")
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
