// Package local implements completion.Completer using self-hosted models.
//
// It supports Ollama's /api/generate endpoint and any OpenAI-compatible chat
// endpoint (Ollama /v1, vLLM, llama.cpp server).
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nadzzz/finecho/internal/completion"
	"github.com/nadzzz/finecho/internal/config"
)

// Completer calls a self-hosted LLM endpoint.
type Completer struct {
	endpoint string
	model    string
	client   *http.Client
}

// New creates a new local completer from config.
func New(cfg config.LocalConfig) *Completer {
	model := cfg.Model
	if model == "" {
		model = "llama3"
	}
	return &Completer{
		endpoint: cfg.Endpoint,
		model:    model,
		client:   &http.Client{},
	}
}

// Name returns the backend identifier.
func (c *Completer) Name() string { return "local" }

// Complete sends the prompt in the shape the endpoint expects.
func (c *Completer) Complete(ctx context.Context, r completion.Request) (string, error) {
	var reqBody map[string]any
	if c.ollamaGenerate() {
		reqBody = map[string]any{
			"model":  c.model,
			"system": r.System,
			"prompt": r.User,
			"stream": false,
		}
		if r.JSON {
			reqBody["format"] = "json"
		}
		if r.Temperature > 0 {
			reqBody["options"] = map[string]any{"temperature": r.Temperature}
		}
	} else {
		reqBody = map[string]any{
			"model": c.model,
			"messages": []map[string]string{
				{"role": "system", "content": r.System},
				{"role": "user", "content": r.User},
			},
			"stream": false,
		}
		if r.JSON {
			reqBody["response_format"] = map[string]string{"type": "json_object"}
		}
		if r.Temperature > 0 {
			reqBody["temperature"] = r.Temperature
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("local LLM request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("local LLM failed (status %d): %s", resp.StatusCode, respBody)
	}

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading LLM response: %w", err)
	}

	content := extractContent(respData)
	if content == "" {
		return "", fmt.Errorf("empty response from local LLM")
	}

	slog.Debug("local completion complete", "model", c.model, "content_length", len(content))
	return content, nil
}

// Close is a no-op for the local completer.
func (c *Completer) Close() error { return nil }

func (c *Completer) ollamaGenerate() bool {
	return strings.HasSuffix(c.endpoint, "/api/generate")
}

// extractContent pulls the model text out of either response shape.
func extractContent(data []byte) string {
	// OpenAI-compatible: {"choices": [{"message": {"content": "..."}}]}
	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &chatResp); err == nil && len(chatResp.Choices) > 0 {
		return chatResp.Choices[0].Message.Content
	}

	// Ollama: {"response": "..."}
	var ollamaResp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(data, &ollamaResp); err == nil && ollamaResp.Response != "" {
		return ollamaResp.Response
	}

	return ""
}

var _ completion.Completer = (*Completer)(nil)
