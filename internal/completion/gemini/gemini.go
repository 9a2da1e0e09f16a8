// Package gemini implements completion.Completer using the Google Gemini API.
package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/nadzzz/finecho/internal/completion"
	"github.com/nadzzz/finecho/internal/config"
)

const defaultModel = "gemini-2.0-flash"

// Completer calls Gemini through the genai client.
type Completer struct {
	client *genai.Client
	model  string
}

// New creates a new Gemini completer from config.
func New(ctx context.Context, cfg config.GeminiConfig) (*Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Completer{client: client, model: model}, nil
}

// Name returns the backend identifier.
func (c *Completer) Name() string { return "gemini" }

// Complete issues one GenerateContent call and returns the response text.
func (c *Completer) Complete(ctx context.Context, r completion.Request) (string, error) {
	gc := &genai.GenerateContentConfig{}
	if r.System != "" {
		gc.SystemInstruction = genai.NewContentFromText(r.System, genai.RoleUser)
	}
	if r.JSON {
		gc.ResponseMIMEType = "application/json"
	}
	if r.Temperature > 0 {
		gc.Temperature = genai.Ptr(float32(r.Temperature))
	}

	contents := []*genai.Content{genai.NewContentFromText(r.User, genai.RoleUser)}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, gc)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from gemini")
	}

	slog.Debug("gemini completion complete", "model", c.model, "content_length", len(text))
	return text, nil
}

// Close is a no-op; the genai client holds no long-lived connections.
func (c *Completer) Close() error { return nil }

var _ completion.Completer = (*Completer)(nil)
