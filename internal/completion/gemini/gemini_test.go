package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nadzzz/finecho/internal/completion"
	"github.com/nadzzz/finecho/internal/config"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(context.Background(), config.GeminiConfig{}); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestComplete(t *testing.T) {
	var body map[string]any
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"type\":\"expenses\"}"}]}}]}`))
	}))
	defer srv.Close()

	c, err := New(context.Background(), config.GeminiConfig{APIKey: "k", Model: "gemini-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Complete(context.Background(), completion.Request{System: "sys", User: "spending?", JSON: true, Temperature: 0.2})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != `{"type":"expenses"}` {
		t.Errorf("text = %q", got)
	}
	if !strings.Contains(path, "gemini-test:generateContent") {
		t.Errorf("path = %q", path)
	}
	gen, _ := body["generationConfig"].(map[string]any)
	if gen["responseMimeType"] != "application/json" {
		t.Errorf("generationConfig = %v", gen)
	}
	if _, ok := body["systemInstruction"]; !ok {
		t.Errorf("request missing systemInstruction: %v", body)
	}
}

func TestComplete_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(context.Background(), config.GeminiConfig{APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Complete(context.Background(), completion.Request{User: "x"}); err == nil {
		t.Error("expected error")
	}
}
