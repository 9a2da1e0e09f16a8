package local

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nadzzz/finecho/internal/completion"
	"github.com/nadzzz/finecho/internal/config"
)

func TestComplete_OllamaGenerate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"model":"llama3","response":"{\"type\":\"budget\"}","done":true}`))
	}))
	defer srv.Close()

	c := New(config.LocalConfig{Endpoint: srv.URL + "/api/generate"})
	content, err := c.Complete(context.Background(), completion.Request{System: "sys", User: "budget please", JSON: true})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != `{"type":"budget"}` {
		t.Errorf("content = %q", content)
	}
	if got["format"] != "json" || got["prompt"] != "budget please" || got["model"] != "llama3" {
		t.Errorf("request = %v", got)
	}
}

func TestComplete_ChatCompatible(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Groceries"}}]}`))
	}))
	defer srv.Close()

	c := New(config.LocalConfig{Endpoint: srv.URL + "/v1/chat/completions", Model: "qwen2.5"})
	content, err := c.Complete(context.Background(), completion.Request{User: "Whole Foods"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if content != "Groceries" {
		t.Errorf("content = %q", content)
	}
	if _, ok := got["messages"]; !ok {
		t.Errorf("request missing messages: %v", got)
	}
	if _, ok := got["response_format"]; ok {
		t.Errorf("response_format sent for a plain-text request: %v", got)
	}
}

func TestComplete_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(config.LocalConfig{Endpoint: srv.URL + "/api/generate"})
	if _, err := c.Complete(context.Background(), completion.Request{User: "x"}); err == nil {
		t.Error("expected error for empty response")
	}
}
