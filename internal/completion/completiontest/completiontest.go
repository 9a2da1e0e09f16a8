// Package completiontest provides a scripted completion.Completer for tests.
package completiontest

import (
	"context"
	"sync"

	"github.com/nadzzz/finecho/internal/completion"
)

// Fake returns Content (or Err) for every call and records the requests.
type Fake struct {
	Content string
	Err     error

	// Block makes Complete wait for the context to end.
	Block bool

	mu       sync.Mutex
	requests []completion.Request
}

// Name returns "fake".
func (f *Fake) Name() string { return "fake" }

// Complete records r and returns the scripted answer.
func (f *Fake) Complete(ctx context.Context, r completion.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.mu.Unlock()

	if f.Block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.Content, f.Err
}

// Close is a no-op.
func (f *Fake) Close() error { return nil }

// Requests returns the requests seen so far.
func (f *Fake) Requests() []completion.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]completion.Request(nil), f.requests...)
}

var _ completion.Completer = (*Fake)(nil)
