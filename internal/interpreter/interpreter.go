// Package interpreter turns a voice transcript into a structured, answered
// result.
//
// Interpretation runs in three stages: Normalize, Classify and Compose.
// Classification asks the completion backend first and falls back to a
// fixed keyword rule set on any failure, so two identical transcripts can
// classify differently depending on backend availability. Interpret never
// fails; every problem is reported as an error-typed result.
package interpreter

import (
	"context"
	"time"

	"github.com/nadzzz/finecho/internal/completion"
	"github.com/nadzzz/finecho/internal/finance"
	"github.com/nadzzz/finecho/internal/message"
)

// DefaultTimeout bounds a single remote classification call.
const DefaultTimeout = 10 * time.Second

// Interpreter is the voice command interpretation pipeline.
type Interpreter struct {
	store     finance.Reader
	completer completion.Completer // nil disables remote classification
	now       func() time.Time
	timeout   time.Duration
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithClock sets the source of the reference instant used for "this month".
func WithClock(now func() time.Time) Option {
	return func(i *Interpreter) { i.now = now }
}

// WithTimeout bounds each remote classification call.
func WithTimeout(d time.Duration) Option {
	return func(i *Interpreter) {
		if d > 0 {
			i.timeout = d
		}
	}
}

// New creates an Interpreter reading from store. completer may be nil.
func New(store finance.Reader, completer completion.Completer, opts ...Option) *Interpreter {
	i := &Interpreter{
		store:     store,
		completer: completer,
		now:       time.Now,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Interpret classifies a transcript for a user and composes the answer.
func (i *Interpreter) Interpret(ctx context.Context, userID int64, transcript string) message.Result {
	now := i.now()
	intent := i.Classify(ctx, transcript, FinancialContext{UserID: userID, Now: now})
	return i.Compose(ctx, intent, userID, now)
}
