// Package advisor produces spending insights and transaction categories,
// asking the completion backend first and falling back to local rules.
package advisor

import (
	"time"

	"github.com/nadzzz/finecho/internal/completion"
	"github.com/nadzzz/finecho/internal/finance"
)

// DefaultTimeout bounds a single remote call.
const DefaultTimeout = 10 * time.Second

// Advisor generates insights and categories for a user's transactions.
type Advisor struct {
	store     finance.Reader
	completer completion.Completer // nil disables remote generation
	now       func() time.Time
	timeout   time.Duration
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithClock sets the source of the reference instant for month comparisons.
func WithClock(now func() time.Time) Option {
	return func(a *Advisor) { a.now = now }
}

// WithTimeout bounds each remote call.
func WithTimeout(d time.Duration) Option {
	return func(a *Advisor) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// New creates an Advisor. completer may be nil.
func New(store finance.Reader, completer completion.Completer, opts ...Option) *Advisor {
	a := &Advisor{
		store:     store,
		completer: completer,
		now:       time.Now,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}
