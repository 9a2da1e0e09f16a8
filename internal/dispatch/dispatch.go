// Package dispatch implements the finecho service layer.
//
// The dispatcher receives requests from transports, records every voice
// command, runs it through the interpreter and completes the history record
// with the outcome. It also fronts the store for the dashboard operations.
// Every transport talks to the same Dispatcher.
package dispatch

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nadzzz/finecho/internal/finance"
	"github.com/nadzzz/finecho/internal/message"
)

// Interpreter answers a voice command. It never fails.
type Interpreter interface {
	Interpret(ctx context.Context, userID int64, transcript string) message.Result
}

// Advisor produces insights and transaction categories.
type Advisor interface {
	Insights(ctx context.Context, userID int64) iter.Seq[message.Insight]
	Categorize(ctx context.Context, description string) string
}

// Dispatcher is the service behind every transport.
type Dispatcher struct {
	store       finance.Store
	interpreter Interpreter
	advisor     Advisor
	now         func() time.Time
}

// New creates a new Dispatcher.
func New(store finance.Store, interp Interpreter, adv Advisor, now func() time.Time) *Dispatcher {
	if now == nil {
		now = time.Now
	}
	return &Dispatcher{
		store:       store,
		interpreter: interp,
		advisor:     adv,
		now:         now,
	}
}

// ProcessCommand records, interprets and completes one voice command.
func (d *Dispatcher) ProcessCommand(ctx context.Context, req message.CommandRequest) (*message.CommandResponse, error) {
	start := time.Now()
	command := strings.TrimSpace(req.Command)
	if command == "" {
		return nil, fmt.Errorf("%w: command is required", finance.ErrInvalid)
	}
	if _, err := d.store.GetUser(ctx, req.UserID); err != nil {
		return nil, err
	}

	rec, err := d.store.RecordVoiceCommand(ctx, finance.VoiceCommand{
		UserID:    req.UserID,
		Command:   command,
		Timestamp: d.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("recording voice command: %w", err)
	}

	logger := slog.With("command_id", rec.ID, "user_id", req.UserID)
	logger.Info("command received", "length", len(command))

	result := d.interpreter.Interpret(ctx, req.UserID, command)

	if err := d.store.CompleteVoiceCommand(ctx, rec.ID, result.Type.Successful(), result.Message); err != nil {
		return nil, fmt.Errorf("completing voice command %d: %w", rec.ID, err)
	}

	logger.Info("command complete", "type", result.Type, "duration", time.Since(start))
	return &message.CommandResponse{CommandID: rec.ID, Response: result}, nil
}

// CreateUser registers a user.
func (d *Dispatcher) CreateUser(ctx context.Context, in finance.NewUser) (*finance.User, error) {
	return d.store.CreateUser(ctx, in)
}

// GetUser returns one user.
func (d *Dispatcher) GetUser(ctx context.Context, id int64) (*finance.User, error) {
	return d.store.GetUser(ctx, id)
}

// CreateTransaction stores a transaction. A missing date defaults to now
// and a missing category is filled in by the advisor.
func (d *Dispatcher) CreateTransaction(ctx context.Context, tx finance.Transaction) (*finance.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	if _, err := d.store.GetUser(ctx, tx.UserID); err != nil {
		return nil, err
	}
	if tx.Date.IsZero() {
		tx.Date = d.now()
	}
	if strings.TrimSpace(tx.Category) == "" {
		tx.Category = d.advisor.Categorize(ctx, strings.TrimSpace(tx.Merchant+" "+tx.Description))
		slog.Debug("transaction categorized", "user_id", tx.UserID, "category", tx.Category)
	}
	return d.store.CreateTransaction(ctx, tx)
}

// Transactions lists a user's transactions, newest first.
func (d *Dispatcher) Transactions(ctx context.Context, userID int64) ([]finance.Transaction, error) {
	if _, err := d.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return d.store.TransactionsByUser(ctx, userID)
}

// Accounts lists a user's accounts.
func (d *Dispatcher) Accounts(ctx context.Context, userID int64) ([]finance.Account, error) {
	if _, err := d.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return d.store.AccountsByUser(ctx, userID)
}

// Budgets lists a user's budgets.
func (d *Dispatcher) Budgets(ctx context.Context, userID int64) ([]finance.Budget, error) {
	if _, err := d.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return d.store.BudgetsByUser(ctx, userID)
}

// Goals lists a user's savings goals.
func (d *Dispatcher) Goals(ctx context.Context, userID int64) ([]finance.Goal, error) {
	if _, err := d.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return d.store.GoalsByUser(ctx, userID)
}

// AddGoalProgress adds a positive amount to a goal.
func (d *Dispatcher) AddGoalProgress(ctx context.Context, goalID int64, amount decimal.Decimal) (*finance.Goal, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", finance.ErrInvalid)
	}
	return d.store.UpdateGoalProgress(ctx, goalID, amount)
}

// Summary computes the dashboard snapshot for a user.
func (d *Dispatcher) Summary(ctx context.Context, userID int64) (*finance.Summary, error) {
	if _, err := d.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	accounts, err := d.store.AccountsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching accounts: %w", err)
	}
	txs, err := d.store.TransactionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching transactions: %w", err)
	}
	s := finance.Summarize(accounts, txs, d.now())
	return &s, nil
}

// Insights collects the advisor's insights for a user.
func (d *Dispatcher) Insights(ctx context.Context, userID int64) ([]message.Insight, error) {
	if _, err := d.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return slices.Collect(d.advisor.Insights(ctx, userID)), nil
}

// VoiceCommands lists a user's command history, newest first.
func (d *Dispatcher) VoiceCommands(ctx context.Context, userID int64) ([]finance.VoiceCommand, error) {
	if _, err := d.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return d.store.VoiceCommandsByUser(ctx, userID)
}
