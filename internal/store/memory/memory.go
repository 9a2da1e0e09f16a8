// Package memory is the in-memory implementation of finance.Store.
//
// Every record kind lives in its own map with its own ID counter starting at
// 1. The store is safe for concurrent use and hands out copies so callers
// cannot mutate stored records. Data is lost on restart.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/nadzzz/finecho/internal/finance"
)

// Store is an in-memory finance.Store.
type Store struct {
	mu sync.RWMutex

	users         map[int64]finance.User
	transactions  map[int64]finance.Transaction
	accounts      map[int64]finance.Account
	budgets       map[int64]finance.Budget
	goals         map[int64]finance.Goal
	voiceCommands map[int64]finance.VoiceCommand

	nextUser         int64
	nextTransaction  int64
	nextAccount      int64
	nextBudget       int64
	nextGoal         int64
	nextVoiceCommand int64

	hashCost int
}

// Option configures a Store.
type Option func(*Store)

// WithHashCost sets the bcrypt cost used for new passwords.
func WithHashCost(cost int) Option {
	return func(s *Store) { s.hashCost = cost }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		users:            make(map[int64]finance.User),
		transactions:     make(map[int64]finance.Transaction),
		accounts:         make(map[int64]finance.Account),
		budgets:          make(map[int64]finance.Budget),
		goals:            make(map[int64]finance.Goal),
		voiceCommands:    make(map[int64]finance.VoiceCommand),
		nextUser:         1,
		nextTransaction:  1,
		nextAccount:      1,
		nextBudget:       1,
		nextGoal:         1,
		nextVoiceCommand: 1,
		hashCost:         bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies the store in readiness reports.
func (s *Store) Name() string { return "memory" }

// Ping always succeeds; it exists so the store can back a readiness check.
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// --- Users ---

func (s *Store) GetUser(ctx context.Context, id int64) (*finance.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, finance.ErrNotFound)
	}
	return &u, nil
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*finance.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, finance.ErrNotFound)
}

func (s *Store) CreateUser(ctx context.Context, in finance.NewUser) (*finance.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, in.Username) {
			return nil, fmt.Errorf("%w: username %q is taken", finance.ErrInvalid, in.Username)
		}
	}

	u := finance.User{
		ID:           s.nextUser,
		Username:     in.Username,
		PasswordHash: string(hash),
		Name:         in.Name,
		Email:        in.Email,
		AvatarURL:    in.AvatarURL,
	}
	s.nextUser++
	s.users[u.ID] = u
	return &u, nil
}

// --- Transactions ---

func (s *Store) CreateTransaction(ctx context.Context, tx finance.Transaction) (*finance.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx.ID = s.nextTransaction
	s.nextTransaction++
	s.transactions[tx.ID] = tx
	return &tx, nil
}

func (s *Store) TransactionsByUser(ctx context.Context, userID int64) ([]finance.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []finance.Transaction{}
	for _, t := range s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b finance.Transaction) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

// --- Accounts ---

func (s *Store) CreateAccount(ctx context.Context, acct finance.Account) (*finance.Account, error) {
	if err := acct.Validate(); err != nil {
		return nil, err
	}
	if acct.Currency == "" {
		acct.Currency = "USD"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct.ID = s.nextAccount
	s.nextAccount++
	s.accounts[acct.ID] = acct
	return &acct, nil
}

func (s *Store) AccountsByUser(ctx context.Context, userID int64) ([]finance.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return byID(s.accounts, func(a finance.Account) bool { return a.UserID == userID }), nil
}

func (s *Store) UpdateAccountBalance(ctx context.Context, accountID int64, balance decimal.Decimal) (*finance.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", accountID, finance.ErrNotFound)
	}
	acct.Balance = balance
	s.accounts[accountID] = acct
	return &acct, nil
}

// --- Budgets ---

func (s *Store) CreateBudget(ctx context.Context, b finance.Budget) (*finance.Budget, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b.ID = s.nextBudget
	s.nextBudget++
	s.budgets[b.ID] = b
	return &b, nil
}

func (s *Store) BudgetsByUser(ctx context.Context, userID int64) ([]finance.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return byID(s.budgets, func(b finance.Budget) bool { return b.UserID == userID }), nil
}

// --- Goals ---

func (s *Store) CreateGoal(ctx context.Context, g finance.Goal) (*finance.Goal, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g.ID = s.nextGoal
	s.nextGoal++
	g.IsCompleted = g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
	s.goals[g.ID] = g
	return &g, nil
}

func (s *Store) GoalsByUser(ctx context.Context, userID int64) ([]finance.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return byID(s.goals, func(g finance.Goal) bool { return g.UserID == userID }), nil
}

func (s *Store) UpdateGoalProgress(ctx context.Context, goalID int64, amount decimal.Decimal) (*finance.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.goals[goalID]
	if !ok {
		return nil, fmt.Errorf("goal %d: %w", goalID, finance.ErrNotFound)
	}
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	g.IsCompleted = g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
	s.goals[goalID] = g
	return &g, nil
}

// --- Voice commands ---

func (s *Store) RecordVoiceCommand(ctx context.Context, cmd finance.VoiceCommand) (*finance.VoiceCommand, error) {
	if cmd.UserID <= 0 {
		return nil, fmt.Errorf("%w: userId is required", finance.ErrInvalid)
	}
	if strings.TrimSpace(cmd.Command) == "" {
		return nil, fmt.Errorf("%w: command is required", finance.ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cmd.ID = s.nextVoiceCommand
	s.nextVoiceCommand++
	s.voiceCommands[cmd.ID] = cmd
	return &cmd, nil
}

func (s *Store) CompleteVoiceCommand(ctx context.Context, id int64, successful bool, response string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, ok := s.voiceCommands[id]
	if !ok {
		return fmt.Errorf("voice command %d: %w", id, finance.ErrNotFound)
	}
	cmd.WasSuccessful = successful
	cmd.Response = response
	s.voiceCommands[id] = cmd
	return nil
}

func (s *Store) VoiceCommandsByUser(ctx context.Context, userID int64) ([]finance.VoiceCommand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := byID(s.voiceCommands, func(c finance.VoiceCommand) bool { return c.UserID == userID })
	slices.Reverse(out)
	return out, nil
}

// byID returns the records matching keep in ascending ID order.
func byID[T any](m map[int64]T, keep func(T) bool) []T {
	ids := make([]int64, 0, len(m))
	for id, v := range m {
		if keep(v) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

var _ finance.Store = (*Store)(nil)
