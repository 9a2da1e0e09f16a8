package finance

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalid is returned when input fails validation.
	ErrInvalid = errors.New("invalid input")
)

// Reader is the read side of the data store. The voice pipeline only ever
// needs these operations.
type Reader interface {
	GetUser(ctx context.Context, id int64) (*User, error)
	AccountsByUser(ctx context.Context, userID int64) ([]Account, error)
	// TransactionsByUser returns transactions newest first.
	TransactionsByUser(ctx context.Context, userID int64) ([]Transaction, error)
	BudgetsByUser(ctx context.Context, userID int64) ([]Budget, error)
}

// Store is the full data-store contract.
type Store interface {
	Reader

	UserByUsername(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, in NewUser) (*User, error)

	CreateTransaction(ctx context.Context, tx Transaction) (*Transaction, error)

	CreateAccount(ctx context.Context, acct Account) (*Account, error)
	UpdateAccountBalance(ctx context.Context, accountID int64, balance decimal.Decimal) (*Account, error)

	CreateBudget(ctx context.Context, b Budget) (*Budget, error)

	CreateGoal(ctx context.Context, g Goal) (*Goal, error)
	GoalsByUser(ctx context.Context, userID int64) ([]Goal, error)
	// UpdateGoalProgress adds amount to the goal and marks it completed once
	// the current amount reaches the target.
	UpdateGoalProgress(ctx context.Context, goalID int64, amount decimal.Decimal) (*Goal, error)

	RecordVoiceCommand(ctx context.Context, cmd VoiceCommand) (*VoiceCommand, error)
	CompleteVoiceCommand(ctx context.Context, id int64, successful bool, response string) error
	// VoiceCommandsByUser returns commands newest first.
	VoiceCommandsByUser(ctx context.Context, userID int64) ([]VoiceCommand, error)
}
