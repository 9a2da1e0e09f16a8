// Package finance defines the financial records owned by a FinEcho user and
// the read projections the voice pipeline computes over them.
//
// Money is always a decimal.Decimal. Transactions with a negative amount are
// expenses; positive amounts are income.
package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies a financial account.
type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCredit     AccountType = "credit"
	AccountInvestment AccountType = "investment"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountChecking, AccountSavings, AccountCredit, AccountInvestment:
		return true
	}
	return false
}

// BudgetPeriod is the recurrence of a budget.
type BudgetPeriod string

const (
	PeriodMonthly  BudgetPeriod = "monthly"
	PeriodAnnually BudgetPeriod = "annually"
)

// Valid reports whether p is one of the known budget periods.
func (p BudgetPeriod) Valid() bool {
	return p == PeriodMonthly || p == PeriodAnnually
}

// User is an application user. PasswordHash is never serialized.
type User struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	PasswordHash string  `json:"-"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	AvatarURL    *string `json:"avatarUrl"`
}

// NewUser is the input for creating a user. Password is plaintext and is
// hashed by the store.
type NewUser struct {
	Username  string  `json:"username"`
	Password  string  `json:"password"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// Account is a bank, credit or investment account.
type Account struct {
	ID       int64           `json:"id"`
	UserID   int64           `json:"userId"`
	Name     string          `json:"name"`
	Type     AccountType     `json:"type"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
	IsActive bool            `json:"isActive"`
}

// Transaction is a single ledger entry.
type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	Merchant    string          `json:"merchant"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
}

// IsExpense reports whether the transaction takes money out.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// Budget caps spending in a category for a period.
type Budget struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Period    BudgetPeriod    `json:"period"`
	StartDate time.Time       `json:"startDate"`
	EndDate   *time.Time      `json:"endDate"`
}

// Goal is a savings target.
type Goal struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"userId"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Deadline      *time.Time      `json:"deadline"`
	IsCompleted   bool            `json:"isCompleted"`
}

// VoiceCommand is the history record of one spoken command.
type VoiceCommand struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	Command       string    `json:"command"`
	Timestamp     time.Time `json:"timestamp"`
	WasSuccessful bool      `json:"wasSuccessful"`
	Response      string    `json:"response,omitempty"`
}
