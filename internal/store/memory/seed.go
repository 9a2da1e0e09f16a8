package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nadzzz/finecho/internal/finance"
)

// DemoUsername is the account installed by Seed.
const DemoUsername = "johnsmith"

// Seed installs the demo user and their accounts, transactions, budgets and
// goal. Transaction dates are relative to now but never earlier than the
// start of now's month, so the current month always holds all four.
func (s *Store) Seed(ctx context.Context, now time.Time) (*finance.User, error) {
	user, err := s.CreateUser(ctx, finance.NewUser{
		Username: DemoUsername,
		Password: "password123",
		Name:     "John Smith",
		Email:    "john@example.com",
	})
	if err != nil {
		return nil, fmt.Errorf("seeding user: %w", err)
	}

	accounts := []finance.Account{
		{Name: "Main Checking", Type: finance.AccountChecking, Balance: decimal.RequireFromString("12500.82")},
		{Name: "Savings Account", Type: finance.AccountSavings, Balance: decimal.RequireFromString("8341.23")},
		{Name: "Credit Card", Type: finance.AccountCredit, Balance: decimal.RequireFromString("-720.00")},
	}
	for _, a := range accounts {
		a.UserID = user.ID
		a.Currency = "USD"
		a.IsActive = true
		if _, err := s.CreateAccount(ctx, a); err != nil {
			return nil, fmt.Errorf("seeding account %q: %w", a.Name, err)
		}
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	daysAgo := func(n int) time.Time {
		t := now.AddDate(0, 0, -n)
		if t.Before(monthStart) {
			return monthStart
		}
		return t
	}
	txs := []finance.Transaction{
		{Merchant: "Whole Foods Market", Amount: decimal.RequireFromString("-86.45"), Date: daysAgo(0), Category: "Groceries", Description: "Weekly grocery shopping"},
		{Merchant: "TechCorp Inc.", Amount: decimal.RequireFromString("3450.00"), Date: daysAgo(1), Category: "Income", Description: "Monthly salary deposit"},
		{Merchant: "Netflix", Amount: decimal.RequireFromString("-14.99"), Date: daysAgo(3), Category: "Entertainment", Description: "Monthly subscription"},
		{Merchant: "Uber", Amount: decimal.RequireFromString("-22.15"), Date: daysAgo(4), Category: "Transport", Description: "Ride to airport"},
	}
	for _, tx := range txs {
		tx.UserID = user.ID
		if _, err := s.CreateTransaction(ctx, tx); err != nil {
			return nil, fmt.Errorf("seeding transaction %q: %w", tx.Merchant, err)
		}
	}

	budgets := []finance.Budget{
		{Category: "Groceries", Amount: decimal.NewFromInt(400)},
		{Category: "Entertainment", Amount: decimal.NewFromInt(200)},
	}
	for _, b := range budgets {
		b.UserID = user.ID
		b.Period = finance.PeriodMonthly
		b.StartDate = monthStart
		if _, err := s.CreateBudget(ctx, b); err != nil {
			return nil, fmt.Errorf("seeding budget %q: %w", b.Category, err)
		}
	}

	deadline := now.AddDate(0, 6, 0)
	if _, err := s.CreateGoal(ctx, finance.Goal{
		UserID:        user.ID,
		Name:          "Vacation Fund",
		TargetAmount:  decimal.NewFromInt(3000),
		CurrentAmount: decimal.NewFromInt(1250),
		Deadline:      &deadline,
	}); err != nil {
		return nil, fmt.Errorf("seeding goal: %w", err)
	}

	return user, nil
}
