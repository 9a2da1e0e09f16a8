package finance

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var now = time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTotalBalance(t *testing.T) {
	accounts := []Account{
		{Balance: dec("12500.82")},
		{Balance: dec("8341.23")},
		{Balance: dec("-720.00")},
	}
	got := TotalBalance(accounts)
	if got.StringFixed(2) != "20122.05" {
		t.Errorf("TotalBalance = %s, want 20122.05", got.StringFixed(2))
	}
}

func TestMonthExpenses(t *testing.T) {
	txs := []Transaction{
		{Amount: dec("-86.45"), Date: now},
		{Amount: dec("3450.00"), Date: now.Add(-24 * time.Hour)},
		{Amount: dec("-14.99"), Date: now.Add(-72 * time.Hour)},
		{Amount: dec("-22.15"), Date: now.Add(-96 * time.Hour)},
		{Amount: dec("-500.00"), Date: PreviousMonth(now)},
		{Amount: dec("-40.00"), Date: now.AddDate(-1, 0, 0)}, // same month last year
	}

	monthly, total := MonthExpenses(txs, now)
	if len(monthly) != 3 {
		t.Fatalf("got %d monthly expenses, want 3", len(monthly))
	}
	if total.StringFixed(2) != "123.59" {
		t.Errorf("total = %s, want 123.59", total.StringFixed(2))
	}
}

func TestInMonth(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"same day", now, true},
		{"first of month", time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), true},
		{"last of previous month", time.Date(2026, time.February, 28, 23, 59, 0, 0, time.UTC), false},
		{"next month", time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), false},
		{"same month other year", time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InMonth(tt.t, now); got != tt.want {
				t.Errorf("InMonth(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestPreviousMonth(t *testing.T) {
	jan := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)
	prev := PreviousMonth(jan)
	if prev.Year() != 2025 || prev.Month() != time.December {
		t.Errorf("PreviousMonth(%v) = %v, want December 2025", jan, prev)
	}
}

func TestSummarize(t *testing.T) {
	accounts := []Account{
		{Type: AccountChecking, Balance: dec("100")},
		{Type: AccountSavings, Balance: dec("50")},
		{Type: AccountSavings, Balance: dec("25.50")},
	}
	txs := []Transaction{
		{Category: "Groceries", Amount: dec("-80"), Date: now},
		{Category: "Income", Amount: dec("1000"), Date: now},
		{Category: "Transport", Amount: dec("-20"), Date: now},
		{Category: "Groceries", Amount: dec("-20"), Date: now},
		{Category: "Travel", Amount: dec("-300"), Date: PreviousMonth(now)},
		{Category: "Income", Amount: dec("999"), Date: PreviousMonth(now)},
	}

	s := Summarize(accounts, txs, now)

	if s.TotalBalance.StringFixed(2) != "175.50" {
		t.Errorf("TotalBalance = %s", s.TotalBalance)
	}
	if s.Savings.StringFixed(2) != "75.50" {
		t.Errorf("Savings = %s", s.Savings)
	}
	if s.MonthlyExpenses.StringFixed(2) != "120.00" {
		t.Errorf("MonthlyExpenses = %s", s.MonthlyExpenses)
	}
	if s.Income.StringFixed(2) != "1000.00" {
		t.Errorf("Income = %s", s.Income)
	}
	if len(s.RecentTransactions) != 5 {
		t.Errorf("RecentTransactions = %d, want 5", len(s.RecentTransactions))
	}

	want := []struct {
		category string
		pct      int64
	}{
		{"Groceries", 100},
		{"Transport", 20},
		{"Travel", 0},
	}
	if len(s.SpendingByCategory) != len(want) {
		t.Fatalf("SpendingByCategory = %+v", s.SpendingByCategory)
	}
	for i, w := range want {
		got := s.SpendingByCategory[i]
		if got.Category != w.category || got.Percentage != w.pct {
			t.Errorf("SpendingByCategory[%d] = %s/%d, want %s/%d", i, got.Category, got.Percentage, w.category, w.pct)
		}
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, nil, now)
	if !s.TotalBalance.IsZero() || len(s.SpendingByCategory) != 0 || len(s.RecentTransactions) != 0 {
		t.Errorf("unexpected summary for empty input: %+v", s)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"valid user", NewUser{Username: "a", Password: "p", Name: "A", Email: "a@example.com"}.Validate(), false},
		{"user bad email", NewUser{Username: "a", Password: "p", Name: "A", Email: "nope"}.Validate(), true},
		{"user missing password", NewUser{Username: "a", Name: "A", Email: "a@example.com"}.Validate(), true},
		{"valid transaction", Transaction{UserID: 1, Merchant: "Uber", Amount: dec("-3")}.Validate(), false},
		{"zero transaction", Transaction{UserID: 1, Merchant: "Uber"}.Validate(), true},
		{"bad account type", Account{UserID: 1, Name: "X", Type: "piggy"}.Validate(), true},
		{"budget bad period", Budget{UserID: 1, Category: "Food", Amount: dec("1"), Period: "weekly", StartDate: now}.Validate(), true},
		{"valid goal", Goal{UserID: 1, Name: "Trip", TargetAmount: dec("10")}.Validate(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if (tt.err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", tt.err, tt.wantErr)
			}
			if tt.err != nil && !errors.Is(tt.err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", tt.err)
			}
		})
	}
}
