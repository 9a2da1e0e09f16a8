package finance

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// recentLimit is how many transactions Summary.RecentTransactions carries.
const recentLimit = 5

var hundred = decimal.NewFromInt(100)

// CategorySpend is the current-month spending in one category.
type CategorySpend struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage int64           `json:"percentage"` // of the largest category, 0-100
}

// Summary is the financial snapshot shown on the dashboard.
type Summary struct {
	TotalBalance       decimal.Decimal `json:"totalBalance"`
	MonthlyExpenses    decimal.Decimal `json:"monthlyExpenses"`
	Income             decimal.Decimal `json:"income"`
	Savings            decimal.Decimal `json:"savings"`
	SpendingByCategory []CategorySpend `json:"spendingByCategory"`
	RecentTransactions []Transaction   `json:"recentTransactions"`
}

// InMonth reports whether t falls in the calendar month of now, evaluated in
// now's location.
func InMonth(t, now time.Time) bool {
	t = t.In(now.Location())
	return t.Year() == now.Year() && t.Month() == now.Month()
}

// PreviousMonth returns an instant inside the calendar month before now.
func PreviousMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month()-1, 1, 12, 0, 0, 0, now.Location())
}

// TotalBalance sums every account balance, including negative credit balances.
func TotalBalance(accounts []Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// MonthExpenses returns the expense transactions in now's calendar month, in
// input order, and the sum of their absolute amounts.
func MonthExpenses(txs []Transaction, now time.Time) ([]Transaction, decimal.Decimal) {
	var (
		monthly = []Transaction{}
		total   = decimal.Zero
	)
	for _, t := range txs {
		if t.IsExpense() && InMonth(t.Date, now) {
			monthly = append(monthly, t)
			total = total.Add(t.Amount.Abs())
		}
	}
	return monthly, total
}

// Summarize computes the dashboard snapshot from the current store contents.
func Summarize(accounts []Account, txs []Transaction, now time.Time) Summary {
	s := Summary{
		TotalBalance:       TotalBalance(accounts),
		MonthlyExpenses:    decimal.Zero,
		Income:             decimal.Zero,
		Savings:            decimal.Zero,
		SpendingByCategory: []CategorySpend{},
		RecentTransactions: append([]Transaction{}, txs[:min(len(txs), recentLimit)]...),
	}

	for _, a := range accounts {
		if a.Type == AccountSavings {
			s.Savings = s.Savings.Add(a.Balance)
		}
	}

	// Every category the user ever spent in is listed, even when this
	// month's total is zero.
	var order []string
	spend := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if !t.IsExpense() {
			if InMonth(t.Date, now) {
				s.Income = s.Income.Add(t.Amount)
			}
			continue
		}
		if _, seen := spend[t.Category]; !seen {
			order = append(order, t.Category)
			spend[t.Category] = decimal.Zero
		}
		if InMonth(t.Date, now) {
			spend[t.Category] = spend[t.Category].Add(t.Amount.Abs())
			s.MonthlyExpenses = s.MonthlyExpenses.Add(t.Amount.Abs())
		}
	}

	largest := decimal.Zero
	for _, c := range order {
		s.SpendingByCategory = append(s.SpendingByCategory, CategorySpend{Category: c, Amount: spend[c]})
		if spend[c].GreaterThan(largest) {
			largest = spend[c]
		}
	}
	slices.SortStableFunc(s.SpendingByCategory, func(a, b CategorySpend) int {
		return b.Amount.Cmp(a.Amount)
	})
	if largest.IsPositive() {
		for i := range s.SpendingByCategory {
			pct := s.SpendingByCategory[i].Amount.Div(largest).Mul(hundred).Round(0)
			s.SpendingByCategory[i].Percentage = pct.IntPart()
		}
	}

	return s
}
