package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/nadzzz/finecho/internal/finance"
)

var now = time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(WithHashCost(bcrypt.MinCost))
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	user, err := s.Seed(ctx, now)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if user.ID != 1 || user.Username != DemoUsername {
		t.Errorf("seeded user = %+v", user)
	}

	accounts, _ := s.AccountsByUser(ctx, user.ID)
	if got := finance.TotalBalance(accounts).StringFixed(2); got != "20122.05" {
		t.Errorf("total balance = %s, want 20122.05", got)
	}

	txs, _ := s.TransactionsByUser(ctx, user.ID)
	if len(txs) != 4 {
		t.Fatalf("got %d transactions, want 4", len(txs))
	}
	if txs[0].Merchant != "Whole Foods Market" {
		t.Errorf("newest transaction = %q, want Whole Foods Market", txs[0].Merchant)
	}

	budgets, _ := s.BudgetsByUser(ctx, user.ID)
	if len(budgets) != 2 || budgets[0].Category != "Groceries" {
		t.Errorf("budgets = %+v", budgets)
	}

	goals, _ := s.GoalsByUser(ctx, user.ID)
	if len(goals) != 1 || goals[0].IsCompleted {
		t.Errorf("goals = %+v", goals)
	}
}

func TestSeed_EarlyInMonth(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	second := time.Date(2025, time.April, 2, 9, 0, 0, 0, time.UTC)

	user, err := s.Seed(ctx, second)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	txs, _ := s.TransactionsByUser(ctx, user.ID)
	for _, tx := range txs {
		if !finance.InMonth(tx.Date, second) {
			t.Errorf("%s dated %s, outside April", tx.Merchant, tx.Date)
		}
	}
	if _, total := finance.MonthExpenses(txs, second); total.StringFixed(2) != "123.59" {
		t.Errorf("month expenses = %s, want 123.59", total)
	}
	if txs[0].Merchant != "Whole Foods Market" {
		t.Errorf("newest transaction = %q", txs[0].Merchant)
	}
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u, err := s.CreateUser(ctx, finance.NewUser{Username: "Alice", Password: "secret", Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.PasswordHash == "secret" {
		t.Error("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret")); err != nil {
		t.Errorf("hash does not match password: %v", err)
	}

	got, err := s.UserByUsername(ctx, "alice")
	if err != nil || got.ID != u.ID {
		t.Errorf("UserByUsername = %+v, %v", got, err)
	}

	_, err = s.CreateUser(ctx, finance.NewUser{Username: "ALICE", Password: "x", Name: "A", Email: "a@example.com"})
	if !errors.Is(err, finance.ErrInvalid) {
		t.Errorf("duplicate username err = %v, want ErrInvalid", err)
	}

	if _, err := s.GetUser(ctx, 99); !errors.Is(err, finance.ErrNotFound) {
		t.Errorf("GetUser(99) err = %v, want ErrNotFound", err)
	}
}

func TestUpdateGoalProgress(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	g, err := s.CreateGoal(ctx, finance.Goal{UserID: 1, Name: "Bike", TargetAmount: decimal.NewFromInt(100)})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}

	g, _ = s.UpdateGoalProgress(ctx, g.ID, decimal.NewFromInt(60))
	if g.IsCompleted {
		t.Error("goal completed too early")
	}
	g, _ = s.UpdateGoalProgress(ctx, g.ID, decimal.NewFromInt(40))
	if !g.IsCompleted || g.CurrentAmount.String() != "100" {
		t.Errorf("goal = %+v, want completed at 100", g)
	}

	if _, err := s.UpdateGoalProgress(ctx, 42, decimal.NewFromInt(1)); !errors.Is(err, finance.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateAccountBalance(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a, _ := s.CreateAccount(ctx, finance.Account{UserID: 1, Name: "Checking", Type: finance.AccountChecking})
	if a.Currency != "USD" {
		t.Errorf("default currency = %q", a.Currency)
	}
	a, err := s.UpdateAccountBalance(ctx, a.ID, decimal.RequireFromString("10.5"))
	if err != nil || a.Balance.String() != "10.5" {
		t.Errorf("UpdateAccountBalance = %+v, %v", a, err)
	}
}

func TestVoiceCommands(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, _ := s.RecordVoiceCommand(ctx, finance.VoiceCommand{UserID: 1, Command: "what's my balance", Timestamp: now})
	second, _ := s.RecordVoiceCommand(ctx, finance.VoiceCommand{UserID: 1, Command: "show budget", Timestamp: now})
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("ids = %d, %d", first.ID, second.ID)
	}

	if err := s.CompleteVoiceCommand(ctx, first.ID, true, "Your total balance is $1.00."); err != nil {
		t.Fatalf("CompleteVoiceCommand: %v", err)
	}

	history, _ := s.VoiceCommandsByUser(ctx, 1)
	if len(history) != 2 || history[0].ID != second.ID {
		t.Fatalf("history = %+v", history)
	}
	if !history[1].WasSuccessful || history[1].Response == "" {
		t.Errorf("completed command = %+v", history[1])
	}

	if _, err := s.RecordVoiceCommand(ctx, finance.VoiceCommand{UserID: 1, Command: "  "}); !errors.Is(err, finance.ErrInvalid) {
		t.Errorf("blank command err = %v, want ErrInvalid", err)
	}
}

func TestReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, _ = s.CreateAccount(ctx, finance.Account{UserID: 1, Name: "Checking", Type: finance.AccountChecking, Balance: decimal.NewFromInt(5)})

	accounts, _ := s.AccountsByUser(ctx, 1)
	accounts[0].Balance = decimal.NewFromInt(1000)

	again, _ := s.AccountsByUser(ctx, 1)
	if again[0].Balance.String() != "5" {
		t.Errorf("stored balance mutated through returned slice: %s", again[0].Balance)
	}
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.CreateTransaction(ctx, finance.Transaction{UserID: 1, Merchant: "m", Amount: decimal.NewFromInt(-1), Date: now})
		}()
		go func() {
			defer wg.Done()
			_, _ = s.TransactionsByUser(ctx, 1)
		}()
	}
	wg.Wait()

	txs, _ := s.TransactionsByUser(ctx, 1)
	if len(txs) != 20 {
		t.Errorf("got %d transactions, want 20", len(txs))
	}
}
