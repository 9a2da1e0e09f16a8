package interpreter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nadzzz/finecho/internal/completion/completiontest"
	"github.com/nadzzz/finecho/internal/finance"
	"github.com/nadzzz/finecho/internal/message"
)

var testNow = time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)

type fakeReader struct {
	accounts []finance.Account
	txs      []finance.Transaction
	budgets  []finance.Budget
	err      error
}

func (f *fakeReader) GetUser(ctx context.Context, id int64) (*finance.User, error) {
	return &finance.User{ID: id}, f.err
}

func (f *fakeReader) AccountsByUser(ctx context.Context, userID int64) ([]finance.Account, error) {
	return f.accounts, f.err
}

func (f *fakeReader) TransactionsByUser(ctx context.Context, userID int64) ([]finance.Transaction, error) {
	return f.txs, f.err
}

func (f *fakeReader) BudgetsByUser(ctx context.Context, userID int64) ([]finance.Budget, error) {
	return f.budgets, f.err
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func demoReader() *fakeReader {
	return &fakeReader{
		accounts: []finance.Account{
			{ID: 1, Balance: dec("12500.82"), Type: finance.AccountChecking},
			{ID: 2, Balance: dec("8341.23"), Type: finance.AccountSavings},
			{ID: 3, Balance: dec("-720.00"), Type: finance.AccountCredit},
		},
		txs: []finance.Transaction{
			{ID: 1, Amount: dec("-86.45"), Date: testNow, Category: "Groceries"},
			{ID: 2, Amount: dec("3450.00"), Date: testNow.AddDate(0, 0, -1), Category: "Income"},
			{ID: 3, Amount: dec("-14.99"), Date: testNow.AddDate(0, 0, -3), Category: "Entertainment"},
			{ID: 4, Amount: dec("-22.15"), Date: testNow.AddDate(0, 0, -4), Category: "Transport"},
			{ID: 5, Amount: dec("-500.00"), Date: testNow.AddDate(0, -1, 0), Category: "Travel"},
		},
		budgets: []finance.Budget{
			{ID: 1, Category: "Groceries", Amount: dec("400"), Period: finance.PeriodMonthly},
		},
	}
}

func fixedClock() time.Time { return testNow }

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  What's My BALANCE?  ", "what's my balance?"},
		{"\tspend\n", "spend"},
		{"", ""},
		{"already normal", "already normal"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func FuzzNormalizeIdempotent(f *testing.F) {
	for _, s := range []string{"", " Balance ", "TRANSFER $500", " Ünïcode\t", "İstanbul"} {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, s string) {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent: %q -> %q -> %q", s, once, twice)
		}
	})
}

func TestClassify_Keywords(t *testing.T) {
	tests := []struct {
		transcript string
		want       message.IntentKind
		amount     string
	}{
		{"What's my balance", message.IntentBalance, ""},
		{"   BALANCE   ", message.IntentBalance, ""},
		{"How much do I have?", message.IntentBalance, ""},
		{"what's my balance and how much did I spend", message.IntentBalance, ""},
		{"show my spending", message.IntentExpenses, ""},
		{"list expenses", message.IntentExpenses, ""},
		{"transfer $500 to savings", message.IntentTransfer, "500.00"},
		{"move money: 42.50 please", message.IntentTransfer, "42.50"},
		{"transfer some money", message.IntentError, ""},
		{"transfer $0 to savings", message.IntentError, ""},
		{"how is my budget", message.IntentBudget, ""},
		{"tell me a joke", message.IntentUnknown, ""},
		{"", message.IntentUnknown, ""},
	}

	interp := New(demoReader(), nil, WithClock(fixedClock))
	for _, tt := range tests {
		t.Run(tt.transcript, func(t *testing.T) {
			got := interp.Classify(context.Background(), tt.transcript, FinancialContext{UserID: 1, Now: testNow})
			if got.Kind != tt.want {
				t.Fatalf("kind = %q, want %q", got.Kind, tt.want)
			}
			if tt.amount != "" {
				if got.Amount == nil || got.Amount.StringFixed(2) != tt.amount {
					t.Errorf("amount = %v, want %s", got.Amount, tt.amount)
				}
			}
			if got.Kind == message.IntentError && !strings.Contains(got.Message, "could not determine the amount") {
				t.Errorf("message = %q", got.Message)
			}
		})
	}
}

func TestClassify_Remote(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		content    string
		err        error
		want       message.IntentKind
		amount     string
	}{
		{"balance", "anything", `{"type":"balance","message":"ok"}`, nil, message.IntentBalance, ""},
		{"expense alias", "anything", `{"type":"expense"}`, nil, message.IntentExpenses, ""},
		{"spending alias", "anything", `{"type":"Spending"}`, nil, message.IntentExpenses, ""},
		{"fenced", "anything", "```json\n{\"type\":\"budget\"}\n```", nil, message.IntentBudget, ""},
		{"transfer number", "send it", `{"type":"transfer","amount":250}`, nil, message.IntentTransfer, "250.00"},
		{"transfer string", "send it", `{"type":"transfer","amount":"$75.5"}`, nil, message.IntentTransfer, "75.50"},
		{"transfer from transcript", "transfer 30 dollars", `{"type":"transfer"}`, nil, message.IntentTransfer, "30.00"},
		{"transfer thousands separator", "send it", `{"type":"transfer","amount":"1,500"}`, nil, message.IntentTransfer, "1500.00"},
		{"transfer exponent", "send it", `{"type":"transfer","amount":1e3}`, nil, message.IntentTransfer, "1000.00"},
		{"transfer negative uses transcript", "transfer 20 dollars", `{"type":"transfer","amount":-500}`, nil, message.IntentTransfer, "20.00"},
		{"transfer negative string uses transcript", "transfer 20 dollars", `{"type":"transfer","amount":"-500"}`, nil, message.IntentTransfer, "20.00"},
		{"transfer garbage uses transcript", "move money 45.25 now", `{"type":"transfer","amount":"lots"}`, nil, message.IntentTransfer, "45.25"},
		{"transfer no amount", "transfer it all", `{"type":"transfer","amount":0}`, nil, message.IntentError, ""},

		// Failures fall back to the keyword rules on the transcript.
		{"error type", "what's my balance", `{"type":"error","message":"nope"}`, nil, message.IntentBalance, ""},
		{"missing type", "my budget", `{"message":"hi"}`, nil, message.IntentBudget, ""},
		{"unrecognised type", "my budget", `{"type":"advice"}`, nil, message.IntentBudget, ""},
		{"not json", "spend", `Sure! You spent a lot.`, nil, message.IntentExpenses, ""},
		{"call error", "transfer $12", "", errors.New("connection refused"), message.IntentTransfer, "12.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &completiontest.Fake{Content: tt.content, Err: tt.err}
			interp := New(demoReader(), fake, WithClock(fixedClock))

			got := interp.Classify(context.Background(), tt.transcript, FinancialContext{UserID: 1, Now: testNow})
			if got.Kind != tt.want {
				t.Fatalf("kind = %q, want %q", got.Kind, tt.want)
			}
			if tt.amount != "" && (got.Amount == nil || got.Amount.StringFixed(2) != tt.amount) {
				t.Errorf("amount = %v, want %s", got.Amount, tt.amount)
			}
			if n := len(fake.Requests()); n != 1 {
				t.Errorf("remote calls = %d, want exactly 1", n)
			}
		})
	}
}

func TestClassify_RemoteRequest(t *testing.T) {
	fake := &completiontest.Fake{Content: `{"type":"balance"}`}
	interp := New(demoReader(), fake, WithClock(fixedClock))
	interp.Classify(context.Background(), "What's my balance", FinancialContext{UserID: 7, Now: testNow})

	reqs := fake.Requests()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d", len(reqs))
	}
	r := reqs[0]
	if !r.JSON {
		t.Error("classification must request JSON output")
	}
	if r.User != "What's my balance" {
		t.Errorf("user content = %q", r.User)
	}
	if !strings.Contains(r.System, "2025-03-15") {
		t.Errorf("system prompt missing date: %q", r.System)
	}
}

func TestClassify_RemoteTimeout(t *testing.T) {
	fake := &completiontest.Fake{Block: true}
	interp := New(demoReader(), fake, WithClock(fixedClock), WithTimeout(20*time.Millisecond))

	start := time.Now()
	got := interp.Classify(context.Background(), "budget", FinancialContext{Now: testNow})
	if got.Kind != message.IntentBudget {
		t.Errorf("kind = %q, want budget via fallback", got.Kind)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout not applied, took %s", elapsed)
	}
}

func TestCompose(t *testing.T) {
	amount := dec("500")
	tests := []struct {
		name   string
		intent message.Intent
		want   message.IntentKind
		msg    string
	}{
		{"balance", message.Intent{Kind: message.IntentBalance}, message.IntentBalance, "Your total balance is $20122.05."},
		{"expenses", message.Intent{Kind: message.IntentExpenses}, message.IntentExpenses, "Your expenses this month total $123.59."},
		{"transfer", message.Intent{Kind: message.IntentTransfer, Amount: &amount}, message.IntentTransfer, "I've initiated a transfer of $500.00 to your savings account."},
		{"transfer without amount", message.Intent{Kind: message.IntentTransfer}, message.IntentError, msgNoAmount},
		{"budget", message.Intent{Kind: message.IntentBudget}, message.IntentBudget, "Here's your budget information for this month."},
		{"unknown", message.Intent{Kind: message.IntentUnknown}, message.IntentUnknown, "I'm sorry, I didn't understand that command. Please try again."},
		{"error propagates", message.Intent{Kind: message.IntentError, Message: "custom"}, message.IntentError, "custom"},
		{"error generic", message.Intent{Kind: message.IntentError}, message.IntentError, msgGenericError},
	}

	interp := New(demoReader(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := interp.Compose(context.Background(), tt.intent, 1, testNow)
			if got.Type != tt.want || got.Message != tt.msg {
				t.Errorf("got {%s %q}, want {%s %q}", got.Type, got.Message, tt.want, tt.msg)
			}
		})
	}
}

func TestCompose_Data(t *testing.T) {
	interp := New(demoReader(), nil)
	ctx := context.Background()

	bal := interp.Compose(ctx, message.Intent{Kind: message.IntentBalance}, 1, testNow)
	bd, ok := bal.Data.(*message.BalanceData)
	if !ok || len(bd.Accounts) != 3 || !bd.TotalBalance.Equal(dec("20122.05")) {
		t.Errorf("balance data = %#v", bal.Data)
	}

	exp := interp.Compose(ctx, message.Intent{Kind: message.IntentExpenses}, 1, testNow)
	ed, ok := exp.Data.(*message.ExpensesData)
	if !ok || len(ed.Transactions) != 3 {
		t.Fatalf("expenses data = %#v", exp.Data)
	}
	for _, tx := range ed.Transactions {
		if !tx.IsExpense() || !finance.InMonth(tx.Date, testNow) {
			t.Errorf("unexpected transaction in month expenses: %+v", tx)
		}
	}

	unk := interp.Compose(ctx, message.Intent{Kind: message.IntentUnknown}, 1, testNow)
	if unk.Data != nil {
		t.Errorf("unknown data = %#v, want nil", unk.Data)
	}
}

func TestCompose_DataFailure(t *testing.T) {
	interp := New(&fakeReader{err: errors.New("store down")}, nil)
	for _, k := range []message.IntentKind{message.IntentBalance, message.IntentExpenses, message.IntentBudget} {
		got := interp.Compose(context.Background(), message.Intent{Kind: k}, 1, testNow)
		if got.Type != message.IntentError || got.Message != msgDataFailure {
			t.Errorf("%s: got {%s %q}", k, got.Type, got.Message)
		}
	}
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		transcript string
		want       string
	}{
		{"What's my balance?", "Your total balance is $20122.05."},
		{"How much did I spend this month", "Your total balance is $20122.05."},
		{"show my expenses", "Your expenses this month total $123.59."},
		{"transfer $500 to savings", "I've initiated a transfer of $500.00 to your savings account."},
		{"transfer some money", msgNoAmount},
	}
	interp := New(demoReader(), &completiontest.Fake{Err: errors.New("offline")}, WithClock(fixedClock))
	for _, tt := range tests {
		t.Run(tt.transcript, func(t *testing.T) {
			if got := interp.Interpret(context.Background(), 1, tt.transcript); got.Message != tt.want {
				t.Errorf("message = %q, want %q", got.Message, tt.want)
			}
		})
	}
}
