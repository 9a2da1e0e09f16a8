package interpreter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nadzzz/finecho/internal/finance"
	"github.com/nadzzz/finecho/internal/message"
)

const (
	msgUnknown      = "I'm sorry, I didn't understand that command. Please try again."
	msgDataFailure  = "I encountered an error processing your request. Please try again later."
	msgGenericError = "Sorry, I couldn't process your request at the moment."
)

// Compose fetches the data an intent needs and renders the final result.
// Data-access failures become an error result.
func (i *Interpreter) Compose(ctx context.Context, intent message.Intent, userID int64, now time.Time) message.Result {
	res, err := i.compose(ctx, intent, userID, now)
	if err != nil {
		slog.Error("composing response failed", "user_id", userID, "intent", intent.Kind, "error", err)
		return message.Result{Type: message.IntentError, Message: msgDataFailure}
	}
	return res
}

func (i *Interpreter) compose(ctx context.Context, intent message.Intent, userID int64, now time.Time) (message.Result, error) {
	switch intent.Kind {
	case message.IntentBalance:
		accounts, err := i.store.AccountsByUser(ctx, userID)
		if err != nil {
			return message.Result{}, fmt.Errorf("fetching accounts: %w", err)
		}
		total := finance.TotalBalance(accounts)
		return message.Result{
			Type:    message.IntentBalance,
			Message: fmt.Sprintf("Your total balance is $%s.", total.StringFixed(2)),
			Data:    &message.BalanceData{TotalBalance: total, Accounts: nonNil(accounts)},
		}, nil

	case message.IntentExpenses:
		txs, err := i.store.TransactionsByUser(ctx, userID)
		if err != nil {
			return message.Result{}, fmt.Errorf("fetching transactions: %w", err)
		}
		monthly, total := finance.MonthExpenses(txs, now)
		return message.Result{
			Type:    message.IntentExpenses,
			Message: fmt.Sprintf("Your expenses this month total $%s.", total.StringFixed(2)),
			Data:    &message.ExpensesData{TotalExpenses: total, Transactions: monthly},
		}, nil

	case message.IntentTransfer:
		if intent.Amount == nil || !intent.Amount.IsPositive() {
			return message.Result{Type: message.IntentError, Message: msgNoAmount}, nil
		}
		// Display only: no ledger entry is written.
		return message.Result{
			Type:    message.IntentTransfer,
			Message: fmt.Sprintf("I've initiated a transfer of $%s to your savings account.", intent.Amount.StringFixed(2)),
			Data:    &message.TransferData{Amount: *intent.Amount},
		}, nil

	case message.IntentBudget:
		budgets, err := i.store.BudgetsByUser(ctx, userID)
		if err != nil {
			return message.Result{}, fmt.Errorf("fetching budgets: %w", err)
		}
		return message.Result{
			Type:    message.IntentBudget,
			Message: "Here's your budget information for this month.",
			Data:    &message.BudgetData{Budgets: nonNil(budgets)},
		}, nil

	case message.IntentError:
		msg := intent.Message
		if msg == "" {
			msg = msgGenericError
		}
		return message.Result{Type: message.IntentError, Message: msg}, nil
	}

	return message.Result{Type: message.IntentUnknown, Message: msgUnknown}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
