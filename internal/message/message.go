// Package message defines the core data types flowing through the finecho
// voice pipeline and across every transport.
package message

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nadzzz/finecho/internal/finance"
)

// IntentKind is the classified purpose of a spoken command.
type IntentKind string

const (
	IntentBalance  IntentKind = "balance"
	IntentExpenses IntentKind = "expenses"
	IntentTransfer IntentKind = "transfer"
	IntentBudget   IntentKind = "budget"
	IntentUnknown  IntentKind = "unknown"
	IntentError    IntentKind = "error"
)

// Valid reports whether k is one of the six intent kinds.
func (k IntentKind) Valid() bool {
	switch k {
	case IntentBalance, IntentExpenses, IntentTransfer, IntentBudget, IntentUnknown, IntentError:
		return true
	}
	return false
}

// Successful reports whether a command that produced k should be recorded as
// having succeeded.
func (k IntentKind) Successful() bool {
	return k != IntentError && k != IntentUnknown
}

// Intent is the classifier's output.
type Intent struct {
	Kind IntentKind

	// Amount is set for transfer intents and is always positive when set.
	Amount *decimal.Decimal

	// Category is an optional target category named by the command.
	Category string

	// Message carries the explanation for error intents.
	Message string
}

// Result is the interpretation of one command. Data depends on Type:
//
//	balance  -> *BalanceData
//	expenses -> *ExpensesData
//	transfer -> *TransferData
//	budget   -> *BudgetData
//	unknown, error -> nil
type Result struct {
	Type    IntentKind `json:"type"`
	Message string     `json:"message"`
	Data    any        `json:"data,omitempty"`
}

// BalanceData accompanies a balance result.
type BalanceData struct {
	TotalBalance decimal.Decimal   `json:"totalBalance"`
	Accounts     []finance.Account `json:"accounts"`
}

// ExpensesData accompanies an expenses result.
type ExpensesData struct {
	TotalExpenses decimal.Decimal       `json:"totalExpenses"`
	Transactions  []finance.Transaction `json:"transactions"`
}

// TransferData accompanies a transfer result.
type TransferData struct {
	Amount decimal.Decimal `json:"amount"`
}

// BudgetData accompanies a budget result.
type BudgetData struct {
	Budgets []finance.Budget `json:"budgets"`
}

// UnmarshalJSON decodes Data into the concrete type selected by Type.
func (r *Result) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type    IntentKind      `json:"type"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.Type, r.Message, r.Data = raw.Type, raw.Message, nil

	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return nil
	}

	var data any
	switch raw.Type {
	case IntentBalance:
		data = &BalanceData{}
	case IntentExpenses:
		data = &ExpensesData{}
	case IntentTransfer:
		data = &TransferData{}
	case IntentBudget:
		data = &BudgetData{}
	default:
		return fmt.Errorf("result type %q carries no data", raw.Type)
	}
	if err := json.Unmarshal(raw.Data, data); err != nil {
		return fmt.Errorf("decoding %s data: %w", raw.Type, err)
	}
	r.Data = data
	return nil
}

// CommandRequest is the inbound voice command.
type CommandRequest struct {
	UserID  int64  `json:"userId"`
	Command string `json:"command"`
}

// CommandResponse is returned for every processed command.
type CommandResponse struct {
	CommandID int64  `json:"commandId"`
	Response  Result `json:"response"`
}

// InsightType is the severity of an insight.
type InsightType string

const (
	InsightWarning InsightType = "warning"
	InsightSuccess InsightType = "success"
	InsightInfo    InsightType = "info"
)

// Valid reports whether t is a known insight type.
func (t InsightType) Valid() bool {
	return t == InsightWarning || t == InsightSuccess || t == InsightInfo
}

// Insight is one piece of spending advice.
type Insight struct {
	Type        InsightType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	ActionText  string      `json:"actionText,omitempty"`
}
