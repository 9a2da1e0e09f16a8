package interpreter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nadzzz/finecho/internal/completion"
	"github.com/nadzzz/finecho/internal/message"
)

const classifyPrompt = `You are FinEcho, an AI financial assistant. Analyze the user's voice command about their finances.
Classify the command into exactly one of these types:
- "balance": questions about account balances or how much money they have
- "expenses": questions about spending or expenses
- "transfer": requests to move or transfer money; include the amount
- "budget": questions about budgets
- "unknown": anything else

Respond with a JSON object only, in this format:
{"type": "balance|expenses|transfer|budget|unknown", "amount": 0, "category": "optional category", "message": "short reply"}`

// FinancialContext is what the classifier knows about the caller.
type FinancialContext struct {
	UserID int64
	Now    time.Time
}

var errNoType = errors.New("response has no type")

// Classify resolves a transcript to an intent. It tries the completion
// backend first and falls back to keyword rules on any failure. It never
// fails.
func (i *Interpreter) Classify(ctx context.Context, transcript string, fc FinancialContext) message.Intent {
	text := Normalize(transcript)
	if i.completer == nil {
		return classifyKeywords(text)
	}

	intent, err := i.classifyRemote(ctx, transcript, text, fc)
	if err != nil {
		slog.Warn("remote classification failed, using keyword rules",
			"backend", i.completer.Name(),
			"user_id", fc.UserID,
			"error", err,
		)
		return classifyKeywords(text)
	}
	return intent
}

// remoteIntent is the JSON shape requested from the model.
type remoteIntent struct {
	Type     string          `json:"type"`
	Amount   json.RawMessage `json:"amount"`
	Category string          `json:"category"`
	Message  string          `json:"message"`
}

func (i *Interpreter) classifyRemote(ctx context.Context, transcript, text string, fc FinancialContext) (message.Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	system := fmt.Sprintf("%s\n\nToday's date is %s.", classifyPrompt, fc.Now.Format("2006-01-02"))
	raw, err := i.completer.Complete(ctx, completion.Request{
		System:      system,
		User:        transcript,
		JSON:        true,
		Temperature: 0.2,
	})
	if err != nil {
		return message.Intent{}, err
	}

	var ri remoteIntent
	if err := json.Unmarshal([]byte(completion.CleanJSON(raw)), &ri); err != nil {
		return message.Intent{}, fmt.Errorf("parsing classification: %w", err)
	}

	kind, err := narrowKind(ri.Type)
	if err != nil {
		return message.Intent{}, err
	}
	slog.Debug("remote classification", "user_id", fc.UserID, "type", kind, "message", ri.Message)

	intent := message.Intent{Kind: kind, Category: strings.TrimSpace(ri.Category)}
	if kind == message.IntentTransfer {
		amount := parseRemoteAmount(ri.Amount)
		if amount == nil || !amount.IsPositive() {
			amount = extractAmount(text)
		}
		t := transferIntent(amount)
		t.Category = intent.Category
		return t, nil
	}
	return intent, nil
}

// narrowKind maps the model's type onto an intent kind. "error" and types
// outside the known set are failures.
func narrowKind(t string) (message.IntentKind, error) {
	k := message.IntentKind(strings.ToLower(strings.TrimSpace(t)))
	switch k {
	case "":
		return "", errNoType
	case "expense", "spending":
		return message.IntentExpenses, nil
	case message.IntentError:
		return "", fmt.Errorf("model returned an error type")
	}
	if !k.Valid() {
		return "", fmt.Errorf("unrecognised intent type %q", t)
	}
	return k, nil
}

// parseRemoteAmount accepts a JSON number or a string such as "$1,500".
// Anything that does not parse as a positive decimal is treated as missing.
func parseRemoteAmount(raw json.RawMessage) *decimal.Decimal {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var d decimal.Decimal
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, err := decimal.NewFromString(strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s)))
		if err != nil {
			return nil
		}
		d = v
	} else if err := d.UnmarshalJSON(raw); err != nil {
		return nil
	}
	if !d.IsPositive() {
		return nil
	}
	return &d
}
