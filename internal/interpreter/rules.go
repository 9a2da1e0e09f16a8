package interpreter

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nadzzz/finecho/internal/message"
)

// msgNoAmount is returned when a transfer names no positive amount.
const msgNoAmount = "I could not determine the amount to transfer. Please try again with a specific amount."

type rule struct {
	kind     message.IntentKind
	keywords []string
}

// rules are checked in order; the first match wins. A transcript mentioning
// both "balance" and "spend" is a balance inquiry.
var rules = []rule{
	{message.IntentBalance, []string{"balance", "how much"}},
	{message.IntentExpenses, []string{"spend", "expense"}},
	{message.IntentTransfer, []string{"transfer", "move money"}},
	{message.IntentBudget, []string{"budget"}},
}

var amountPattern = regexp.MustCompile(`\$?(\d+(?:\.\d+)?)`)

// classifyKeywords is the deterministic classifier. text must already be
// normalized.
func classifyKeywords(text string) message.Intent {
	for _, r := range rules {
		if !containsAny(text, r.keywords) {
			continue
		}
		if r.kind == message.IntentTransfer {
			return transferIntent(extractAmount(text))
		}
		return message.Intent{Kind: r.kind}
	}
	return message.Intent{Kind: message.IntentUnknown}
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// extractAmount returns the first money-looking number in text.
func extractAmount(text string) *decimal.Decimal {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	d, err := decimal.NewFromString(m[1])
	if err != nil {
		return nil
	}
	return &d
}

// transferIntent builds a transfer, or the extraction error when amount is
// missing or not positive.
func transferIntent(amount *decimal.Decimal) message.Intent {
	if amount == nil || !amount.IsPositive() {
		return message.Intent{Kind: message.IntentError, Message: msgNoAmount}
	}
	return message.Intent{Kind: message.IntentTransfer, Amount: amount}
}
