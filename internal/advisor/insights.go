package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nadzzz/finecho/internal/completion"
	"github.com/nadzzz/finecho/internal/finance"
	"github.com/nadzzz/finecho/internal/message"
)

const insightsPrompt = `You are a financial analyst. Based on the transaction data provided, generate 2-3 actionable financial insights.
Each insight should be categorized as:
- "warning" for concerning patterns
- "success" for positive behaviors
- "info" for neutral information

Respond with JSON in this format:
{"insights": [{"type": "warning|success|info", "title": "short insight title", "description": "detailed explanation with specific numbers", "actionText": "suggested action text"}]}`

const (
	warnAbovePct    = 25
	successBelowPct = -20
)

var (
	hundred = decimal.NewFromInt(100)

	savingsOpportunity = message.Insight{
		Type:        message.InsightSuccess,
		Title:       "Savings Opportunity",
		Description: "You could save $45/month by switching to a no-fee checking account based on your transaction history.",
		ActionText:  "Learn More",
	}
	healthCheck = message.Insight{
		Type:        message.InsightInfo,
		Title:       "Financial Health Check",
		Description: "Your spending patterns look consistent with last month. Keep up the good work!",
		ActionText:  "View Details",
	}
	unavailable = message.Insight{
		Type:        message.InsightInfo,
		Title:       "Insights Unavailable",
		Description: "We couldn't generate personalized insights at the moment. Please try again later.",
		ActionText:  "Refresh",
	}
)

// Insights returns the user's insights. The sequence is computed when it is
// iterated, and again on every iteration.
func (a *Advisor) Insights(ctx context.Context, userID int64) iter.Seq[message.Insight] {
	return func(yield func(message.Insight) bool) {
		for _, in := range a.generate(ctx, userID) {
			if !yield(in) {
				return
			}
		}
	}
}

func (a *Advisor) generate(ctx context.Context, userID int64) []message.Insight {
	logger := slog.With("user_id", userID)

	txs, err := a.store.TransactionsByUser(ctx, userID)
	if err != nil {
		logger.Error("loading transactions for insights failed", "error", err)
		return []message.Insight{unavailable}
	}

	if a.completer != nil {
		insights, err := a.remoteInsights(ctx, txs)
		if err == nil {
			return insights
		}
		logger.Warn("remote insights failed, using rules", "backend", a.completer.Name(), "error", err)
	}
	return ruleInsights(txs, a.now())
}

type remoteInsight struct {
	Type        message.InsightType `json:"type"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	ActionText  string              `json:"actionText"`
}

var errNoInsights = errors.New("no usable insights in response")

func (a *Advisor) remoteInsights(ctx context.Context, txs []finance.Transaction) ([]message.Insight, error) {
	payload, err := json.Marshal(txs)
	if err != nil {
		return nil, fmt.Errorf("encoding transactions: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.completer.Complete(ctx, completion.Request{
		System:      insightsPrompt,
		User:        string(payload),
		JSON:        true,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, err
	}

	parsed, err := parseInsights(completion.CleanJSON(raw))
	if err != nil {
		return nil, err
	}

	var out []message.Insight
	for _, r := range parsed {
		t := message.InsightType(strings.ToLower(strings.TrimSpace(string(r.Type))))
		if !t.Valid() || strings.TrimSpace(r.Title) == "" {
			continue
		}
		out = append(out, message.Insight{Type: t, Title: r.Title, Description: r.Description, ActionText: r.ActionText})
	}
	if len(out) == 0 {
		return nil, errNoInsights
	}
	return out, nil
}

// parseInsights accepts a bare array or an object wrapping "insights".
func parseInsights(s string) ([]remoteInsight, error) {
	var list []remoteInsight
	if err := json.Unmarshal([]byte(s), &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Insights []remoteInsight `json:"insights"`
	}
	if err := json.Unmarshal([]byte(s), &wrapped); err != nil {
		return nil, fmt.Errorf("parsing insights: %w", err)
	}
	return wrapped.Insights, nil
}

// ruleInsights compares each category's spending this calendar month with
// the previous one.
func ruleInsights(txs []finance.Transaction, now time.Time) []message.Insight {
	order, current := spendByCategory(txs, now)
	_, previous := spendByCategory(txs, finance.PreviousMonth(now))

	var out []message.Insight
	for _, cat := range order {
		prev := previous[cat]
		if !prev.IsPositive() {
			continue
		}
		pct := current[cat].Sub(prev).Div(prev).Mul(hundred)
		name := strings.ToLower(cat)
		switch {
		case pct.GreaterThan(decimal.NewFromInt(warnAbovePct)):
			out = append(out, message.Insight{
				Type:        message.InsightWarning,
				Title:       cat + " Spending Alert",
				Description: fmt.Sprintf("Your %s spending is %s%% higher than last month. Consider adjusting your budget.", name, pct.Round(0)),
				ActionText:  "View Details",
			})
		case pct.LessThanOrEqual(decimal.NewFromInt(successBelowPct)):
			out = append(out, message.Insight{
				Type:        message.InsightSuccess,
				Title:       cat + " Spending Reduced",
				Description: fmt.Sprintf("Great job! You've reduced your %s spending by %s%% compared to last month.", name, pct.Abs().Round(0)),
				ActionText:  "View Details",
			})
		}
	}
	comparative := len(out)

	out = append(out, savingsOpportunity)
	if comparative == 0 {
		out = append(out, healthCheck)
	}
	return out
}

// spendByCategory totals expenses per category in ref's calendar month.
// order lists categories by first appearance.
func spendByCategory(txs []finance.Transaction, ref time.Time) ([]string, map[string]decimal.Decimal) {
	var order []string
	totals := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if !t.IsExpense() || !finance.InMonth(t.Date, ref) {
			continue
		}
		if _, ok := totals[t.Category]; !ok {
			order = append(order, t.Category)
		}
		totals[t.Category] = totals[t.Category].Add(t.Amount.Abs())
	}
	return order, totals
}
