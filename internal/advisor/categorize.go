package advisor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nadzzz/finecho/internal/completion"
)

// CategoryOther is used when nothing else matches.
const CategoryOther = "Other"

// Categories is the fixed set a transaction may be filed under.
var Categories = []string{
	"Food & Dining",
	"Shopping",
	"Travel",
	"Transportation",
	"Entertainment",
	"Health & Fitness",
	"Bills & Utilities",
	"Income",
	"Education",
	"Personal Care",
	"Home",
	CategoryOther,
}

const categorizePrompt = `You are a financial categorization system. Analyze the transaction description and categorize it into one of these categories:
- Food & Dining
- Shopping
- Travel
- Transportation
- Entertainment
- Health & Fitness
- Bills & Utilities
- Income
- Education
- Personal Care
- Home
- Other

Return only the category name as a string.`

// keywordCategories is checked in order; the first keyword found wins.
var keywordCategories = []struct {
	category string
	keywords []string
}{
	{"Income", []string{"salary", "payroll", "paycheck", "deposit", "refund", "dividend"}},
	{"Travel", []string{"airline", "flight", "hotel", "airbnb", "expedia", "booking.com"}},
	{"Transportation", []string{"uber", "lyft", "taxi", "fuel", "gas station", "parking", "transit", "metro"}},
	{"Food & Dining", []string{"restaurant", "cafe", "coffee", "starbucks", "grocer", "whole foods", "pizza", "doordash", "food"}},
	{"Entertainment", []string{"netflix", "spotify", "hulu", "disney", "cinema", "movie", "concert", "steam"}},
	{"Health & Fitness", []string{"gym", "pharmacy", "doctor", "dental", "clinic", "fitness"}},
	{"Bills & Utilities", []string{"electric", "utility", "internet", "verizon", "comcast", "water bill", "insurance"}},
	{"Education", []string{"tuition", "course", "udemy", "school", "university", "textbook"}},
	{"Personal Care", []string{"salon", "barber", "massage", "cosmetic"}},
	{"Home", []string{"rent payment", "landlord", "mortgage", "ikea", "home depot", "furniture"}},
	{"Shopping", []string{"amazon", "walmart", "target", "mall", "shop", "store"}},
}

// Categorize files a transaction description under one of Categories.
func (a *Advisor) Categorize(ctx context.Context, description string) string {
	if strings.TrimSpace(description) == "" {
		return CategoryOther
	}
	if a.completer != nil {
		if c, ok := a.remoteCategory(ctx, description); ok {
			return c
		}
	}
	return keywordCategory(description)
}

func (a *Advisor) remoteCategory(ctx context.Context, description string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.completer.Complete(ctx, completion.Request{
		System: categorizePrompt,
		User:   description,
	})
	if err != nil {
		slog.Warn("remote categorization failed, using keywords", "backend", a.completer.Name(), "error", err)
		return "", false
	}
	answer := strings.Trim(strings.TrimSpace(raw), `"'.`)
	for _, c := range Categories {
		if strings.EqualFold(answer, c) {
			return c, true
		}
	}
	slog.Warn("remote categorization returned an unknown category", "backend", a.completer.Name(), "answer", answer)
	return "", false
}

func keywordCategory(description string) string {
	d := strings.ToLower(description)
	for _, kc := range keywordCategories {
		for _, k := range kc.keywords {
			if strings.Contains(d, k) {
				return kc.category
			}
		}
	}
	return CategoryOther
}
