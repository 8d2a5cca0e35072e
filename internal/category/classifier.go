// Package category maps free-text descriptions to the fixed category
// taxonomies, separately for expenses and income.
package category

import (
	"strings"

	"afinance/internal/core"
)

// Rule binds a category to the keywords that select it. Rule order is a
// priority order: the first rule with a matching keyword wins.
type Rule struct {
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}

// Classifier is pure and deterministic: same kind and text always yield the
// same category. It never touches storage.
type Classifier struct {
	expense []Rule
	income  []Rule
}

func New(expense, income []Rule) *Classifier {
	return &Classifier{expense: expense, income: income}
}

// NewDefault builds a classifier over the built-in taxonomies.
func NewDefault() *Classifier {
	return New(DefaultExpenseRules(), DefaultIncomeRules())
}

// Classify resolves the category for a transaction. The description is
// case-folded and trimmed, then tested for substring containment against
// each keyword in rule order. No match yields core.FallbackCategory.
func (c *Classifier) Classify(kind core.Kind, description string) string {
	rules := c.expense
	if kind.IsIncome() {
		rules = c.income
	}

	text := strings.ToLower(strings.TrimSpace(description))
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(text, kw) {
				return rule.Category
			}
		}
	}
	return core.FallbackCategory
}

// ExpenseCategories returns the expense taxonomy in rule order, without the
// fallback category.
func (c *Classifier) ExpenseCategories() []string {
	out := make([]string, len(c.expense))
	for i, r := range c.expense {
		out[i] = r.Category
	}
	return out
}
