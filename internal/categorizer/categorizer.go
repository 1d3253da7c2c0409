package categorizer

import (
	"strings"

	"github.com/nkurunziza/momo-ledger/internal/model"
)

// Rule is one ordered categorization rule. A rule matches when any of
// its keywords appears in the description (case-insensitive) and the
// amount falls inside [MinAmount, MaxAmount] where set (minor units,
// zero means unbounded).
type Rule struct {
	ID         string
	Category   string
	Keywords   []string
	MinAmount  int64
	MaxAmount  int64
	Confidence float64
}

func (r Rule) matches(rec *model.NormalizedRecord) bool {
	if r.MinAmount > 0 && rec.Amount < r.MinAmount {
		return false
	}
	if r.MaxAmount > 0 && rec.Amount > r.MaxAmount {
		return false
	}
	if len(r.Keywords) == 0 {
		return true
	}
	desc := strings.ToLower(rec.Description)
	for _, kw := range r.Keywords {
		if strings.Contains(desc, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Categorizer assigns one category per record, first matching rule wins.
type Categorizer struct {
	rules []Rule
}

func New(rules []Rule) *Categorizer {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Categorizer{rules: rules}
}

// Categorize never fails: records no rule claims get the Uncategorized
// category with zero confidence, and the caller decides how loudly to
// log that.
func (c *Categorizer) Categorize(rec *model.NormalizedRecord) model.CategoryAssignment {
	for _, rule := range c.rules {
		if rule.matches(rec) {
			return model.CategoryAssignment{
				Category:   rule.Category,
				RuleID:     rule.ID,
				Confidence: rule.Confidence,
			}
		}
	}
	return model.CategoryAssignment{
		Category:   model.CategoryUncategorized,
		RuleID:     "",
		Confidence: 0,
	}
}

// DefaultRules covers the categories seen in MoMo SMS bodies. Order
// matters: more specific keyword sets come first.
func DefaultRules() []Rule {
	return []Rule{
		{ID: "airtime-keywords", Category: "Airtime", Keywords: []string{"airtime", "bundle", "data pack"}, Confidence: 0.9},
		{ID: "utility-keywords", Category: "Utility Payment", Keywords: []string{"electricity", "cash power", "water bill", "wasac", "eucl"}, Confidence: 0.9},
		{ID: "merchant-keywords", Category: "Merchant Payment", Keywords: []string{"payment to", "paid to", "purchase", "pos"}, Confidence: 0.85},
		{ID: "deposit-keywords", Category: "Deposit", Keywords: []string{"deposit", "cash in", "received from agent"}, Confidence: 0.85},
		{ID: "withdrawal-keywords", Category: "Withdrawal", Keywords: []string{"withdraw", "cash out"}, Confidence: 0.85},
		{ID: "transfer-keywords", Category: "Transfer", Keywords: []string{"transfer", "sent to", "received from"}, Confidence: 0.8},
		{ID: "bulk-amount", Category: "Bulk Transfer", MinAmount: 100_000_00, Confidence: 0.5},
	}
}
