/*
recurring.go - Materializing recurring rules into concrete operations

PURPOSE:
  Expands each rule's due occurrences into real operations, advancing the
  rule's NextDate cursor past every materialized occurrence. Runs at
  session bootstrap (and on demand) and must be idempotent: a rule never
  produces two operations for the same calendar date.

IDEMPOTENCE KEY:
  recurringId|date. Occurrences whose key already exists in the ledger
  are skipped (cursor still advances), so a second run with no time
  advance is a no-op.

PREVIEW:
  PreviewRecurring computes hypothetical occurrences in a window without
  touching cursors or the ledger, excluding already-materialized keys so
  forecast and actuals never double-count.
*/
package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxCatchUp caps how many missed occurrences one rule can materialize in
// a single pass, so a corrupted cursor cannot spin forever.
const maxCatchUp = 1000

// occurrenceKey is the idempotence key for one rule occurrence.
func occurrenceKey(recurringID string, date Day) string {
	return recurringID + "|" + date.String()
}

// ExistingOccurrenceKeys collects the recurringId|date keys of every
// operation that was materialized from a rule.
func ExistingOccurrenceKeys(ops []Operation) map[string]bool {
	keys := make(map[string]bool)
	for _, o := range ops {
		if o.RecurringID == "" {
			continue
		}
		keys[occurrenceKey(o.RecurringID, o.Date)] = true
	}
	return keys
}

// NextOccurrence advances a date by one period of the rule's frequency.
func NextOccurrence(freq Frequency, d Day) Day {
	switch freq {
	case FreqWeekly:
		return d.AddDays(7)
	case FreqYearly:
		return d.AddYears(1)
	default: // monthly is the common case and the fallback
		return d.AddMonths(1)
	}
}

// MaterializeResult is the outcome of one materializer pass.
type MaterializeResult struct {
	Rules   []RecurringRule // rules with advanced cursors
	Added   []Operation     // operations to insert, oldest first
	Changed bool            // any cursor moved
}

// Materialize walks every rule whose NextDate is due (<= today), emits
// one operation per missed occurrence, and advances the cursor until it
// passes today. Catch-up of several missed periods happens in one pass.
func Materialize(rules []RecurringRule, ops []Operation, today Day) MaterializeResult {
	existing := ExistingOccurrenceKeys(ops)

	result := MaterializeResult{Rules: make([]RecurringRule, 0, len(rules))}
	for _, rule := range rules {
		r := rule
		for i := 0; i < maxCatchUp && !r.NextDate.IsZero() && r.NextDate.BeforeOrEqual(today); i++ {
			key := occurrenceKey(r.ID, r.NextDate)
			if !existing[key] {
				existing[key] = true
				result.Added = append(result.Added, operationFromRule(r, r.NextDate))
			}
			r.NextDate = NextOccurrence(r.Frequency, r.NextDate)
			result.Changed = true
		}
		result.Rules = append(result.Rules, r)
	}
	return result
}

func operationFromRule(r RecurringRule, date Day) Operation {
	op := Operation{
		ID:          uuid.NewString(),
		Kind:        r.Kind,
		Amount:      Round2(r.Amount.Abs()),
		Date:        date,
		Category:    CleanName(r.Category),
		Bank:        CleanName(r.Bank),
		AccountType: CleanName(r.AccountType),
		Note:        CleanName(r.Title),
		RecurringID: r.ID,
	}
	if op.Category == "" {
		op.Category = DefaultCategory
	}
	if op.Bank == "" {
		op.Bank = DefaultBank
	}
	if op.AccountType == "" {
		op.AccountType = DefaultAccountType
	}
	return op
}

// Occurrence is a hypothetical future materialization used by forecasts.
type Occurrence struct {
	RecurringID string          `json:"recurringId"`
	Title       string          `json:"title"`
	Kind        Kind            `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Date        Day             `json:"date"`
	Category    string          `json:"category"`
	Bank        string          `json:"bank"`
	AccountType string          `json:"accountType"`
}

// PreviewRecurring projects rule occurrences inside [from, to] without
// mutating cursors or inserting operations. Occurrences that already
// exist as real operations are excluded.
func PreviewRecurring(rules []RecurringRule, ops []Operation, from, to Day) []Occurrence {
	existing := ExistingOccurrenceKeys(ops)

	var out []Occurrence
	for _, r := range rules {
		d := r.NextDate
		for i := 0; i < maxCatchUp && !d.IsZero() && d.BeforeOrEqual(to); i++ {
			if d.AfterOrEqual(from) && !existing[occurrenceKey(r.ID, d)] {
				out = append(out, Occurrence{
					RecurringID: r.ID,
					Title:       r.Title,
					Kind:        r.Kind,
					Amount:      r.Amount.Abs(),
					Date:        d,
					Category:    r.Category,
					Bank:        r.Bank,
					AccountType: r.AccountType,
				})
			}
			d = NextOccurrence(r.Frequency, d)
		}
	}
	return out
}
