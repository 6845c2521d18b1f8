/*
forecast.go - Forward-looking projection of the current month

  projected end balance = balance today
                        + included forecast items left in the month
                        + recurring occurrences not yet materialized

  Items are included when their certainty tag is in the settings'
  IncludeCertainty set. Recurring occurrences already present as real
  operations are excluded by the recurringId|date key, so a materialized
  rent never counts twice.
*/
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MonthItems filters forecast items to [from, to], sorted by date.
func MonthItems(items []ForecastItem, from, to Day) []ForecastItem {
	var out []ForecastItem
	for _, it := range items {
		if it.Date.AfterOrEqual(from) && it.Date.BeforeOrEqual(to) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func certaintyIncluded(c Certainty, include []Certainty) bool {
	if c == "" {
		c = CertaintyCertain
	}
	for _, inc := range include {
		if inc == c {
			return true
		}
	}
	return false
}

// Projection is the forecast view for the rest of the current month.
type Projection struct {
	BalanceToday   decimal.Decimal `json:"balanceToday"`
	ItemsDelta     decimal.Decimal `json:"itemsDelta"`
	RecurringDelta decimal.Decimal `json:"recurringDelta"`
	ProjectedEnd   decimal.Decimal `json:"projectedEnd"`
	BelowThreshold bool            `json:"belowThreshold"`

	Items     []ForecastItem `json:"items"`
	Recurring []Occurrence   `json:"recurring"`
}

// ComputeProjection projects the end-of-month balance from today.
func ComputeProjection(ops []Operation, items []ForecastItem, rules []RecurringRule, settings ForecastSettings, today Day) Projection {
	endOfMonth := today.EndOfMonth()

	p := Projection{BalanceToday: Round2(BalanceAt(ops, today))}

	include := settings.IncludeCertainty
	if len(include) == 0 {
		include = AllCertainties
	}

	p.ItemsDelta = decimal.Zero
	for _, it := range MonthItems(items, today.StartOfMonth(), endOfMonth) {
		if !certaintyIncluded(it.Certainty, include) {
			continue
		}
		p.Items = append(p.Items, it)
		p.ItemsDelta = p.ItemsDelta.Add(SignedAmount(it.Kind, it.Amount))
	}

	p.RecurringDelta = decimal.Zero
	p.Recurring = PreviewRecurring(rules, ops, today, endOfMonth)
	for _, occ := range p.Recurring {
		p.RecurringDelta = p.RecurringDelta.Add(SignedAmount(occ.Kind, occ.Amount))
	}

	p.ItemsDelta = Round2(p.ItemsDelta)
	p.RecurringDelta = Round2(p.RecurringDelta)
	p.ProjectedEnd = Round2(p.BalanceToday.Add(p.ItemsDelta).Add(p.RecurringDelta))
	p.BelowThreshold = p.ProjectedEnd.LessThan(settings.AlertThreshold)
	return p
}

// OperationFromForecast turns a forecast item into the input for a real
// operation; the caller removes the item and inserts the operation.
func OperationFromForecast(it ForecastItem) OperationInput {
	return OperationInput{
		Kind:        it.Kind,
		Amount:      it.Amount,
		Date:        it.Date,
		Category:    it.Category,
		Bank:        it.Bank,
		AccountType: it.AccountType,
		Note:        it.Title,
	}
}
