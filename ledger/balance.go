/*
balance.go - Signed-sum replay of the ledger

PURPOSE:
  Deterministic projections over the operation set: balance at an
  arbitrary cutoff date, cumulative multi-series timelines, and
  period performance. All of it is a pure function of the operations;
  there is no hidden state and no stored balance.

SIGN RULE:
  Everything goes through SignedAmount (types.go). Replay is
  order-independent at day granularity because deltas are summed per
  calendar day before accumulation.
*/
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BALANCE AT DATE
// =============================================================================

// BalanceAt replays every operation dated on or before cutoff (inclusive,
// day granularity, unbounded look-back) and returns the signed sum.
// An empty operation set yields zero.
func BalanceAt(ops []Operation, cutoff Day) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range ops {
		if o.Date.After(cutoff) {
			continue
		}
		sum = sum.Add(o.Signed())
	}
	return sum
}

// =============================================================================
// TIMELINE - Cumulative running balance per group per day
// =============================================================================

// GroupFn buckets an operation into a named series.
type GroupFn func(Operation) string

// GroupTotal puts everything in a single series.
func GroupTotal(Operation) string { return "Total" }

// GroupByBank buckets per bank, defaulting empty banks.
func GroupByBank(o Operation) string {
	if b := CleanName(o.Bank); b != "" {
		return b
	}
	return DefaultBank
}

// GroupByAccountType buckets per account type.
func GroupByAccountType(o Operation) string {
	if a := CleanName(o.AccountType); a != "" {
		return a
	}
	return DefaultAccountType
}

// TimelinePoint is one day of the cumulative series. Values holds the
// running balance of every group as of that day, rounded to 2 decimals.
type TimelinePoint struct {
	Date   Day                        `json:"date"`
	Values map[string]decimal.Decimal `json:"values"`
}

// TimelineSeries is the ordered multi-series cumulative timeline.
type TimelineSeries struct {
	Points []TimelinePoint `json:"points"`
	Keys   []string        `json:"keys"`
}

// Timeline groups signed deltas by calendar day and group key, sorts days
// ascending, and accumulates a running sum per group. Days with no
// operation are simply absent; callers needing gap-filling do it
// themselves.
func Timeline(ops []Operation, group GroupFn) TimelineSeries {
	byDay := make(map[Day]map[string]decimal.Decimal)
	groups := make(map[string]bool)

	for _, o := range ops {
		g := group(o)
		m, ok := byDay[o.Date]
		if !ok {
			m = make(map[string]decimal.Decimal)
			byDay[o.Date] = m
		}
		m[g] = m[g].Add(o.Signed())
		groups[g] = true
	}

	days := make([]Day, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	keys := make([]string, 0, len(groups))
	for g := range groups {
		keys = append(keys, g)
	}
	sort.Strings(keys)

	running := make(map[string]decimal.Decimal, len(keys))
	points := make([]TimelinePoint, 0, len(days))
	for _, d := range days {
		deltas := byDay[d]
		values := make(map[string]decimal.Decimal, len(keys))
		for _, g := range keys {
			running[g] = running[g].Add(deltas[g])
			values[g] = Round2(running[g])
		}
		points = append(points, TimelinePoint{Date: d, Values: values})
	}

	return TimelineSeries{Points: points, Keys: keys}
}

// =============================================================================
// PERIOD PERFORMANCE
// =============================================================================

// PeriodPerformance compares the balance at two dates. PctChange is nil
// when the start balance is zero.
type PeriodPerformance struct {
	StartBalance decimal.Decimal  `json:"startBalance"`
	EndBalance   decimal.Decimal  `json:"endBalance"`
	Delta        decimal.Decimal  `json:"delta"`
	PctChange    *decimal.Decimal `json:"pctChange"`
}

// PeriodDelta replays balances at start and end (both inclusive) and
// derives the change over the period.
func PeriodDelta(ops []Operation, start, end Day) PeriodPerformance {
	p := PeriodPerformance{
		StartBalance: BalanceAt(ops, start),
		EndBalance:   BalanceAt(ops, end),
	}
	p.Delta = p.EndBalance.Sub(p.StartBalance)
	if !p.StartBalance.IsZero() {
		pct := p.Delta.Div(p.StartBalance).Mul(decimal.NewFromInt(100)).Round(2)
		p.PctChange = &pct
	}
	return p
}

// FirstOperationDay returns the earliest operation date, used as the
// start of "all time" performance windows. ok is false on an empty set.
func FirstOperationDay(ops []Operation) (Day, bool) {
	var min Day
	found := false
	for _, o := range ops {
		if !found || o.Date.Before(min) {
			min = o.Date
			found = true
		}
	}
	return min, found
}
