/*
debt.go - Per-person signed balances

ALGORITHM:
  1. Every expense carrying a person accumulates its UNCLAMPED
     outstanding amount (amount - linked reimbursements) into that
     person's balance; over-reimbursement may push it negative.
  2. A reimbursement whose linked expense has no resolvable person (the
     expense is gone, or was never attributed) is applied against the
     reimbursement's own person, if any.
  3. Known people are the union of the explicit roster and every person
     observed while accumulating.

  Positive balance = owed to the user ("to receive"); negative = the
  user owes ("to give"). |balance| <= 0.005 is treated as settled.
*/
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// debtEpsilon hides floating noise around zero.
var debtEpsilon = decimal.NewFromFloat(0.005)

// DebtBalances computes the signed per-person balance over the full
// operation set.
func DebtBalances(ops []Operation) map[string]decimal.Decimal {
	byID := make(map[string]Operation, len(ops))
	for _, o := range ops {
		byID[o.ID] = o
	}
	reimbursed := ReimbursedByExpense(ops)

	balances := make(map[string]decimal.Decimal)

	// Expenses attributed to a person, net of their linked reimbursements.
	// Unclamped: too much reimbursement flips the debt direction.
	for _, o := range ops {
		if o.Kind != KindExpense {
			continue
		}
		person := CleanName(o.Person)
		if person == "" {
			continue
		}
		outstanding := o.Amount.Sub(reimbursed[o.ID])
		balances[person] = balances[person].Add(outstanding)
	}

	// Reimbursements that could not be attributed through their expense.
	for _, o := range ops {
		if o.Kind != KindReimbursement {
			continue
		}
		if o.LinkedExpenseID != "" {
			if target, ok := byID[o.LinkedExpenseID]; ok && CleanName(target.Person) != "" {
				continue // already netted against the expense above
			}
		}
		person := CleanName(o.Person)
		if person == "" {
			continue
		}
		balances[person] = balances[person].Sub(o.Amount)
	}

	return balances
}

// DebtRow is one person's signed balance.
type DebtRow struct {
	Person  string          `json:"person"`
	Balance decimal.Decimal `json:"balance"`
}

// DebtSummary is the full debt view: one row per known person, ordered
// by |balance| descending, plus the two directional totals.
type DebtSummary struct {
	Rows      []DebtRow       `json:"rows"`
	ToReceive decimal.Decimal `json:"toReceive"`
	ToGive    decimal.Decimal `json:"toGive"`
}

// ComputeDebtSummary merges the explicit roster with every person seen on
// operations, de-duplicated by trimmed equality and locale-sorted, and
// attaches each person's balance.
func ComputeDebtSummary(ops []Operation, roster []string) DebtSummary {
	balances := DebtBalances(ops)

	known := append([]string{}, roster...)
	for person := range balances {
		known = append(known, person)
	}
	known = DedupeNames(known)
	sort.Strings(known)

	summary := DebtSummary{ToReceive: decimal.Zero, ToGive: decimal.Zero}
	for _, person := range known {
		b := balances[person]
		summary.Rows = append(summary.Rows, DebtRow{Person: person, Balance: Round2(b)})
		if b.GreaterThan(debtEpsilon) {
			summary.ToReceive = summary.ToReceive.Add(b)
		} else if b.LessThan(debtEpsilon.Neg()) {
			summary.ToGive = summary.ToGive.Add(b)
		}
	}

	sort.SliceStable(summary.Rows, func(i, j int) bool {
		return summary.Rows[i].Balance.Abs().GreaterThan(summary.Rows[j].Balance.Abs())
	})

	summary.ToReceive = Round2(summary.ToReceive)
	summary.ToGive = Round2(summary.ToGive)
	return summary
}
