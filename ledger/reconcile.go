/*
reconcile.go - Netting reimbursements against their original expenses

ACCOUNTING MODE:
  Reimbursement sums are always computed over the FULL operation set,
  never over a filtered view. A reimbursement recorded outside the
  current date/category/bank filter still neutralizes its target
  expense: filtering decides which expenses are shown, never whether
  their reimbursements count.

REFERENCE GAPS:
  A linkedExpenseId that no longer resolves (the expense was deleted
  after being reimbursed) is not an error; the orphaned sum simply
  contributes nothing to any visible expense.
*/
package ledger

import "github.com/shopspring/decimal"

// ReimbursedByExpense sums reimbursement amounts grouped by the expense
// they are linked to. Pure summation by key: the result is independent
// of iteration order. Unlinked reimbursements are skipped.
func ReimbursedByExpense(ops []Operation) map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal)
	for _, o := range ops {
		if o.Kind != KindReimbursement || o.LinkedExpenseID == "" {
			continue
		}
		m[o.LinkedExpenseID] = m[o.LinkedExpenseID].Add(o.Amount)
	}
	return m
}

// Outstanding is the unreimbursed remainder of an expense, clamped at
// zero: over-reimbursement never shows as negative spend here. Person
// level signed balances (debt.go) intentionally do not clamp.
func Outstanding(expense Operation, reimbursed map[string]decimal.Decimal) decimal.Decimal {
	rest := expense.Amount.Sub(reimbursed[expense.ID])
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// NetExpenseTotal sums the outstanding amount of every expense in ops,
// using a reimbursement map computed over the full ledger.
func NetExpenseTotal(ops []Operation, reimbursed map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, o := range ops {
		if o.Kind != KindExpense {
			continue
		}
		total = total.Add(Outstanding(o, reimbursed))
	}
	return total
}

// PeriodTotals aggregates a filtered view of the ledger, with expense
// netting done in accounting mode against the full-ledger reimbursement
// map.
type PeriodTotals struct {
	Income         decimal.Decimal `json:"income"`
	Reimbursements decimal.Decimal `json:"reimbursements"`
	TransfersIn    decimal.Decimal `json:"transfersIn"`
	TransfersOut   decimal.Decimal `json:"transfersOut"`
	ExpenseGross   decimal.Decimal `json:"expenseGross"`
	ExpenseNet     decimal.Decimal `json:"expenseNet"`

	// Net is the cash movement of the period:
	// income + reimbursements + transfers in - gross expenses - transfers out.
	Net decimal.Decimal `json:"net"`
}

func ComputePeriodTotals(visible []Operation, reimbursed map[string]decimal.Decimal) PeriodTotals {
	var t PeriodTotals
	t.Income = decimal.Zero
	t.Reimbursements = decimal.Zero
	t.TransfersIn = decimal.Zero
	t.TransfersOut = decimal.Zero
	t.ExpenseGross = decimal.Zero
	t.ExpenseNet = decimal.Zero

	for _, o := range visible {
		switch o.Kind {
		case KindIncome:
			t.Income = t.Income.Add(o.Amount)
		case KindReimbursement:
			t.Reimbursements = t.Reimbursements.Add(o.Amount)
		case KindTransferIn:
			t.TransfersIn = t.TransfersIn.Add(o.Amount)
		case KindTransferOut:
			t.TransfersOut = t.TransfersOut.Add(o.Amount)
		case KindExpense:
			t.ExpenseGross = t.ExpenseGross.Add(o.Amount)
			t.ExpenseNet = t.ExpenseNet.Add(Outstanding(o, reimbursed))
		}
	}

	t.Net = t.Income.Add(t.Reimbursements).Add(t.TransfersIn).
		Sub(t.ExpenseGross).Sub(t.TransfersOut)
	return t
}
