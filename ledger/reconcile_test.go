package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/statera/budget-engine/ledger"
)

func expenseFor(id, person string, amount float64, date ledger.Day) ledger.Operation {
	return ledger.Operation{
		ID: id, Kind: ledger.KindExpense, Amount: dec(amount), Date: date, Person: person,
	}
}

func reimbFor(id, expenseID string, amount float64, date ledger.Day) ledger.Operation {
	return ledger.Operation{
		ID: id, Kind: ledger.KindReimbursement, Amount: dec(amount),
		Date: date, LinkedExpenseID: expenseID,
	}
}

// =============================================================================
// REIMBURSEMENT NETTING
// =============================================================================

func TestReimbursedByExpense_SumsPerTarget(t *testing.T) {
	// GIVEN: two reimbursements against one expense, one against another
	// THEN: sums group by linked expense id

	ops := []ledger.Operation{
		expenseFor("e1", "", 100, day(2025, time.April, 1)),
		expenseFor("e2", "", 40, day(2025, time.April, 2)),
		reimbFor("r1", "e1", 30, day(2025, time.April, 5)),
		reimbFor("r2", "e1", 20, day(2025, time.April, 6)),
		reimbFor("r3", "e2", 10, day(2025, time.April, 7)),
	}

	m := ledger.ReimbursedByExpense(ops)
	if !m["e1"].Equal(dec(50)) {
		t.Errorf("expected 50 reimbursed on e1, got %v", m["e1"])
	}
	if !m["e2"].Equal(dec(10)) {
		t.Errorf("expected 10 reimbursed on e2, got %v", m["e2"])
	}
}

func TestReimbursedByExpense_OrderIndependent(t *testing.T) {
	// GIVEN: the same reimbursements in reversed order
	// THEN: identical totals, pure summation by key

	fwd := []ledger.Operation{
		reimbFor("r1", "e1", 30, day(2025, time.April, 5)),
		reimbFor("r2", "e1", 20, day(2025, time.April, 1)),
	}
	rev := []ledger.Operation{fwd[1], fwd[0]}

	if !ledger.ReimbursedByExpense(fwd)["e1"].Equal(ledger.ReimbursedByExpense(rev)["e1"]) {
		t.Error("reimbursement totals should not depend on order")
	}
}

func TestOutstanding_ClampsAtZero(t *testing.T) {
	// GIVEN: a 100 expense reimbursed with 120
	// THEN: outstanding shows zero, not -20

	e := expenseFor("e1", "", 100, day(2025, time.April, 1))
	reimbursed := map[string]decimal.Decimal{"e1": dec(120)}

	if got := ledger.Outstanding(e, reimbursed); !got.IsZero() {
		t.Errorf("expected clamped outstanding 0, got %v", got)
	}
}

func TestOutstanding_DanglingReferenceContributesNothing(t *testing.T) {
	// GIVEN: a reimbursement pointing at a deleted expense
	// THEN: visible expenses are unaffected, no error anywhere

	ops := []ledger.Operation{
		expenseFor("e1", "", 100, day(2025, time.April, 1)),
		reimbFor("r1", "gone", 40, day(2025, time.April, 5)),
	}

	reimbursed := ledger.ReimbursedByExpense(ops)
	if got := ledger.Outstanding(ops[0], reimbursed); !got.Equal(dec(100)) {
		t.Errorf("expected untouched outstanding 100, got %v", got)
	}
}

// =============================================================================
// PERIOD TOTALS (ACCOUNTING MODE)
// =============================================================================

func TestComputePeriodTotals_ReimbursementOutsideFilterStillNets(t *testing.T) {
	// GIVEN: a March expense and its reimbursement recorded in April
	// WHEN: aggregating only March
	// THEN: the expense nets against the April reimbursement anyway

	all := []ledger.Operation{
		expenseFor("e1", "", 100, day(2025, time.March, 10)),
		reimbFor("r1", "e1", 60, day(2025, time.April, 2)),
	}
	reimbursed := ledger.ReimbursedByExpense(all)

	var march []ledger.Operation
	for _, o := range all {
		if o.Date.MonthKey() == "2025-03" {
			march = append(march, o)
		}
	}

	totals := ledger.ComputePeriodTotals(march, reimbursed)
	if !totals.ExpenseGross.Equal(dec(100)) {
		t.Errorf("expected gross 100, got %v", totals.ExpenseGross)
	}
	if !totals.ExpenseNet.Equal(dec(40)) {
		t.Errorf("expected net 40 after out-of-period reimbursement, got %v", totals.ExpenseNet)
	}
}

func TestComputePeriodTotals_NetFormula(t *testing.T) {
	// net = income + reimbursements + transfers in - gross expenses - transfers out

	ops := []ledger.Operation{
		op(ledger.KindIncome, 200, day(2025, time.March, 1)),
		op(ledger.KindReimbursement, 10, day(2025, time.March, 2)),
		op(ledger.KindTransferIn, 50, day(2025, time.March, 3)),
		op(ledger.KindExpense, 80, day(2025, time.March, 4)),
		op(ledger.KindTransferOut, 30, day(2025, time.March, 5)),
	}

	totals := ledger.ComputePeriodTotals(ops, ledger.ReimbursedByExpense(ops))
	if !totals.Net.Equal(dec(150)) {
		t.Errorf("expected net 150, got %v", totals.Net)
	}
}

func TestNetExpenseTotal(t *testing.T) {
	ops := []ledger.Operation{
		expenseFor("e1", "", 100, day(2025, time.March, 1)),
		expenseFor("e2", "", 50, day(2025, time.March, 2)),
		reimbFor("r1", "e1", 100, day(2025, time.March, 3)),
	}
	got := ledger.NetExpenseTotal(ops, ledger.ReimbursedByExpense(ops))
	if !got.Equal(dec(50)) {
		t.Errorf("expected net expense total 50, got %v", got)
	}
}
