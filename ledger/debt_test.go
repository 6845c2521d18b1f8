package ledger_test

import (
	"testing"
	"time"

	"github.com/statera/budget-engine/ledger"
)

// =============================================================================
// PER-PERSON BALANCES
// =============================================================================

func TestDebtBalances_PartialReimbursement(t *testing.T) {
	// GIVEN: Alice owes a 100 expense, reimbursed 60
	// THEN: her balance is +40 (owed to the user)

	ops := []ledger.Operation{
		expenseFor("e1", "Alice", 100, day(2025, time.May, 1)),
		reimbFor("r1", "e1", 60, day(2025, time.May, 10)),
	}

	balances := ledger.DebtBalances(ops)
	if !balances["Alice"].Equal(dec(40)) {
		t.Errorf("expected Alice balance 40, got %v", balances["Alice"])
	}
}

func TestDebtBalances_OverReimbursementFlipsDirection(t *testing.T) {
	// GIVEN: a 100 expense reimbursed with 120
	// THEN: the person balance goes to -20; debt math never clamps

	ops := []ledger.Operation{
		expenseFor("e1", "Alice", 100, day(2025, time.May, 1)),
		reimbFor("r1", "e1", 120, day(2025, time.May, 10)),
	}

	balances := ledger.DebtBalances(ops)
	if !balances["Alice"].Equal(dec(-20)) {
		t.Errorf("expected flipped balance -20, got %v", balances["Alice"])
	}
}

func TestDebtBalances_UnattributedReimbursementFallsBackToOwnPerson(t *testing.T) {
	// GIVEN: a reimbursement whose linked expense is gone, carrying its
	//        own person
	// THEN: the amount is subtracted from that person directly

	ops := []ledger.Operation{
		{ID: "r1", Kind: ledger.KindReimbursement, Amount: dec(30),
			Date: day(2025, time.May, 10), LinkedExpenseID: "gone", Person: "Bob"},
	}

	balances := ledger.DebtBalances(ops)
	if !balances["Bob"].Equal(dec(-30)) {
		t.Errorf("expected Bob balance -30, got %v", balances["Bob"])
	}
}

func TestDebtBalances_LinkedReimbursementNotDoubleCounted(t *testing.T) {
	// GIVEN: a reimbursement linked to a person-attributed expense, itself
	//        also carrying a person
	// THEN: it nets only through the expense, never twice

	ops := []ledger.Operation{
		expenseFor("e1", "Alice", 100, day(2025, time.May, 1)),
		{ID: "r1", Kind: ledger.KindReimbursement, Amount: dec(60),
			Date: day(2025, time.May, 10), LinkedExpenseID: "e1", Person: "Alice"},
	}

	balances := ledger.DebtBalances(ops)
	if !balances["Alice"].Equal(dec(40)) {
		t.Errorf("expected Alice balance 40 (no double count), got %v", balances["Alice"])
	}
}

func TestDebtBalances_ExpenseWithoutPersonIgnored(t *testing.T) {
	ops := []ledger.Operation{
		expenseFor("e1", "", 100, day(2025, time.May, 1)),
	}
	if len(ledger.DebtBalances(ops)) != 0 {
		t.Error("person-less expenses must not appear in debt balances")
	}
}

// =============================================================================
// DEBT SUMMARY
// =============================================================================

func TestComputeDebtSummary_RosterUnionAndTotals(t *testing.T) {
	// GIVEN: a roster with Carol (no operations) and operations by Alice
	//        and Bob in both directions
	// THEN: all three appear, ordered by |balance| descending, with
	//       directional totals split

	ops := []ledger.Operation{
		expenseFor("e1", "Alice", 100, day(2025, time.May, 1)),
		{ID: "r1", Kind: ledger.KindReimbursement, Amount: dec(30),
			Date: day(2025, time.May, 2), Person: "Bob"},
	}

	summary := ledger.ComputeDebtSummary(ops, []string{"Carol"})

	if len(summary.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(summary.Rows))
	}
	if summary.Rows[0].Person != "Alice" {
		t.Errorf("expected Alice first (largest |balance|), got %s", summary.Rows[0].Person)
	}
	if !summary.ToReceive.Equal(dec(100)) {
		t.Errorf("expected to-receive 100, got %v", summary.ToReceive)
	}
	if !summary.ToGive.Equal(dec(-30)) {
		t.Errorf("expected to-give -30, got %v", summary.ToGive)
	}
}

func TestComputeDebtSummary_SettledWithinEpsilon(t *testing.T) {
	// GIVEN: a balance within half a cent of zero
	// THEN: it counts toward neither directional total

	ops := []ledger.Operation{
		expenseFor("e1", "Alice", 50.004, day(2025, time.May, 1)),
		reimbFor("r1", "e1", 50.00, day(2025, time.May, 2)),
	}

	summary := ledger.ComputeDebtSummary(ops, nil)
	if !summary.ToReceive.IsZero() || !summary.ToGive.IsZero() {
		t.Errorf("expected settled totals, got receive=%v give=%v",
			summary.ToReceive, summary.ToGive)
	}
}
