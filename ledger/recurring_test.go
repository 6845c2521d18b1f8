package ledger_test

import (
	"testing"
	"time"

	"github.com/statera/budget-engine/ledger"
)

func monthlyRule(id string, amount float64, next ledger.Day) ledger.RecurringRule {
	return ledger.RecurringRule{
		ID: id, Title: "Rent", Kind: ledger.KindExpense,
		Amount: dec(amount), Category: "Housing",
		Frequency: ledger.FreqMonthly, NextDate: next,
	}
}

// =============================================================================
// MATERIALIZATION
// =============================================================================

func TestMaterialize_CatchUpMultipleMissedOccurrences(t *testing.T) {
	// GIVEN: a monthly rule three months behind
	// WHEN: materializing at today
	// THEN: three operations appear and the cursor passes today

	today := day(2025, time.June, 15)
	rules := []ledger.RecurringRule{monthlyRule("rent", 800, day(2025, time.April, 1))}

	res := ledger.Materialize(rules, nil, today)

	if len(res.Added) != 3 {
		t.Fatalf("expected 3 materialized operations, got %d", len(res.Added))
	}
	if !res.Changed {
		t.Error("cursor must be reported as moved")
	}
	if !res.Rules[0].NextDate.Equal(day(2025, time.July, 1)) {
		t.Errorf("expected cursor at 2025-07-01, got %v", res.Rules[0].NextDate)
	}
	for _, o := range res.Added {
		if o.RecurringID != "rent" {
			t.Error("materialized operations must back-reference their rule")
		}
		if o.Note != "Rent" {
			t.Errorf("expected note from rule title, got %q", o.Note)
		}
	}
}

func TestMaterialize_SecondRunIsNoOp(t *testing.T) {
	// GIVEN: a ledger already containing this month's occurrence
	// WHEN: materializing again without time advancing
	// THEN: no duplicate operation is produced

	today := day(2025, time.June, 15)
	rules := []ledger.RecurringRule{monthlyRule("rent", 800, day(2025, time.June, 1))}

	first := ledger.Materialize(rules, nil, today)
	if len(first.Added) != 1 {
		t.Fatalf("expected 1 operation on first run, got %d", len(first.Added))
	}

	second := ledger.Materialize(first.Rules, first.Added, today)
	if len(second.Added) != 0 {
		t.Fatalf("expected idempotent second run, got %d new operations", len(second.Added))
	}
}

func TestMaterialize_ExistingKeySkippedButCursorAdvances(t *testing.T) {
	// GIVEN: the due occurrence already exists (e.g. restored from backup)
	//        while the cursor still points at it
	// THEN: no duplicate, cursor moves on

	today := day(2025, time.June, 15)
	rules := []ledger.RecurringRule{monthlyRule("rent", 800, day(2025, time.June, 1))}
	existing := []ledger.Operation{{
		ID: "prior", Kind: ledger.KindExpense, Amount: dec(800),
		Date: day(2025, time.June, 1), RecurringID: "rent",
	}}

	res := ledger.Materialize(rules, existing, today)
	if len(res.Added) != 0 {
		t.Fatalf("expected no additions, got %d", len(res.Added))
	}
	if !res.Rules[0].NextDate.Equal(day(2025, time.July, 1)) {
		t.Errorf("cursor must still advance, got %v", res.Rules[0].NextDate)
	}
}

func TestMaterialize_FutureRuleUntouched(t *testing.T) {
	today := day(2025, time.June, 15)
	rules := []ledger.RecurringRule{monthlyRule("rent", 800, day(2025, time.July, 1))}

	res := ledger.Materialize(rules, nil, today)
	if len(res.Added) != 0 || res.Changed {
		t.Error("rules due in the future must not materialize")
	}
}

func TestNextOccurrence_Frequencies(t *testing.T) {
	d := day(2025, time.January, 31)
	if got := ledger.NextOccurrence(ledger.FreqWeekly, d); !got.Equal(day(2025, time.February, 7)) {
		t.Errorf("weekly: got %v", got)
	}
	if got := ledger.NextOccurrence(ledger.FreqYearly, d); !got.Equal(day(2026, time.January, 31)) {
		t.Errorf("yearly: got %v", got)
	}
	// Monthly from Jan 31 lands in early March per calendar arithmetic.
	if got := ledger.NextOccurrence(ledger.FreqMonthly, d); !got.Equal(day(2025, time.March, 3)) {
		t.Errorf("monthly from Jan 31: got %v", got)
	}
}

// =============================================================================
// PREVIEW
// =============================================================================

func TestPreviewRecurring_WindowAndExclusion(t *testing.T) {
	// GIVEN: a monthly rule and one occurrence already materialized
	// WHEN: previewing a two-month window
	// THEN: only the unmaterialized occurrence shows, nothing mutates

	rules := []ledger.RecurringRule{monthlyRule("rent", 800, day(2025, time.June, 1))}
	existing := []ledger.Operation{{
		ID: "prior", Kind: ledger.KindExpense, Amount: dec(800),
		Date: day(2025, time.June, 1), RecurringID: "rent",
	}}

	occ := ledger.PreviewRecurring(rules, existing, day(2025, time.June, 1), day(2025, time.July, 31))

	if len(occ) != 1 {
		t.Fatalf("expected 1 previewed occurrence, got %d", len(occ))
	}
	if !occ[0].Date.Equal(day(2025, time.July, 1)) {
		t.Errorf("expected July occurrence, got %v", occ[0].Date)
	}
	if !rules[0].NextDate.Equal(day(2025, time.June, 1)) {
		t.Error("preview must not advance the rule cursor")
	}
}
