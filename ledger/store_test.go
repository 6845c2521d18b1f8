package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/statera/budget-engine/internal/logger"
	"github.com/statera/budget-engine/ledger"
	"github.com/statera/budget-engine/ledger/store"
)

// =============================================================================
// ADD
// =============================================================================

func TestAdd_AssignsIDAndDefaults(t *testing.T) {
	// GIVEN: a minimal valid input
	// THEN: id assigned, amount rounded, category/bank/accountType defaulted

	s := newTestStore()
	o := mustAdd(t, s, ledger.OperationInput{
		Kind: ledger.KindExpense, Amount: dec(12.345), Date: day(2025, time.July, 1),
	})

	if o.ID == "" {
		t.Error("id must be assigned")
	}
	if !o.Amount.Equal(dec(12.35)) {
		t.Errorf("expected rounded amount 12.35, got %v", o.Amount)
	}
	if o.Category != ledger.DefaultCategory {
		t.Errorf("expected default category, got %q", o.Category)
	}
	if o.Bank != ledger.DefaultBank || o.AccountType != ledger.DefaultAccountType {
		t.Errorf("expected default accounts, got %q/%q", o.Bank, o.AccountType)
	}
}

func TestAdd_Validation(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	cases := []struct {
		name string
		in   ledger.OperationInput
	}{
		{"zero amount", ledger.OperationInput{Kind: ledger.KindExpense, Amount: dec(0), Date: day(2025, time.July, 1)}},
		{"negative amount", ledger.OperationInput{Kind: ledger.KindExpense, Amount: dec(-5), Date: day(2025, time.July, 1)}},
		{"missing date", ledger.OperationInput{Kind: ledger.KindExpense, Amount: dec(5)}},
		{"unknown kind", ledger.OperationInput{Kind: "mystery", Amount: dec(5), Date: day(2025, time.July, 1)}},
		{"legacy transfer kind", ledger.OperationInput{Kind: ledger.KindTransfer, Amount: dec(5), Date: day(2025, time.July, 1)}},
	}
	for _, c := range cases {
		if _, err := s.Add(ctx, c.in); !errors.Is(err, ledger.ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", c.name, err)
		}
	}
	if s.Len() != 0 {
		t.Error("rejected inputs must not be stored")
	}
}

func TestAdd_LinkedExpenseClearedOnNonReimbursement(t *testing.T) {
	s := newTestStore()
	o := mustAdd(t, s, ledger.OperationInput{
		Kind: ledger.KindExpense, Amount: dec(10), Date: day(2025, time.July, 1),
		LinkedExpenseID: "e1",
	})
	if o.LinkedExpenseID != "" {
		t.Error("linkedExpenseId is only meaningful on reimbursements")
	}

	r := mustAdd(t, s, ledger.OperationInput{
		Kind: ledger.KindReimbursement, Amount: dec(10), Date: day(2025, time.July, 2),
		LinkedExpenseID: "e1",
	})
	if r.LinkedExpenseID != "e1" {
		t.Error("reimbursements keep their link")
	}
}

func TestAdd_MostRecentFirst(t *testing.T) {
	s := newTestStore()
	first := mustAdd(t, s, ledger.OperationInput{Kind: ledger.KindIncome, Amount: dec(1), Date: day(2025, time.July, 1)})
	second := mustAdd(t, s, ledger.OperationInput{Kind: ledger.KindIncome, Amount: dec(2), Date: day(2025, time.July, 2)})

	list := s.List()
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Error("storage order must be most-recent-first")
	}
}

// =============================================================================
// LOAD NORMALIZATION
// =============================================================================

func TestLoad_LegacySignedRowsNormalized(t *testing.T) {
	// GIVEN: persisted rows from an old data set: signed amounts, no kind
	// WHEN: loading
	// THEN: kind inferred from sign, amounts forced positive, accounts defaulted

	mem := store.NewMemory()
	mem.SaveOperations(context.Background(), []ledger.Operation{
		{ID: "a", Amount: dec(-25), Date: day(2024, time.March, 1)},
		{ID: "b", Amount: dec(40), Date: day(2024, time.March, 2)},
	})

	s := ledger.NewStore(mem, logger.Nop())
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, _ := s.Get("a")
	if a.Kind != ledger.KindExpense || !a.Amount.Equal(dec(25)) {
		t.Errorf("negative legacy row must become a positive expense, got %s %v", a.Kind, a.Amount)
	}
	b, _ := s.Get("b")
	if b.Kind != ledger.KindIncome {
		t.Errorf("positive legacy row must become income, got %s", b.Kind)
	}
	if a.Bank != ledger.DefaultBank || a.AccountType != ledger.DefaultAccountType {
		t.Error("missing accounts must be defaulted on load")
	}
}

// =============================================================================
// UPDATE / REMOVE / WIPE
// =============================================================================

func TestUpdate_PartialPatch(t *testing.T) {
	s := newTestStore()
	o := mustAdd(t, s, ledger.OperationInput{
		Kind: ledger.KindExpense, Amount: dec(10), Date: day(2025, time.July, 1),
		Category: "Food", Note: "lunch",
	})

	category := "Leisure"
	if err := s.Update(context.Background(), o.ID, ledger.Patch{Category: &category}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := s.Get(o.ID)
	if got.Category != "Leisure" {
		t.Errorf("expected patched category, got %q", got.Category)
	}
	if got.Note != "lunch" {
		t.Error("untouched fields must survive a partial patch")
	}
}

func TestUpdate_MissingIDIsNoOp(t *testing.T) {
	s := newTestStore()
	category := "Leisure"
	if err := s.Update(context.Background(), "missing", ledger.Patch{Category: &category}); err != nil {
		t.Fatalf("updating a missing id must be a silent no-op, got %v", err)
	}
}

func TestWipe_ClearsEverything(t *testing.T) {
	s := newTestStore()
	mustAdd(t, s, ledger.OperationInput{Kind: ledger.KindIncome, Amount: dec(1), Date: day(2025, time.July, 1)})

	s.Wipe(context.Background())
	if s.Len() != 0 {
		t.Errorf("expected empty ledger after wipe, got %d", s.Len())
	}
}

// =============================================================================
// CHANGE NOTIFICATION
// =============================================================================

func TestMutations_PingChangeListener(t *testing.T) {
	// GIVEN: a registered change listener
	// THEN: every mutation pings it exactly once

	s := newTestStore()
	pings := 0
	s.SetOnChange(func() { pings++ })

	o := mustAdd(t, s, ledger.OperationInput{Kind: ledger.KindIncome, Amount: dec(1), Date: day(2025, time.July, 1)})
	note := "x"
	s.Update(context.Background(), o.ID, ledger.Patch{Note: &note})
	s.Remove(context.Background(), o.ID)

	if pings != 3 {
		t.Errorf("expected 3 change notifications, got %d", pings)
	}
}
