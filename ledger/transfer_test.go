package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/statera/budget-engine/ledger"
)

// =============================================================================
// TRANSFER CREATION
// =============================================================================

func TestCreateTransfer_PairInvariant(t *testing.T) {
	// GIVEN: a transfer between two accounts
	// WHEN: creating it
	// THEN: exactly two legs exist, sharing transferId, amount and date,
	//       both carrying the reserved Transfer category

	s := newTestStore()
	pair, err := s.CreateTransfer(context.Background(), ledger.TransferInput{
		Amount: dec(200),
		Date:   day(2025, time.June, 1),
		From:   ledger.Account{Bank: "A", AccountType: "Checking"},
		To:     ledger.Account{Bank: "B", AccountType: "Savings"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pair.Out.Kind != ledger.KindTransferOut || pair.In.Kind != ledger.KindTransferIn {
		t.Fatalf("expected out/in legs, got %s/%s", pair.Out.Kind, pair.In.Kind)
	}
	if pair.Out.TransferID == "" || pair.Out.TransferID != pair.In.TransferID {
		t.Error("legs must share a non-empty transferId")
	}
	if !pair.Out.Amount.Equal(pair.In.Amount) || !pair.Out.Date.Equal(pair.In.Date) {
		t.Error("legs must have identical amount and date")
	}
	if pair.Out.Category != ledger.CategoryTransfer || pair.In.Category != ledger.CategoryTransfer {
		t.Error("both legs must carry the Transfer category")
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 stored operations, got %d", s.Len())
	}
}

func TestCreateTransfer_GlobalBalanceUnchanged(t *testing.T) {
	// GIVEN: a ledger with a transfer
	// THEN: the all-accounts balance is untouched, only per-account views move

	s := newTestStore()
	mustAdd(t, s, ledger.OperationInput{
		Kind: ledger.KindIncome, Amount: dec(500), Date: day(2025, time.June, 1),
	})
	_, err := s.CreateTransfer(context.Background(), ledger.TransferInput{
		Amount: dec(200),
		Date:   day(2025, time.June, 2),
		From:   ledger.Account{Bank: "A", AccountType: "Checking"},
		To:     ledger.Account{Bank: "B", AccountType: "Savings"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := ledger.BalanceAt(s.List(), day(2025, time.June, 30)); !got.Equal(dec(500)) {
		t.Errorf("expected global balance 500 after transfer, got %v", got)
	}
}

func TestCreateTransfer_SameAccountRejected(t *testing.T) {
	s := newTestStore()
	_, err := s.CreateTransfer(context.Background(), ledger.TransferInput{
		Amount: dec(100),
		Date:   day(2025, time.June, 1),
		From:   ledger.Account{Bank: "A", AccountType: "Checking"},
		To:     ledger.Account{Bank: " A ", AccountType: "Checking"}, // same after trim
	})
	if !errors.Is(err, ledger.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if s.Len() != 0 {
		t.Error("nothing must be stored on rejection")
	}
}

func TestCreateTransfer_NonPositiveAmountRejected(t *testing.T) {
	s := newTestStore()
	_, err := s.CreateTransfer(context.Background(), ledger.TransferInput{
		Amount: dec(0),
		Date:   day(2025, time.June, 1),
		From:   ledger.Account{Bank: "A", AccountType: "Checking"},
		To:     ledger.Account{Bank: "B", AccountType: "Checking"},
	})
	if !errors.Is(err, ledger.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

// =============================================================================
// TRANSFER DELETE / EDIT
// =============================================================================

func TestRemove_TransferLegDeletesBothLegs(t *testing.T) {
	// GIVEN: a transfer pair plus an unrelated operation
	// WHEN: deleting one leg
	// THEN: both legs disappear, the unrelated operation stays

	s := newTestStore()
	keep := mustAdd(t, s, ledger.OperationInput{
		Kind: ledger.KindIncome, Amount: dec(10), Date: day(2025, time.June, 1),
	})
	pair, _ := s.CreateTransfer(context.Background(), ledger.TransferInput{
		Amount: dec(100),
		Date:   day(2025, time.June, 2),
		From:   ledger.Account{Bank: "A", AccountType: "Checking"},
		To:     ledger.Account{Bank: "B", AccountType: "Checking"},
	})

	s.Remove(context.Background(), pair.In.ID)

	if s.Len() != 1 {
		t.Fatalf("expected only the unrelated operation to remain, got %d", s.Len())
	}
	if _, ok := s.Get(keep.ID); !ok {
		t.Error("unrelated operation must survive")
	}
}

func TestUpdate_AmountEditPropagatesToSiblingLeg(t *testing.T) {
	// GIVEN: a transfer pair
	// WHEN: patching the amount of one leg
	// THEN: the sibling leg mirrors the new amount, keeping the invariant

	s := newTestStore()
	pair, _ := s.CreateTransfer(context.Background(), ledger.TransferInput{
		Amount: dec(100),
		Date:   day(2025, time.June, 2),
		From:   ledger.Account{Bank: "A", AccountType: "Checking"},
		To:     ledger.Account{Bank: "B", AccountType: "Checking"},
	})

	amount := dec(150)
	if err := s.Update(context.Background(), pair.Out.ID, ledger.Patch{Amount: &amount}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in, _ := s.Get(pair.In.ID)
	if !in.Amount.Equal(dec(150)) {
		t.Errorf("expected sibling leg amount 150, got %v", in.Amount)
	}
}

func TestUpdate_CategoryEditDoesNotTouchSibling(t *testing.T) {
	s := newTestStore()
	pair, _ := s.CreateTransfer(context.Background(), ledger.TransferInput{
		Amount: dec(100),
		Date:   day(2025, time.June, 2),
		From:   ledger.Account{Bank: "A", AccountType: "Checking"},
		To:     ledger.Account{Bank: "B", AccountType: "Checking"},
	})

	note := "annotated"
	if err := s.Update(context.Background(), pair.Out.ID, ledger.Patch{Note: &note}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in, _ := s.Get(pair.In.ID)
	if in.Note == note {
		t.Error("non amount/date edits must not propagate to the sibling leg")
	}
}

// =============================================================================
// TRANSFER CONVERSION
// =============================================================================

func TestConvertToTransferOut_CreatesMirror(t *testing.T) {
	// GIVEN: a plain expense
	// WHEN: converting it to a transfer toward another account
	// THEN: the original becomes transfer_out and an annotated mirror
	//       transfer_in appears on the destination

	s := newTestStore()
	orig := mustAdd(t, s, ledger.OperationInput{
		Kind: ledger.KindExpense, Amount: dec(75), Date: day(2025, time.June, 3),
		Bank: "A", AccountType: "Checking", Note: "cash withdrawal",
	})

	mirror, err := s.ConvertToTransferOut(context.Background(), orig.ID,
		ledger.Account{Bank: "Physical", AccountType: "Cash"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	converted, _ := s.Get(orig.ID)
	if converted.Kind != ledger.KindTransferOut {
		t.Errorf("expected converted kind transfer_out, got %s", converted.Kind)
	}
	if mirror.Kind != ledger.KindTransferIn || mirror.TransferID != converted.TransferID {
		t.Error("mirror must be the paired inbound leg")
	}
	if !mirror.Amount.Equal(converted.Amount) || !mirror.Date.Equal(converted.Date) {
		t.Error("mirror must copy amount and date")
	}
	if mirror.Note != "Internal transfer: cash withdrawal" {
		t.Errorf("expected annotated mirror note, got %q", mirror.Note)
	}
}

func TestConvertToTransferOut_RejectsExistingLegAndMissingID(t *testing.T) {
	s := newTestStore()
	pair, _ := s.CreateTransfer(context.Background(), ledger.TransferInput{
		Amount: dec(100),
		Date:   day(2025, time.June, 2),
		From:   ledger.Account{Bank: "A", AccountType: "Checking"},
		To:     ledger.Account{Bank: "B", AccountType: "Checking"},
	})

	if _, err := s.ConvertToTransferOut(context.Background(), pair.Out.ID,
		ledger.Account{Bank: "C", AccountType: "Checking"}); !errors.Is(err, ledger.ErrValidation) {
		t.Errorf("expected validation error converting an existing leg, got %v", err)
	}
	if _, err := s.ConvertToTransferOut(context.Background(), "missing",
		ledger.Account{Bank: "C", AccountType: "Checking"}); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}
