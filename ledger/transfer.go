/*
transfer.go - Paired transfer legs as a single logical action

INVARIANT:
  Exactly two operations share a given transferId: one transfer_out on
  the source account and one transfer_in on the destination account,
  with identical amount and date. Both legs carry the reserved
  "Transfer" category. A global balance is never moved by a transfer;
  only per-account views see the two signed legs.
*/
package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferInput describes an internal transfer between two accounts.
type TransferInput struct {
	Amount decimal.Decimal
	Date   Day
	From   Account
	To     Account
	Note   string
}

// TransferPair is the result of creating a transfer.
type TransferPair struct {
	Out Operation `json:"out"`
	In  Operation `json:"in"`
}

// CreateTransfer builds and inserts both legs atomically: from the
// caller's point of view either both operations exist or neither does.
func (s *Store) CreateTransfer(ctx context.Context, in TransferInput) (TransferPair, error) {
	if !in.Amount.IsPositive() {
		return TransferPair{}, Invalidf("amount", "must be a positive number")
	}
	if in.Date.IsZero() {
		return TransferPair{}, Invalidf("date", "missing date")
	}
	from, to := cleanAccount(in.From), cleanAccount(in.To)
	if from.Equal(to) {
		return TransferPair{}, Invalidf("to", "source and destination accounts are identical")
	}

	transferID := uuid.NewString()
	amount := Round2(in.Amount.Abs())
	note := CleanName(in.Note)

	out := Operation{
		ID:          uuid.NewString(),
		Kind:        KindTransferOut,
		TransferID:  transferID,
		Amount:      amount,
		Date:        in.Date,
		Category:    CategoryTransfer,
		Bank:        from.Bank,
		AccountType: from.AccountType,
		Note:        note,
	}
	inn := Operation{
		ID:          uuid.NewString(),
		Kind:        KindTransferIn,
		TransferID:  transferID,
		Amount:      amount,
		Date:        in.Date,
		Category:    CategoryTransfer,
		Bank:        to.Bank,
		AccountType: to.AccountType,
		Note:        note,
	}

	s.Prepend(ctx, inn, out)
	return TransferPair{Out: out, In: inn}, nil
}

// ConvertToTransferOut turns an existing non-transfer operation into the
// outbound leg of a fresh transfer and inserts the mirroring inbound leg
// on the destination account. The mirror's note is annotated so the pair
// reads as an internal transfer in the history.
func (s *Store) ConvertToTransferOut(ctx context.Context, id string, dest Account) (Operation, error) {
	target, ok := s.Get(id)
	if !ok {
		return Operation{}, ErrNotFound
	}
	if target.Kind.IsTransferLeg() {
		return Operation{}, Invalidf("id", "operation is already a transfer leg")
	}
	dest = cleanAccount(dest)
	if target.Account().Equal(dest) {
		return Operation{}, Invalidf("to", "source and destination accounts are identical")
	}

	transferID := uuid.NewString()

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return Operation{}, ErrNotFound
	}
	s.ops[idx].Kind = KindTransferOut
	s.ops[idx].TransferID = transferID
	s.ops[idx].LinkedExpenseID = ""
	target = s.ops[idx]

	mirror := Operation{
		ID:          uuid.NewString(),
		Kind:        KindTransferIn,
		TransferID:  transferID,
		Amount:      target.Amount,
		Date:        target.Date,
		Category:    target.Category,
		Subcategory: target.Subcategory,
		Bank:        dest.Bank,
		AccountType: dest.AccountType,
		Note:        transferNote(target.Note),
		Person:      target.Person,
	}
	s.ops = append([]Operation{mirror}, s.ops...)
	s.mu.Unlock()

	s.persistAndNotify(ctx)
	return mirror, nil
}

func transferNote(original string) string {
	if original == "" {
		return "Internal transfer"
	}
	return "Internal transfer: " + original
}

func cleanAccount(a Account) Account {
	a.Bank = CleanName(a.Bank)
	a.AccountType = CleanName(a.AccountType)
	if a.Bank == "" {
		a.Bank = DefaultBank
	}
	if a.AccountType == "" {
		a.AccountType = DefaultAccountType
	}
	return a
}
