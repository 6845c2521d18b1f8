/*
store.go - The operation collection and its mutation contract

PURPOSE:
  Store owns the in-memory operation collection (the ledger). It performs
  validation, id assignment, and normalization on every mutation, then
  persists the full collection through the Persistence collaborator and
  notifies the change listener (which feeds the autosave debouncer).

ORDERING:
  Storage order is most-recent-first by insertion, but correctness never
  depends on it: replay computations re-sort by date, and display reads
  sort date-descending.

MUTATION CONTRACT:
  - Add:    validate amount > 0, assign id, trim person/note, default
            bank/accountType, prepend.
  - Update: typed partial merge; amount re-normalized to abs; no-op when
            the id is absent. Amount/date edits on a transfer leg
            propagate to the sibling leg so the pairing invariant stays
            true (see transfer.go).
  - Remove: deleting one leg of a transfer deletes both legs.

CONCURRENCY:
  All mutation originates from the single HTTP handler path, but requests
  can be concurrent, so the collection is guarded by a RWMutex like every
  other shared collection in this codebase.
*/
package ledger

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// =============================================================================
// STORE
// =============================================================================

type Store struct {
	mu       sync.RWMutex
	ops      []Operation
	persist  Persistence
	onChange func()
	log      zerolog.Logger
}

// NewStore creates a store backed by the given persistence collaborator.
func NewStore(persist Persistence, log zerolog.Logger) *Store {
	return &Store{persist: persist, log: log}
}

// Load replaces the in-memory collection from local storage. Called once
// at bootstrap, before any mutation.
func (s *Store) Load(ctx context.Context) error {
	ops, err := s.persist.LoadOperations(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ops = normalizeLoaded(ops)
	s.mu.Unlock()
	return nil
}

// normalizeLoaded migrates old records: a missing kind is inferred from
// the stored sign, and amounts are forced positive.
func normalizeLoaded(ops []Operation) []Operation {
	out := make([]Operation, 0, len(ops))
	for _, o := range ops {
		if o.Kind == "" {
			if o.Amount.IsNegative() {
				o.Kind = KindExpense
			} else {
				o.Kind = KindIncome
			}
		}
		o.Amount = o.Amount.Abs()
		o.Person = CleanName(o.Person)
		if o.Bank == "" {
			o.Bank = DefaultBank
		}
		if o.AccountType == "" {
			o.AccountType = DefaultAccountType
		}
		out = append(out, o)
	}
	return out
}

// SetOnChange registers the listener pinged after every mutation.
func (s *Store) SetOnChange(fn func()) { s.onChange = fn }

// =============================================================================
// INPUT AND PATCH TYPES
// =============================================================================

// OperationInput is the boundary shape for creating an operation.
type OperationInput struct {
	Kind            Kind
	Amount          decimal.Decimal
	Date            Day
	Category        string
	Subcategory     string
	Bank            string
	AccountType     string
	Note            string
	Person          string
	LinkedExpenseID string
	RecurringID     string
}

// Patch is a typed partial update. Nil fields are left untouched; unknown
// keys cannot exist by construction.
type Patch struct {
	Kind            *Kind
	Amount          *decimal.Decimal
	Date            *Day
	Category        *string
	Subcategory     *string
	Bank            *string
	AccountType     *string
	Note            *string
	Person          *string
	LinkedExpenseID *string
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Add validates and inserts a new operation, returning the stored record.
func (s *Store) Add(ctx context.Context, in OperationInput) (Operation, error) {
	op, err := buildOperation(in)
	if err != nil {
		return Operation{}, err
	}

	s.mu.Lock()
	s.ops = append([]Operation{op}, s.ops...)
	s.mu.Unlock()

	s.persistAndNotify(ctx)
	return op, nil
}

func buildOperation(in OperationInput) (Operation, error) {
	if !ValidKind(in.Kind) {
		return Operation{}, Invalidf("kind", "unknown kind %q", in.Kind)
	}
	if !in.Amount.IsPositive() {
		return Operation{}, Invalidf("amount", "must be a positive number")
	}
	if in.Date.IsZero() {
		return Operation{}, Invalidf("date", "missing date")
	}

	op := Operation{
		ID:              uuid.NewString(),
		Kind:            in.Kind,
		Amount:          Round2(in.Amount.Abs()),
		Date:            in.Date,
		Category:        CleanName(in.Category),
		Subcategory:     CleanName(in.Subcategory),
		Bank:            CleanName(in.Bank),
		AccountType:     CleanName(in.AccountType),
		Note:            CleanName(in.Note),
		Person:          CleanName(in.Person),
		RecurringID:     in.RecurringID,
		LinkedExpenseID: in.LinkedExpenseID,
	}
	if op.Category == "" {
		op.Category = DefaultCategory
	}
	if op.Bank == "" {
		op.Bank = DefaultBank
	}
	if op.AccountType == "" {
		op.AccountType = DefaultAccountType
	}
	if op.Kind != KindReimbursement {
		op.LinkedExpenseID = ""
	}
	return op, nil
}

// Update merges a patch into an existing record. No-op when id is absent.
// Amount/date changes on a transfer leg are mirrored onto the sibling leg.
func (s *Store) Update(ctx context.Context, id string, patch Patch) error {
	if patch.Amount != nil && !patch.Amount.IsPositive() {
		return Invalidf("amount", "must be a positive number")
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}

	op := applyPatch(s.ops[idx], patch)
	s.ops[idx] = op

	// Keep the two-leg invariant: identical amount and date on both legs.
	if op.Kind.IsTransferLeg() && op.TransferID != "" && (patch.Amount != nil || patch.Date != nil) {
		for i := range s.ops {
			if i != idx && s.ops[i].TransferID == op.TransferID {
				s.ops[i].Amount = op.Amount
				s.ops[i].Date = op.Date
			}
		}
	}
	s.mu.Unlock()

	s.persistAndNotify(ctx)
	return nil
}

func applyPatch(op Operation, p Patch) Operation {
	if p.Kind != nil {
		op.Kind = *p.Kind
	}
	if p.Amount != nil {
		op.Amount = Round2(p.Amount.Abs())
	}
	if p.Date != nil {
		op.Date = *p.Date
	}
	if p.Category != nil {
		op.Category = CleanName(*p.Category)
	}
	if p.Subcategory != nil {
		op.Subcategory = CleanName(*p.Subcategory)
	}
	if p.Bank != nil {
		op.Bank = CleanName(*p.Bank)
	}
	if p.AccountType != nil {
		op.AccountType = CleanName(*p.AccountType)
	}
	if p.Note != nil {
		op.Note = CleanName(*p.Note)
	}
	if p.Person != nil {
		op.Person = CleanName(*p.Person)
	}
	if p.LinkedExpenseID != nil {
		op.LinkedExpenseID = *p.LinkedExpenseID
	}
	if op.Kind != KindReimbursement {
		op.LinkedExpenseID = ""
	}
	return op
}

// Remove deletes an operation. When the target is a transfer leg, both
// operations sharing its transferId are removed; the delete is
// transaction-level, never row-level.
func (s *Store) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	target := s.ops[idx]

	keep := s.ops[:0]
	for _, o := range s.ops {
		if target.Kind.IsTransferLeg() && target.TransferID != "" {
			if o.TransferID == target.TransferID {
				continue
			}
		} else if o.ID == id {
			continue
		}
		keep = append(keep, o)
	}
	s.ops = keep
	s.mu.Unlock()

	s.persistAndNotify(ctx)
}

// Prepend inserts already-built operations (CSV import, transfer mirrors,
// materialized recurrences) at the front of the collection.
func (s *Store) Prepend(ctx context.Context, ops ...Operation) {
	if len(ops) == 0 {
		return
	}
	s.mu.Lock()
	s.ops = append(append([]Operation{}, ops...), s.ops...)
	s.mu.Unlock()
	s.persistAndNotify(ctx)
}

// ReplaceAll swaps the entire collection (restore from backup, wipe).
func (s *Store) ReplaceAll(ctx context.Context, ops []Operation) {
	s.mu.Lock()
	s.ops = normalizeLoaded(ops)
	s.mu.Unlock()
	s.persistAndNotify(ctx)
}

// Wipe clears the whole operation history.
func (s *Store) Wipe(ctx context.Context) {
	s.ReplaceAll(ctx, nil)
}

// =============================================================================
// READS
// =============================================================================

// List returns a read-only snapshot in storage order.
func (s *Store) List() []Operation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Operation, len(s.ops))
	copy(out, s.ops)
	return out
}

// Get returns the operation with the given id.
func (s *Store) Get(id string) (Operation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.indexLocked(id); idx >= 0 {
		return s.ops[idx], true
	}
	return Operation{}, false
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ops)
}

func (s *Store) indexLocked(id string) int {
	for i := range s.ops {
		if s.ops[i].ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// PERSISTENCE SIDE EFFECT
// =============================================================================

// persistAndNotify writes the full collection and pings the autosave
// listener. Local write failures are logged, never propagated: the
// in-memory state stays authoritative and the next mutation rewrites
// everything anyway.
func (s *Store) persistAndNotify(ctx context.Context) {
	if err := s.persist.SaveOperations(ctx, s.List()); err != nil {
		s.log.Warn().Err(err).Msg("persisting operations failed")
	}
	if s.onChange != nil {
		s.onChange()
	}
}
