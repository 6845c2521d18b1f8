/*
Package ledger provides the core accounting engine for Statera.

PURPOSE:
  This package contains the domain types and algorithms for a personal
  finance ledger: operations (expenses, income, reimbursements, transfer
  legs), reconciliation of reimbursements against their original expenses,
  balance replay at an arbitrary date, per-person debt aggregation, and
  recurring-rule materialization.

KEY CONCEPTS IN THIS FILE (types.go):
  - Operation: the atomic ledger entry
  - Kind: operation kind, which determines sign semantics
  - Day: a calendar date at day granularity (all ordering and filtering)
  - SignedAmount: the single canonical sign-from-kind rule

DESIGN PRINCIPLES:
  1. Unsigned storage: amounts are stored positive, sign is derived from
     Kind at read time, never stored.
  2. Precision: decimal.Decimal everywhere, rounded to 2 decimals at the
     boundary. No float arithmetic on money.
  3. Pure derivation: balances, debts, and reconciliation are always
     recomputed from the operation set. There is no cached balance that
     can drift.

SEE ALSO:
  - store.go: the operation collection and its mutation contract
  - balance.go: signed-sum replay and cumulative timelines
  - reconcile.go: reimbursement netting
  - recurring.go: rule materialization
*/
package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// KIND - Operation kind, determines sign semantics
// =============================================================================

type Kind string

const (
	KindExpense       Kind = "expense"
	KindIncome        Kind = "income"
	KindReimbursement Kind = "reimbursement"
	KindTransferOut   Kind = "transfer_out"
	KindTransferIn    Kind = "transfer_in"

	// KindTransfer is the legacy pre-split kind. It is accepted on decode
	// for old data sets but contributes zero to every balance; transfers
	// only affect balances through their split legs.
	KindTransfer Kind = "transfer"
)

// ValidKind reports whether k is a kind the store accepts on write.
func ValidKind(k Kind) bool {
	switch k {
	case KindExpense, KindIncome, KindReimbursement, KindTransferOut, KindTransferIn:
		return true
	}
	return false
}

// IsTransferLeg reports whether k is one of the two legs of a transfer.
func (k Kind) IsTransferLeg() bool {
	return k == KindTransferOut || k == KindTransferIn
}

// SignedAmount applies the canonical sign rule. Every consumer (balance,
// debt, statistics, forecast) goes through this function:
//
//	expense, transfer_out             -> -amount
//	income, reimbursement, transfer_in -> +amount
//	transfer (legacy), anything else   -> 0
func SignedAmount(k Kind, amount decimal.Decimal) decimal.Decimal {
	switch k {
	case KindIncome, KindReimbursement, KindTransferIn:
		return amount
	case KindExpense, KindTransferOut:
		return amount.Neg()
	}
	return decimal.Zero
}

// =============================================================================
// DAY - Calendar date at day granularity
// =============================================================================

// Day is a timezone-naive calendar date. All period filtering, ordering,
// and replay comparisons happen at this granularity; there is no
// time-of-day anywhere in the ledger.
type Day struct {
	t time.Time
}

const dayLayout = "2006-01-02"

func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses an ISO YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, strings.TrimSpace(s))
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Day{t: t}, nil
}

// MustParseDay is ParseDay for literals; it panics on malformed input.
func MustParseDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DayOf truncates a time.Time to its local calendar day.
func DayOf(t time.Time) Day {
	return NewDay(t.Year(), t.Month(), t.Day())
}

func Today() Day { return DayOf(time.Now()) }

// Comparison
func (d Day) Before(other Day) bool        { return d.t.Before(other.t) }
func (d Day) After(other Day) bool         { return d.t.After(other.t) }
func (d Day) Equal(other Day) bool         { return d.t.Equal(other.t) }
func (d Day) BeforeOrEqual(other Day) bool { return !d.t.After(other.t) }
func (d Day) AfterOrEqual(other Day) bool  { return !d.t.Before(other.t) }
func (d Day) IsZero() bool                 { return d.t.IsZero() }

// Arithmetic
func (d Day) AddDays(n int) Day   { return Day{t: d.t.AddDate(0, 0, n)} }
func (d Day) AddMonths(n int) Day { return Day{t: d.t.AddDate(0, n, 0)} }
func (d Day) AddYears(n int) Day  { return Day{t: d.t.AddDate(n, 0, 0)} }

func (d Day) Year() int         { return d.t.Year() }
func (d Day) Month() time.Month { return d.t.Month() }

// MonthKey returns the YYYY-MM bucket the day belongs to.
func (d Day) MonthKey() string { return d.t.Format("2006-01") }

func (d Day) StartOfMonth() Day {
	return NewDay(d.t.Year(), d.t.Month(), 1)
}

func (d Day) EndOfMonth() Day {
	return NewDay(d.t.Year(), d.t.Month()+1, 1).AddDays(-1)
}

func (d Day) String() string { return d.t.Format(dayLayout) }

func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// OPERATION - The atomic ledger entry
// =============================================================================

// Operation is one ledger entry. Amount is always stored unsigned; the
// sign is derived from Kind via SignedAmount.
type Operation struct {
	ID          string          `json:"id"`
	Kind        Kind            `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Date        Day             `json:"date"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory,omitempty"`
	Bank        string          `json:"bank"`
	AccountType string          `json:"accountType"`
	Note        string          `json:"note,omitempty"`
	Person      string          `json:"person,omitempty"`

	// LinkedExpenseID references the expense a reimbursement nets against.
	// Only meaningful on reimbursements; a dangling reference contributes
	// nothing (the expense may have been deleted afterwards).
	LinkedExpenseID string `json:"linkedExpenseId,omitempty"`

	// TransferID pairs the two legs of an internal transfer. Exactly two
	// operations share one TransferID: one transfer_out and one
	// transfer_in, with identical amount and date.
	TransferID string `json:"transferId,omitempty"`

	// RecurringID back-references the recurring rule that materialized
	// this operation, distinguishing it from manual entries.
	RecurringID string `json:"recurringId,omitempty"`
}

// Signed returns the operation's contribution to a balance.
func (o Operation) Signed() decimal.Decimal {
	return SignedAmount(o.Kind, o.Amount)
}

// Account identifies where an operation lives: a bank plus an account type.
type Account struct {
	Bank        string `json:"bank"`
	AccountType string `json:"accountType"`
}

func (a Account) Equal(b Account) bool {
	return a.Bank == b.Bank && a.AccountType == b.AccountType
}

func (o Operation) Account() Account {
	return Account{Bank: o.Bank, AccountType: o.AccountType}
}

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	DefaultBank        = "Physical"
	DefaultAccountType = "Checking"
	DefaultCategory    = "Other"

	// CategoryTransfer is the reserved category assigned to both transfer
	// legs; user categories never apply to them.
	CategoryTransfer = "Transfer"
)

// DefaultCategories seeds a fresh install.
var DefaultCategories = []string{
	"Food", "Transport", "Housing", "Leisure",
	"Subscriptions", "Health", "Savings", "Other",
}

// =============================================================================
// RECURRING RULE - Template that periodically generates operations
// =============================================================================

type Frequency string

const (
	FreqWeekly  Frequency = "weekly"
	FreqMonthly Frequency = "monthly"
	FreqYearly  Frequency = "yearly"
)

// RecurringRule describes an operation template plus a cursor (NextDate)
// pointing at the next occurrence still to be materialized. The cursor is
// mutated only by the materializer.
type RecurringRule struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Kind        Kind            `json:"kind"` // expense or income
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Bank        string          `json:"bank"`
	AccountType string          `json:"accountType"`
	Frequency   Frequency       `json:"frequency"`
	NextDate    Day             `json:"nextDate"`
}

// =============================================================================
// FORECAST ITEM - Hypothetical future operation
// =============================================================================

type Certainty string

const (
	CertaintyCertain  Certainty = "certain"
	CertaintyProbable Certainty = "probable"
	CertaintyOptional Certainty = "optional"
)

var AllCertainties = []Certainty{CertaintyCertain, CertaintyProbable, CertaintyOptional}

// ForecastItem is a planned operation that is not yet real. It can be
// converted to an Operation on user action, or deleted independently.
type ForecastItem struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Kind        Kind            `json:"kind"` // expense or income
	Amount      decimal.Decimal `json:"amount"`
	Date        Day             `json:"date"`
	Category    string          `json:"category"`
	Bank        string          `json:"bank"`
	AccountType string          `json:"accountType"`
	Certainty   Certainty       `json:"certainty"`
}

// ForecastSettings controls which forecast items count toward projections.
type ForecastSettings struct {
	AlertThreshold   decimal.Decimal `json:"alertThreshold"`
	IncludeCertainty []Certainty     `json:"includeCertainty"`
}

func DefaultForecastSettings() ForecastSettings {
	return ForecastSettings{
		AlertThreshold:   decimal.Zero,
		IncludeCertainty: append([]Certainty(nil), AllCertainties...),
	}
}

// =============================================================================
// AUTO-CATEGORIZE RULE
// =============================================================================

type MatchMode string

const (
	MatchContains MatchMode = "contains"
	MatchWord     MatchMode = "word"
)

// AutoCatRule assigns a category to operations whose note matches a keyword.
type AutoCatRule struct {
	ID        string    `json:"id"`
	Keyword   string    `json:"keyword"`
	Category  string    `json:"category"`
	Enabled   bool      `json:"enabled"`
	MatchMode MatchMode `json:"matchMode"`
}

// =============================================================================
// SMALL HELPERS
// =============================================================================

// Round2 rounds an amount to currency minor-unit precision.
func Round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// CleanName trims a free-form label.
func CleanName(s string) string { return strings.TrimSpace(s) }

// DedupeNames trims, drops empties, and de-duplicates while preserving
// first-seen order.
func DedupeNames(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		c := CleanName(s)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
