/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

  Domain read models (PeriodTotals, DebtSummary, Projection, timelines)
  already carry JSON tags and are returned directly.

VALIDATION:
  Shape validation (parsable dates, numeric amounts) happens while
  converting a DTO to its domain input; semantic validation (positive
  amount, distinct transfer accounts) lives in the ledger package.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/store.go: OperationInput / Patch, the domain-side shapes
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/statera/budget-engine/ledger"
)

// =============================================================================
// OPERATIONS
// =============================================================================

// OperationRequest is the request to create an operation.
type OperationRequest struct {
	Kind            string          `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	Date            string          `json:"date"`
	Category        string          `json:"category"`
	Subcategory     string          `json:"subcategory"`
	Bank            string          `json:"bank"`
	AccountType     string          `json:"accountType"`
	Note            string          `json:"note"`
	Person          string          `json:"person"`
	LinkedExpenseID string          `json:"linkedExpenseId"`
}

// ToInput converts the request to a domain input, parsing the date.
func (r OperationRequest) ToInput() (ledger.OperationInput, error) {
	date, err := ledger.ParseDay(r.Date)
	if err != nil {
		return ledger.OperationInput{}, ledger.Invalidf("date", "%v", err)
	}
	return ledger.OperationInput{
		Kind:            ledger.Kind(r.Kind),
		Amount:          r.Amount,
		Date:            date,
		Category:        r.Category,
		Subcategory:     r.Subcategory,
		Bank:            r.Bank,
		AccountType:     r.AccountType,
		Note:            r.Note,
		Person:          r.Person,
		LinkedExpenseID: r.LinkedExpenseID,
	}, nil
}

// OperationPatchRequest is a partial update; absent keys leave the field
// untouched.
type OperationPatchRequest struct {
	Kind            *string          `json:"kind"`
	Amount          *decimal.Decimal `json:"amount"`
	Date            *string          `json:"date"`
	Category        *string          `json:"category"`
	Subcategory     *string          `json:"subcategory"`
	Bank            *string          `json:"bank"`
	AccountType     *string          `json:"accountType"`
	Note            *string          `json:"note"`
	Person          *string          `json:"person"`
	LinkedExpenseID *string          `json:"linkedExpenseId"`
}

// ToPatch converts the request into a typed domain patch.
func (r OperationPatchRequest) ToPatch() (ledger.Patch, error) {
	p := ledger.Patch{
		Amount:          r.Amount,
		Category:        r.Category,
		Subcategory:     r.Subcategory,
		Bank:            r.Bank,
		AccountType:     r.AccountType,
		Note:            r.Note,
		Person:          r.Person,
		LinkedExpenseID: r.LinkedExpenseID,
	}
	if r.Kind != nil {
		k := ledger.Kind(*r.Kind)
		if !ledger.ValidKind(k) {
			return ledger.Patch{}, ledger.Invalidf("kind", "unknown kind %q", *r.Kind)
		}
		p.Kind = &k
	}
	if r.Date != nil {
		d, err := ledger.ParseDay(*r.Date)
		if err != nil {
			return ledger.Patch{}, ledger.Invalidf("date", "%v", err)
		}
		p.Date = &d
	}
	return p, nil
}

// =============================================================================
// TRANSFERS
// =============================================================================

// TransferRequest creates an internal transfer between two accounts.
type TransferRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
	From   AccountDTO      `json:"from"`
	To     AccountDTO      `json:"to"`
	Note   string          `json:"note"`
}

// AccountDTO identifies a bank + account-type pair.
type AccountDTO struct {
	Bank        string `json:"bank"`
	AccountType string `json:"accountType"`
}

func (a AccountDTO) toAccount() ledger.Account {
	return ledger.Account{Bank: a.Bank, AccountType: a.AccountType}
}

// ConvertTransferRequest turns an existing operation into a transfer-out
// leg toward the given destination account.
type ConvertTransferRequest struct {
	To AccountDTO `json:"to"`
}

// =============================================================================
// LISTS / RULES
// =============================================================================

// ListRequest replaces one of the plain string lists.
type ListRequest struct {
	Values []string `json:"values"`
}

// SubcategoriesRequest replaces the category -> subcategories map.
type SubcategoriesRequest struct {
	Subcategories map[string][]string `json:"subcategories"`
}

// ColorsRequest replaces the category -> color map.
type ColorsRequest struct {
	Colors map[string]string `json:"colors"`
}

// AutoCatRulesRequest replaces the auto-categorize rule set.
type AutoCatRulesRequest struct {
	Rules []ledger.AutoCatRule `json:"rules"`
}

// ApplyAutoCatResponse reports how many operations were re-categorized.
type ApplyAutoCatResponse struct {
	Changed int `json:"changed"`
}

// RecurringRulesRequest replaces the recurring rule set.
type RecurringRulesRequest struct {
	Rules []ledger.RecurringRule `json:"rules"`
}

// MaterializeResponse reports one materializer pass.
type MaterializeResponse struct {
	Added   int  `json:"added"`
	Changed bool `json:"changed"`
}

// ForecastItemsRequest replaces the forecast item set.
type ForecastItemsRequest struct {
	Items []ledger.ForecastItem `json:"items"`
}

// =============================================================================
// BACKUP / SYNC
// =============================================================================

// SyncStatusResponse is the cloud sync indicator.
type SyncStatusResponse struct {
	Connected bool   `json:"connected"`
	Status    string `json:"status"`
	Conflict  bool   `json:"conflict"`
}

// ResolveConflictRequest picks a side of a pending conflict.
type ResolveConflictRequest struct {
	Choice string `json:"choice"` // "use_remote" | "keep_local"
}

// ImportResponse reports a CSV import.
type ImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
