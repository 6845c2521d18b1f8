/*
Package csvio encodes and decodes operations as CSV rows.

ROW SHAPE:
  date,amount,kind,linked_expense_id,category,subcategory,bank,account_type,note,person

SIGN CONVENTION:
  expense and transfer_out serialize as negative amounts; everything
  else serializes positive. On import the sign is the source of truth:
  rows without a kind (legacy exports) get one inferred from the sign,
  and the ambiguous legacy "transfer" kind is resolved to a leg by sign.
  Zero-amount rows are dropped silently.
*/
package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/statera/budget-engine/ledger"
)

var header = []string{
	"date", "amount", "kind", "linked_expense_id",
	"category", "subcategory", "bank", "account_type", "note", "person",
}

// Export writes all operations as CSV with the canonical header.
func Export(ops []ledger.Operation) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}
	for _, op := range ops {
		row := []string{
			op.Date.String(),
			op.Signed().StringFixed(2),
			string(op.Kind),
			op.LinkedExpenseID,
			op.Category,
			op.Subcategory,
			op.Bank,
			op.AccountType,
			op.Note,
			op.Person,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ImportResult reports what a CSV import produced.
type ImportResult struct {
	Inputs  []ledger.OperationInput
	Skipped int // zero-amount rows dropped
}

// Import parses CSV content into operation inputs ready for the store.
// The header row is required; column order is fixed. Rows with a zero
// amount are counted in Skipped and otherwise ignored.
func Import(r io.Reader) (ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	first, err := cr.Read()
	if err == io.EOF {
		return ImportResult{}, ledger.Invalidf("csv", "empty file")
	}
	if err != nil {
		return ImportResult{}, fmt.Errorf("reading csv header: %w", err)
	}
	if !isHeader(first) {
		return ImportResult{}, ledger.Invalidf("csv", "missing header row")
	}

	var res ImportResult
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ImportResult{}, fmt.Errorf("reading csv line %d: %w", line+1, err)
		}
		line++

		in, skip, err := parseRow(rec, line)
		if err != nil {
			return ImportResult{}, err
		}
		if skip {
			res.Skipped++
			continue
		}
		res.Inputs = append(res.Inputs, in)
	}
	return res, nil
}

func isHeader(rec []string) bool {
	if len(rec) == 0 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(rec[0]), "date")
}

func parseRow(rec []string, line int) (ledger.OperationInput, bool, error) {
	get := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	date, err := ledger.ParseDay(get(0))
	if err != nil {
		return ledger.OperationInput{}, false, ledger.Invalidf("date", "line %d: %v", line, err)
	}

	signed, err := decimal.NewFromString(get(1))
	if err != nil {
		return ledger.OperationInput{}, false, ledger.Invalidf("amount", "line %d: %q is not a number", line, get(1))
	}
	if signed.IsZero() {
		return ledger.OperationInput{}, true, nil
	}

	kind, err := resolveKind(get(2), signed, line)
	if err != nil {
		return ledger.OperationInput{}, false, err
	}

	return ledger.OperationInput{
		Kind:            kind,
		Amount:          signed.Abs(),
		Date:            date,
		LinkedExpenseID: get(3),
		Category:        get(4),
		Subcategory:     get(5),
		Bank:            get(6),
		AccountType:     get(7),
		Note:            get(8),
		Person:          get(9),
	}, false, nil
}

// resolveKind maps the kind column to a concrete kind. Absent kinds
// (legacy rows) and the legacy "transfer" kind are resolved by sign.
func resolveKind(raw string, signed decimal.Decimal, line int) (ledger.Kind, error) {
	switch ledger.Kind(strings.ToLower(raw)) {
	case ledger.KindExpense:
		return ledger.KindExpense, nil
	case ledger.KindIncome:
		return ledger.KindIncome, nil
	case ledger.KindReimbursement:
		return ledger.KindReimbursement, nil
	case ledger.KindTransferIn:
		return ledger.KindTransferIn, nil
	case ledger.KindTransferOut:
		return ledger.KindTransferOut, nil
	case ledger.KindTransfer:
		if signed.IsNegative() {
			return ledger.KindTransferOut, nil
		}
		return ledger.KindTransferIn, nil
	case "":
		if signed.IsNegative() {
			return ledger.KindExpense, nil
		}
		return ledger.KindIncome, nil
	default:
		return "", ledger.Invalidf("kind", "line %d: unknown kind %q", line, raw)
	}
}
