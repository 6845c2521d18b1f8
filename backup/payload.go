/*
Package backup snapshots and restores the full application state and
keeps a cloud copy in sync.

PURPOSE:
  - payload.go:     versioned snapshot format (build/apply)
  - coordinator.go: connect-time conflict protocol, manual backup/restore
  - autosave.go:    debounced upload on every mutation
  - gcs/:           cloud-file collaborator on Google Cloud Storage

CONFLICT PHILOSOPHY:
  The system never merges and never picks a side on its own. When both
  local and remote state exist, the human operator chooses; the losing
  side is overwritten whole. Last-writer-wins, by explicit decision.
*/
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/statera/budget-engine/ledger"
)

// PayloadVersion is the current snapshot format version.
const PayloadVersion = 2

// ErrMalformedPayload is returned when a snapshot lacks the data envelope.
var ErrMalformedPayload = errors.New("malformed backup payload: missing data envelope")

// Data carries every persisted collection. All keys are optional on
// restore: a nil field means "absent, leave the collection alone".
type Data struct {
	Operations          []ledger.Operation       `json:"operations,omitempty"`
	Categories          []string                 `json:"categories,omitempty"`
	Banks               []string                 `json:"banks,omitempty"`
	AccountTypes        []string                 `json:"accountTypes,omitempty"`
	People              []string                 `json:"people,omitempty"`
	RecurringRules      []ledger.RecurringRule   `json:"recurringRules,omitempty"`
	CategoryColors      map[string]string        `json:"categoryColors,omitempty"`
	Subcategories       map[string][]string      `json:"subcategories,omitempty"`
	AutoCategorizeRules []ledger.AutoCatRule     `json:"autoCategorizeRules,omitempty"`
	ForecastItems       []ledger.ForecastItem    `json:"forecastItems,omitempty"`
	ForecastSettings    *ledger.ForecastSettings `json:"forecastSettings,omitempty"`
}

// Payload is the versioned snapshot written to the cloud file.
type Payload struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
	Data       *Data     `json:"data"`
}

// BuildPayload snapshots the current state of every collection.
func BuildPayload(store *ledger.Store, cols *ledger.Collections, now time.Time) Payload {
	settings := cols.ForecastSettings()
	return Payload{
		Version:    PayloadVersion,
		ExportedAt: now.UTC(),
		Data: &Data{
			Operations:          store.List(),
			Categories:          cols.Categories(),
			Banks:               cols.Banks(),
			AccountTypes:        cols.AccountTypes(),
			People:              cols.People(),
			RecurringRules:      cols.RecurringRules(),
			CategoryColors:      cols.CategoryColors(),
			Subcategories:       cols.Subcategories(),
			AutoCategorizeRules: cols.AutoCatRules(),
			ForecastItems:       cols.ForecastItems(),
			ForecastSettings:    &settings,
		},
	}
}

// Encode serializes a payload the way the cloud file stores it.
func Encode(p Payload) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Decode parses a snapshot and rejects payloads without a data envelope.
// Unknown keys inside data are dropped by the typed decode.
func Decode(raw []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("decoding backup payload: %w", err)
	}
	if p.Data == nil {
		return Payload{}, ErrMalformedPayload
	}
	return p, nil
}

// ApplyPayload pushes every present collection through its setter.
// Absent keys leave the corresponding collection untouched.
func ApplyPayload(ctx context.Context, p Payload, store *ledger.Store, cols *ledger.Collections) error {
	if p.Data == nil {
		return ErrMalformedPayload
	}
	d := p.Data

	if d.Operations != nil {
		store.ReplaceAll(ctx, d.Operations)
	}
	if d.Categories != nil {
		cols.SetCategories(ctx, d.Categories)
	}
	if d.Banks != nil {
		cols.SetBanks(ctx, d.Banks)
	}
	if d.AccountTypes != nil {
		cols.SetAccountTypes(ctx, d.AccountTypes)
	}
	if d.People != nil {
		cols.SetPeople(ctx, d.People)
	}
	if d.RecurringRules != nil {
		cols.SetRecurringRules(ctx, d.RecurringRules)
	}
	if d.CategoryColors != nil {
		cols.SetCategoryColors(ctx, d.CategoryColors)
	}
	if d.Subcategories != nil {
		cols.SetSubcategories(ctx, d.Subcategories)
	}
	if d.AutoCategorizeRules != nil {
		cols.SetAutoCatRules(ctx, d.AutoCategorizeRules)
	}
	if d.ForecastItems != nil {
		cols.SetForecastItems(ctx, d.ForecastItems)
	}
	if d.ForecastSettings != nil {
		cols.SetForecastSettings(ctx, *d.ForecastSettings)
	}
	return nil
}
