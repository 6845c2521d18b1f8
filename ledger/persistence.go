/*
persistence.go - Local device storage interface

PURPOSE:
  Defines the boundary between the in-memory collections and the local
  database. Every persisted collection has a Save/Load pair with
  replace-all semantics: a save rewrites the whole collection, mirroring
  the single-owner, whole-value mutation model of the engine.

FIRE-AND-FORGET CONTRACT:
  Mutations never fail because local persistence failed. The store logs
  the error and keeps the in-memory state authoritative; the next
  mutation will write the full collection again.

IMPLEMENTATIONS:
  - store/sqlite: production local storage
  - ledger/store (Memory): tests and development
*/
package ledger

import (
	"context"
	"time"
)

// ListName identifies one of the persisted plain string-list collections.
type ListName string

const (
	ListCategories   ListName = "categories"
	ListBanks        ListName = "banks"
	ListAccountTypes ListName = "accountTypes"
	ListPeople       ListName = "people"
)

// Persistence stores every collection of the application state.
// All saves are whole-collection replacements.
type Persistence interface {
	SaveOperations(ctx context.Context, ops []Operation) error
	LoadOperations(ctx context.Context) ([]Operation, error)

	SaveList(ctx context.Context, name ListName, values []string) error
	LoadList(ctx context.Context, name ListName) ([]string, error)

	SaveSubcategories(ctx context.Context, m map[string][]string) error
	LoadSubcategories(ctx context.Context) (map[string][]string, error)

	SaveCategoryColors(ctx context.Context, m map[string]string) error
	LoadCategoryColors(ctx context.Context) (map[string]string, error)

	SaveRecurringRules(ctx context.Context, rules []RecurringRule) error
	LoadRecurringRules(ctx context.Context) ([]RecurringRule, error)

	SaveAutoCatRules(ctx context.Context, rules []AutoCatRule) error
	LoadAutoCatRules(ctx context.Context) ([]AutoCatRule, error)

	SaveForecastItems(ctx context.Context, items []ForecastItem) error
	LoadForecastItems(ctx context.Context) ([]ForecastItem, error)

	SaveForecastSettings(ctx context.Context, s ForecastSettings) error
	LoadForecastSettings(ctx context.Context) (ForecastSettings, error)

	// LastSave is the timestamp of the last successful cloud upload,
	// consumed by the backup conflict protocol.
	SaveLastSave(ctx context.Context, t time.Time) error
	LoadLastSave(ctx context.Context) (time.Time, error)
}
