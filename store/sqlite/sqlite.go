/*
Package sqlite provides the SQLite-backed ledger.Persistence.

PURPOSE:
  Durable local storage for every collection the engine owns: operations,
  the string lists (categories, banks, account types, people), recurring
  rules, auto-categorize rules, forecast items, category colors,
  subcategories, the forecast settings, and the last-save timestamp.

REPLACE-ALL SEMANTICS:
  The Persistence contract is whole-collection replace: every save
  rewrites its collection inside one transaction (DELETE + INSERT).
  The in-memory state is authoritative; the database is a mirror of the
  latest snapshot, never merged row by row.

KEY TABLES:
  operations:      the ledger entries, with position preserving storage order
  list_values:     categories / banks / account_types / people
  subcategories:   category -> ordered subcategory names
  category_colors: category -> hex color
  recurring_rules, autocat_rules, forecast_items
  settings:        key/value JSON blobs (forecast settings, last save)

WAL MODE:
  Opened with WAL so reads don't block the single writer and crash
  recovery is cheap.

MIGRATION:
  Schema is auto-migrated on New(). Use ":memory:" for tests.

SEE ALSO:
  - ledger/persistence.go: the interface this implements
  - ledger/store/memory.go: the in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/statera/budget-engine/ledger"
)

// Store implements ledger.Persistence on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS operations (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		amount TEXT NOT NULL,
		date TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		subcategory TEXT NOT NULL DEFAULT '',
		bank TEXT NOT NULL DEFAULT '',
		account_type TEXT NOT NULL DEFAULT '',
		note TEXT NOT NULL DEFAULT '',
		person TEXT NOT NULL DEFAULT '',
		linked_expense_id TEXT NOT NULL DEFAULT '',
		transfer_id TEXT NOT NULL DEFAULT '',
		recurring_id TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_operations_date ON operations(date);
	CREATE INDEX IF NOT EXISTS idx_operations_transfer
		ON operations(transfer_id) WHERE transfer_id != '';
	CREATE INDEX IF NOT EXISTS idx_operations_linked_expense
		ON operations(linked_expense_id) WHERE linked_expense_id != '';

	CREATE TABLE IF NOT EXISTS list_values (
		list TEXT NOT NULL,
		position INTEGER NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (list, position)
	);

	CREATE TABLE IF NOT EXISTS subcategories (
		category TEXT NOT NULL,
		position INTEGER NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (category, position)
	);

	CREATE TABLE IF NOT EXISTS category_colors (
		category TEXT PRIMARY KEY,
		color TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS recurring_rules (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		kind TEXT NOT NULL,
		amount TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		bank TEXT NOT NULL DEFAULT '',
		account_type TEXT NOT NULL DEFAULT '',
		frequency TEXT NOT NULL,
		next_date TEXT NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS autocat_rules (
		id TEXT PRIMARY KEY,
		keyword TEXT NOT NULL,
		category TEXT NOT NULL,
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		match_mode TEXT NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS forecast_items (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		kind TEXT NOT NULL,
		amount TEXT NOT NULL,
		date TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		bank TEXT NOT NULL DEFAULT '',
		account_type TEXT NOT NULL DEFAULT '',
		certainty TEXT NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// replaceAll runs DELETE-then-INSERT for one collection inside a tx.
func (s *Store) replaceAll(ctx context.Context, deleteStmt string, deleteArgs []any, insert func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteStmt, deleteArgs...); err != nil {
		return err
	}
	if err := insert(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// OPERATIONS
// =============================================================================

func (s *Store) SaveOperations(ctx context.Context, ops []ledger.Operation) error {
	return s.replaceAll(ctx, "DELETE FROM operations", nil, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO operations
			(id, kind, amount, date, category, subcategory, bank, account_type,
			 note, person, linked_expense_id, transfer_id, recurring_id, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, op := range ops {
			_, err := stmt.ExecContext(ctx,
				op.ID, string(op.Kind), op.Amount.String(), op.Date.String(),
				op.Category, op.Subcategory, op.Bank, op.AccountType,
				op.Note, op.Person, op.LinkedExpenseID, op.TransferID,
				op.RecurringID, i,
			)
			if err != nil {
				return fmt.Errorf("failed to insert operation %s: %w", op.ID, err)
			}
		}
		return nil
	})
}

func (s *Store) LoadOperations(ctx context.Context) ([]ledger.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, amount, date, category, subcategory, bank, account_type,
		       note, person, linked_expense_id, transfer_id, recurring_id
		FROM operations
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer rows.Close()

	var ops []ledger.Operation
	for rows.Next() {
		var (
			op           ledger.Operation
			kind         string
			amount, date string
		)
		if err := rows.Scan(
			&op.ID, &kind, &amount, &date, &op.Category, &op.Subcategory,
			&op.Bank, &op.AccountType, &op.Note, &op.Person,
			&op.LinkedExpenseID, &op.TransferID, &op.RecurringID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		op.Kind = ledger.Kind(kind)
		if op.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("bad amount on operation %s: %w", op.ID, err)
		}
		if op.Date, err = ledger.ParseDay(date); err != nil {
			return nil, fmt.Errorf("bad date on operation %s: %w", op.ID, err)
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// =============================================================================
// STRING LISTS
// =============================================================================

func (s *Store) SaveList(ctx context.Context, name ledger.ListName, values []string) error {
	return s.replaceAll(ctx, "DELETE FROM list_values WHERE list = ?", []any{string(name)}, func(tx *sql.Tx) error {
		for i, v := range values {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO list_values (list, position, value) VALUES (?, ?, ?)",
				string(name), i, v,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) LoadList(ctx context.Context, name ledger.ListName) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT value FROM list_values WHERE list = ? ORDER BY position ASC",
		string(name),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// =============================================================================
// SUBCATEGORIES / CATEGORY COLORS
// =============================================================================

func (s *Store) SaveSubcategories(ctx context.Context, subs map[string][]string) error {
	return s.replaceAll(ctx, "DELETE FROM subcategories", nil, func(tx *sql.Tx) error {
		for category, values := range subs {
			for i, v := range values {
				if _, err := tx.ExecContext(ctx,
					"INSERT INTO subcategories (category, position, value) VALUES (?, ?, ?)",
					category, i, v,
				); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (s *Store) LoadSubcategories(ctx context.Context) (map[string][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT category, value FROM subcategories ORDER BY category, position ASC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := make(map[string][]string)
	for rows.Next() {
		var category, value string
		if err := rows.Scan(&category, &value); err != nil {
			return nil, err
		}
		subs[category] = append(subs[category], value)
	}
	return subs, rows.Err()
}

func (s *Store) SaveCategoryColors(ctx context.Context, colors map[string]string) error {
	return s.replaceAll(ctx, "DELETE FROM category_colors", nil, func(tx *sql.Tx) error {
		for category, color := range colors {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO category_colors (category, color) VALUES (?, ?)",
				category, color,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) LoadCategoryColors(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT category, color FROM category_colors")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	colors := make(map[string]string)
	for rows.Next() {
		var category, color string
		if err := rows.Scan(&category, &color); err != nil {
			return nil, err
		}
		colors[category] = color
	}
	return colors, rows.Err()
}

// =============================================================================
// RECURRING RULES
// =============================================================================

func (s *Store) SaveRecurringRules(ctx context.Context, rules []ledger.RecurringRule) error {
	return s.replaceAll(ctx, "DELETE FROM recurring_rules", nil, func(tx *sql.Tx) error {
		for i, r := range rules {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO recurring_rules
				(id, title, kind, amount, category, bank, account_type, frequency, next_date, position)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				r.ID, r.Title, string(r.Kind), r.Amount.String(),
				r.Category, r.Bank, r.AccountType,
				string(r.Frequency), r.NextDate.String(), i,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) LoadRecurringRules(ctx context.Context) ([]ledger.RecurringRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, kind, amount, category, bank, account_type, frequency, next_date
		FROM recurring_rules
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []ledger.RecurringRule
	for rows.Next() {
		var (
			r                ledger.RecurringRule
			kind, frequency  string
			amount, nextDate string
		)
		if err := rows.Scan(&r.ID, &r.Title, &kind, &amount,
			&r.Category, &r.Bank, &r.AccountType, &frequency, &nextDate); err != nil {
			return nil, err
		}
		r.Kind = ledger.Kind(kind)
		r.Frequency = ledger.Frequency(frequency)
		if r.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("bad amount on rule %s: %w", r.ID, err)
		}
		if r.NextDate, err = ledger.ParseDay(nextDate); err != nil {
			return nil, fmt.Errorf("bad next date on rule %s: %w", r.ID, err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// =============================================================================
// AUTO-CATEGORIZE RULES
// =============================================================================

func (s *Store) SaveAutoCatRules(ctx context.Context, rules []ledger.AutoCatRule) error {
	return s.replaceAll(ctx, "DELETE FROM autocat_rules", nil, func(tx *sql.Tx) error {
		for i, r := range rules {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO autocat_rules (id, keyword, category, enabled, match_mode, position)
				VALUES (?, ?, ?, ?, ?, ?)`,
				r.ID, r.Keyword, r.Category, r.Enabled, string(r.MatchMode), i,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) LoadAutoCatRules(ctx context.Context) ([]ledger.AutoCatRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, keyword, category, enabled, match_mode
		FROM autocat_rules
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []ledger.AutoCatRule
	for rows.Next() {
		var (
			r         ledger.AutoCatRule
			matchMode string
		)
		if err := rows.Scan(&r.ID, &r.Keyword, &r.Category, &r.Enabled, &matchMode); err != nil {
			return nil, err
		}
		r.MatchMode = ledger.MatchMode(matchMode)
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// =============================================================================
// FORECAST ITEMS / SETTINGS
// =============================================================================

func (s *Store) SaveForecastItems(ctx context.Context, items []ledger.ForecastItem) error {
	return s.replaceAll(ctx, "DELETE FROM forecast_items", nil, func(tx *sql.Tx) error {
		for i, it := range items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO forecast_items
				(id, title, kind, amount, date, category, bank, account_type, certainty, position)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				it.ID, it.Title, string(it.Kind), it.Amount.String(), it.Date.String(),
				it.Category, it.Bank, it.AccountType, string(it.Certainty), i,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) LoadForecastItems(ctx context.Context) ([]ledger.ForecastItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, kind, amount, date, category, bank, account_type, certainty
		FROM forecast_items
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ledger.ForecastItem
	for rows.Next() {
		var (
			it              ledger.ForecastItem
			kind, certainty string
			amount, date    string
		)
		if err := rows.Scan(&it.ID, &it.Title, &kind, &amount, &date,
			&it.Category, &it.Bank, &it.AccountType, &certainty); err != nil {
			return nil, err
		}
		it.Kind = ledger.Kind(kind)
		it.Certainty = ledger.Certainty(certainty)
		if it.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("bad amount on forecast item %s: %w", it.ID, err)
		}
		if it.Date, err = ledger.ParseDay(date); err != nil {
			return nil, fmt.Errorf("bad date on forecast item %s: %w", it.ID, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const (
	settingForecast = "forecast_settings"
	settingLastSave = "last_save"
)

func (s *Store) SaveForecastSettings(ctx context.Context, settings ledger.ForecastSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.putSetting(ctx, settingForecast, string(raw))
}

func (s *Store) LoadForecastSettings(ctx context.Context) (ledger.ForecastSettings, error) {
	raw, ok, err := s.getSetting(ctx, settingForecast)
	if err != nil || !ok {
		return ledger.DefaultForecastSettings(), err
	}
	var settings ledger.ForecastSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return ledger.DefaultForecastSettings(), fmt.Errorf("bad forecast settings: %w", err)
	}
	return settings, nil
}

// =============================================================================
// LAST SAVE
// =============================================================================

func (s *Store) SaveLastSave(ctx context.Context, t time.Time) error {
	return s.putSetting(ctx, settingLastSave, t.UTC().Format(time.RFC3339))
}

func (s *Store) LoadLastSave(ctx context.Context) (time.Time, error) {
	raw, ok, err := s.getSetting(ctx, settingLastSave)
	if err != nil || !ok {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad last-save timestamp: %w", err)
	}
	return t, nil
}

// =============================================================================
// SETTINGS HELPERS
// =============================================================================

func (s *Store) putSetting(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func (s *Store) getSetting(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?", key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}
