// Package store provides Persistence implementations.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/statera/budget-engine/ledger"
)

// =============================================================================
// MEMORY - In-memory Persistence (tests/dev)
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	operations       []ledger.Operation
	lists            map[ledger.ListName][]string
	subcategories    map[string][]string
	categoryColors   map[string]string
	recurringRules   []ledger.RecurringRule
	autoCatRules     []ledger.AutoCatRule
	forecastItems    []ledger.ForecastItem
	forecastSettings ledger.ForecastSettings
	lastSave         time.Time
}

func NewMemory() *Memory {
	return &Memory{
		lists:            make(map[ledger.ListName][]string),
		subcategories:    make(map[string][]string),
		categoryColors:   make(map[string]string),
		forecastSettings: ledger.DefaultForecastSettings(),
	}
}

func (m *Memory) SaveOperations(_ context.Context, ops []ledger.Operation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations = append([]ledger.Operation{}, ops...)
	return nil
}

func (m *Memory) LoadOperations(_ context.Context) ([]ledger.Operation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ledger.Operation{}, m.operations...), nil
}

func (m *Memory) SaveList(_ context.Context, name ledger.ListName, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[name] = append([]string{}, values...)
	return nil
}

func (m *Memory) LoadList(_ context.Context, name ledger.ListName) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string{}, m.lists[name]...), nil
}

func (m *Memory) SaveSubcategories(_ context.Context, v map[string][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subcategories = copyStringSliceMap(v)
	return nil
}

func (m *Memory) LoadSubcategories(_ context.Context) (map[string][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyStringSliceMap(m.subcategories), nil
}

func (m *Memory) SaveCategoryColors(_ context.Context, v map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categoryColors = copyStringMap(v)
	return nil
}

func (m *Memory) LoadCategoryColors(_ context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyStringMap(m.categoryColors), nil
}

func (m *Memory) SaveRecurringRules(_ context.Context, rules []ledger.RecurringRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recurringRules = append([]ledger.RecurringRule{}, rules...)
	return nil
}

func (m *Memory) LoadRecurringRules(_ context.Context) ([]ledger.RecurringRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ledger.RecurringRule{}, m.recurringRules...), nil
}

func (m *Memory) SaveAutoCatRules(_ context.Context, rules []ledger.AutoCatRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoCatRules = append([]ledger.AutoCatRule{}, rules...)
	return nil
}

func (m *Memory) LoadAutoCatRules(_ context.Context) ([]ledger.AutoCatRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ledger.AutoCatRule{}, m.autoCatRules...), nil
}

func (m *Memory) SaveForecastItems(_ context.Context, items []ledger.ForecastItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forecastItems = append([]ledger.ForecastItem{}, items...)
	return nil
}

func (m *Memory) LoadForecastItems(_ context.Context) ([]ledger.ForecastItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ledger.ForecastItem{}, m.forecastItems...), nil
}

func (m *Memory) SaveForecastSettings(_ context.Context, s ledger.ForecastSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forecastSettings = s
	return nil
}

func (m *Memory) LoadForecastSettings(_ context.Context) (ledger.ForecastSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.forecastSettings, nil
}

func (m *Memory) SaveLastSave(_ context.Context, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSave = t
	return nil
}

func (m *Memory) LoadLastSave(_ context.Context) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSave, nil
}

func copyStringSliceMap(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string{}, v...)
	}
	return out
}

func copyStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
