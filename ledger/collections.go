/*
collections.go - Sibling collections of the ledger

PURPOSE:
  Holds every persisted collection that is not the operation ledger:
  categories, subcategories, banks, account types, people, recurring
  rules, category colors, auto-categorize rules, forecast items, and
  forecast settings. Each one has a whole-value setter (restore applies
  a backup payload through these) and a snapshot getter.

  Like the operation store, every mutation persists fire-and-forget and
  pings the change listener.
*/
package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

type Collections struct {
	mu       sync.RWMutex
	persist  Persistence
	onChange func()
	log      zerolog.Logger

	categories       []string
	subcategories    map[string][]string
	banks            []string
	accountTypes     []string
	people           []string
	recurring        []RecurringRule
	categoryColors   map[string]string
	autoCatRules     []AutoCatRule
	forecastItems    []ForecastItem
	forecastSettings ForecastSettings
}

func NewCollections(persist Persistence, log zerolog.Logger) *Collections {
	return &Collections{
		persist:          persist,
		log:              log,
		subcategories:    map[string][]string{},
		categoryColors:   map[string]string{},
		forecastSettings: DefaultForecastSettings(),
	}
}

func (c *Collections) SetOnChange(fn func()) { c.onChange = fn }

// Load pulls every collection from local storage. Empty category lists
// fall back to the defaults; empty bank/account-type lists are derived
// from the operation history so pickers never start blank.
func (c *Collections) Load(ctx context.Context, ops []Operation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	if c.categories, err = c.persist.LoadList(ctx, ListCategories); err != nil {
		return err
	}
	if len(c.categories) == 0 {
		c.categories = append([]string{}, DefaultCategories...)
	}
	if c.banks, err = c.persist.LoadList(ctx, ListBanks); err != nil {
		return err
	}
	if len(c.banks) == 0 {
		c.banks = deriveFromHistory(ops, func(o Operation) string { return o.Bank })
	}
	if c.accountTypes, err = c.persist.LoadList(ctx, ListAccountTypes); err != nil {
		return err
	}
	if len(c.accountTypes) == 0 {
		c.accountTypes = deriveFromHistory(ops, func(o Operation) string { return o.AccountType })
	}
	if c.people, err = c.persist.LoadList(ctx, ListPeople); err != nil {
		return err
	}
	if c.subcategories, err = c.persist.LoadSubcategories(ctx); err != nil {
		return err
	}
	if c.subcategories == nil {
		c.subcategories = map[string][]string{}
	}
	if c.categoryColors, err = c.persist.LoadCategoryColors(ctx); err != nil {
		return err
	}
	if c.categoryColors == nil {
		c.categoryColors = map[string]string{}
	}
	if c.recurring, err = c.persist.LoadRecurringRules(ctx); err != nil {
		return err
	}
	rules, err := c.persist.LoadAutoCatRules(ctx)
	if err != nil {
		return err
	}
	c.autoCatRules = NormalizeAutoCatRules(rules)
	if c.forecastItems, err = c.persist.LoadForecastItems(ctx); err != nil {
		return err
	}
	if c.forecastSettings, err = c.persist.LoadForecastSettings(ctx); err != nil {
		return err
	}
	if len(c.forecastSettings.IncludeCertainty) == 0 {
		c.forecastSettings = DefaultForecastSettings()
	}
	return nil
}

func deriveFromHistory(ops []Operation, field func(Operation) string) []string {
	var values []string
	for _, o := range ops {
		values = append(values, field(o))
	}
	values = DedupeNames(values)
	sort.Strings(values)
	return values
}

// =============================================================================
// STRING LISTS
// =============================================================================

func (c *Collections) Categories() []string   { return c.snapshotList(&c.categories) }
func (c *Collections) Banks() []string        { return c.snapshotList(&c.banks) }
func (c *Collections) AccountTypes() []string { return c.snapshotList(&c.accountTypes) }
func (c *Collections) People() []string       { return c.snapshotList(&c.people) }

func (c *Collections) snapshotList(field *[]string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string{}, *field...)
}

func (c *Collections) SetCategories(ctx context.Context, v []string) {
	c.setList(ctx, ListCategories, &c.categories, v)
}
func (c *Collections) SetBanks(ctx context.Context, v []string) {
	c.setList(ctx, ListBanks, &c.banks, v)
}
func (c *Collections) SetAccountTypes(ctx context.Context, v []string) {
	c.setList(ctx, ListAccountTypes, &c.accountTypes, v)
}
func (c *Collections) SetPeople(ctx context.Context, v []string) {
	c.setList(ctx, ListPeople, &c.people, v)
}

func (c *Collections) setList(ctx context.Context, name ListName, field *[]string, v []string) {
	cleaned := DedupeNames(v)
	c.mu.Lock()
	*field = cleaned
	c.mu.Unlock()
	if err := c.persist.SaveList(ctx, name, cleaned); err != nil {
		c.log.Warn().Err(err).Str("collection", string(name)).Msg("persisting list failed")
	}
	c.notify()
}

// AddPerson appends to the roster if not already present.
func (c *Collections) AddPerson(ctx context.Context, name string) {
	name = CleanName(name)
	if name == "" {
		return
	}
	c.SetPeople(ctx, append(c.People(), name))
}

// =============================================================================
// MAPS
// =============================================================================

func (c *Collections) Subcategories() map[string][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]string, len(c.subcategories))
	for k, v := range c.subcategories {
		out[k] = append([]string{}, v...)
	}
	return out
}

func (c *Collections) SetSubcategories(ctx context.Context, m map[string][]string) {
	cleaned := make(map[string][]string, len(m))
	for cat, subs := range m {
		cat = CleanName(cat)
		if cat == "" {
			continue
		}
		cleaned[cat] = DedupeNames(subs)
	}
	c.mu.Lock()
	c.subcategories = cleaned
	c.mu.Unlock()
	if err := c.persist.SaveSubcategories(ctx, cleaned); err != nil {
		c.log.Warn().Err(err).Msg("persisting subcategories failed")
	}
	c.notify()
}

func (c *Collections) CategoryColors() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.categoryColors))
	for k, v := range c.categoryColors {
		out[k] = v
	}
	return out
}

func (c *Collections) SetCategoryColors(ctx context.Context, m map[string]string) {
	if m == nil {
		m = map[string]string{}
	}
	c.mu.Lock()
	c.categoryColors = m
	c.mu.Unlock()
	if err := c.persist.SaveCategoryColors(ctx, m); err != nil {
		c.log.Warn().Err(err).Msg("persisting category colors failed")
	}
	c.notify()
}

// =============================================================================
// RECURRING RULES
// =============================================================================

func (c *Collections) RecurringRules() []RecurringRule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]RecurringRule{}, c.recurring...)
}

func (c *Collections) SetRecurringRules(ctx context.Context, rules []RecurringRule) {
	c.mu.Lock()
	c.recurring = append([]RecurringRule{}, rules...)
	c.mu.Unlock()
	if err := c.persist.SaveRecurringRules(ctx, rules); err != nil {
		c.log.Warn().Err(err).Msg("persisting recurring rules failed")
	}
	c.notify()
}

// =============================================================================
// AUTO-CATEGORIZE RULES
// =============================================================================

func (c *Collections) AutoCatRules() []AutoCatRule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]AutoCatRule{}, c.autoCatRules...)
}

func (c *Collections) SetAutoCatRules(ctx context.Context, rules []AutoCatRule) {
	rules = NormalizeAutoCatRules(rules)
	c.mu.Lock()
	c.autoCatRules = rules
	c.mu.Unlock()
	if err := c.persist.SaveAutoCatRules(ctx, rules); err != nil {
		c.log.Warn().Err(err).Msg("persisting auto-categorize rules failed")
	}
	c.notify()
}

// =============================================================================
// FORECAST
// =============================================================================

func (c *Collections) ForecastItems() []ForecastItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]ForecastItem{}, c.forecastItems...)
}

func (c *Collections) SetForecastItems(ctx context.Context, items []ForecastItem) {
	c.mu.Lock()
	c.forecastItems = append([]ForecastItem{}, items...)
	c.mu.Unlock()
	if err := c.persist.SaveForecastItems(ctx, items); err != nil {
		c.log.Warn().Err(err).Msg("persisting forecast items failed")
	}
	c.notify()
}

// RemoveForecastItem deletes one item; returns false when absent.
func (c *Collections) RemoveForecastItem(ctx context.Context, id string) bool {
	items := c.ForecastItems()
	kept := items[:0]
	found := false
	for _, it := range items {
		if it.ID == id {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	if found {
		c.SetForecastItems(ctx, kept)
	}
	return found
}

func (c *Collections) ForecastSettings() ForecastSettings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.forecastSettings
	s.IncludeCertainty = append([]Certainty{}, s.IncludeCertainty...)
	return s
}

func (c *Collections) SetForecastSettings(ctx context.Context, s ForecastSettings) {
	if len(s.IncludeCertainty) == 0 {
		s.IncludeCertainty = append([]Certainty{}, AllCertainties...)
	}
	c.mu.Lock()
	c.forecastSettings = s
	c.mu.Unlock()
	if err := c.persist.SaveForecastSettings(ctx, s); err != nil {
		c.log.Warn().Err(err).Msg("persisting forecast settings failed")
	}
	c.notify()
}

func (c *Collections) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
