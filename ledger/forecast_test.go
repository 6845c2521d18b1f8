package ledger_test

import (
	"testing"
	"time"

	"github.com/statera/budget-engine/ledger"
)

func forecastItem(id string, kind ledger.Kind, amount float64, date ledger.Day, certainty ledger.Certainty) ledger.ForecastItem {
	return ledger.ForecastItem{
		ID: id, Title: "item " + id, Kind: kind,
		Amount: dec(amount), Date: date, Certainty: certainty,
	}
}

// =============================================================================
// PROJECTION
// =============================================================================

func TestComputeProjection_EndOfMonthBalance(t *testing.T) {
	// GIVEN: balance 1000 today, a certain 200 expense later this month
	//        and a monthly 100 income rule due before month end
	// THEN: projected end = 1000 - 200 + 100

	today := day(2025, time.August, 10)
	ops := []ledger.Operation{op(ledger.KindIncome, 1000, day(2025, time.August, 1))}
	items := []ledger.ForecastItem{
		forecastItem("f1", ledger.KindExpense, 200, day(2025, time.August, 20), ledger.CertaintyCertain),
	}
	rules := []ledger.RecurringRule{{
		ID: "pay", Title: "Payday", Kind: ledger.KindIncome, Amount: dec(100),
		Frequency: ledger.FreqMonthly, NextDate: day(2025, time.August, 25),
	}}

	p := ledger.ComputeProjection(ops, items, rules, ledger.DefaultForecastSettings(), today)

	if !p.BalanceToday.Equal(dec(1000)) {
		t.Errorf("expected balance today 1000, got %v", p.BalanceToday)
	}
	if !p.ProjectedEnd.Equal(dec(900)) {
		t.Errorf("expected projected end 900, got %v", p.ProjectedEnd)
	}
}

func TestComputeProjection_CertaintyFilter(t *testing.T) {
	// GIVEN: settings including only "certain" items
	// THEN: probable and optional items are excluded from the delta

	today := day(2025, time.August, 10)
	items := []ledger.ForecastItem{
		forecastItem("f1", ledger.KindExpense, 100, day(2025, time.August, 20), ledger.CertaintyCertain),
		forecastItem("f2", ledger.KindExpense, 50, day(2025, time.August, 21), ledger.CertaintyProbable),
		forecastItem("f3", ledger.KindExpense, 25, day(2025, time.August, 22), ledger.CertaintyOptional),
	}
	settings := ledger.ForecastSettings{IncludeCertainty: []ledger.Certainty{ledger.CertaintyCertain}}

	p := ledger.ComputeProjection(nil, items, nil, settings, today)

	if !p.ItemsDelta.Equal(dec(-100)) {
		t.Errorf("expected items delta -100, got %v", p.ItemsDelta)
	}
	if len(p.Items) != 1 {
		t.Errorf("expected 1 included item, got %d", len(p.Items))
	}
}

func TestComputeProjection_UntaggedItemCountsAsCertain(t *testing.T) {
	today := day(2025, time.August, 10)
	items := []ledger.ForecastItem{
		forecastItem("f1", ledger.KindExpense, 100, day(2025, time.August, 20), ""),
	}
	settings := ledger.ForecastSettings{IncludeCertainty: []ledger.Certainty{ledger.CertaintyCertain}}

	p := ledger.ComputeProjection(nil, items, nil, settings, today)
	if !p.ItemsDelta.Equal(dec(-100)) {
		t.Errorf("untagged items default to certain, got delta %v", p.ItemsDelta)
	}
}

func TestComputeProjection_MaterializedOccurrenceNotDoubleCounted(t *testing.T) {
	// GIVEN: a recurring expense whose August occurrence was already
	//        materialized into a real operation
	// THEN: the projection excludes it; rent never counts twice

	today := day(2025, time.August, 10)
	ops := []ledger.Operation{
		{ID: "m", Kind: ledger.KindExpense, Amount: dec(800),
			Date: day(2025, time.August, 15), RecurringID: "rent"},
	}
	rules := []ledger.RecurringRule{{
		ID: "rent", Title: "Rent", Kind: ledger.KindExpense, Amount: dec(800),
		Frequency: ledger.FreqMonthly, NextDate: day(2025, time.August, 15),
	}}

	p := ledger.ComputeProjection(ops, nil, rules, ledger.DefaultForecastSettings(), today)
	if !p.RecurringDelta.IsZero() {
		t.Errorf("expected zero recurring delta, got %v", p.RecurringDelta)
	}
	if len(p.Recurring) != 0 {
		t.Errorf("expected no previewed occurrences, got %d", len(p.Recurring))
	}
}

func TestComputeProjection_BelowThresholdAlert(t *testing.T) {
	today := day(2025, time.August, 10)
	ops := []ledger.Operation{op(ledger.KindIncome, 100, day(2025, time.August, 1))}
	items := []ledger.ForecastItem{
		forecastItem("f1", ledger.KindExpense, 80, day(2025, time.August, 20), ledger.CertaintyCertain),
	}
	settings := ledger.DefaultForecastSettings()
	settings.AlertThreshold = dec(50)

	p := ledger.ComputeProjection(ops, items, nil, settings, today)
	if !p.BelowThreshold {
		t.Error("projected 20 is below the 50 threshold, alert expected")
	}
}

// =============================================================================
// CONVERSION
// =============================================================================

func TestOperationFromForecast(t *testing.T) {
	it := forecastItem("f1", ledger.KindExpense, 120, day(2025, time.September, 1), ledger.CertaintyProbable)
	it.Category = "Leisure"

	in := ledger.OperationFromForecast(it)
	if in.Kind != ledger.KindExpense || !in.Amount.Equal(dec(120)) {
		t.Error("conversion must carry kind and amount")
	}
	if in.Note != it.Title || in.Category != "Leisure" {
		t.Error("conversion must carry title as note and the category")
	}
}
