package summary

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budgetu/pkg/table"
)

func row(date string, amount string, category string) table.NormalizedRow {
	r := table.NormalizedRow{Category: category}
	if date != "" {
		t, _ := time.Parse("2006-01-02", date)
		r.Date = table.NewDate(t)
	}
	if amount != "" {
		d, _ := decimal.NewFromString(amount)
		r.Amount = decimal.NullDecimal{Decimal: d, Valid: true}
	}
	return r
}

func TestCompute(t *testing.T) {
	rows := []table.NormalizedRow{
		row("2024-01-05", "100", "Food"),
		row("2024-02-10", "", "Food"), // invalid amount, still counted
		row("2024-03-01", "50", "Rent"),
	}

	s := Compute(rows)

	if s.KPI.Count != 3 {
		t.Errorf("Expected count 3, got %d", s.KPI.Count)
	}
	if s.KPI.Total.String() != "150" {
		t.Errorf("Expected total 150, got %s", s.KPI.Total)
	}
	if !s.KPI.Average.Valid || s.KPI.Average.Decimal.String() != "75" {
		t.Errorf("Expected average 75, got %+v", s.KPI.Average)
	}
	if !s.KPI.Max.Valid || s.KPI.Max.Decimal.String() != "100" {
		t.Errorf("Expected max 100, got %+v", s.KPI.Max)
	}

	assertGroup(t, "category", groupPairs(s.ByCategory), [][2]string{{"Food", "100"}, {"Rent", "50"}})
	assertGroup(t, "month", monthPairs(s.ByMonth), [][2]string{{"2024-01", "100"}, {"2024-03", "50"}})
}

func TestComputeTotalMatchesCategories(t *testing.T) {
	rows := []table.NormalizedRow{
		row("2024-01-05", "12.50", "Food"),
		row("2024-01-08", "-3.25", "Food"),
		row("2024-02-01", "99.99", "Rent"),
		row("2024-02-02", "0.01", "Travel"),
	}

	s := Compute(rows)

	var sum decimal.Decimal
	for _, c := range s.ByCategory {
		sum = sum.Add(c.Total)
	}
	if !sum.Equal(s.KPI.Total) {
		t.Errorf("Category totals %s do not add up to %s", sum, s.KPI.Total)
	}
}

func TestComputeNoValidAmounts(t *testing.T) {
	rows := []table.NormalizedRow{
		row("2024-01-05", "", "Food"),
		row("2024-01-06", "", "Food"),
	}

	s := Compute(rows)

	if s.KPI.Count != 2 {
		t.Errorf("Expected count 2, got %d", s.KPI.Count)
	}
	if !s.KPI.Total.IsZero() {
		t.Errorf("Expected zero total, got %s", s.KPI.Total)
	}
	if s.KPI.Average.Valid || s.KPI.Max.Valid {
		t.Errorf("Average and max must be absent without valid amounts: %+v", s.KPI)
	}
	if len(s.ByCategory) != 0 || len(s.ByMonth) != 0 {
		t.Errorf("Groupings only see valid amounts, got %+v", s)
	}
}

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil)
	if s.KPI.Count != 0 || !s.KPI.Total.IsZero() || s.KPI.Average.Valid || s.KPI.Max.Valid {
		t.Errorf("Unexpected KPIs for empty input: %+v", s.KPI)
	}
	if len(s.ByCategory) != 0 || len(s.ByMonth) != 0 {
		t.Errorf("Expected empty groupings, got %+v", s)
	}
}

func TestComputeOrdering(t *testing.T) {
	rows := []table.NormalizedRow{
		row("2024-03-01", "1", "Zoo"),
		row("2024-01-01", "1", "Auto"),
		row("2023-12-01", "1", "Market"),
	}

	s := Compute(rows)

	assertGroup(t, "category", groupPairs(s.ByCategory), [][2]string{{"Auto", "1"}, {"Market", "1"}, {"Zoo", "1"}})
	assertGroup(t, "month", monthPairs(s.ByMonth), [][2]string{{"2023-12", "1"}, {"2024-01", "1"}, {"2024-03", "1"}})
}

func groupPairs(totals []CategoryTotal) [][2]string {
	out := make([][2]string, len(totals))
	for i, c := range totals {
		out[i] = [2]string{c.Category, c.Total.String()}
	}
	return out
}

func monthPairs(totals []MonthTotal) [][2]string {
	out := make([][2]string, len(totals))
	for i, m := range totals {
		out[i] = [2]string{m.Month, m.Total.String()}
	}
	return out
}

func assertGroup(t *testing.T, name string, got, expected [][2]string) {
	t.Helper()
	if len(got) != len(expected) {
		t.Errorf("%s grouping: expected %v, got %v", name, expected, got)
		return
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("%s grouping entry %d: expected %v, got %v", name, i, expected[i], got[i])
		}
	}
}
