package summary

import (
	"sort"

	"github.com/shopspring/decimal"

	"budgetu/pkg/table"
)

// KPISet is the scalar metrics block for the filtered rows. Count counts
// transactions, including rows whose amount failed coercion; Total, Average
// and Max only see valid amounts. Average and Max are absent (Valid=false)
// when no row has a valid amount.
type KPISet struct {
	Total   decimal.Decimal     `json:"total"`
	Average decimal.NullDecimal `json:"average"`
	Max     decimal.NullDecimal `json:"max"`
	Count   int                 `json:"count"`
}

// CategoryTotal is one bar of the category breakdown.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// MonthTotal is one point of the monthly trend, keyed "YYYY-MM".
type MonthTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// Summary bundles the KPIs with the two grouped reductions.
type Summary struct {
	KPI        KPISet          `json:"kpi"`
	ByCategory []CategoryTotal `json:"by_category"`
	ByMonth    []MonthTotal    `json:"by_month"`
}

// Compute derives all metrics in one pass over the filtered rows.
// Invalid amounts count as transactions but contribute nothing to the
// totals or groupings. Categories are ordered by label ascending, months
// chronologically.
func Compute(rows []table.NormalizedRow) Summary {
	var (
		total      decimal.Decimal
		max        decimal.NullDecimal
		validCount int
		byCategory = make(map[string]decimal.Decimal)
		byMonth    = make(map[string]decimal.Decimal)
	)

	for _, r := range rows {
		if !r.Amount.Valid {
			continue
		}
		amount := r.Amount.Decimal
		total = total.Add(amount)
		validCount++
		if !max.Valid || amount.GreaterThan(max.Decimal) {
			max = decimal.NullDecimal{Decimal: amount, Valid: true}
		}
		byCategory[r.Category] = byCategory[r.Category].Add(amount)
		if r.Date.Valid {
			byMonth[r.Date.YearMonth()] = byMonth[r.Date.YearMonth()].Add(amount)
		}
	}

	var average decimal.NullDecimal
	if validCount > 0 {
		average = decimal.NullDecimal{
			Decimal: total.Div(decimal.NewFromInt(int64(validCount))),
			Valid:   true,
		}
	}

	return Summary{
		KPI: KPISet{
			Total:   total,
			Average: average,
			Max:     max,
			Count:   len(rows),
		},
		ByCategory: sortedCategories(byCategory),
		ByMonth:    sortedMonths(byMonth),
	}
}

func sortedCategories(totals map[string]decimal.Decimal) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(totals))
	for category, total := range totals {
		out = append(out, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

func sortedMonths(totals map[string]decimal.Decimal) []MonthTotal {
	out := make([]MonthTotal, 0, len(totals))
	for month, total := range totals {
		out = append(out, MonthTotal{Month: month, Total: total})
	}
	// "YYYY-MM" keys sort chronologically as plain strings.
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
