package mapper

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"budgetu/pkg/table"
)

// NoCategoryColumn is the sentinel selection meaning the upload has no
// category column; every row then falls back to DefaultCategory.
const NoCategoryColumn = "(none)"

// DefaultCategory labels rows whose source category is absent or empty.
const DefaultCategory = "Uncategorized"

// Mapping is the user's column selection, one immutable snapshot per pass.
type Mapping struct {
	DateColumn     string
	AmountColumn   string
	CategoryColumn string
}

// dateLayouts are tried in order for each date cell. Month-first slash
// dates win over day-first when both parse, matching the source system's
// coercion.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01-02-2006",
	"02.01.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
}

// Normalize derives the three canonical fields for every row of the table.
// Coercion failures become per-cell invalid markers, never errors, so the
// output always has exactly one entry per table row.
func Normalize(t *table.Table, m Mapping) []table.NormalizedRow {
	rows := make([]table.NormalizedRow, len(t.Rows))
	for i := range t.Rows {
		dateCell, _ := t.Cell(i, m.DateColumn)
		amountCell, _ := t.Cell(i, m.AmountColumn)

		rows[i] = table.NormalizedRow{
			Index:    i,
			Date:     ParseDate(dateCell),
			Amount:   ParseAmount(amountCell),
			Category: category(t, i, m.CategoryColumn),
		}
	}
	return rows
}

// ParseDate coerces a raw cell to a calendar date, trying each known layout.
func ParseDate(cell string) table.Date {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return table.Date{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return table.NewDate(t)
		}
	}
	return table.Date{}
}

// ParseAmount coerces a raw cell to a decimal, stripping thousands commas.
func ParseAmount(cell string) decimal.NullDecimal {
	cell = strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if cell == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(cell)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

func category(t *table.Table, row int, column string) string {
	if column == NoCategoryColumn || column == "" {
		return DefaultCategory
	}
	cell, ok := t.Cell(row, column)
	if !ok || strings.TrimSpace(cell) == "" {
		return DefaultCategory
	}
	return cell
}

// Categories returns the distinct category values in first-appearance order,
// the initial selection offered to the user.
func Categories(rows []table.NormalizedRow) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		if !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	return out
}
