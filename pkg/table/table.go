package table

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is one raw row of an uploaded export, aligned with Table.Columns.
// Cells are untyped text until the mapper coerces them.
type Record []string

// Table is the decoded upload: ordered unique column names plus the raw rows.
// It is built once per upload and never mutated afterwards.
type Table struct {
	Columns []string
	Rows    []Record
}

// Cell returns the value of the named column for the given row, and whether
// the column exists.
func (t *Table) Cell(row int, column string) (string, bool) {
	for i, name := range t.Columns {
		if name != column {
			continue
		}
		if row < 0 || row >= len(t.Rows) || i >= len(t.Rows[row]) {
			return "", true
		}
		return t.Rows[row][i], true
	}
	return "", false
}

// Date is a per-cell calendar date that may have failed coercion.
// Invalid dates stay in the row set so counts line up with the raw table.
type Date struct {
	Time  time.Time
	Valid bool
}

// NewDate returns a valid Date truncated to its calendar day.
func NewDate(t time.Time) Date {
	return Date{Time: t, Valid: true}
}

// YearMonth formats the date as "YYYY-MM". Empty for invalid dates.
func (d Date) YearMonth() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format("2006-01")
}

// String formats the date as "YYYY-MM-DD". Empty for invalid dates.
func (d Date) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format("2006-01-02")
}

// NormalizedRow carries the three canonical fields derived from one Record.
// Index points back at the source row in the Table so previews and exports
// can show the original cells next to the derived ones.
type NormalizedRow struct {
	Index    int
	Date     Date
	Amount   decimal.NullDecimal
	Category string
}
