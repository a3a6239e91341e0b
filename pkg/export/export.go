package export

import (
	"bytes"
	"encoding/csv"

	"budgetu/pkg/table"
)

// Derived column names appended after the original columns.
const (
	DateColumn     = "_date"
	AmountColumn   = "_amount"
	CategoryColumn = "_category"
)

// CSV serializes the filtered rows for download: every original column
// verbatim, then the three derived columns. Invalid dates and amounts
// export as empty cells, so a re-decode reproduces the same markers.
func CSV(t *table.Table, rows []table.NormalizedRow) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, 0, len(t.Columns)+3)
	header = append(header, t.Columns...)
	header = append(header, DateColumn, AmountColumn, CategoryColumn)
	_ = w.Write(header)

	for _, r := range rows {
		line := make([]string, 0, len(header))
		line = append(line, t.Rows[r.Index]...)
		amount := ""
		if r.Amount.Valid {
			amount = r.Amount.Decimal.String()
		}
		line = append(line, r.Date.String(), amount, r.Category)
		_ = w.Write(line)
	}

	w.Flush()
	return buf.Bytes()
}
