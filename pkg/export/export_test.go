package export

import (
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"budgetu/pkg/decoder"
	"budgetu/pkg/mapper"
	"budgetu/pkg/table"
)

func TestCSV(t *testing.T) {
	tbl := &table.Table{
		Columns: []string{"When", "How Much", "What"},
		Rows: []table.Record{
			{"2024-01-05", "100", "Food"},
			{"2024-02-10", "abc", "Food"},
		},
	}
	rows := mapper.Normalize(tbl, mapper.Mapping{DateColumn: "When", AmountColumn: "How Much", CategoryColumn: "What"})

	got := string(CSV(tbl, rows))

	expected := strings.Join([]string{
		"When,How Much,What,_date,_amount,_category",
		"2024-01-05,100,Food,2024-01-05,100,Food",
		"2024-02-10,abc,Food,2024-02-10,,Food",
		"",
	}, "\n")
	if got != expected {
		t.Errorf("Unexpected export:\nExpected: %q\nGot: %q", expected, got)
	}
}

func TestCSVRoundTrip(t *testing.T) {
	tbl := &table.Table{
		Columns: []string{"Date", "Amount", "Category"},
		Rows: []table.Record{
			{"2024-01-05", "1,234.56", "Food, take-out"},
			{"2024-03-01", "50", ""},
		},
	}
	rows := mapper.Normalize(tbl, mapper.Mapping{DateColumn: "Date", AmountColumn: "Amount", CategoryColumn: "Category"})

	data := CSV(tbl, rows)

	decoded, err := decoder.New(log.Default()).Decode(data, "filtered.csv")
	if err != nil {
		t.Fatalf("Re-decode failed: %v", err)
	}

	if len(decoded.Rows) != len(tbl.Rows) {
		t.Fatalf("Expected %d rows after round trip, got %d", len(tbl.Rows), len(decoded.Rows))
	}
	for i := range tbl.Rows {
		for j, name := range tbl.Columns {
			if cell, _ := decoded.Cell(i, name); cell != tbl.Rows[i][j] {
				t.Errorf("Row %d column %s: expected %q, got %q", i, name, tbl.Rows[i][j], cell)
			}
		}
	}
	if cell, _ := decoded.Cell(0, AmountColumn); cell != "1234.56" {
		t.Errorf("Expected derived amount 1234.56, got %q", cell)
	}
	if cell, _ := decoded.Cell(1, CategoryColumn); cell != mapper.DefaultCategory {
		t.Errorf("Expected derived category %q, got %q", mapper.DefaultCategory, cell)
	}
}
