package mapper

import (
	"testing"

	"budgetu/pkg/table"
)

func budgetTable() *table.Table {
	return &table.Table{
		Columns: []string{"Date", "Amount", "Category"},
		Rows: []table.Record{
			{"2024-01-05", "100", "Food"},
			{"2024-02-10", "abc", "Food"},
			{"not a date", "1,234.56", ""},
		},
	}
}

func TestNormalizeAlignment(t *testing.T) {
	tbl := budgetTable()
	rows := Normalize(tbl, Mapping{DateColumn: "Date", AmountColumn: "Amount", CategoryColumn: "Category"})

	if len(rows) != len(tbl.Rows) {
		t.Fatalf("Expected %d rows, got %d", len(tbl.Rows), len(rows))
	}
	for i, r := range rows {
		if r.Index != i {
			t.Errorf("Row %d: expected index %d, got %d", i, i, r.Index)
		}
	}
}

func TestNormalizeInvalidMarkers(t *testing.T) {
	rows := Normalize(budgetTable(), Mapping{DateColumn: "Date", AmountColumn: "Amount", CategoryColumn: "Category"})

	if !rows[0].Date.Valid || !rows[0].Amount.Valid {
		t.Errorf("Row 0 should be fully valid: %+v", rows[0])
	}
	if rows[1].Amount.Valid {
		t.Errorf("Row 1 amount %q should be invalid", "abc")
	}
	if !rows[1].Date.Valid {
		t.Errorf("Row 1 date should be valid")
	}
	if rows[2].Date.Valid {
		t.Errorf("Row 2 date should be invalid")
	}
	if !rows[2].Amount.Valid || rows[2].Amount.Decimal.String() != "1234.56" {
		t.Errorf("Row 2 amount should parse with commas stripped, got %+v", rows[2].Amount)
	}
}

func TestNormalizeCategoryDefaults(t *testing.T) {
	tbl := budgetTable()

	rows := Normalize(tbl, Mapping{DateColumn: "Date", AmountColumn: "Amount", CategoryColumn: "Category"})
	if rows[0].Category != "Food" {
		t.Errorf("Expected Food, got %q", rows[0].Category)
	}
	if rows[2].Category != DefaultCategory {
		t.Errorf("Empty source category should default, got %q", rows[2].Category)
	}

	// sentinel selection overrides every row
	rows = Normalize(tbl, Mapping{DateColumn: "Date", AmountColumn: "Amount", CategoryColumn: NoCategoryColumn})
	for i, r := range rows {
		if r.Category != DefaultCategory {
			t.Errorf("Row %d: expected %q with sentinel column, got %q", i, DefaultCategory, r.Category)
		}
	}
}

func TestNormalizeUnknownColumns(t *testing.T) {
	rows := Normalize(budgetTable(), Mapping{DateColumn: "Missing", AmountColumn: "AlsoMissing", CategoryColumn: "Nope"})

	for i, r := range rows {
		if r.Date.Valid || r.Amount.Valid {
			t.Errorf("Row %d: unknown columns should produce invalid markers: %+v", i, r)
		}
		if r.Category != DefaultCategory {
			t.Errorf("Row %d: expected default category, got %q", i, r.Category)
		}
	}
}

func TestParseDateLayouts(t *testing.T) {
	cases := map[string]string{
		"2024-01-05":          "2024-01-05",
		"2024/01/05":          "2024-01-05",
		"01/05/2024":          "2024-01-05",
		"2024-01-05 13:45:00": "2024-01-05",
		"Jan 5, 2024":         "2024-01-05",
	}
	for input, expected := range cases {
		d := ParseDate(input)
		if !d.Valid || d.String() != expected {
			t.Errorf("ParseDate(%q): expected %s, got %+v", input, expected, d)
		}
	}

	for _, input := range []string{"", "yesterday", "13/13/2024"} {
		if d := ParseDate(input); d.Valid {
			t.Errorf("ParseDate(%q): expected invalid, got %+v", input, d)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"100":        "100",
		"1,234.56":   "1234.56",
		"-42.10":     "-42.1",
		" 7 ":        "7",
		"12,345,678": "12345678",
	}
	for input, expected := range cases {
		a := ParseAmount(input)
		if !a.Valid || a.Decimal.String() != expected {
			t.Errorf("ParseAmount(%q): expected %s, got %+v", input, expected, a)
		}
	}

	for _, input := range []string{"", "abc", "12.3.4"} {
		if a := ParseAmount(input); a.Valid {
			t.Errorf("ParseAmount(%q): expected invalid, got %+v", input, a)
		}
	}
}

func TestCategories(t *testing.T) {
	rows := Normalize(budgetTable(), Mapping{DateColumn: "Date", AmountColumn: "Amount", CategoryColumn: "Category"})

	got := Categories(rows)
	expected := []string{"Food", DefaultCategory}
	if len(got) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Expected %v, got %v", expected, got)
		}
	}
}
