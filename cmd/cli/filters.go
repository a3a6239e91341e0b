package main

import (
	"fmt"

	"budgetu/pkg/mapper"
	"budgetu/pkg/pipeline"
)

type filters struct {
	dateCol     string
	amountCol   string
	categoryCol string
	start       string
	end         string
	categories  []string
}

func (f *filters) toOptions() pipeline.Options {
	var categories []string
	if len(f.categories) > 0 {
		categories = f.categories
	}
	return pipeline.Options{
		Mapping: mapper.Mapping{
			DateColumn:     f.dateCol,
			AmountColumn:   f.amountCol,
			CategoryColumn: f.categoryCol,
		},
		Start:      f.start,
		End:        f.end,
		Categories: categories,
	}
}

func printSummary(result *pipeline.Result) {
	kpi := result.Summary.KPI

	average := "n/a"
	if kpi.Average.Valid {
		average = kpi.Average.Decimal.StringFixed(2)
	}
	max := "n/a"
	if kpi.Max.Valid {
		max = kpi.Max.Decimal.StringFixed(2)
	}

	fmt.Printf("Range:        %s .. %s\n", result.Spec.Start.Format("2006-01-02"), result.Spec.End.Format("2006-01-02"))
	fmt.Printf("Transactions: %d\n", kpi.Count)
	fmt.Printf("Total:        %s\n", kpi.Total.StringFixed(2))
	fmt.Printf("Average:      %s\n", average)
	fmt.Printf("Max:          %s\n", max)

	fmt.Println("By category:")
	for _, c := range result.Summary.ByCategory {
		fmt.Printf("  %-30s %s\n", c.Category, c.Total.StringFixed(2))
	}

	fmt.Println("By month:")
	for _, m := range result.Summary.ByMonth {
		fmt.Printf("  %-30s %s\n", m.Month, m.Total.StringFixed(2))
	}
}
