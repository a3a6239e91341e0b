package job

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"budgetu/pkg/mapper"
	"budgetu/pkg/pipeline"
)

// Report is one entry of a job manifest: which file to summarize, how its
// columns map to the canonical fields, and which filters to apply.
type Report struct {
	File           string   `yaml:"file"`
	DateColumn     string   `yaml:"date_column"`
	AmountColumn   string   `yaml:"amount_column"`
	CategoryColumn string   `yaml:"category_column"`
	Start          string   `yaml:"start"`
	End            string   `yaml:"end"`
	Categories     []string `yaml:"categories"`
	Output         string   `yaml:"output"`
}

// Job is a YAML manifest listing report runs for the batch CLI.
type Job struct {
	Reports []Report `yaml:"reports"`
}

// Load reads a job manifest from a YAML file.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}

	var j Job
	if err := yaml.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if len(j.Reports) == 0 {
		return nil, fmt.Errorf("job has no reports")
	}
	return &j, nil
}

// Print writes a short preview of the manifest to stdout.
func (j *Job) Print() {
	for i, r := range j.Reports {
		fmt.Printf("[%d] file=%s date=%s amount=%s category=%s\n", i+1, r.File, r.DateColumn, r.AmountColumn, r.CategoryColumn)
	}
}

// Options converts a report entry into one pipeline pass configuration.
func (r *Report) Options() pipeline.Options {
	return pipeline.Options{
		Mapping: mapper.Mapping{
			DateColumn:     r.DateColumn,
			AmountColumn:   r.AmountColumn,
			CategoryColumn: r.CategoryColumn,
		},
		Start:      r.Start,
		End:        r.End,
		Categories: r.Categories,
	}
}
