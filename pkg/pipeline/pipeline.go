package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"budgetu/pkg/config"
	"budgetu/pkg/decoder"
	"budgetu/pkg/filter"
	"budgetu/pkg/mapper"
	"budgetu/pkg/summary"
	"budgetu/pkg/table"
)

// Options is one immutable snapshot of the user's selections. Every
// recomputation takes the current Table plus an Options value and returns
// fresh derived views; nothing is cached between passes.
type Options struct {
	Mapping mapper.Mapping
	// Start and End are the raw range inputs, both set or both empty.
	// Both empty means span the data (filter.DefaultRange).
	Start string
	End   string
	// Categories restricts the allowed set; nil means every category
	// present in the normalized rows, the initial selection a user sees.
	Categories []string
}

// Result holds everything one pass derives from the immutable table.
type Result struct {
	Table    *table.Table
	Rows     []table.NormalizedRow
	Spec     filter.Spec
	Filtered []table.NormalizedRow
	Summary  summary.Summary
}

// Run executes mapper, filterer and aggregator over an already decoded
// table. It returns filter.ErrInvalidDateRange before any computation when
// the range input is malformed, and filter.ErrNoRows when the filters
// match nothing.
func Run(t *table.Table, opts Options) (*Result, error) {
	start, end, ok, err := filter.ParseRange(opts.Start, opts.End)
	if err != nil {
		return nil, err
	}

	rows := mapper.Normalize(t, opts.Mapping)
	if !ok {
		start, end = filter.DefaultRange(rows)
	}

	categories := opts.Categories
	if categories == nil {
		categories = mapper.Categories(rows)
	}

	spec := filter.NewSpec(start, end, categories)
	filtered := filter.Apply(rows, spec)
	if len(filtered) == 0 {
		return nil, filter.ErrNoRows
	}

	return &Result{
		Table:    t,
		Rows:     rows,
		Spec:     spec,
		Filtered: filtered,
		Summary:  summary.Compute(filtered),
	}, nil
}

// Processor runs the full decode-to-summary pass for file-based callers.
type Processor struct {
	config  *config.Config
	logger  *log.Logger
	decoder *decoder.Decoder
}

func NewProcessor(cfg *config.Config, logger *log.Logger) *Processor {
	return &Processor{
		config:  cfg,
		logger:  logger,
		decoder: decoder.New(logger),
	}
}

// ProcessBytes decodes an upload and runs one pipeline pass over it.
func (p *Processor) ProcessBytes(data []byte, filename string, opts Options) (*Result, error) {
	t, err := p.decoder.Decode(data, filename)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("decoded table", "filename", filename, "columns", len(t.Columns), "rows", len(t.Rows))
	return Run(t, p.withDefaults(opts))
}

// ProcessFile reads a budget export from disk and runs one pass.
func (p *Processor) ProcessFile(path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.ProcessBytes(data, filepath.Base(path), opts)
}

// withDefaults fills unset column selections from the configured defaults.
func (p *Processor) withDefaults(opts Options) Options {
	if opts.Mapping.DateColumn == "" {
		opts.Mapping.DateColumn = p.config.Defaults.DateColumn
	}
	if opts.Mapping.AmountColumn == "" {
		opts.Mapping.AmountColumn = p.config.Defaults.AmountColumn
	}
	if opts.Mapping.CategoryColumn == "" {
		opts.Mapping.CategoryColumn = p.config.Defaults.CategoryColumn
	}
	return opts
}
