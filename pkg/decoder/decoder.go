package decoder

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"budgetu/pkg/table"
)

// ErrDecode means no candidate encoding produced parseable delimited text.
var ErrDecode = errors.New("file is not parseable as delimited text")

// ErrEmptyTable means the file parsed but holds no usable rows or columns.
var ErrEmptyTable = errors.New("file contains no data rows")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decoder turns raw upload bytes into a Table.
type Decoder struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Decoder {
	return &Decoder{
		logger: logger,
	}
}

// Decode parses the uploaded bytes. Files named *.xls go through the legacy
// Excel reader; everything else is treated as CSV and run through an ordered
// chain of text encodings until one parses. The last candidate, ISO-8859-1,
// decodes arbitrary bytes, so it only fails when the delimited structure
// itself is broken.
func (d *Decoder) Decode(data []byte, filename string) (*table.Table, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".xls") {
		return d.decodeXLS(data)
	}
	return d.decodeCSV(data)
}

func (d *Decoder) decodeCSV(data []byte) (*table.Table, error) {
	attempts := []struct {
		name   string
		reader func() (io.Reader, error)
	}{
		{"utf-8", func() (io.Reader, error) {
			// A BOM is valid UTF-8, but leaving it in place corrupts the
			// first column name; defer to the signature-aware attempt.
			if bytes.HasPrefix(data, utf8BOM) {
				return nil, fmt.Errorf("input starts with a byte order mark")
			}
			if !utf8.Valid(data) {
				return nil, fmt.Errorf("input is not valid utf-8")
			}
			return bytes.NewReader(data), nil
		}},
		{"utf-8-sig", func() (io.Reader, error) {
			trimmed := bytes.TrimPrefix(data, utf8BOM)
			if !utf8.Valid(trimmed) {
				return nil, fmt.Errorf("input is not valid utf-8")
			}
			return bytes.NewReader(trimmed), nil
		}},
		{"latin-1", func() (io.Reader, error) {
			return transform.NewReader(bytes.NewReader(data), charmap.ISO8859_1.NewDecoder()), nil
		}},
	}

	var lastErr error
	for _, attempt := range attempts {
		src, err := attempt.reader()
		if err != nil {
			d.logger.Debug("encoding rejected", "encoding", attempt.name, "error", err)
			lastErr = err
			continue
		}
		records, err := csv.NewReader(src).ReadAll()
		if err != nil {
			d.logger.Debug("csv parse failed", "encoding", attempt.name, "error", err)
			lastErr = err
			continue
		}
		d.logger.Debug("decoded upload", "encoding", attempt.name, "records", len(records))
		return build(records)
	}

	return nil, fmt.Errorf("%w: %v", ErrDecode, lastErr)
}

// build assembles header + data records into a Table, uniquifying duplicate
// column names with numeric suffixes so lookups stay unambiguous.
func build(records [][]string) (*table.Table, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, ErrEmptyTable
	}

	columns := uniqueColumns(records[0])
	rows := make([]table.Record, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(table.Record, len(columns))
		copy(row, rec)
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	return &table.Table{Columns: columns, Rows: rows}, nil
}

func uniqueColumns(header []string) []string {
	seen := make(map[string]bool, len(header))
	columns := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if seen[name] {
			// keep counting up until the suffixed form is itself free,
			// in case the header already contains one
			base := name
			for n := 1; ; n++ {
				name = fmt.Sprintf("%s.%d", base, n)
				if !seen[name] {
					break
				}
			}
		}
		seen[name] = true
		columns[i] = name
	}
	return columns
}
