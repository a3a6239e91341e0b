package decoder

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"

	"budgetu/pkg/table"
)

const maxSheetRows = 10000

func (d *Decoder) decodeXLS(data []byte) (*table.Table, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "cp1252")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	rows := workbook.ReadAllCells(maxSheetRows)
	d.logger.Debug("decoded upload", "encoding", "xls/cp1252", "records", len(rows))
	return build(rows)
}
