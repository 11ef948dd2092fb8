package dataset

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// parseExcel reads the first sheet of a workbook. Compound files are
// Excel 97-2003 workbooks; everything else is opened as OOXML.
func parseExcel(data []byte) ([]string, [][]string, error) {
	if isCompoundFile(data) {
		return parseBIFF(data)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return sheetRecords(rows)
}

// sheetRecords splits worksheet rows into a header and records. The first
// row is the header; rows wider than it extend it with unnamed columns.
func sheetRecords(rows [][]string) ([]string, [][]string, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, nil, errNoColumns
	}

	header := append([]string(nil), rows[0]...)
	records := rows[1:]
	for _, rec := range records {
		for len(header) < len(rec) {
			header = append(header, "")
		}
	}
	return header, records, nil
}
