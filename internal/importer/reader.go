package importer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet: its label, header index and data rows (the rows
// after the header, blank rows included so row positions stay stable).
type Sheet struct {
	Name   string
	Header HeaderIndex
	Rows   [][]string
}

// OpenWorkbook reads every sheet of the .xlsx file at path.
func OpenWorkbook(path string) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	return readSheets(f)
}

// ReadWorkbook reads every sheet of an .xlsx stream.
func ReadWorkbook(r io.Reader) ([]Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	return readSheets(f)
}

func readSheets(f *excelize.File) ([]Sheet, error) {
	names := f.GetSheetList()
	sheets := make([]Sheet, 0, len(names))

	for _, name := range names {
		// Raw values keep number-formatted cells such as coordinates at
		// full precision.
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}

		sheet := Sheet{Name: name}
		if len(rows) > 0 {
			sheet.Header = MakeHeaderIndex(rows[0])
			sheet.Rows = rows[1:]
		}
		sheets = append(sheets, sheet)
	}

	return sheets, nil
}
