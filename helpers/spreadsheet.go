package helpers

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// ============================================================================
// SPREADSHEET READER: Turns xlsx / xls / csv bytes into a cell grid
// ============================================================================
// Only the first worksheet is read. The format is chosen from the file
// extension; unknown extensions are tried as xlsx.
// ============================================================================

// xlsMaxCols is the BIFF8 column limit, used when a row carries no bounds.
const xlsMaxCols = 256

// Format names a supported input format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

// DetectFormat picks the input format from a file name.
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		return FormatXLS
	case ".csv", ".txt":
		return FormatCSV
	default:
		return FormatXLSX
	}
}

// ReadRows reads the first worksheet of a spreadsheet into rows of cells.
func ReadRows(data []byte, format Format) ([][]string, error) {
	var rows [][]string
	var err error

	switch format {
	case FormatXLS:
		rows, err = readXLS(data)
	case FormatCSV:
		rows, err = readCSV(data)
	default:
		rows, err = readXLSX(data)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("worksheet is empty")
	}
	return rows, nil
}

func readXLSX(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open workbook")
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("no worksheet found")
	}

	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read worksheet %q", sheetName)
	}
	return rows, nil
}

func readXLS(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open legacy workbook")
	}
	if workbook == nil {
		return nil, errors.New("no workbook stream found")
	}
	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, errors.New("no worksheet found")
	}
	return sheetRows(int(sheet.MaxRow), func(i int) cellRow {
		if row := xlsRow(sheet, i); row != nil {
			return row
		}
		return nil
	}), nil
}

// cellRow is the part of *xls.Row the reader needs.
type cellRow interface {
	FirstCol() int
	LastCol() int
	Col(i int) string
}

// xlsRow returns nil for rows the worksheet never defined. WorkSheet.Row
// dereferences the missing row.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// sheetRows walks rows 0..maxRow into a grid. Cells keep their column
// position; missing rows come back empty and trailing blanks are dropped.
func sheetRows(maxRow int, rowAt func(i int) cellRow) [][]string {
	rows := make([][]string, 0, maxRow+1)
	for i := 0; i <= maxRow; i++ {
		row := rowAt(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}

		width := row.LastCol()
		if width <= row.FirstCol() {
			width = xlsMaxCols
		}
		cells := make([]string, width)
		for j := row.FirstCol(); j < width; j++ {
			cells[j] = row.Col(j)
		}
		for len(cells) > 0 && strings.TrimSpace(cells[len(cells)-1]) == "" {
			cells = cells[:len(cells)-1]
		}
		rows = append(rows, cells)
	}
	return rows
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.Comma = sniffDelimiter(data)

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse CSV")
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// sniffDelimiter picks ';' for spreadsheets exported with a European
// locale, ',' otherwise.
func sniffDelimiter(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	if bytes.Count(header, []byte(";")) > bytes.Count(header, []byte(",")) {
		return ';'
	}
	return ','
}
