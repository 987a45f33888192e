package models

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
	"golang.org/x/text/width"
)

// RawFile is an uploaded export held in memory, so it can be read any number of times.
type RawFile struct {
	Name string
	Data []byte
}

// Table is a parsed sheet: one header row plus data rows.
// RowNumbers[i] is the 1-based row of Rows[i] in the source sheet.
type Table struct {
	Name       string
	Header     []string
	Rows       [][]string
	RowNumbers []int

	index map[string]int
}

var zipMagic = []byte("PK\x03\x04")

func NewTable(name string, header []string, rows [][]string, rowNumbers []int) *Table {
	t := &Table{
		Name:       name,
		Header:     make([]string, len(header)),
		Rows:       rows,
		RowNumbers: rowNumbers,
		index:      make(map[string]int, len(header)),
	}
	for i, h := range header {
		h = NormalizeHeader(h)
		t.Header[i] = h
		if h == "" {
			continue
		}
		// first occurrence wins for duplicated headers
		if _, ok := t.index[h]; !ok {
			t.index[h] = i
		}
	}
	if t.RowNumbers == nil {
		t.RowNumbers = make([]int, len(rows))
		for i := range rows {
			t.RowNumbers[i] = i + 2
		}
	}
	return t
}

func (t *Table) Len() int {
	return len(t.Rows)
}

func (t *Table) Column(name string) (int, bool) {
	idx, ok := t.index[NormalizeHeader(name)]
	return idx, ok
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Cell returns the trimmed cell text, or "" when the row is shorter than the header.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][col])
}

func (t *Table) Value(row int, name string) string {
	col, ok := t.Column(name)
	if !ok {
		return ""
	}
	return t.Cell(row, col)
}

func (t *Table) RowNumber(row int) int {
	if row < 0 || row >= len(t.RowNumbers) {
		return 0
	}
	return t.RowNumbers[row]
}

// NormalizeHeader trims a header cell, drops a UTF-8 BOM and folds full-width forms,
// so "商品总价（元）" and "商品总价(元)" name the same column.
func NormalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = width.Fold.String(s)
	return strings.TrimSpace(s)
}

func DetectFormat(file RawFile) FileFormat {
	if bytes.HasPrefix(file.Data, zipMagic) {
		return FileFormatXlsx
	}
	switch strings.ToLower(filepath.Ext(file.Name)) {
	case ".xlsx", ".xlsm":
		return FileFormatXlsx
	}
	return FileFormatCsv
}

// ReadHeader returns the normalized header row of the first sheet without parsing the rest.
func ReadHeader(file RawFile) ([]string, error) {
	var (
		header []string
		err    error
	)
	switch DetectFormat(file) {
	case FileFormatXlsx:
		header, err = readXlsxHeader(file.Data)
	default:
		header, err = readCsvHeader(file.Data)
	}
	if err != nil {
		return nil, &UnreadableFileError{File: file.Name, Err: err}
	}
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = NormalizeHeader(h)
	}
	return out, nil
}

// ReadTable parses the first sheet of an xlsx workbook or a CSV file.
// Leading blank rows are skipped; the first non-blank row is the header; blank data rows are dropped.
func ReadTable(file RawFile) (*Table, error) {
	var (
		rows       [][]string
		rowNumbers []int
		err        error
	)
	switch DetectFormat(file) {
	case FileFormatXlsx:
		rows, rowNumbers, err = readXlsxRows(file.Data)
	default:
		rows, rowNumbers, err = readCsvRows(file.Data)
	}
	if err != nil {
		return nil, &UnreadableFileError{File: file.Name, Err: err}
	}

	headerAt := -1
	for i, row := range rows {
		if !isBlankRow(row) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, &UnreadableFileError{File: file.Name, Err: errors.New("no header row")}
	}

	data := make([][]string, 0, len(rows)-headerAt-1)
	numbers := make([]int, 0, len(rows)-headerAt-1)
	for i := headerAt + 1; i < len(rows); i++ {
		if isBlankRow(rows[i]) {
			continue
		}
		data = append(data, rows[i])
		numbers = append(numbers, rowNumbers[i])
	}
	return NewTable(file.Name, rows[headerAt], data, numbers), nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func openWorkbook(data []byte) (*excelize.File, string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, "", fmt.Errorf("failed to open Excel file: %w", err)
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, "", errors.New("workbook has no sheets")
	}
	return f, sheets[0], nil
}

func readXlsxHeader(data []byte) ([]string, error) {
	f, sheet, err := openWorkbook(data)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, err
		}
		if !isBlankRow(cols) {
			return cols, nil
		}
	}
	if err := rows.Error(); err != nil {
		return nil, err
	}
	return nil, errors.New("no header row")
}

func readXlsxRows(data []byte) ([][]string, []int, error) {
	f, sheet, err := openWorkbook(data)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read sheet: %w", err)
	}
	numbers := make([]int, len(rows))
	for i := range rows {
		numbers[i] = i + 1
	}
	return rows, numbers, nil
}

// csvReader decodes UTF-8 (with or without BOM) as is and anything else as GB18030,
// which is what spreadsheet tools on Chinese-locale Windows save CSV as.
func csvReader(data []byte) *csv.Reader {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	var r io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		r = transform.NewReader(r, simplifiedchinese.GB18030.NewDecoder())
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

func readCsvHeader(data []byte) ([]string, error) {
	reader := csvReader(data)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil, errors.New("no header row")
		}
		if err != nil {
			return nil, err
		}
		if !isBlankRow(record) {
			return record, nil
		}
	}
}

func readCsvRows(data []byte) ([][]string, []int, error) {
	reader := csvReader(data)
	var (
		rows    [][]string
		numbers []int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, record)
		numbers = append(numbers, line)
	}
	return rows, numbers, nil
}
