package refdata

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/loancore/internal/contracts"
)

// Table is a raw tabular extract: one header row plus data rows, all
// values as strings. 컬럼 이름은 소문자/trim 기준으로 조회
type Table struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

// NewTable builds a table from a header row and data rows
func NewTable(header []string, rows [][]string) *Table {
	t := &Table{Header: header, Rows: rows, index: make(map[string]int, len(header))}
	for i, name := range header {
		key := normalizeColumn(name)
		if _, exists := t.index[key]; !exists && key != "" {
			t.index[key] = i
		}
	}
	return t
}

func normalizeColumn(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Col returns the column index for name (case-insensitive)
func (t *Table) Col(name string) (int, bool) {
	i, ok := t.index[normalizeColumn(name)]
	return i, ok
}

// HasCol reports whether the column exists
func (t *Table) HasCol(name string) bool {
	_, ok := t.Col(name)
	return ok
}

// Get returns the trimmed cell value at row index for the named
// column; empty string when the column is missing or the row is short
func (t *Table) Get(row []string, name string) string {
	i, ok := t.Col(name)
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Require validates the presence of required columns and returns a
// SchemaError naming every missing one
func (t *Table) Require(source string, columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.HasCol(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &contracts.SchemaError{Source: source, Missing: missing}
	}
	return nil
}

// ReadCSVTable parses CSV content into a Table (first row = header)
func ReadCSVTable(content []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse csv: empty file")
	}
	return NewTable(records[0], records[1:]), nil
}

// ReadSheetRows returns the raw rows of one sheet of an xlsx workbook.
// 시트가 없으면 NotFoundError(kind=sheet)
func ReadSheetRows(content []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, &contracts.NotFoundError{Kind: "sheet", Name: sheet}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

// ReadFirstSheetRows returns the raw rows of the first sheet.
// Submission workbooks carry a preamble band, so the header is
// located downstream rather than assumed at row 1.
func ReadFirstSheetRows(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// ReadFirstSheetTable parses the first sheet of a workbook into a
// Table (single-sheet reference workbooks)
func ReadFirstSheetTable(content []byte) (*Table, error) {
	rows, err := ReadFirstSheetRows(content)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &contracts.SchemaError{Source: "sheet", Missing: []string{"header row"}}
	}
	return NewTable(rows[0], rows[1:]), nil
}

// ReadSheetTable parses one sheet into a Table (first row = header)
func ReadSheetTable(content []byte, sheet string) (*Table, error) {
	rows, err := ReadSheetRows(content, sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &contracts.SchemaError{Source: sheet, Missing: []string{"header row"}}
	}
	return NewTable(rows[0], rows[1:]), nil
}

// ParseFloat parses numeric cells leniently: thousands separators,
// currency/percent symbols and blanks all tolerated. 실패 시 0
func ParseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.NewReplacer(",", "", "$", "", "%", "", " ", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseInt parses integer cells leniently (truncates decimals)
func ParseInt(s string) int {
	return int(ParseFloat(s))
}

// ParseBool interprets the truthy spellings seen across the extracts
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "x", "1.0":
		return true
	}
	return false
}
