package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	apperrors "nomora-backend/internal/errors"
)

// Table is a CSV file read fully into memory
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string

	index map[string]int
}

// NewTable builds a Table and indexes its headers
func NewTable(name string, headers []string, rows [][]string) *Table {
	t := &Table{Name: name, Headers: headers, Rows: rows}
	t.index = make(map[string]int, len(headers))
	for i, h := range headers {
		key := headerKey(h)
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
	return t
}

// Column returns the index of the first header matching any of the names.
// Matching ignores case and surrounding whitespace.
func (t *Table) Column(names ...string) (int, bool) {
	for _, n := range names {
		if idx, ok := t.index[headerKey(n)]; ok {
			return idx, true
		}
	}
	return -1, false
}

// Cell returns the trimmed value at row/col, empty when the row is short
func (t *Table) Cell(row, col int) string {
	if col < 0 || row >= len(t.Rows) || col >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][col])
}

func headerKey(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// ReadTable reads a CSV stream. The first record is the header.
// When the header cannot be read with a comma separator the stream is
// retried with ';'.
func ReadTable(name string, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewDataError(name, "read failed", err)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	headers, rows, err := readRecords(data, ',')
	if err != nil || len(headers) < 2 {
		semiHeaders, semiRows, semiErr := readRecords(data, ';')
		if semiErr == nil && len(semiHeaders) > len(headers) {
			headers, rows, err = semiHeaders, semiRows, nil
		}
	}
	if err != nil {
		return nil, apperrors.NewDataError(name, "malformed csv", err)
	}

	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}
	return NewTable(name, headers, rows), nil
}

func readRecords(data []byte, comma rune) ([]string, [][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = comma
	reader.FieldsPerRecord = -1 // Row width is checked per column on access
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read headers: %w", err)
	}

	rows := [][]string{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if isBlank(record) {
			continue
		}
		rows = append(rows, record)
	}
	return headers, rows, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
