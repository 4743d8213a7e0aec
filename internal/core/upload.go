package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFile is returned for bulk files that are neither CSV nor XLSX.
	ErrUnsupportedFile = errors.New("unsupported file type: upload a .csv or .xlsx file")

	// ErrMissingColumns is returned when no header row names both columns.
	ErrMissingColumns = errors.New("missing required column: file needs 'name' and 'website' headers")

	// ErrEmptyFile is returned for files without data.
	ErrEmptyFile = errors.New("empty file")
)

// MaxHeaderSearchRows is how many leading rows are scanned for the header.
const MaxHeaderSearchRows = 10

var (
	nameHeaders    = []string{"name", "company name", "company"}
	websiteHeaders = []string{"website", "url", "web site", "company website"}
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseBulkFile reads candidates from a CSV or XLSX bulk file. The format is
// chosen by the file extension. Header matching is case-insensitive and the
// header may be preceded by a few title rows. Blank rows are dropped; rows
// with one empty cell are kept so the caller can report them as skipped.
func ParseBulkFile(fileName string, r io.Reader) ([]Candidate, error) {
	var (
		records [][]string
		lines   []int
		err     error
	)

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		records, lines, err = readCSV(r)
	case ".xlsx":
		records, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%s: %w", fileName, ErrUnsupportedFile)
	}
	if err != nil {
		return nil, err
	}

	return candidatesFromRecords(records, lines)
}

func readCSV(r io.Reader) ([][]string, []int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, ErrEmptyFile
	}

	return parseCSV(sanitizeUTF8(data))
}

// sanitizeUTF8 replaces invalid byte sequences with U+FFFD so spreadsheet
// exports in legacy encodings still parse.
func sanitizeUTF8(data []byte) []byte {
	return bytes.ToValidUTF8(data, []byte("\uFFFD"))
}

// parseCSV returns the records and the 1-based source line of each one.
// encoding/csv skips blank lines, so positions cannot be derived from the
// record index.
func parseCSV(data []byte) ([][]string, []int, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var (
		records [][]string
		lines   []int
	)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("invalid csv: %w", err)
		}
		line, _ := r.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}
	return records, lines, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// candidatesFromRecords maps rows below the header to candidates. lines holds
// the source line of each record; when nil, a record's line is its index+1.
func candidatesFromRecords(records [][]string, lines []int) ([]Candidate, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	headerRow, nameIdx, websiteIdx := findHeader(records)
	if headerRow < 0 {
		return nil, ErrMissingColumns
	}

	var out []Candidate
	for i := headerRow + 1; i < len(records); i++ {
		row := records[i]
		if isEmptyRow(row) {
			continue
		}
		line := i + 1
		if lines != nil {
			line = lines[i]
		}
		out = append(out, Candidate{
			Line:    line,
			Name:    cellAt(row, nameIdx),
			Website: cellAt(row, websiteIdx),
		})
	}
	return out, nil
}

// findHeader returns the header row index and the column positions of name
// and website, or -1 when no row within MaxHeaderSearchRows has both.
func findHeader(records [][]string) (row, nameIdx, websiteIdx int) {
	limit := min(len(records), MaxHeaderSearchRows)

	for i := 0; i < limit; i++ {
		nameIdx, websiteIdx = -1, -1
		for j, cell := range records[i] {
			h := strings.ToLower(CleanCell(cell))
			if nameIdx < 0 && containsString(nameHeaders, h) {
				nameIdx = j
			} else if websiteIdx < 0 && containsString(websiteHeaders, h) {
				websiteIdx = j
			}
		}
		if nameIdx >= 0 && websiteIdx >= 0 {
			return i, nameIdx, websiteIdx
		}
	}
	return -1, -1, -1
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return CleanCell(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// CleanCell trims whitespace and strips spreadsheet formula wrappers such as
// ="value" and surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}
