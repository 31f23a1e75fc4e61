// Package address translates between structured cell coordinates and
// spreadsheet-style address strings ("B7", "A1:C10").
package address

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ukaji3/xlsync-go/pkg/xlsync/models"
)

var (
	cellPattern   = regexp.MustCompile(`^[A-Z]+[1-9][0-9]*$`)
	labelPattern  = regexp.MustCompile(`^[A-Z]+$`)
	columnPattern = regexp.MustCompile(`[A-Z]+`)
	rowPattern    = regexp.MustCompile(`[0-9]+`)
)

// IsValid reports whether s is a cell address in column-letter, row-number form.
func IsValid(s string) bool {
	return cellPattern.MatchString(normalize(s))
}

// ParseCell parses a cell address such as "AB12" or "$AB$12".
// The second result is false if s is not a valid address.
func ParseCell(s string) (models.CellAddress, bool) {
	s = normalize(s)
	if !cellPattern.MatchString(s) {
		return models.CellAddress{}, false
	}

	column := columnPattern.FindString(s)
	row, err := strconv.Atoi(rowPattern.FindString(s))
	if err != nil {
		return models.CellAddress{}, false
	}

	return models.CellAddress{Column: column, Row: row}, true
}

// FormatCell returns the canonical string form of a. Invalid addresses
// format to the empty string.
func FormatCell(a models.CellAddress) string {
	col := strings.ToUpper(a.Column)
	if a.Row < 1 || !labelPattern.MatchString(col) {
		return ""
	}
	return col + strconv.Itoa(a.Row)
}

// ParseRange parses a range such as "A1:C10". An empty string yields the zero
// range (the used region) and true. A single cell yields a one-cell range.
// A sheet prefix ("Sheet1!" or "'My Sheet'!") is dropped; use ParseSheetRange
// to keep it.
func ParseRange(s string) (models.CellRange, bool) {
	_, r, ok := ParseSheetRange(s)
	return r, ok
}

// ParseSheetRange is like ParseRange but also returns the worksheet named by
// a sheet prefix, unquoted. The sheet is empty if s has no prefix.
func ParseSheetRange(s string) (string, models.CellRange, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "=")
	if s == "" {
		return "", models.CellRange{}, true
	}

	var sheet string
	if idx := strings.LastIndex(s, "!"); idx >= 0 {
		sheet, s = unquoteSheet(s[:idx]), s[idx+1:]
		if sheet == "" {
			return "", models.CellRange{}, false
		}
	}

	parts := strings.Split(s, ":")
	if len(parts) > 2 {
		return "", models.CellRange{}, false
	}

	start, ok := ParseCell(parts[0])
	if !ok {
		return "", models.CellRange{}, false
	}
	end := start
	if len(parts) == 2 {
		if end, ok = ParseCell(parts[1]); !ok {
			return "", models.CellRange{}, false
		}
	}

	return sheet, Normalize(models.CellRange{Start: start, End: end}), true
}

// unquoteSheet removes the quotes of 'My Sheet' and undoubles embedded quotes.
func unquoteSheet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}

// FormatRange returns the "start:end" form of r. The zero range formats to
// the empty string.
func FormatRange(r models.CellRange) string {
	if r.IsZero() {
		return ""
	}
	start, end := FormatCell(r.Start), FormatCell(r.End)
	if start == "" || end == "" {
		return ""
	}
	return start + ":" + end
}

// Normalize reorders the corners of r so that Start is the top-left cell.
func Normalize(r models.CellRange) models.CellRange {
	c1, c2 := ColumnIndex(r.Start.Column), ColumnIndex(r.End.Column)
	r1, r2 := r.Start.Row, r.End.Row
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	return models.CellRange{
		Start: models.CellAddress{Column: ColumnLabel(c1), Row: r1},
		End:   models.CellAddress{Column: ColumnLabel(c2), Row: r2},
	}
}

// Offset returns the address moved by the given number of columns and rows.
func Offset(a models.CellAddress, cols, rows int) models.CellAddress {
	return models.CellAddress{
		Column: ColumnLabel(ColumnIndex(a.Column) + cols),
		Row:    a.Row + rows,
	}
}

// ColumnIndex converts a column label to its 1-based index (A=1, AA=27).
// It returns 0 for an invalid label.
func ColumnIndex(label string) int {
	if label == "" {
		return 0
	}
	n := 0
	for _, r := range label {
		if r < 'A' || r > 'Z' {
			return 0
		}
		n = n*26 + int(r-'A'+1)
	}
	return n
}

// ColumnLabel converts a 1-based column index to its label. It returns the
// empty string for indexes below 1.
func ColumnLabel(index int) string {
	var b []byte
	for index > 0 {
		index--
		b = append(b, byte('A'+index%26))
		index /= 26
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// normalize strips whitespace and absolute-reference markers.
func normalize(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "$", "")
}
