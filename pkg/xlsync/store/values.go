package store

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xlsync-go/pkg/xlsync/models"
)

// cellTypeNames maps excelize cell types to the names reported in
// models.CellContents.
var cellTypeNames = map[excelize.CellType]string{
	excelize.CellTypeUnset:        "number",
	excelize.CellTypeBool:         "bool",
	excelize.CellTypeDate:         "date",
	excelize.CellTypeError:        "error",
	excelize.CellTypeFormula:      "string",
	excelize.CellTypeInlineString: "string",
	excelize.CellTypeNumber:       "number",
	excelize.CellTypeSharedString: "string",
}

// builtInDateFormats are the built-in number format ids that display dates
// or times.
var builtInDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true,
	20: true, 21: true, 22: true, 45: true, 46: true, 47: true,
}

// valueAt returns the typed value of a cell: string, int64, float64, bool,
// time.Time, or nil for an empty cell.
func (w *Workbook) valueAt(sheet, cell string) (interface{}, error) {
	typ, err := w.f.GetCellType(sheet, cell)
	if err != nil {
		return nil, err
	}
	raw, err := w.f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, nil
		}
		return raw, nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError:
		return raw, nil
	}

	if raw == "" {
		return nil, nil
	}
	v := parseValue(raw)
	if n, ok := number(v); ok && w.isDateCell(sheet, cell) {
		if t, err := excelize.ExcelDateToTime(n, false); err == nil {
			return t, nil
		}
	}
	return v, nil
}

// contentsAt returns the stored contents of a cell.
func (w *Workbook) contentsAt(sheet, cell string) (interface{}, error) {
	value, err := w.valueAt(sheet, cell)
	if err != nil {
		return nil, err
	}
	display, err := w.f.GetCellValue(sheet, cell)
	if err != nil {
		return nil, err
	}
	formula, err := w.f.GetCellFormula(sheet, cell)
	if err != nil {
		return nil, err
	}
	typ, err := w.f.GetCellType(sheet, cell)
	if err != nil {
		return nil, err
	}

	contents := models.CellContents{
		Address: cell,
		Value:   value,
		Display: display,
		Formula: formula,
		Type:    cellTypeNames[typ],
	}
	switch {
	case formula != "":
		contents.Type = "formula"
	case value == nil:
		contents.Type = "empty"
	case contents.Type == "number":
		if _, ok := value.(time.Time); ok {
			contents.Type = "date"
		}
	}
	return contents, nil
}

// isDateCell reports whether the cell's number format displays a date.
func (w *Workbook) isDateCell(sheet, cell string) bool {
	idx, err := w.f.GetCellStyle(sheet, cell)
	if err != nil || idx == 0 {
		return false
	}
	style, err := w.f.GetStyle(idx)
	if err != nil || style == nil {
		return false
	}
	if builtInDateFormats[style.NumFmt] {
		return true
	}
	if style.CustomNumFmt == nil {
		return false
	}
	return isDateFormat(*style.CustomNumFmt)
}

// isDateFormat reports whether a custom number format contains date or time
// tokens outside of quoted literals.
func isDateFormat(format string) bool {
	var b strings.Builder
	quoted := false
	for _, r := range format {
		switch {
		case r == '"':
			quoted = !quoted
		case !quoted:
			b.WriteRune(r)
		}
	}
	f := strings.ToLower(b.String())
	for _, token := range []string{"yy", "dd", "mmm", "h:mm", "mm:ss", "d/m", "m/d"} {
		if strings.Contains(f, token) {
			return true
		}
	}
	return false
}

// parseValue attempts to parse a string value as a number.
// Returns int64 for integers, uint64 for integers past int64, float64 for
// decimals, or the original string.
func parseValue(s string) interface{} {
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return u
	}
	// Try float
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	// Return as string
	return s
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
