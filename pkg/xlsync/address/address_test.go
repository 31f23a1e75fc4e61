package address

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/xlsync-go/pkg/xlsync/models"
)

func TestParseCell(t *testing.T) {
	tests := []struct {
		input    string
		expected models.CellAddress
		ok       bool
	}{
		{"A1", models.CellAddress{Column: "A", Row: 1}, true},
		{"Z99", models.CellAddress{Column: "Z", Row: 99}, true},
		{"AB12", models.CellAddress{Column: "AB", Row: 12}, true},
		{"$C$7", models.CellAddress{Column: "C", Row: 7}, true},
		{" D4 ", models.CellAddress{Column: "D", Row: 4}, true},
		{"", models.CellAddress{}, false},
		{"A0", models.CellAddress{}, false},
		{"1A", models.CellAddress{}, false},
		{"a1", models.CellAddress{}, false},
		{"A1B", models.CellAddress{}, false},
		{"A-1", models.CellAddress{}, false},
	}

	for _, tt := range tests {
		result, ok := ParseCell(tt.input)
		assert.Equal(t, tt.ok, ok, "ParseCell(%q) ok", tt.input)
		assert.Equal(t, tt.expected, result, "ParseCell(%q)", tt.input)
	}
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "A1", FormatCell(models.CellAddress{Column: "A", Row: 1}))
	assert.Equal(t, "AA10", FormatCell(models.CellAddress{Column: "aa", Row: 10}))
	assert.Equal(t, "", FormatCell(models.CellAddress{Column: "A", Row: 0}))
	assert.Equal(t, "", FormatCell(models.CellAddress{Column: "A1", Row: 1}))
	assert.Equal(t, "", FormatCell(models.CellAddress{}))
}

func TestCellRoundTrip(t *testing.T) {
	for col := 1; col <= ColumnIndex("ZZZ"); col++ {
		for _, row := range []int{1, 2, 9, 10, 99, 1048576} {
			s := ColumnLabel(col) + strconv.Itoa(row)
			a, ok := ParseCell(s)
			require.True(t, ok, s)
			require.Equal(t, s, FormatCell(a))
		}
	}
}

func TestColumnIndex(t *testing.T) {
	tests := []struct {
		label string
		index int
	}{
		{"A", 1},
		{"Z", 26},
		{"AA", 27},
		{"AZ", 52},
		{"BA", 53},
		{"ZZ", 702},
		{"AAA", 703},
		{"XFD", 16384},
		{"ZZZ", 18278},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.index, ColumnIndex(tt.label), tt.label)
		assert.Equal(t, tt.label, ColumnLabel(tt.index), tt.index)
	}

	assert.Equal(t, 0, ColumnIndex(""))
	assert.Equal(t, 0, ColumnIndex("a"))
	assert.Equal(t, "", ColumnLabel(0))
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"A1:C3", "A1:C3", true},
		{"C3:A1", "A1:C3", true},
		{"C1:A3", "A1:C3", true},
		{"$A$1:$D$10", "A1:D10", true},
		{"Sheet1!$A$1:$B$2", "A1:B2", true},
		{"'My Sheet'!B2:C4", "B2:C4", true},
		{"B2", "B2:B2", true},
		{"", "", true},
		{"   ", "", true},
		{"A1:", "", false},
		{"A1:B2:C3", "", false},
		{"foo", "", false},
	}

	for _, tt := range tests {
		r, ok := ParseRange(tt.input)
		assert.Equal(t, tt.ok, ok, "ParseRange(%q) ok", tt.input)
		assert.Equal(t, tt.expected, FormatRange(r), "ParseRange(%q)", tt.input)
	}
}

func TestParseSheetRange(t *testing.T) {
	tests := []struct {
		input    string
		sheet    string
		expected string
		ok       bool
	}{
		{"A1:B2", "", "A1:B2", true},
		{"Sheet2!$A$1:$A$1", "Sheet2", "A1:A1", true},
		{"=Sheet2!$A$1", "Sheet2", "A1:A1", true},
		{"'My Sheet'!B2:C4", "My Sheet", "B2:C4", true},
		{"'Bob''s'!C1", "Bob's", "C1:C1", true},
		{"!A1", "", "", false},
		{"Sheet2!foo", "", "", false},
	}

	for _, tt := range tests {
		sheet, r, ok := ParseSheetRange(tt.input)
		assert.Equal(t, tt.ok, ok, "ParseSheetRange(%q) ok", tt.input)
		assert.Equal(t, tt.sheet, sheet, "ParseSheetRange(%q) sheet", tt.input)
		assert.Equal(t, tt.expected, FormatRange(r), "ParseSheetRange(%q)", tt.input)
	}
}

func TestEmptyRangeIsUsedRegionSentinel(t *testing.T) {
	r, ok := ParseRange("")
	require.True(t, ok)
	assert.True(t, r.IsZero())
}

func TestOffset(t *testing.T) {
	a := models.CellAddress{Column: "Z", Row: 5}
	assert.Equal(t, models.CellAddress{Column: "AB", Row: 7}, Offset(a, 2, 2))
	assert.Equal(t, a, Offset(a, 0, 0))
}
