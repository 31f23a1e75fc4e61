package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xlsync-go/pkg/xlsync/models"
)

func cell(col string, row int) models.CellAddress {
	return models.CellAddress{Column: col, Row: row}
}

func saveAndReopen(t *testing.T, wb *Workbook) *Workbook {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, wb.Save(path))
	require.NoError(t, wb.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })
	return reopened
}

func TestNewWorkbookHasNoTables(t *testing.T) {
	wb := New()
	defer wb.Close()

	assert.Empty(t, wb.TableNames())
	assert.False(t, wb.HasTable("Sheet1"))
}

func TestCreateTableReplacesPlaceholder(t *testing.T) {
	wb := New()
	name, err := wb.CreateTable("Items")
	require.NoError(t, err)
	assert.Equal(t, "Items", name)
	assert.Equal(t, []string{"Items"}, wb.TableNames())

	wb = saveAndReopen(t, wb)
	assert.Equal(t, []string{"Items"}, wb.TableNames())
}

func TestCreateTableAdoptsPlaceholderName(t *testing.T) {
	wb := New()
	defer wb.Close()

	name, err := wb.CreateTable("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", name)
	assert.Equal(t, []string{"Sheet1"}, wb.File().GetSheetList())
	assert.Equal(t, []string{"Sheet1"}, wb.TableNames())
}

func TestCreateTableSanitizesAndUniquifies(t *testing.T) {
	wb := New()
	defer wb.Close()

	first, err := wb.CreateTable("a/b")
	require.NoError(t, err)
	assert.Equal(t, "a_b", first)

	second, err := wb.CreateTable("A_B")
	require.NoError(t, err)
	assert.Equal(t, "A_B (2)", second)

	assert.True(t, wb.HasTable("a_B"))
}

func TestDeleteLastTable(t *testing.T) {
	wb := New()
	defer wb.Close()

	_, err := wb.CreateTable("Sheet1")
	require.NoError(t, err)
	require.NoError(t, wb.DeleteTable("Sheet1"))
	assert.Empty(t, wb.TableNames())

	name, err := wb.CreateTable("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", name)
	assert.Equal(t, []string{"Sheet1"}, wb.File().GetSheetList())
}

func TestDeleteMissingTable(t *testing.T) {
	wb := New()
	defer wb.Close()

	err := wb.DeleteTable("nope")
	var notExist ErrSheetNotExist
	require.True(t, errors.As(err, &notExist))
	assert.Equal(t, "nope", notExist.SheetName)
}

func TestWriteAndReadValues(t *testing.T) {
	wb := New()
	_, err := wb.CreateTable("Data")
	require.NoError(t, err)

	when := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	rows := []models.TableRow{
		models.NewRow("Name", "Count", "Ratio", "Flag", "When", "Empty"),
		models.NewRow("a", 3, 0.25, true, when, nil),
	}
	require.NoError(t, wb.WriteRegion("Data", cell("B", 2), rows))

	wb = saveAndReopen(t, wb)

	used, err := wb.UsedRegion("data")
	require.NoError(t, err)
	assert.Equal(t, models.CellRange{Start: cell("B", 2), End: cell("G", 3)}, used)

	got, err := wb.ReadValues("Data", models.CellRange{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []interface{}{"Name", "Count", "Ratio", "Flag", "When", "Empty"}, got[0].Content)
	assert.Equal(t, "a", got[1].Content[0])
	assert.Equal(t, int64(3), got[1].Content[1])
	assert.Equal(t, 0.25, got[1].Content[2])
	assert.Equal(t, true, got[1].Content[3])
	require.IsType(t, time.Time{}, got[1].Content[4])
	assert.WithinDuration(t, when, got[1].Content[4].(time.Time), time.Second)
	assert.Nil(t, got[1].Content[5])
}

func TestWriteRegionOverwritesOnlyWrittenCells(t *testing.T) {
	wb := New()
	defer wb.Close()
	_, err := wb.CreateTable("T")
	require.NoError(t, err)

	require.NoError(t, wb.WriteRegion("T", cell("A", 1), []models.TableRow{
		models.NewRow("x", "y", "z"),
		models.NewRow("1", "2", "3"),
	}))
	require.NoError(t, wb.WriteRegion("T", cell("A", 1), []models.TableRow{
		models.NewRow("p", "q"),
	}))

	got, err := wb.ReadValues("T", models.CellRange{})
	require.NoError(t, err)
	assert.Equal(t, [][]interface{}{{"p", "q", "z"}, {"1", "2", "3"}}, [][]interface{}{got[0].Content, got[1].Content})
}

func TestWriteRegionErrors(t *testing.T) {
	wb := New()
	defer wb.Close()

	err := wb.WriteRegion("missing", cell("A", 1), nil)
	assert.True(t, errors.As(err, new(ErrSheetNotExist)))

	_, err = wb.CreateTable("T")
	require.NoError(t, err)
	assert.Error(t, wb.WriteRegion("T", models.CellAddress{}, []models.TableRow{models.NewRow("a")}))
}

func TestReadContents(t *testing.T) {
	wb := New()
	defer wb.Close()
	_, err := wb.CreateTable("Calc")
	require.NoError(t, err)

	f := wb.File()
	require.NoError(t, f.SetCellValue("Calc", "A1", 2))
	require.NoError(t, f.SetCellValue("Calc", "B1", "text"))
	require.NoError(t, f.SetCellFormula("Calc", "C1", "A1*2"))

	got, err := wb.ReadContents("Calc", models.CellRange{Start: cell("A", 1), End: cell("D", 1)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Content, 4)

	a := got[0].Content[0].(models.CellContents)
	assert.Equal(t, "A1", a.Address)
	assert.Equal(t, int64(2), a.Value)
	assert.Equal(t, "number", a.Type)

	b := got[0].Content[1].(models.CellContents)
	assert.Equal(t, "text", b.Value)
	assert.Equal(t, "string", b.Type)

	c := got[0].Content[2].(models.CellContents)
	assert.Equal(t, "A1*2", c.Formula)
	assert.Equal(t, "formula", c.Type)

	d := got[0].Content[3].(models.CellContents)
	assert.Equal(t, "empty", d.Type)
}

func TestReadEmptyTable(t *testing.T) {
	wb := New()
	defer wb.Close()
	_, err := wb.CreateTable("Empty")
	require.NoError(t, err)

	got, err := wb.ReadValues("Empty", models.CellRange{})
	require.NoError(t, err)
	assert.Empty(t, got)

	info, err := wb.Describe("Empty")
	require.NoError(t, err)
	assert.Equal(t, models.SheetInfo{Name: "Empty"}, info)
}

func TestResolveRange(t *testing.T) {
	wb := New()
	defer wb.Close()
	_, err := wb.CreateTable("Report")
	require.NoError(t, err)
	require.NoError(t, wb.File().SetDefinedName(&excelize.DefinedName{
		Name:     "Totals",
		RefersTo: "Report!$B$2:$C$5",
	}))
	require.NoError(t, wb.File().SetDefinedName(&excelize.DefinedName{
		Name:     "Block",
		RefersTo: "Report!$A$1:$D$10",
		Scope:    "Report",
	}))

	tests := []struct {
		table    string
		ref      string
		expected models.CellRange
		sheet    string
	}{
		{"Report", "A1:B2", models.CellRange{Start: cell("A", 1), End: cell("B", 2)}, ""},
		{"Report", "", models.CellRange{}, ""},
		{"Report", "'Q''s Data'!C3", models.CellRange{Start: cell("C", 3), End: cell("C", 3)}, "Q's Data"},
		{"Report", "totals", models.CellRange{Start: cell("B", 2), End: cell("C", 5)}, "Report"},
		{"Other", "Totals", models.CellRange{Start: cell("B", 2), End: cell("C", 5)}, "Report"},
		{"Report", "Block", models.CellRange{Start: cell("A", 1), End: cell("D", 10)}, "Report"},
		{"", "Block", models.CellRange{Start: cell("A", 1), End: cell("D", 10)}, "Report"},
	}

	for _, tt := range tests {
		r, sheet, err := wb.ResolveRange(tt.table, tt.ref)
		require.NoError(t, err, "ResolveRange(%q, %q)", tt.table, tt.ref)
		assert.Equal(t, tt.expected, r, "ResolveRange(%q, %q)", tt.table, tt.ref)
		assert.Equal(t, tt.sheet, sheet, "ResolveRange(%q, %q) sheet", tt.table, tt.ref)
	}

	_, _, err = wb.ResolveRange("Other", "Block")
	assert.True(t, errors.Is(err, ErrInvalidRange))

	_, _, err = wb.ResolveRange("Report", "not a range")
	assert.True(t, errors.Is(err, ErrInvalidRange))
}

func TestProperties(t *testing.T) {
	wb := New()
	_, err := wb.CreateTable("T")
	require.NoError(t, err)
	require.NoError(t, wb.SetProperties(models.DocProperties{Title: "Inventory", Creator: "ops"}))

	wb = saveAndReopen(t, wb)
	props, err := wb.Properties()
	require.NoError(t, err)
	assert.Equal(t, "Inventory", props.Title)
	assert.Equal(t, "ops", props.Creator)
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing.xlsx"))
	assert.True(t, errors.Is(err, ErrNotExist))

	bad := filepath.Join(dir, "bad.xlsx")
	require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0o644))
	_, err = Open(bad)
	var corrupt *CorruptError
	assert.True(t, errors.As(err, &corrupt))

	wb, created, err := OpenOrCreate(filepath.Join(dir, "new.xlsx"), true)
	require.NoError(t, err)
	assert.True(t, created)
	wb.Close()

	_, _, err = OpenOrCreate(filepath.Join(dir, "new.xlsx"), false)
	assert.True(t, errors.Is(err, ErrNotExist))
}

func TestSaveFailureLeavesFileUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	wb := New()
	defer wb.Close()
	err := wb.Save(filepath.Join(dir, "missing-dir", "book.xlsx"))
	assert.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input    string
		expected interface{}
	}{
		{"123", int64(123)},
		{"123.45", 123.45},
		{"-100", int64(-100)},
		{"18446744073709551615", uint64(18446744073709551615)},
		{"18446744073709551616", 1.8446744073709552e19},
		{"hello", "hello"},
		{"", ""},
	}

	for _, tt := range tests {
		result := parseValue(tt.input)
		if result != tt.expected {
			t.Errorf("parseValue(%q) = %v (type: %T), expected %v (type: %T)",
				tt.input, result, result, tt.expected, tt.expected)
		}
	}
}

func TestIsDateFormat(t *testing.T) {
	tests := []struct {
		format   string
		expected bool
	}{
		{"yyyy-mm-dd", true},
		{"d/m/yyyy", true},
		{"h:mm AM/PM", true},
		{"0.00", false},
		{`"dd"0`, false},
		{"#,##0", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, isDateFormat(tt.format), tt.format)
	}
}
