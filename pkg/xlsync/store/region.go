package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xlsync-go/pkg/xlsync/address"
	"github.com/ukaji3/xlsync-go/pkg/xlsync/models"
)

// ErrInvalidRange indicates a range string that is neither an address range
// nor a defined name of the workbook.
var ErrInvalidRange = errors.New("range is not in a valid spreadsheet format")

// WriteRegion writes rows into table with the first value at start. Cells
// covered by rows are overwritten; cells outside are left as they are.
func (w *Workbook) WriteRegion(table string, start models.CellAddress, rows []models.TableRow) error {
	sheet, ok := w.lookup(table)
	if !ok {
		return ErrSheetNotExist{SheetName: table}
	}

	col, row, err := excelize.CellNameToCoordinates(address.FormatCell(start))
	if err != nil {
		return fmt.Errorf("starting cell: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(col, row+i)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(r.Content))
		for j, v := range r.Content {
			if c, ok := v.(models.CellContents); ok {
				v = c.Value
			}
			values[j] = v
		}
		if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row+i, err)
		}
	}
	return nil
}

// ReadValues returns the typed values of the cells in r, one row per sheet row.
func (w *Workbook) ReadValues(table string, r models.CellRange) ([]models.TableRow, error) {
	return w.readRegion(table, r, w.valueAt)
}

// ReadContents returns the stored contents of the cells in r as
// models.CellContents values.
func (w *Workbook) ReadContents(table string, r models.CellRange) ([]models.TableRow, error) {
	return w.readRegion(table, r, w.contentsAt)
}

func (w *Workbook) readRegion(table string, r models.CellRange, read func(sheet, cell string) (interface{}, error)) ([]models.TableRow, error) {
	sheet, ok := w.lookup(table)
	if !ok {
		return nil, ErrSheetNotExist{SheetName: table}
	}
	if r.IsZero() {
		used, err := w.UsedRegion(sheet)
		if err != nil {
			return nil, err
		}
		if used.IsZero() {
			return nil, nil
		}
		r = used
	}
	r = address.Normalize(r)

	c1, c2 := address.ColumnIndex(r.Start.Column), address.ColumnIndex(r.End.Column)
	var rows []models.TableRow
	for rowNum := r.Start.Row; rowNum <= r.End.Row; rowNum++ {
		content := make([]interface{}, 0, c2-c1+1)
		for col := c1; col <= c2; col++ {
			cell, err := excelize.CoordinatesToCellName(col, rowNum)
			if err != nil {
				return nil, err
			}
			v, err := read(sheet, cell)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", cell, err)
			}
			content = append(content, v)
		}
		rows = append(rows, models.TableRow{Content: content})
	}
	return rows, nil
}

// UsedRegion returns the smallest range covering every non-empty cell of
// table, or the zero range for an empty table.
func (w *Workbook) UsedRegion(table string) (models.CellRange, error) {
	sheet, ok := w.lookup(table)
	if !ok {
		return models.CellRange{}, ErrSheetNotExist{SheetName: table}
	}

	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return models.CellRange{}, err
	}

	minRow, maxRow, minCol, maxCol := findDataBounds(rows)
	if minRow < 0 {
		return models.CellRange{}, nil
	}

	return models.CellRange{
		Start: models.CellAddress{Column: address.ColumnLabel(minCol + 1), Row: minRow + 1},
		End:   models.CellAddress{Column: address.ColumnLabel(maxCol + 1), Row: maxRow + 1},
	}, nil
}

// Describe returns the name and used region of table.
func (w *Workbook) Describe(table string) (models.SheetInfo, error) {
	sheet, ok := w.lookup(table)
	if !ok {
		return models.SheetInfo{}, ErrSheetNotExist{SheetName: table}
	}

	used, err := w.UsedRegion(sheet)
	if err != nil {
		return models.SheetInfo{}, err
	}

	info := models.SheetInfo{Name: sheet}
	if !used.IsZero() {
		info.UsedRange = address.FormatRange(used)
		info.Rows = used.End.Row - used.Start.Row + 1
		info.Columns = address.ColumnIndex(used.End.Column) - address.ColumnIndex(used.Start.Column) + 1
	}
	return info, nil
}

// ResolveRange turns a range string into a range of table. The empty string
// resolves to the zero range (the used region). Strings that are not address
// ranges are looked up among the workbook's defined names, such as print areas.
//
// The second result is the worksheet the range refers to: its sheet prefix,
// or the scope of a sheet-local name. It is empty when the range names no
// worksheet. An empty table matches defined names of any scope.
func (w *Workbook) ResolveRange(table, ref string) (models.CellRange, string, error) {
	if sheet, r, ok := address.ParseSheetRange(ref); ok {
		return r, sheet, nil
	}

	name := strings.TrimSpace(ref)
	for _, dn := range w.f.GetDefinedName() {
		if !strings.EqualFold(dn.Name, name) {
			continue
		}
		local := dn.Scope != "" && dn.Scope != "Workbook"
		if local && table != "" && !strings.EqualFold(dn.Scope, table) {
			continue
		}
		// Only the first area of a multi-area name is used.
		first, _, _ := strings.Cut(dn.RefersTo, ",")
		sheet, r, ok := address.ParseSheetRange(first)
		if !ok || r.IsZero() {
			continue
		}
		if sheet == "" && local {
			sheet = dn.Scope
		}
		return r, sheet, nil
	}

	return models.CellRange{}, "", fmt.Errorf("%w: %q", ErrInvalidRange, ref)
}

// findDataBounds finds the bounding box of non-empty cells (0-based).
// minRow is -1 when there is no data.
func findDataBounds(rows [][]string) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell == "" {
				continue
			}
			if minRow < 0 || rowIdx < minRow {
				minRow = rowIdx
			}
			if maxRow < 0 || rowIdx > maxRow {
				maxRow = rowIdx
			}
			if minCol < 0 || colIdx < minCol {
				minCol = colIdx
			}
			if maxCol < 0 || colIdx > maxCol {
				maxCol = colIdx
			}
		}
	}

	return
}
