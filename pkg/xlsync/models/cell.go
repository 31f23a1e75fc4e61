// Package models defines the value types exchanged between xlsync components.
package models

// TableRow represents a single row of a table as an ordered list of cell values.
type TableRow struct {
	// Content holds the cell values from left to right. Values are string,
	// int64, uint64, float64, bool, time.Time, CellContents or nil for empty
	// cells.
	Content []interface{} `json:"content"`
}

// NewRow creates a TableRow from the given values.
func NewRow(values ...interface{}) TableRow {
	return TableRow{Content: values}
}

// Len returns the number of cells in the row.
func (r TableRow) Len() int {
	return len(r.Content)
}

// CellContents represents a cell as stored, keeping formula and display text
// apart from the resolved value.
type CellContents struct {
	// Address is the cell address (e.g. "B3").
	Address string `json:"address"`
	// Value is the raw stored value.
	Value interface{} `json:"value,omitempty"`
	// Display is the value formatted with the cell's number format.
	Display string `json:"display,omitempty"`
	// Formula is the cell formula without the leading "=" (empty if none).
	Formula string `json:"formula,omitempty"`
	// Type is the stored cell type (e.g. "number", "string", "bool").
	Type string `json:"type"`
}
