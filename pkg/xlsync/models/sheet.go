package models

// SheetInfo describes a table (worksheet) of a workbook.
type SheetInfo struct {
	// Name is the sheet name.
	Name string `json:"name"`
	// UsedRange is the range covering all non-empty cells ("" for an empty sheet).
	UsedRange string `json:"used_range,omitempty"`
	// Rows is the number of rows in the used range.
	Rows int `json:"rows"`
	// Columns is the number of columns in the used range.
	Columns int `json:"columns"`
}
