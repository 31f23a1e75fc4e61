package models

// CellAddress represents a single cell coordinate.
type CellAddress struct {
	// Column is the column label (A, B, ..., Z, AA, ...).
	Column string `json:"column"`
	// Row is the row number (1-based).
	Row int `json:"row"`
}

// IsZero reports whether the address is unset.
func (a CellAddress) IsZero() bool {
	return a.Column == "" && a.Row == 0
}

// CellRange represents a rectangular block of cells. The zero value stands
// for the used region of a table.
type CellRange struct {
	// Start is the top-left cell.
	Start CellAddress `json:"start"`
	// End is the bottom-right cell (inclusive).
	End CellAddress `json:"end"`
}

// IsZero reports whether the range is unset.
func (r CellRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}
