package domain

import "fmt"

const DefaultSeatsPerRow = 5

type RowConfig struct {
	Count       int
	SeatSpacing int
}

// LayoutConfig describes how many seats a room has, row by row.
type LayoutConfig struct {
	RowSpacing float64
	Rows       []RowConfig
}

// DefaultLayout is two rows of DefaultSeatsPerRow seats.
func DefaultLayout() LayoutConfig {
	return LayoutForCount(2*DefaultSeatsPerRow, DefaultSeatsPerRow)
}

// LayoutForCount splits count seats into rows of perRow; the last row may be shorter.
func LayoutForCount(count, perRow int) LayoutConfig {
	if perRow <= 0 {
		perRow = DefaultSeatsPerRow
	}
	var rows []RowConfig
	for left := count; left > 0; left -= perRow {
		rows = append(rows, RowConfig{Count: min(left, perRow), SeatSpacing: 5})
	}
	return LayoutConfig{Rows: rows}
}

func (l LayoutConfig) SeatCount() int {
	n := 0
	for _, r := range l.Rows {
		if r.Count > 0 {
			n += r.Count
		}
	}
	return n
}

// Position maps a 0-based seat index to its row and column.
func (l LayoutConfig) Position(index int) (row, column int) {
	for i, r := range l.Rows {
		if r.Count <= 0 {
			continue
		}
		if index < r.Count {
			return i, index
		}
		index -= r.Count
	}
	return len(l.Rows), index
}

func (l LayoutConfig) String() string {
	return fmt.Sprintf("rowSpacing: %v, rows: %v", l.RowSpacing, l.Rows)
}
