package engine

// Grid is the occupancy matrix, indexed [row][col] from zero.
type Grid [Rows][Cols]bool

// Occupancy marks every cell covered by a piece. Cells outside the board are
// ignored.
func Occupancy(pieces []Piece) Grid {
	var g Grid
	for _, p := range pieces {
		for r := p.Rect.RowStart; r < p.Rect.RowEnd; r++ {
			for c := p.Rect.ColStart; c < p.Rect.ColEnd; c++ {
				if r >= 1 && r <= Rows && c >= 1 && c <= Cols {
					g[r-1][c-1] = true
				}
			}
		}
	}
	return g
}

// Occupied reports whether the 1-indexed cell holds a piece. Cells off the
// board count as occupied so scans stop at the edge.
func (g Grid) Occupied(row, col int) bool {
	if row < 1 || row > Rows || col < 1 || col > Cols {
		return true
	}
	return g[row-1][col-1]
}

// Count returns the number of occupied cells.
func (g Grid) Count() int {
	n := 0
	for _, row := range g {
		for _, cell := range row {
			if cell {
				n++
			}
		}
	}
	return n
}

// LayoutOccupancy marks the non-empty cells of a layout directly.
func LayoutOccupancy(layout Layout) Grid {
	var g Grid
	for i, c := range layout {
		if i >= CellCount {
			break
		}
		if c != Empty {
			g[i/Cols][i%Cols] = true
		}
	}
	return g
}

// FindPiece returns the piece with the given id.
func FindPiece(pieces []Piece, id int) (Piece, bool) {
	for _, p := range pieces {
		if p.ID == id {
			return p, true
		}
	}
	return Piece{}, false
}

// FindBlock returns the goal piece.
func FindBlock(pieces []Piece) (Piece, bool) {
	for _, p := range pieces {
		if p.Shape == Block {
			return p, true
		}
	}
	return Piece{}, false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
