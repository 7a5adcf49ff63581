package engine

import "errors"

// ErrUnknownPiece is returned when a drag names a piece that is not on the board.
var ErrUnknownPiece = errors.New("unknown piece")

// Thresholds split a drag length, measured in cells, into intended moves.
type Thresholds struct {
	// Nudge is the fraction of a cell below which a drag intends nothing.
	Nudge float64 `json:"nudge" yaml:"nudge"`
	// Flick is the fraction of a cell above which a drag intends two cells.
	Flick float64 `json:"flick" yaml:"flick"`
}

// DefaultThresholds are 5% and 130% of one cell.
var DefaultThresholds = Thresholds{Nudge: 0.05, Flick: 1.30}

// Offset is the terminal displacement of a drag in presentation units.
type Offset struct {
	X float64 `json:"dx"`
	Y float64 `json:"dy"`
}

// CellSize is the size of one board cell in the same units as Offset.
type CellSize struct {
	Width  float64 `json:"cell_width"`
	Height float64 `json:"cell_height"`
}

// Along returns the cell size on one axis.
func (c CellSize) Along(axis Axis) float64 {
	if axis == Horizontal {
		return c.Width
	}
	return c.Height
}

// Outcome classifies a resolved drag.
type Outcome string

const (
	Moved          Outcome = "moved"
	Rejected       Outcome = "rejected"
	NoDisplacement Outcome = "no_displacement"
)

// MoveResult is the outcome of resolving one drag. Pieces is the full list
// after the move; for Rejected and NoDisplacement it is the input list.
type MoveResult struct {
	Outcome  Outcome `json:"outcome"`
	PieceID  int     `json:"piece_id"`
	Axis     Axis    `json:"axis"`
	Sign     int     `json:"sign"`
	Intended int     `json:"intended"`
	MaxMove  int     `json:"max_move"`
	Cells    int     `json:"cells"`
	Pieces   []Piece `json:"-"`
}

// canStep reports whether every cell just beyond the piece's edge is free.
func canStep(r Rect, g Grid, axis Axis, sign int) bool {
	return stepFree(r, g, axis, sign, 1)
}

// stepFree checks the line of cells n steps beyond the leading edge.
func stepFree(r Rect, g Grid, axis Axis, sign int, n int) bool {
	if axis == Vertical {
		row := r.RowEnd - 1 + n
		if sign < 0 {
			row = r.RowStart - n
		}
		for col := r.ColStart; col < r.ColEnd; col++ {
			if g.Occupied(row, col) {
				return false
			}
		}
		return true
	}
	col := r.ColEnd - 1 + n
	if sign < 0 {
		col = r.ColStart - n
	}
	for row := r.RowStart; row < r.RowEnd; row++ {
		if g.Occupied(row, col) {
			return false
		}
	}
	return true
}

// DraggableOf computes the axis descriptor for p against an occupancy grid
// that already includes p's own cells.
func DraggableOf(p Piece, g Grid) Draggable {
	return Draggable{
		X: freedomOf(canStep(p.Rect, g, Horizontal, -1), canStep(p.Rect, g, Horizontal, 1)),
		Y: freedomOf(canStep(p.Rect, g, Vertical, -1), canStep(p.Rect, g, Vertical, 1)),
	}
}

// AnalyzeDraggable recomputes occupancy and every piece's descriptor.
func AnalyzeDraggable(pieces []Piece) []PieceView {
	g := Occupancy(pieces)
	views := make([]PieceView, len(pieces))
	for i, p := range pieces {
		views[i] = PieceView{Piece: p, Area: p.Rect.Area(), Draggable: DraggableOf(p, g)}
	}
	return views
}

// MaxMove counts the free steps from the piece's leading edge until the first
// blocked line or the board edge.
func MaxMove(p Piece, pieces []Piece, axis Axis, sign int) int {
	g := Occupancy(pieces)
	n := 0
	for stepFree(p.Rect, g, axis, sign, n+1) {
		n++
	}
	return n
}

// IntendedCells buckets a drag distance against one cell length.
func IntendedCells(distance, cell float64, t Thresholds) int {
	if cell <= 0 {
		return 0
	}
	ratio := abs(distance) / cell
	switch {
	case ratio < t.Nudge:
		return 0
	case ratio > t.Flick:
		return 2
	}
	return 1
}

// DominantAxis picks the axis with the larger offset magnitude; ties go to
// the vertical axis. The sign is positive only for a strictly positive offset.
func DominantAxis(o Offset) (Axis, int, float64) {
	if abs(o.X) > abs(o.Y) {
		if o.X > 0 {
			return Horizontal, 1, o.X
		}
		return Horizontal, -1, o.X
	}
	if o.Y > 0 {
		return Vertical, 1, o.Y
	}
	return Vertical, -1, o.Y
}

// Resolve moves p along axis by the cells a drag of the given distance
// intends, capped by the free space.
func Resolve(p Piece, pieces []Piece, axis Axis, sign int, distance, cell float64, t Thresholds) MoveResult {
	result := MoveResult{
		PieceID:  p.ID,
		Axis:     axis,
		Sign:     sign,
		Intended: IntendedCells(distance, cell, t),
		MaxMove:  MaxMove(p, pieces, axis, sign),
		Pieces:   pieces,
	}
	result.Cells = min(result.Intended, result.MaxMove)

	switch {
	case result.Intended > 0 && result.Cells == 0:
		result.Outcome = Rejected
	case result.Cells == 0:
		result.Outcome = NoDisplacement
	default:
		result.Outcome = Moved
		moved := make([]Piece, len(pieces))
		copy(moved, pieces)
		for i := range moved {
			if moved[i].ID == p.ID {
				moved[i].Rect = moved[i].Rect.Shift(axis, sign*result.Cells)
			}
		}
		result.Pieces = moved
	}
	return result
}

// ResolveDrag turns the terminal offset of a drag on piece id into a move.
func ResolveDrag(pieces []Piece, id int, o Offset, cell CellSize, t Thresholds) (MoveResult, error) {
	p, ok := FindPiece(pieces, id)
	if !ok {
		return MoveResult{PieceID: id, Outcome: NoDisplacement, Pieces: pieces}, ErrUnknownPiece
	}
	axis, sign, distance := DominantAxis(o)
	return Resolve(p, pieces, axis, sign, distance, cell.Along(axis), t), nil
}
