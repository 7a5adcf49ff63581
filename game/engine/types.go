package engine

import (
	"fmt"
	"strings"
)

const (
	Rows      = 5
	Cols      = 4
	CellCount = Rows * Cols

	// MaxLevel is the highest level number a catalog may define.
	MaxLevel = 100
)

// Color is the tag a level layout uses for one board cell. Horizontal dominoes
// are authored as Green but displayed as Blue.
type Color string

const (
	Empty  Color = ""
	Yellow Color = "🟨"
	Red    Color = "🟥"
	Blue   Color = "🟦"
	Green  Color = "🟩"
)

// Layout is a row-major list of CellCount color tags.
type Layout []Color

// Shape is the closed set of piece geometries.
type Shape int

const (
	Unit Shape = iota
	HorizontalDomino
	VerticalDomino
	Block
)

var shapeNames = map[Shape]string{
	Unit:             "unit",
	HorizontalDomino: "horizontal_domino",
	VerticalDomino:   "vertical_domino",
	Block:            "block",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

func (s Shape) MarshalText() ([]byte, error) {
	if _, ok := shapeNames[s]; !ok {
		return nil, fmt.Errorf("unknown shape %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Shape) UnmarshalText(text []byte) error {
	for shape, name := range shapeNames {
		if name == string(text) {
			*s = shape
			return nil
		}
	}
	return fmt.Errorf("unknown shape %q", string(text))
}

// Width is the number of columns the shape spans.
func (s Shape) Width() int {
	if s == HorizontalDomino || s == Block {
		return 2
	}
	return 1
}

// Height is the number of rows the shape spans.
func (s Shape) Height() int {
	if s == VerticalDomino || s == Block {
		return 2
	}
	return 1
}

// Cells is the number of board cells the shape covers.
func (s Shape) Cells() int {
	return s.Width() * s.Height()
}

// Color is the presentation color for the shape.
func (s Shape) Color() Color {
	switch s {
	case Block:
		return Red
	case HorizontalDomino, VerticalDomino:
		return Blue
	default:
		return Yellow
	}
}

// ShapeOf maps a layout tag to the shape it anchors.
func ShapeOf(c Color) (Shape, bool) {
	switch c {
	case Yellow:
		return Unit, true
	case Red:
		return Block, true
	case Blue:
		return VerticalDomino, true
	case Green:
		return HorizontalDomino, true
	}
	return 0, false
}

// Rect is a 1-indexed, half-open bounding rectangle on the board.
type Rect struct {
	RowStart int `json:"row_start"`
	ColStart int `json:"col_start"`
	RowEnd   int `json:"row_end"`
	ColEnd   int `json:"col_end"`
}

// ExitRect is where the block has to land to win.
var ExitRect = Rect{RowStart: 4, ColStart: 2, RowEnd: 6, ColEnd: 4}

func (r Rect) Height() int { return r.RowEnd - r.RowStart }
func (r Rect) Width() int  { return r.ColEnd - r.ColStart }

// Area renders the rect in grid-area form, e.g. "4 / 2 / 6 / 4".
func (r Rect) Area() string {
	return fmt.Sprintf("%d / %d / %d / %d", r.RowStart, r.ColStart, r.RowEnd, r.ColEnd)
}

// ParseArea is the inverse of Area. Whitespace around the numbers is optional.
func ParseArea(area string) (Rect, error) {
	parts := strings.Split(area, "/")
	if len(parts) != 4 {
		return Rect{}, fmt.Errorf("invalid area %q", area)
	}
	var n [4]int
	for i, p := range parts {
		if _, err := fmt.Sscanf(strings.TrimSpace(p), "%d", &n[i]); err != nil {
			return Rect{}, fmt.Errorf("invalid area %q: %w", area, err)
		}
	}
	return Rect{RowStart: n[0], ColStart: n[1], RowEnd: n[2], ColEnd: n[3]}, nil
}

// InBounds reports whether the rect lies entirely on the board.
func (r Rect) InBounds() bool {
	return r.RowStart >= 1 && r.ColStart >= 1 && r.RowEnd <= Rows+1 && r.ColEnd <= Cols+1 &&
		r.RowStart < r.RowEnd && r.ColStart < r.ColEnd
}

// Contains reports whether the 1-indexed cell lies inside the rect.
func (r Rect) Contains(row, col int) bool {
	return row >= r.RowStart && row < r.RowEnd && col >= r.ColStart && col < r.ColEnd
}

// Shift moves the rect by cells along axis; negative cells move left or up.
func (r Rect) Shift(axis Axis, cells int) Rect {
	if axis == Horizontal {
		r.ColStart += cells
		r.ColEnd += cells
	} else {
		r.RowStart += cells
		r.RowEnd += cells
	}
	return r
}

// Piece is one rectangular puzzle unit.
type Piece struct {
	ID    int   `json:"id"`
	Shape Shape `json:"shape"`
	Color Color `json:"color"`
	Rect  Rect  `json:"rect"`
}

// Axis names a slide axis.
type Axis string

const (
	Horizontal Axis = "x"
	Vertical   Axis = "y"
)

// Freedom summarizes the free slide directions along one axis. Negative means
// left or up, positive means right or down.
type Freedom int

const (
	NegativeOnly Freedom = -1
	Blocked      Freedom = 0
	PositiveOnly Freedom = 1
	Both         Freedom = 2
)

func freedomOf(negative, positive bool) Freedom {
	switch {
	case negative && positive:
		return Both
	case negative:
		return NegativeOnly
	case positive:
		return PositiveOnly
	}
	return Blocked
}

// Allows reports whether a slide with the given sign (+1 or -1) is free.
func (f Freedom) Allows(sign int) bool {
	switch f {
	case Both:
		return true
	case NegativeOnly:
		return sign < 0
	case PositiveOnly:
		return sign > 0
	}
	return false
}

func (f Freedom) String() string {
	switch f {
	case NegativeOnly:
		return "negative"
	case PositiveOnly:
		return "positive"
	case Both:
		return "both"
	}
	return "blocked"
}

// Draggable is the per-axis descriptor handed to the presentation layer.
type Draggable struct {
	X Freedom `json:"x"`
	Y Freedom `json:"y"`
}

// Along returns the descriptor for one axis.
func (d Draggable) Along(axis Axis) Freedom {
	if axis == Horizontal {
		return d.X
	}
	return d.Y
}

// Movable reports whether the piece can slide at all.
func (d Draggable) Movable() bool {
	return d.X != Blocked || d.Y != Blocked
}

// PieceView is a piece plus its derived draggable axes.
type PieceView struct {
	Piece
	Area      string    `json:"area"`
	Draggable Draggable `json:"draggable"`
}
