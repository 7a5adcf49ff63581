package engine

import (
	"fmt"
	"strings"
)

// rowCodes maps the single-letter codes used in row-string layouts.
var rowCodes = map[rune]Color{
	'.': Empty,
	'U': Yellow,
	'B': Red,
	'V': Blue,
	'H': Green,
}

// colorAliases lets catalog authors write color names instead of emoji.
var colorAliases = map[string]Color{
	"":       Empty,
	"empty":  Empty,
	"yellow": Yellow,
	"red":    Red,
	"blue":   Blue,
	"green":  Green,
	"🟨":      Yellow,
	"🟥":      Red,
	"🟦":      Blue,
	"🟩":      Green,
}

// NormalizeTag resolves a layout tag or one of its aliases.
func NormalizeTag(tag string) (Color, error) {
	if c, ok := colorAliases[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return c, nil
	}
	return Empty, fmt.Errorf("unknown cell tag %q", tag)
}

// LayoutFromRows builds a layout from Rows strings of Cols codes (U B V H .).
func LayoutFromRows(rows []string) (Layout, error) {
	if len(rows) != Rows {
		return nil, fmt.Errorf("layout must have %d rows, got %d", Rows, len(rows))
	}
	layout := make(Layout, 0, CellCount)
	for i, row := range rows {
		codes := []rune(row)
		if len(codes) != Cols {
			return nil, fmt.Errorf("row %d must have %d cells, got %d", i+1, Cols, len(codes))
		}
		for j, code := range codes {
			c, ok := rowCodes[code]
			if !ok {
				return nil, fmt.Errorf("invalid code '%c' at row %d, col %d", code, i+1, j+1)
			}
			layout = append(layout, c)
		}
	}
	return layout, nil
}

// Rows renders the layout back into row strings.
func (l Layout) Rows() []string {
	rows := make([]string, 0, Rows)
	for r := 0; r < Rows; r++ {
		var b strings.Builder
		for c := 0; c < Cols; c++ {
			i := r*Cols + c
			code := '.'
			if i < len(l) {
				for k, v := range rowCodes {
					if v == l[i] && v != Empty {
						code = k
					}
				}
			}
			b.WriteRune(code)
		}
		rows = append(rows, b.String())
	}
	return rows
}

// ParseLevel decodes a layout into pieces. Cells are scanned row-major; the
// first unvisited non-empty cell anchors a piece whose extent comes from its
// shape, and every covered cell is marked visited. Ids start at 1 in scan
// order. The layout is assumed well-formed; see ValidateLayout.
func ParseLevel(layout Layout) []Piece {
	var visited [Rows][Cols]bool
	pieces := make([]Piece, 0, CellCount)
	id := 1

	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			i := row*Cols + col
			if i >= len(layout) || visited[row][col] {
				continue
			}
			shape, ok := ShapeOf(layout[i])
			if !ok {
				continue
			}

			w, h := shape.Width(), shape.Height()
			for r := row; r < row+h && r < Rows; r++ {
				for c := col; c < col+w && c < Cols; c++ {
					visited[r][c] = true
				}
			}

			pieces = append(pieces, Piece{
				ID:    id,
				Shape: shape,
				Color: shape.Color(),
				Rect:  Rect{RowStart: row + 1, ColStart: col + 1, RowEnd: row + h + 1, ColEnd: col + w + 1},
			})
			id++
		}
	}

	return pieces
}

// ValidateLayout checks the authoring invariants ParseLevel relies on: the
// right cell count, known tags, one block, and every multi-cell piece fully
// present from its top-left anchor.
func ValidateLayout(layout Layout) error {
	if len(layout) != CellCount {
		return fmt.Errorf("layout validation: expected %d cells, got %d", CellCount, len(layout))
	}
	for i, c := range layout {
		if c == Empty {
			continue
		}
		if _, ok := ShapeOf(c); !ok {
			return fmt.Errorf("layout validation: unknown tag %q at row %d, col %d", c, i/Cols+1, i%Cols+1)
		}
	}

	pieces := ParseLevel(layout)
	blocks := 0
	covered := 0
	for _, p := range pieces {
		if !p.Rect.InBounds() {
			return fmt.Errorf("layout validation: %s at %s runs off the board", p.Shape, p.Rect.Area())
		}
		tag := p.Shape.Color()
		if p.Shape == HorizontalDomino {
			tag = Green
		}
		for r := p.Rect.RowStart; r < p.Rect.RowEnd; r++ {
			for c := p.Rect.ColStart; c < p.Rect.ColEnd; c++ {
				if got := layout[(r-1)*Cols+(c-1)]; got != tag {
					return fmt.Errorf("layout validation: %s at %s expects %q at row %d, col %d, got %q",
						p.Shape, p.Rect.Area(), tag, r, c, got)
				}
			}
		}
		if p.Shape == Block {
			blocks++
		}
		covered += p.Shape.Cells()
	}
	if blocks != 1 {
		return fmt.Errorf("layout validation: expected exactly one block, got %d", blocks)
	}

	nonEmpty := 0
	for _, c := range layout {
		if c != Empty {
			nonEmpty++
		}
	}
	if covered != nonEmpty {
		return fmt.Errorf("layout validation: %d tagged cells but pieces cover %d", nonEmpty, covered)
	}
	return nil
}
