package terminal

import (
	"github.com/wricardo/superslide/game/engine"
	"github.com/wricardo/superslide/game/machine"
)

// Board geometry in terminal cells. One board cell is drawn CellWidth
// columns wide and CellHeight rows tall, which is close to square on most
// terminal fonts.
const (
	CellWidth  = 8
	CellHeight = 4

	boardX = 2
	boardY = 2

	boardWidth  = engine.Cols * CellWidth
	boardHeight = engine.Rows * CellHeight

	lcdX        = boardX + boardWidth + 4
	lcdY        = boardY
	lcdCellW    = 2
	buttonY     = lcdY + engine.Rows + 2
	buttonWidth = 7
	statusY     = buttonY + 3
)

// buttonOrder is the left-to-right order of the controls under the display.
var buttonOrder = []machine.Button{machine.ButtonPrev, machine.ButtonNext, machine.ButtonReset}

var buttonLabels = map[machine.Button]string{
	machine.ButtonPrev:  " ◀ ",
	machine.ButtonNext:  " ▶ ",
	machine.ButtonReset: " ● ",
}

// cellSize is the drag denominator matching the drawn geometry.
var cellSize = engine.CellSize{Width: CellWidth, Height: CellHeight}

// cellAt maps a terminal position to a 1-indexed board cell.
func cellAt(x, y int) (row, col int, ok bool) {
	dx, dy := x-boardX, y-boardY
	if dx < 0 || dy < 0 || dx >= boardWidth || dy >= boardHeight {
		return 0, 0, false
	}
	return dy/CellHeight + 1, dx/CellWidth + 1, true
}

// pieceAt returns the id of the piece drawn at a terminal position.
func pieceAt(pieces []engine.PieceView, x, y int) (int, bool) {
	row, col, ok := cellAt(x, y)
	if !ok {
		return 0, false
	}
	for _, p := range pieces {
		if p.Rect.Contains(row, col) {
			return p.ID, true
		}
	}
	return 0, false
}

// buttonOrigin is the top-left corner of a button box.
func buttonOrigin(i int) (int, int) {
	return lcdX + i*(buttonWidth+1), buttonY
}

// buttonAt returns the button drawn at a terminal position.
func buttonAt(x, y int) (machine.Button, bool) {
	for i, b := range buttonOrder {
		bx, by := buttonOrigin(i)
		if x >= bx && x < bx+buttonWidth && y >= by && y < by+3 {
			return b, true
		}
	}
	return "", false
}

// pieceOrigin is the top-left terminal position of a piece.
func pieceOrigin(r engine.Rect) (int, int) {
	return boardX + (r.ColStart-1)*CellWidth, boardY + (r.RowStart-1)*CellHeight
}
