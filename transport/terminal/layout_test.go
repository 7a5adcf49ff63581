package terminal

import (
	"testing"

	"github.com/wricardo/superslide/game/engine"
	"github.com/wricardo/superslide/game/machine"
)

func TestCellAt(t *testing.T) {
	tests := []struct {
		name     string
		x, y     int
		row, col int
		ok       bool
	}{
		{"top left", boardX, boardY, 1, 1, true},
		{"inside first cell", boardX + CellWidth - 1, boardY + CellHeight - 1, 1, 1, true},
		{"second column", boardX + CellWidth, boardY, 1, 2, true},
		{"bottom right", boardX + boardWidth - 1, boardY + boardHeight - 1, engine.Rows, engine.Cols, true},
		{"left of board", boardX - 1, boardY, 0, 0, false},
		{"below board", boardX, boardY + boardHeight, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, col, ok := cellAt(tt.x, tt.y)
			if ok != tt.ok || row != tt.row || col != tt.col {
				t.Errorf("cellAt(%d, %d) = (%d, %d, %v), want (%d, %d, %v)",
					tt.x, tt.y, row, col, ok, tt.row, tt.col, tt.ok)
			}
		})
	}
}

func TestPieceAt(t *testing.T) {
	pieces := []engine.PieceView{
		{Piece: engine.Piece{ID: 1, Shape: engine.Block, Rect: engine.Rect{RowStart: 1, ColStart: 1, RowEnd: 3, ColEnd: 3}}},
		{Piece: engine.Piece{ID: 2, Shape: engine.Unit, Rect: engine.Rect{RowStart: 5, ColStart: 4, RowEnd: 6, ColEnd: 5}}},
	}

	x, y := pieceOrigin(engine.Rect{RowStart: 2, ColStart: 2})
	if id, ok := pieceAt(pieces, x+1, y+1); !ok || id != 1 {
		t.Errorf("Expected block at (2,2), got %d %v", id, ok)
	}
	x, y = pieceOrigin(pieces[1].Rect)
	if id, ok := pieceAt(pieces, x, y); !ok || id != 2 {
		t.Errorf("Expected unit at (5,4), got %d %v", id, ok)
	}
	x, y = pieceOrigin(engine.Rect{RowStart: 3, ColStart: 3})
	if _, ok := pieceAt(pieces, x, y); ok {
		t.Error("Expected empty cell at (3,3)")
	}
}

func TestButtonAt(t *testing.T) {
	for i, want := range []machine.Button{machine.ButtonPrev, machine.ButtonNext, machine.ButtonReset} {
		x, y := buttonOrigin(i)
		if b, ok := buttonAt(x+buttonWidth-1, y+2); !ok || b != want {
			t.Errorf("Expected %s at button %d, got %q %v", want, i, b, ok)
		}
	}
	x, y := buttonOrigin(0)
	if _, ok := buttonAt(x+buttonWidth, y); ok {
		t.Error("Expected the gap between buttons to miss")
	}
	if _, ok := buttonAt(x, y+3); ok {
		t.Error("Expected below the buttons to miss")
	}
}
