package engine

import "testing"

func TestOccupancy_CountMatchesPieceCells(t *testing.T) {
	for i, layout := range []Layout{levelOne, levelTwo, levelThree} {
		pieces := ParseLevel(layout)
		want := 0
		for _, p := range pieces {
			want += p.Shape.Cells()
		}
		if got := Occupancy(pieces).Count(); got != want {
			t.Errorf("Level %d: occupancy count %d, want %d", i+1, got, want)
		}
	}
}

func TestOccupancy_RoundTrip(t *testing.T) {
	for i, layout := range []Layout{levelOne, levelTwo, levelThree} {
		if Occupancy(ParseLevel(layout)) != LayoutOccupancy(layout) {
			t.Errorf("Level %d: parsed occupancy differs from layout occupancy", i+1)
		}
	}
}

func TestGridOccupied_OffBoard(t *testing.T) {
	var g Grid

	for _, cell := range [][2]int{{0, 1}, {6, 1}, {1, 0}, {1, 5}} {
		if !g.Occupied(cell[0], cell[1]) {
			t.Errorf("Off-board cell %v should count as occupied", cell)
		}
	}
	if g.Occupied(3, 2) {
		t.Error("Empty grid cell reported occupied")
	}
}

func TestFindPiece(t *testing.T) {
	pieces := ParseLevel(levelOne)

	if _, ok := FindPiece(pieces, 1); !ok {
		t.Error("Expected piece 1")
	}
	if _, ok := FindPiece(pieces, 100); ok {
		t.Error("Did not expect piece 100")
	}
	if block, ok := FindBlock(pieces); !ok || block.Shape != Block {
		t.Error("Expected to find the block")
	}
}
