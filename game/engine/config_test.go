package engine

import (
	"strings"
	"testing"
)

// Layouts shipped as the first three catalog levels.
var (
	levelOne = Layout{
		Yellow, Yellow, Empty, Empty,
		Yellow, Yellow, Yellow, Yellow,
		Yellow, Yellow, Yellow, Yellow,
		Red, Red, Blue, Yellow,
		Red, Red, Blue, Yellow,
	}
	levelTwo = Layout{
		Yellow, Yellow, Yellow, Yellow,
		Empty, Empty, Blue, Yellow,
		Red, Red, Blue, Yellow,
		Red, Red, Yellow, Yellow,
		Yellow, Yellow, Yellow, Yellow,
	}
	levelThree = Layout{
		Blue, Yellow, Yellow, Blue,
		Blue, Green, Green, Blue,
		Blue, Red, Red, Empty,
		Blue, Red, Red, Blue,
		Yellow, Empty, Yellow, Blue,
	}
)

func mustRows(t *testing.T, rows ...string) Layout {
	t.Helper()
	layout, err := LayoutFromRows(rows)
	if err != nil {
		t.Fatalf("LayoutFromRows(%v) failed: %v", rows, err)
	}
	return layout
}

func countShapes(pieces []Piece) map[Shape]int {
	counts := make(map[Shape]int)
	for _, p := range pieces {
		counts[p.Shape]++
	}
	return counts
}

func TestParseLevel_LevelOne(t *testing.T) {
	pieces := ParseLevel(levelOne)

	counts := countShapes(pieces)
	if counts[Block] != 1 {
		t.Errorf("Expected 1 block, got %d", counts[Block])
	}
	if counts[VerticalDomino] != 1 {
		t.Errorf("Expected 1 vertical domino, got %d", counts[VerticalDomino])
	}
	if counts[Unit] != 12 {
		t.Errorf("Expected 12 units, got %d", counts[Unit])
	}
	if len(pieces) != 14 {
		t.Errorf("Expected 14 pieces, got %d", len(pieces))
	}

	block, _ := FindBlock(pieces)
	if want := (Rect{RowStart: 4, ColStart: 1, RowEnd: 6, ColEnd: 3}); block.Rect != want {
		t.Errorf("Block rect = %s, want %s", block.Rect.Area(), want.Area())
	}

	for _, p := range pieces {
		if p.Shape == VerticalDomino {
			if want := (Rect{RowStart: 4, ColStart: 3, RowEnd: 6, ColEnd: 4}); p.Rect != want {
				t.Errorf("Vertical domino rect = %s, want %s", p.Rect.Area(), want.Area())
			}
		}
	}

	views := AnalyzeDraggable(pieces)
	for _, v := range views {
		if v.Shape == Block {
			if v.Draggable.X != Blocked || v.Draggable.Y != Blocked {
				t.Errorf("Block should be blocked on both axes, got %+v", v.Draggable)
			}
		}
	}
}

func TestParseLevel_IDsFollowScanOrder(t *testing.T) {
	pieces := ParseLevel(levelThree)

	for i, p := range pieces {
		if p.ID != i+1 {
			t.Errorf("Piece %d has id %d", i, p.ID)
		}
	}

	// First piece is the vertical domino anchored top-left.
	if pieces[0].Shape != VerticalDomino || pieces[0].Rect != (Rect{1, 1, 3, 2}) {
		t.Errorf("Unexpected first piece %+v", pieces[0])
	}
}

func TestParseLevel_HorizontalDominoDisplaysBlue(t *testing.T) {
	pieces := ParseLevel(levelThree)

	found := false
	for _, p := range pieces {
		if p.Shape == HorizontalDomino {
			found = true
			if p.Color != Blue {
				t.Errorf("Horizontal domino color = %q, want %q", p.Color, Blue)
			}
			if p.Rect != (Rect{RowStart: 2, ColStart: 2, RowEnd: 3, ColEnd: 4}) {
				t.Errorf("Horizontal domino rect = %s", p.Rect.Area())
			}
		}
	}
	if !found {
		t.Fatal("Expected a horizontal domino")
	}
}

func TestParseLevel_RectMatchesShape(t *testing.T) {
	for _, layout := range []Layout{levelOne, levelTwo, levelThree} {
		for _, p := range ParseLevel(layout) {
			if p.Rect.Width() != p.Shape.Width() || p.Rect.Height() != p.Shape.Height() {
				t.Errorf("Piece %d (%s) has rect %s", p.ID, p.Shape, p.Rect.Area())
			}
			if !p.Rect.InBounds() {
				t.Errorf("Piece %d out of bounds: %s", p.ID, p.Rect.Area())
			}
		}
	}
}

func TestLayoutFromRows(t *testing.T) {
	layout := mustRows(t,
		"UU..",
		"UUUU",
		"UUUU",
		"BBVU",
		"BBVU",
	)

	if len(layout) != CellCount {
		t.Fatalf("Expected %d cells, got %d", CellCount, len(layout))
	}
	for i := range layout {
		if layout[i] != levelOne[i] {
			t.Errorf("Cell %d = %q, want %q", i, layout[i], levelOne[i])
		}
	}

	rows := layout.Rows()
	if strings.Join(rows, "|") != "UU..|UUUU|UUUU|BBVU|BBVU" {
		t.Errorf("Rows() = %v", rows)
	}
}

func TestLayoutFromRows_Errors(t *testing.T) {
	tests := []struct {
		name string
		rows []string
	}{
		{"too few rows", []string{"....", "....", "....", "...."}},
		{"short row", []string{"....", "...", "....", "....", "...."}},
		{"bad code", []string{"....", "..X.", "....", "....", "...."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LayoutFromRows(tt.rows); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestNormalizeTag(t *testing.T) {
	tests := []struct {
		tag     string
		want    Color
		wantErr bool
	}{
		{"yellow", Yellow, false},
		{"RED", Red, false},
		{"🟦", Blue, false},
		{"green", Green, false},
		{"", Empty, false},
		{"purple", Empty, true},
	}

	for _, tt := range tests {
		got, err := NormalizeTag(tt.tag)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeTag(%q) error = %v, wantErr %v", tt.tag, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeTag(%q) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestValidateLayout(t *testing.T) {
	for i, layout := range []Layout{levelOne, levelTwo, levelThree} {
		if err := ValidateLayout(layout); err != nil {
			t.Errorf("Level %d should be valid: %v", i+1, err)
		}
	}

	tests := []struct {
		name   string
		layout Layout
	}{
		{"wrong size", levelOne[:19]},
		{"two blocks", mustRows(t, "BB..", "BB..", "....", "BB..", "BB..")},
		{"no block", mustRows(t, "UU..", "....", "....", "....", "....")},
		{"vertical off bottom", mustRows(t, "BB..", "BB..", "....", "....", "V...")},
		{"horizontal off edge", mustRows(t, "BB.H", "BB..", "....", "....", "....")},
		{"truncated block", mustRows(t, "BB..", "B...", "....", "....", "....")},
		{"unknown tag", append(Layout{"purple"}, levelOne[1:]...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateLayout(tt.layout); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestRectArea(t *testing.T) {
	if got := ExitRect.Area(); got != "4 / 2 / 6 / 4" {
		t.Errorf("ExitRect.Area() = %q", got)
	}

	r, err := ParseArea("4/2/6/4")
	if err != nil {
		t.Fatalf("ParseArea failed: %v", err)
	}
	if r != ExitRect {
		t.Errorf("ParseArea = %+v, want %+v", r, ExitRect)
	}

	if _, err := ParseArea("1/2/3"); err == nil {
		t.Error("Expected error for short area")
	}
}
