package lcd

import (
	"strconv"
	"unicode/utf8"

	"github.com/wricardo/superslide/game/engine"
)

const (
	Width     = engine.Cols
	Height    = engine.Rows
	CellCount = Width * Height

	// VictoryFrameCount is the length of one victory animation cycle.
	VictoryFrameCount = 10
)

// Cell is the hex color of one display cell; Off is unlit.
type Cell string

const (
	Off    Cell = ""
	Yellow Cell = "#f5c542"
	Red    Cell = "#e0312b"
	Blue   Cell = "#2b6de0"

	// Indicator band colors.
	BandA Cell = "#324E44"
	BandB Cell = "#e8d8c9"
	BandC Cell = "#f3701e"
)

// Screen is one full display image, row-major.
type Screen [CellCount]Cell

// Frame is one entry of the level-number queue.
type Frame struct {
	Glyph    string `json:"glyph"`
	Animated bool   `json:"animated"`
}

var font = map[rune][Height]string{
	'0': {".##.", "#..#", "#..#", "#..#", ".##."},
	'1': {"..#.", ".##.", "..#.", "..#.", ".###"},
	'2': {".##.", "#..#", "..#.", ".#..", "####"},
	'3': {"###.", "...#", ".##.", "...#", "###."},
	'4': {"#..#", "#..#", "####", "...#", "...#"},
	'5': {"####", "#...", "###.", "...#", "###."},
	'6': {".##.", "#...", "###.", "#..#", ".##."},
	'7': {"####", "...#", "..#.", ".#..", ".#.."},
	'8': {".##.", "#..#", ".##.", "#..#", ".##."},
	'9': {".##.", "#..#", ".###", "...#", ".##."},
	'S': {".###", "#...", ".##.", "...#", "###."},
	'A': {".##.", "#..#", "####", "#..#", "#..#"},
	'B': {"###.", "#..#", "###.", "#..#", "###."},
	'C': {".###", "#...", "#...", "#...", ".###"},
	'D': {"###.", "#..#", "#..#", "#..#", "###."},
	'E': {"####", "#...", "###.", "#...", "####"},
	'F': {"####", "#...", "###.", "#...", "#..."},
}

// HasGlyph reports whether r can be drawn.
func HasGlyph(r rune) bool {
	_, ok := font[r]
	return ok
}

// Glyph draws r in one color. Unknown runes draw nothing.
func Glyph(r rune, color Cell) Screen {
	var s Screen
	rows, ok := font[r]
	if !ok {
		return s
	}
	for y, row := range rows {
		for x, ch := range row {
			if ch == '#' {
				s[y*Width+x] = color
			}
		}
	}
	return s
}

// LevelNumberFrames builds the entry animation for a level. A single digit is
// one static frame; longer numbers show each digit static and then animated.
func LevelNumberFrames(level int) []Frame {
	digits := strconv.Itoa(level)
	if len(digits) == 1 {
		return []Frame{{Glyph: digits}}
	}
	frames := make([]Frame, 0, 2*len(digits))
	for _, d := range digits {
		frames = append(frames, Frame{Glyph: string(d)}, Frame{Glyph: string(d), Animated: true})
	}
	return frames
}

// Render draws a level-number frame. Animated frames are drawn inverted.
func (f Frame) Render() Screen {
	r, _ := utf8.DecodeRuneInString(f.Glyph)
	if !f.Animated {
		return Glyph(r, Yellow)
	}
	s := Glyph(r, Red)
	for i := range s {
		if s[i] == Off {
			s[i] = Red
		} else {
			s[i] = Off
		}
	}
	return s
}

var previewColors = map[engine.Color]Cell{
	engine.Yellow: Yellow,
	engine.Red:    Red,
	engine.Blue:   Blue,
	engine.Green:  Blue,
}

// Preview draws a level layout cell by cell.
func Preview(layout engine.Layout) Screen {
	var s Screen
	for i, c := range layout {
		if i >= CellCount {
			break
		}
		s[i] = previewColors[c]
	}
	return s
}

// Indicator draws the elapsed-time bar.
func Indicator(on []bool, color Cell) Screen {
	var s Screen
	for i := 0; i < CellCount && i < len(on); i++ {
		if on[i] {
			s[i] = color
		}
	}
	return s
}

// Victory draws frame index of the victory animation: a diagonal wave of
// alternating colors.
func Victory(index int) Screen {
	var s Screen
	palette := []Cell{Red, Yellow, Blue}
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			d := (x + y + VictoryFrameCount - index%VictoryFrameCount) % 5
			if d < len(palette) {
				s[y*Width+x] = palette[d]
			}
		}
	}
	return s
}
