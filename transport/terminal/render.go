package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/superslide/game/engine"
	"github.com/wricardo/superslide/game/lcd"
	"github.com/wricardo/superslide/game/machine"
)

var (
	styleDefault = tcell.StyleDefault
	styleFrame   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTitle   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleWin     = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
)

// colorOf converts a display hex color. Off is black.
func colorOf(c lcd.Cell) tcell.Color {
	if c == lcd.Off {
		return tcell.ColorBlack
	}
	return tcell.GetColor(string(c))
}

func pieceColor(s engine.Shape) tcell.Color {
	switch s {
	case engine.Block:
		return colorOf(lcd.Red)
	case engine.Unit:
		return colorOf(lcd.Yellow)
	}
	return colorOf(lcd.Blue)
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

func fill(s tcell.Screen, x, y, w, h int, r rune, style tcell.Style) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			s.SetContent(col, row, r, nil, style)
		}
	}
}

// view is everything draw needs besides the snapshot.
type view struct {
	selected int
	dragging int
	lastRun  *machine.RunResult
	message  string
}

func draw(s tcell.Screen, snap machine.Snapshot, v view) {
	s.Clear()
	drawText(s, boardX, 0, styleTitle, "SUPER SLIDE")
	drawBoard(s, snap, v)
	drawDisplay(s, snap)
	drawButtons(s, snap)
	drawStatus(s, snap, v)
	s.Show()
}

func drawBoard(s tcell.Screen, snap machine.Snapshot, v view) {
	left, top := boardX-1, boardY-1
	right, bottom := boardX+boardWidth, boardY+boardHeight
	for x := left; x <= right; x++ {
		s.SetContent(x, top, '─', nil, styleFrame)
		s.SetContent(x, bottom, '─', nil, styleFrame)
	}
	for y := top; y <= bottom; y++ {
		s.SetContent(left, y, '│', nil, styleFrame)
		s.SetContent(right, y, '│', nil, styleFrame)
	}
	s.SetContent(left, top, '┌', nil, styleFrame)
	s.SetContent(right, top, '┐', nil, styleFrame)
	s.SetContent(left, bottom, '└', nil, styleFrame)
	s.SetContent(right, bottom, '┘', nil, styleFrame)

	exitX, _ := pieceOrigin(engine.ExitRect)
	exitW := (engine.ExitRect.ColEnd - engine.ExitRect.ColStart) * CellWidth
	fill(s, exitX, bottom, exitW, 1, ' ', styleDefault)
	drawText(s, exitX+exitW/2-2, bottom+1, styleDim, "exit")

	for _, p := range snap.Pieces {
		x, y := pieceOrigin(p.Rect)
		if snap.Shake != nil && snap.Shake.PieceID == p.ID {
			if snap.Shake.Axis == engine.Horizontal {
				x++
			} else {
				y++
			}
		}
		w := p.Shape.Width()*CellWidth - 1
		h := p.Shape.Height()*CellHeight - 1
		style := tcell.StyleDefault.Background(pieceColor(p.Shape)).Foreground(tcell.ColorBlack)
		fill(s, x, y, w, h, ' ', style)

		label := fmt.Sprint(p.ID)
		if p.ID == v.selected || p.ID == v.dragging {
			label = "[" + label + "]"
			style = style.Bold(true)
		}
		drawText(s, x+1, y, style, label)
	}
}

func drawDisplay(s tcell.Screen, snap machine.Snapshot) {
	for i, c := range snap.Display {
		x := lcdX + (i%lcd.Width)*lcdCellW
		y := lcdY + i/lcd.Width
		if c == lcd.Off {
			drawText(s, x, y, styleDim, "··")
			continue
		}
		drawText(s, x, y, tcell.StyleDefault.Foreground(colorOf(c)), "██")
	}
}

func drawButtons(s tcell.Screen, snap machine.Snapshot) {
	held := make(map[machine.Button]bool, len(snap.Holding))
	for _, b := range snap.Holding {
		held[b] = true
	}
	for i, b := range buttonOrder {
		x, y := buttonOrigin(i)
		style := styleFrame
		if held[b] {
			style = style.Reverse(true)
		}
		if b == machine.ButtonReset {
			style = style.Foreground(colorOf(lcd.Red))
		}
		drawText(s, x, y, style, "┌─────┐")
		drawText(s, x, y+1, style, "│"+buttonLabels[b]+"  │")
		drawText(s, x, y+2, style, "└─────┘")
	}
}

func drawStatus(s tcell.Screen, snap machine.Snapshot, v view) {
	lines := []string{fmt.Sprintf("Level %d/%d", snap.Level, snap.LevelCount)}
	if snap.Challenge {
		lines = append(lines, "Challenge")
	}
	switch snap.Screen {
	case machine.ScreenCountdown:
		if snap.Countdown != nil {
			lines = append(lines, fmt.Sprintf("Starting in %d", *snap.Countdown))
		}
	case machine.ScreenTimer:
		lines = append(lines, fmt.Sprintf("Time %ds", snap.Elapsed))
	case machine.ScreenVictory, machine.ScreenScore:
		if snap.Rating != nil {
			lines = append(lines, fmt.Sprintf("Time %ds  Rating %s", snap.Elapsed, *snap.Rating))
		}
	}
	if v.lastRun != nil {
		lines = append(lines, fmt.Sprintf("Last run: level %d in %ds (%s)", v.lastRun.Level, v.lastRun.Seconds, v.lastRun.Rating))
	}

	y := statusY
	for _, line := range lines {
		drawText(s, lcdX, y, styleDefault, line)
		y++
	}
	if snap.Won {
		drawText(s, lcdX, y, styleWin, "SOLVED!")
		y++
	}
	if v.message != "" {
		drawText(s, lcdX, y, styleDim, v.message)
	}

	help := []string{
		"drag pieces with the mouse",
		"tab/arrows move a piece",
		"p n r tap  P N R hold  q quit",
	}
	for i, line := range help {
		drawText(s, lcdX, boardY+boardHeight-len(help)+i+1, styleDim, line)
	}
}
