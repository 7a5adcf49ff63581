package terminal

import (
	"context"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/superslide/game/engine"
	"github.com/wricardo/superslide/game/machine"
)

// Game is the part of a session machine the terminal drives.
type Game interface {
	Press(machine.Button) error
	Release(machine.Button) error
	Tap(machine.Button) error
	DragEnd(pieceID int, offset engine.Offset, cell engine.CellSize) (machine.DragOutcome, error)
	Snapshot() machine.Snapshot
}

type dragState struct {
	pieceID int
	x, y    int
}

// Client renders snapshots to a tcell screen and turns mouse and keyboard
// input into gestures. It implements machine.Sink.
type Client struct {
	screen tcell.Screen
	game   Game
	sound  Sounder
	hold   time.Duration

	updates chan machine.Snapshot
	runs    chan machine.RunResult

	snap      machine.Snapshot
	hasSnap   bool
	view      view
	mouseDown bool
	pressed   machine.Button
	drag      *dragState
}

// NewClient creates a client drawing on screen. hold is how long a
// keyboard long-press keeps its button down. A nil sound plays nothing.
func NewClient(screen tcell.Screen, sound Sounder, hold time.Duration) *Client {
	if sound == nil {
		sound = silent{}
	}
	return &Client{
		screen:  screen,
		sound:   sound,
		hold:    hold,
		updates: make(chan machine.Snapshot, 1),
		runs:    make(chan machine.RunResult, 4),
	}
}

// Attach sets the game the client sends gestures to.
func (c *Client) Attach(game Game) {
	c.game = game
	c.apply(game.Snapshot())
}

// Publish keeps only the newest snapshot. It never blocks, so it is safe to
// call with the machine locked.
func (c *Client) Publish(s machine.Snapshot) {
	select {
	case c.updates <- s:
		return
	default:
	}
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- s:
	default:
	}
}

// RunEnded records a finished challenge run for the status panel.
func (c *Client) RunEnded(r machine.RunResult) {
	select {
	case c.runs <- r:
	default:
		log.Printf("Warning: dropped run result for level %d", r.Level)
	}
}

// Run draws and handles input until ctx is done or the player quits.
func (c *Client) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	c.redraw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !c.handleEvent(ev) {
				return nil
			}
			c.sync()
		case snap := <-c.updates:
			c.apply(snap)
		case r := <-c.runs:
			c.recordRun(r)
		}
		c.redraw()
	}
}

// sync applies pending updates without blocking.
func (c *Client) sync() {
	for {
		select {
		case snap := <-c.updates:
			c.apply(snap)
		case r := <-c.runs:
			c.recordRun(r)
		default:
			return
		}
	}
}

func (c *Client) recordRun(r machine.RunResult) {
	run := r
	c.view.lastRun = &run
	log.Printf("Challenge run finished: level %d in %ds (%s)", r.Level, r.Seconds, r.Rating)
}

func (c *Client) apply(snap machine.Snapshot) {
	if c.hasSnap && snap.Sequence < c.snap.Sequence {
		return
	}
	var prev *machine.Snapshot
	if c.hasSnap {
		prev = &c.snap
	}
	for _, cue := range Cues(prev, snap) {
		c.sound.Play(cue)
	}
	c.snap = snap
	c.hasSnap = true
}

func (c *Client) redraw() {
	draw(c.screen, c.snap, c.view)
}

// handleEvent processes one input event. It returns false to quit.
func (c *Client) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return c.handleKey(ev)
	case *tcell.EventMouse:
		c.handleMouse(ev)
	case *tcell.EventResize:
		c.screen.Sync()
	}
	return true
}

var keyButtons = map[rune]machine.Button{
	'p': machine.ButtonPrev,
	'n': machine.ButtonNext,
	'r': machine.ButtonReset,
}

func (c *Client) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyTab:
		c.selectNext()
		return true
	case tcell.KeyLeft:
		c.nudge(-1, 0, ev.Modifiers()&tcell.ModShift != 0)
		return true
	case tcell.KeyRight:
		c.nudge(1, 0, ev.Modifiers()&tcell.ModShift != 0)
		return true
	case tcell.KeyUp:
		c.nudge(0, -1, ev.Modifiers()&tcell.ModShift != 0)
		return true
	case tcell.KeyDown:
		c.nudge(0, 1, ev.Modifiers()&tcell.ModShift != 0)
		return true
	case tcell.KeyRune:
	default:
		return true
	}

	r := ev.Rune()
	if r == 'q' {
		return false
	}
	if b, ok := keyButtons[r]; ok {
		c.report(c.game.Tap(b))
		return true
	}
	if b, ok := keyButtons[r+'a'-'A']; ok && r >= 'A' && r <= 'Z' {
		c.longPress(b)
	}
	return true
}

// longPress holds b past the hold threshold, then releases it.
func (c *Client) longPress(b machine.Button) {
	if err := c.game.Press(b); err != nil {
		c.report(err)
		return
	}
	game := c.game
	time.AfterFunc(c.hold+100*time.Millisecond, func() {
		if err := game.Release(b); err != nil && err != machine.ErrClosed {
			log.Printf("Release %s failed: %v", b, err)
		}
	})
}

// selectNext moves the keyboard selection to the next movable piece.
func (c *Client) selectNext() {
	var movable []int
	for _, p := range c.snap.Pieces {
		if p.Draggable.Movable() {
			movable = append(movable, p.ID)
		}
	}
	if len(movable) == 0 {
		c.view.selected = 0
		return
	}
	for _, id := range movable {
		if id > c.view.selected {
			c.view.selected = id
			return
		}
	}
	c.view.selected = movable[0]
}

// nudge drags the selected piece one cell, or two with far set.
func (c *Client) nudge(dx, dy int, far bool) {
	if c.view.selected == 0 {
		c.selectNext()
		if c.view.selected == 0 {
			return
		}
	}
	cells := 1.0
	if far {
		cells = 2.0
	}
	offset := engine.Offset{X: float64(dx) * cells * CellWidth, Y: float64(dy) * cells * CellHeight}
	c.dragEnd(c.view.selected, offset)
}

func (c *Client) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	down := ev.Buttons()&tcell.Button1 != 0

	switch {
	case down && !c.mouseDown:
		c.mouseDown = true
		if b, ok := buttonAt(x, y); ok {
			c.pressed = b
			c.report(c.game.Press(b))
			return
		}
		if id, ok := pieceAt(c.snap.Pieces, x, y); ok {
			c.drag = &dragState{pieceID: id, x: x, y: y}
			c.view.dragging = id
			c.view.selected = id
		}

	case !down && c.mouseDown:
		c.mouseDown = false
		if c.pressed != "" {
			b := c.pressed
			c.pressed = ""
			c.report(c.game.Release(b))
		}
		if c.drag != nil {
			d := c.drag
			c.drag = nil
			c.view.dragging = 0
			c.dragEnd(d.pieceID, engine.Offset{X: float64(x - d.x), Y: float64(y - d.y)})
		}
	}
}

func (c *Client) dragEnd(pieceID int, offset engine.Offset) {
	out, err := c.game.DragEnd(pieceID, offset, cellSize)
	if err != nil {
		c.report(err)
		return
	}
	switch out.Outcome {
	case engine.Moved:
		c.view.message = ""
	case engine.Rejected:
		c.view.message = "blocked"
	case machine.Ignored:
		c.view.message = "board is locked"
	}
}

func (c *Client) report(err error) {
	if err == nil {
		return
	}
	log.Printf("Gesture failed: %v", err)
	c.view.message = err.Error()
}
