package terminal

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/superslide/game/catalog"
	"github.com/wricardo/superslide/game/engine"
	"github.com/wricardo/superslide/game/machine"
)

type recordingSounder struct {
	cues []Cue
}

func (r *recordingSounder) Play(c Cue) { r.cues = append(r.cues, c) }

type fixture struct {
	client *Client
	game   *machine.Machine
	sched  *machine.ManualScheduler
	screen tcell.SimulationScreen
	sound  *recordingSounder
}

// newFixture starts a client on level 1 of the built-in catalog, resting on
// the level preview.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(100, 40)
	t.Cleanup(screen.Fini)

	sound := &recordingSounder{}
	sched := machine.NewManualScheduler(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	client := NewClient(screen, sound, machine.DefaultTiming().HoldThreshold)

	m, err := machine.New(machine.Options{
		Level:     1,
		Catalog:   catalog.Default(),
		Scheduler: sched,
		Sink:      client,
		OnRunEnd:  client.RunEnded,
	})
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client.Attach(m)

	return &fixture{client: client, game: m, sched: sched, screen: screen, sound: sound}
}

func (f *fixture) send(ev tcell.Event) bool {
	ok := f.client.handleEvent(ev)
	f.client.sync()
	return ok
}

func (f *fixture) mouse(x, y int, buttons tcell.ButtonMask) {
	f.send(tcell.NewEventMouse(x, y, buttons, tcell.ModNone))
}

func (f *fixture) key(k tcell.Key, r rune) bool {
	return f.send(tcell.NewEventKey(k, r, tcell.ModNone))
}

func pieceRect(t *testing.T, snap machine.Snapshot, id int) engine.Rect {
	t.Helper()
	for _, p := range snap.Pieces {
		if p.ID == id {
			return p.Rect
		}
	}
	t.Fatalf("piece %d not on the board", id)
	return engine.Rect{}
}

func screenText(s tcell.SimulationScreen) []string {
	cells, w, h := s.GetContents()
	rows := make([]string, h)
	for y := 0; y < h; y++ {
		var b strings.Builder
		for x := 0; x < w; x++ {
			runes := cells[y*w+x].Runes
			if len(runes) == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteRune(runes[0])
		}
		rows[y] = b.String()
	}
	return rows
}

func TestMouseDragMovesPiece(t *testing.T) {
	f := newFixture(t)

	// Piece 2 is the unit in row 1, column 2.
	x, y := boardX+CellWidth+1, boardY+1
	f.mouse(x, y, tcell.Button1)
	assert.Equal(t, 2, f.client.view.dragging)

	f.mouse(x+CellWidth, y, tcell.ButtonNone)
	assert.Equal(t, 0, f.client.view.dragging)

	rect := pieceRect(t, f.game.Snapshot(), 2)
	assert.Equal(t, 3, rect.ColStart)
	assert.Equal(t, 2, f.client.view.selected)
}

func TestMouseDragRejectedShakes(t *testing.T) {
	f := newFixture(t)

	x, y := boardX+1, boardY+1
	f.mouse(x, y, tcell.Button1)
	f.mouse(x-CellWidth, y, tcell.ButtonNone)

	snap := f.client.snap
	require.NotNil(t, snap.Shake)
	assert.Equal(t, 1, snap.Shake.PieceID)
	assert.Equal(t, engine.Horizontal, snap.Shake.Axis)
	assert.Contains(t, f.sound.cues, CueShake)
	assert.Equal(t, "blocked", f.client.view.message)
}

func TestMouseButtonTapAndHold(t *testing.T) {
	f := newFixture(t)
	nextX, nextY := buttonOrigin(1)

	f.mouse(nextX+2, nextY+1, tcell.Button1)
	f.mouse(nextX+2, nextY+1, tcell.ButtonNone)
	assert.Equal(t, 2, f.game.Snapshot().Level)

	// Back on the preview of level 2, hold next to start a challenge.
	f.sched.Advance(time.Minute)
	require.Equal(t, machine.ScreenLevelPreview, f.game.Snapshot().Screen)

	f.mouse(nextX+2, nextY+1, tcell.Button1)
	assert.Contains(t, f.game.Snapshot().Holding, machine.ButtonNext)
	f.sched.Advance(machine.DefaultTiming().HoldThreshold)
	f.mouse(nextX+2, nextY+1, tcell.ButtonNone)
	f.client.sync()

	snap := f.game.Snapshot()
	assert.True(t, snap.Challenge)
	assert.Equal(t, machine.ScreenChallengeIntro, snap.Screen)
	assert.Empty(t, snap.Holding)
}

func TestKeyboardControls(t *testing.T) {
	f := newFixture(t)

	// Level 1 has free cells at the end of row 1, so pieces 2, 5 and 6 can move.
	require.True(t, f.key(tcell.KeyTab, 0))
	assert.Equal(t, 2, f.client.view.selected)
	f.key(tcell.KeyTab, 0)
	assert.Equal(t, 5, f.client.view.selected)
	f.key(tcell.KeyTab, 0)
	f.key(tcell.KeyTab, 0)
	assert.Equal(t, 2, f.client.view.selected)

	f.key(tcell.KeyRight, 0)
	assert.Equal(t, 3, pieceRect(t, f.game.Snapshot(), 2).ColStart)

	f.key(tcell.KeyRune, 'n')
	assert.Equal(t, 2, f.game.Snapshot().Level)

	assert.False(t, f.key(tcell.KeyRune, 'q'))
	assert.False(t, f.key(tcell.KeyEscape, 0))
}

func TestPublishKeepsNewest(t *testing.T) {
	client := NewClient(nil, nil, time.Second)
	for seq := uint64(1); seq <= 3; seq++ {
		client.Publish(machine.Snapshot{Sequence: seq})
	}
	client.sync()
	assert.Equal(t, uint64(3), client.snap.Sequence)

	// Older snapshots never replace newer ones.
	client.Publish(machine.Snapshot{Sequence: 2})
	client.sync()
	assert.Equal(t, uint64(3), client.snap.Sequence)
}

func TestRunEndedShowsLastRun(t *testing.T) {
	client := NewClient(nil, nil, time.Second)
	client.RunEnded(machine.RunResult{Level: 4, Seconds: 12, Rating: engine.RatingA})
	client.sync()

	require.NotNil(t, client.view.lastRun)
	assert.Equal(t, 4, client.view.lastRun.Level)
}

func TestDraw(t *testing.T) {
	f := newFixture(t)
	f.client.view.selected = 2
	f.client.redraw()

	rows := screenText(f.screen)
	assert.Contains(t, rows[0], "SUPER SLIDE")
	assert.Contains(t, rows[statusY], "Level 1/11")
	assert.Contains(t, rows[boardY], "[2]")
	assert.Contains(t, rows[boardY+boardHeight+1], "exit")
	assert.Contains(t, rows[buttonY+1], "◀")
}
