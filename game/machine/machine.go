package machine

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/wricardo/superslide/game/engine"
	"github.com/wricardo/superslide/game/lcd"
)

var (
	ErrClosed        = errors.New("session machine closed")
	ErrUnknownButton = errors.New("unknown button")
	ErrNoLevels      = errors.New("catalog has no levels")
)

// Catalog is the read-only level source.
type Catalog interface {
	Layout(level int) (engine.Layout, error)
	Count() int
}

// Sink receives a snapshot after every processed event. Publish is called
// with the machine locked and must not call back into the machine.
type Sink interface {
	Publish(Snapshot)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Snapshot)

func (f SinkFunc) Publish(s Snapshot) { f(s) }

// ResumeStore persists the level a player wants to come back to.
type ResumeStore interface {
	SaveLevel(level int) error
}

// RunResult is a finished challenge run.
type RunResult struct {
	Level      int           `json:"level"`
	Seconds    int           `json:"seconds"`
	Rating     engine.Rating `json:"rating"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Shake marks a piece that refused a move.
type Shake struct {
	PieceID int         `json:"piece_id"`
	Axis    engine.Axis `json:"axis"`
}

// Options configures a Machine. Zero Timing and Thresholds use the defaults.
type Options struct {
	Level      int
	Catalog    Catalog
	Scheduler  Scheduler
	Timing     Timing
	Thresholds engine.Thresholds
	Sink       Sink
	Resume     ResumeStore
	OnRunEnd   func(RunResult)
}

// State is the full session state.
type State struct {
	Level     int
	Board     engine.Board
	Challenge bool
	Won       bool
	Shake     *Shake
	Phase     Phase
}

type roleTimer struct {
	gen   uint64
	timer Timer
}

type hold struct {
	pressedAt time.Time
	armed     bool
	fired     bool
}

// Machine is the state machine for one session.
type Machine struct {
	mu         sync.Mutex
	catalog    Catalog
	scheduler  Scheduler
	timing     Timing
	thresholds engine.Thresholds
	sink       Sink
	resume     ResumeStore
	onRunEnd   func(RunResult)

	state  State
	layout engine.Layout
	timers map[TimerRole]*roleTimer
	gen    uint64
	holds  map[Button]*hold
	seq    uint64
	closed bool
}

// New creates a machine resting on the level preview of opts.Level, clamped
// to the catalog. Call Mount to play the entry animation.
func New(opts Options) (*Machine, error) {
	if opts.Catalog == nil || opts.Catalog.Count() < 1 {
		return nil, ErrNoLevels
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewRealScheduler()
	}
	if opts.Timing == (Timing{}) {
		opts.Timing = DefaultTiming()
	}
	if err := opts.Timing.Validate(); err != nil {
		return nil, err
	}
	if opts.Thresholds == (engine.Thresholds{}) {
		opts.Thresholds = engine.DefaultThresholds
	}

	m := &Machine{
		catalog:    opts.Catalog,
		scheduler:  opts.Scheduler,
		timing:     opts.Timing,
		thresholds: opts.Thresholds,
		sink:       opts.Sink,
		resume:     opts.Resume,
		onRunEnd:   opts.OnRunEnd,
		timers:     make(map[TimerRole]*roleTimer),
		holds:      make(map[Button]*hold),
	}

	level := ClampLevel(opts.Level, opts.Catalog.Count())
	layout, err := opts.Catalog.Layout(level)
	if err != nil {
		return nil, fmt.Errorf("failed to load level %d: %w", level, err)
	}
	m.layout = layout
	m.state = State{
		Level: level,
		Board: engine.NewBoard(layout),
		Phase: PreviewPhase{},
	}
	return m, nil
}

// ClampLevel forces level into 1..count.
func ClampLevel(level, count int) int {
	if level < 1 {
		return 1
	}
	if level > count {
		return count
	}
	return level
}

// Mount starts the session with the level-number entry animation.
func (m *Machine) Mount() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.enterLevelNumber()
	m.publish()
}

// Close cancels every outstanding timer. Later events are ignored.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	for role := range m.timers {
		m.cancel(role)
	}
	m.holds = make(map[Button]*hold)
	m.closed = true
}

// Closed reports whether Close was called.
func (m *Machine) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Level returns the current level number.
func (m *Machine) Level() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Level
}

// ActiveTimers lists the roles with an outstanding timer.
func (m *Machine) ActiveTimers() []TimerRole {
	m.mu.Lock()
	defer m.mu.Unlock()
	roles := make([]TimerRole, 0, len(m.timers))
	for role := range m.timers {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

// DragOutcome reports what a drag did. Ignored means the current screen does
// not accept moves.
type DragOutcome struct {
	Outcome engine.Outcome    `json:"outcome"`
	Move    engine.MoveResult `json:"move"`
	Won     bool              `json:"won"`
}

// Ignored is the outcome of a drag the current screen does not accept.
const Ignored engine.Outcome = "ignored"

// DragEnd applies the terminal offset of a drag on a piece.
func (m *Machine) DragEnd(pieceID int, offset engine.Offset, cell engine.CellSize) (DragOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return DragOutcome{Outcome: Ignored}, ErrClosed
	}
	if !m.dragAllowed() {
		return DragOutcome{Outcome: Ignored, Move: engine.MoveResult{PieceID: pieceID}}, nil
	}

	res, err := m.state.Board.Drag(pieceID, offset, cell, m.thresholds)
	if err != nil {
		return DragOutcome{Outcome: res.Outcome, Move: res.MoveResult}, err
	}

	out := DragOutcome{Outcome: res.Outcome, Move: res.MoveResult}
	switch res.Outcome {
	case engine.Rejected:
		m.state.Shake = &Shake{PieceID: pieceID, Axis: res.Axis}
		m.schedule(RoleShake, m.timing.Shake, m.clearShake)
	case engine.Moved:
		m.state.Board = res.Board
		if res.Board.Won() {
			m.win()
			out.Won = true
		}
	default:
		return out, nil
	}
	m.publish()
	return out, nil
}

// dragAllowed gates moves: challenges only move on the running timer, normal
// play on the preview and level-number screens, and a displayed win freezes
// the board until reset.
func (m *Machine) dragAllowed() bool {
	if m.state.Won {
		return false
	}
	switch m.state.Phase.(type) {
	case TimerPhase:
		return m.state.Challenge
	case PreviewPhase, LevelNumberPhase:
		return !m.state.Challenge
	}
	return false
}

// schedule starts role after d, cancelling any previous instance of it.
func (m *Machine) schedule(role TimerRole, d time.Duration, handler func()) {
	m.cancel(role)
	m.gen++
	gen := m.gen
	rt := &roleTimer{gen: gen}
	m.timers[role] = rt
	rt.timer = m.scheduler.AfterFunc(d, func() { m.fire(role, gen, handler) })
}

func (m *Machine) cancel(role TimerRole) {
	if rt, ok := m.timers[role]; ok {
		if rt.timer != nil {
			rt.timer.Stop()
		}
		delete(m.timers, role)
	}
}

// fire runs a timer handler unless the role was cancelled or rescheduled
// since this instance was created.
func (m *Machine) fire(role TimerRole, gen uint64, handler func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, ok := m.timers[role]
	if m.closed || !ok || rt.gen != gen {
		return
	}
	delete(m.timers, role)
	handler()
	m.publish()
}

// enter switches to phase p and cancels the screen-bound timers that do not
// apply to it.
func (m *Machine) enter(p Phase) {
	for _, role := range screenBoundRoles {
		if !roleApplies(p.Screen(), role) {
			m.cancel(role)
		}
	}
	m.state.Phase = p
}

func (m *Machine) enterLevelNumber() {
	m.enter(LevelNumberPhase{Frames: lcd.LevelNumberFrames(m.state.Level)})
	m.schedule(RoleAnimation, m.timing.LevelNumberFrame, m.levelNumberTick)
}

func (m *Machine) levelNumberTick() {
	p, ok := m.state.Phase.(LevelNumberPhase)
	if !ok {
		return
	}
	if p.Index+1 >= len(p.Frames) {
		m.enter(PreviewPhase{})
		return
	}
	p.Index++
	m.state.Phase = p
	m.schedule(RoleAnimation, m.timing.LevelNumberFrame, m.levelNumberTick)
}

// changeLevel loads a level, replaces the board and replays the entry
// animation.
func (m *Machine) changeLevel(level int) {
	layout, err := m.catalog.Layout(level)
	if err != nil {
		log.Printf("Warning: failed to load level %d: %v", level, err)
		return
	}
	m.layout = layout
	m.state.Level = level
	m.state.Board = engine.NewBoard(layout)
	m.state.Won = false
	m.clearShake()
	m.enterLevelNumber()
}

func (m *Machine) startChallengeSequence() {
	m.clearShake()
	m.enter(IntroPhase{})
	m.schedule(RoleChallengeIntro, m.timing.ChallengeIntro, m.introDone)
}

func (m *Machine) introDone() {
	if _, ok := m.state.Phase.(IntroPhase); !ok {
		return
	}
	m.enter(CountdownPhase{Value: m.timing.CountdownFrom})
	m.schedule(RoleCountdown, m.timing.CountdownStep, m.countdownStep)
}

func (m *Machine) countdownStep() {
	p, ok := m.state.Phase.(CountdownPhase)
	if !ok {
		return
	}
	if p.Value > 1 {
		m.state.Phase = CountdownPhase{Value: p.Value - 1}
		m.schedule(RoleCountdown, m.timing.CountdownStep, m.countdownStep)
		return
	}
	m.state.Board = engine.NewBoard(m.layout)
	m.state.Won = false
	m.enter(TimerPhase{})
	m.schedule(RoleElapsed, m.timing.ElapsedTick, m.elapsedTick)
}

func (m *Machine) elapsedTick() {
	p, ok := m.state.Phase.(TimerPhase)
	if !ok {
		return
	}
	elapsed := p.Elapsed + 1
	if elapsed >= m.timing.TimeLimit {
		m.enterScore(elapsed, engine.RatingF)
		return
	}
	m.state.Phase = TimerPhase{Elapsed: elapsed}
	m.schedule(RoleElapsed, m.timing.ElapsedTick, m.elapsedTick)
}

func (m *Machine) win() {
	m.state.Won = true
	m.clearShake()
	victory := VictoryPhase{}
	if p, ok := m.state.Phase.(TimerPhase); ok && m.state.Challenge {
		victory.Elapsed = p.Elapsed
		victory.Rating = engine.RatingFor(p.Elapsed)
	}
	m.enter(victory)
	m.schedule(RoleAnimation, m.timing.VictoryFrame, m.victoryTick)
}

func (m *Machine) victoryTick() {
	p, ok := m.state.Phase.(VictoryPhase)
	if !ok {
		return
	}
	p.Index = (p.Index + 1) % m.timing.VictoryFrames
	if p.Index == 0 {
		p.Cycle++
	}
	if p.Cycle < m.timing.VictoryCycles {
		m.state.Phase = p
		m.schedule(RoleAnimation, m.timing.VictoryFrame, m.victoryTick)
		return
	}

	if m.state.Challenge {
		rating := p.Rating
		if rating == "" {
			rating = engine.RatingFor(p.Elapsed)
		}
		m.enterScore(p.Elapsed, rating)
		return
	}

	// Normal play moves on to the next level but leaves the solved board
	// and win flag showing until the next reset.
	if next := m.state.Level + 1; next <= m.catalog.Count() {
		if layout, err := m.catalog.Layout(next); err == nil {
			m.layout = layout
			m.state.Level = next
		} else {
			log.Printf("Warning: failed to load level %d: %v", next, err)
		}
	}
	m.enterLevelNumber()
}

func (m *Machine) enterScore(elapsed int, rating engine.Rating) {
	m.enter(ScorePhase{Elapsed: elapsed, Rating: rating})
	m.schedule(RoleScoreDwell, m.timing.ScoreDwell, m.scoreDone)
	if m.onRunEnd != nil {
		m.onRunEnd(RunResult{
			Level:      m.state.Level,
			Seconds:    elapsed,
			Rating:     rating,
			FinishedAt: m.scheduler.Now(),
		})
	}
}

// scoreDone returns to the preview. A live challenge is re-armed with a
// fresh board; otherwise this is a full reset.
func (m *Machine) scoreDone() {
	if _, ok := m.state.Phase.(ScorePhase); !ok {
		return
	}
	if m.state.Challenge {
		m.state.Board = engine.NewBoard(m.layout)
	}
	m.state.Won = false
	m.enter(PreviewPhase{})
}

func (m *Machine) deactivateChallenge() {
	m.state.Challenge = false
	m.cancel(RoleResetHold)
	m.state.Board = engine.NewBoard(m.layout)
	m.state.Won = false
	m.clearShake()
	m.enter(PreviewPhase{})
}

// replay restores the level's initial layout outside a challenge.
func (m *Machine) replay() {
	m.state.Board = engine.NewBoard(m.layout)
	m.state.Won = false
	m.clearShake()
	if _, ok := m.state.Phase.(VictoryPhase); ok {
		m.enter(PreviewPhase{})
	}
}

func (m *Machine) clearShake() {
	m.cancel(RoleShake)
	m.state.Shake = nil
}

func (m *Machine) publish() {
	m.seq++
	if m.sink != nil {
		m.sink.Publish(m.snapshotLocked())
	}
}
