package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wricardo/superslide/game/engine"
	"github.com/wricardo/superslide/game/machine"
	"github.com/wricardo/superslide/game/runs"
)

// MaxPendingRuns is how many finished challenges a session keeps waiting
// for submission. Older runs drop off.
const MaxPendingRuns = 3

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string           `json:"id"`
	Level          int              `json:"level"`
	ResumeLevel    int              `json:"resume_level"`
	CreatedAt      time.Time        `json:"created_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
	Snapshot       machine.Snapshot `json:"snapshot"`
	PendingRuns    []runs.Run       `json:"pending_runs"`
}

// LevelInfo provides information about a catalog level
type LevelInfo struct {
	Number int           `json:"number"`
	Name   string        `json:"name"`
	Par    int           `json:"par,omitempty"`
	Rows   []string      `json:"rows"`
	Pieces int           `json:"pieces"`
	Layout engine.Layout `json:"layout"`
}

// DragRequest is the end of a drag gesture: the piece, its final pointer
// offset and the rendered cell size in the same units. A zero cell size
// means the offset is already in cells.
type DragRequest struct {
	PieceID int `json:"piece_id"`
	engine.Offset
	engine.CellSize
}

// DragResult contains the outcome of a drag and the state after it
type DragResult struct {
	machine.DragOutcome
	Snapshot machine.Snapshot `json:"snapshot"`
}

// ButtonAction is what happened to a control.
type ButtonAction string

const (
	ActionPress   ButtonAction = "press"
	ActionRelease ButtonAction = "release"
	ActionTap     ButtonAction = "tap"
)

// Session represents an active game session
type Session struct {
	ID        string
	Machine   *machine.Machine
	CreatedAt time.Time

	mu           sync.Mutex
	lastAccessed time.Time
	pending      []runs.Run
	resumeLevel  int
}

// LastAccessed is when the session was last used.
func (s *Session) LastAccessed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccessed
}

// Touch records an access at t.
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessed = t
}

// AddPendingRun puts run at the front of the pending list, dropping the
// oldest beyond MaxPendingRuns.
func (s *Session) AddPendingRun(run runs.Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append([]runs.Run{run}, s.pending...)
	if len(s.pending) > MaxPendingRuns {
		s.pending = s.pending[:MaxPendingRuns]
	}
}

// PendingRuns returns the pending runs, newest first.
func (s *Session) PendingRuns() []runs.Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]runs.Run, len(s.pending))
	copy(out, s.pending)
	return out
}

// SetPendingRuns replaces the pending list, keeping at most MaxPendingRuns.
func (s *Session) SetPendingRuns(pending []runs.Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(pending) > MaxPendingRuns {
		pending = pending[:MaxPendingRuns]
	}
	s.pending = append([]runs.Run(nil), pending...)
}

// PendingRun finds a pending run by id.
func (s *Session) PendingRun(id uuid.UUID) (runs.Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, run := range s.pending {
		if run.ID == id {
			return run, true
		}
	}
	return runs.Run{}, false
}

// RemovePendingRun drops a pending run and reports whether it was there.
func (s *Session) RemovePendingRun(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, run := range s.pending {
		if run.ID == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return true
		}
	}
	return false
}

// ResumeLevel is the level saved by the last long-press of previous.
func (s *Session) ResumeLevel() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resumeLevel
}

// SetResumeLevel records the level to resume from.
func (s *Session) SetResumeLevel(level int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resumeLevel = level
}
