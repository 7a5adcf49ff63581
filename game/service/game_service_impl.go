package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/wricardo/superslide/game/engine"
	"github.com/wricardo/superslide/game/machine"
	"github.com/wricardo/superslide/game/runs"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	levels   LevelCatalog
	recorder RunRecorder
	issuer   TokenIssuer
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance. recorder and issuer
// may be nil, in which case run submission reports ErrRunsUnavailable.
func NewGameService(sessions SessionManager, levels LevelCatalog, recorder RunRecorder, issuer TokenIssuer) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		levels:   levels,
		recorder: recorder,
		issuer:   issuer,
	}
}

// CreateSession creates a new game session starting at level, or at level 1
// when level is zero.
func (s *gameServiceImpl) CreateSession(ctx context.Context, level int) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if level != 0 && (level < 1 || level > s.levels.Count()) {
		return nil, fmt.Errorf("%w: %d (catalog has levels 1..%d)", ErrLevelNotFound, level, s.levels.Count())
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", level)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Drag applies the end of a drag gesture to a session's board
func (s *gameServiceImpl) Drag(ctx context.Context, sessionID string, req DragRequest) (*DragResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	cell := req.CellSize
	if cell.Width <= 0 {
		cell.Width = 1
	}
	if cell.Height <= 0 {
		cell.Height = 1
	}

	outcome, err := sess.Machine.DragEnd(req.PieceID, req.Offset, cell)
	if err != nil {
		return nil, err
	}

	return &DragResult{
		DragOutcome: outcome,
		Snapshot:    sess.Machine.Snapshot(),
	}, nil
}

// Button forwards a press, release or tap of one of the three controls
func (s *gameServiceImpl) Button(ctx context.Context, sessionID, button string, action ButtonAction) (*machine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	b, err := machine.ParseButton(button)
	if err != nil {
		return nil, err
	}

	switch action {
	case ActionPress:
		err = sess.Machine.Press(b)
	case ActionRelease:
		err = sess.Machine.Release(b)
	case ActionTap:
		err = sess.Machine.Tap(b)
	default:
		return nil, fmt.Errorf("%w: %q (valid: press, release, tap)", ErrInvalidAction, action)
	}
	if err != nil {
		return nil, err
	}

	snap := sess.Machine.Snapshot()
	return &snap, nil
}

// GetSnapshot returns the current presentation snapshot of a session
func (s *gameServiceImpl) GetSnapshot(ctx context.Context, sessionID string) (*machine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	snap := sess.Machine.Snapshot()
	return &snap, nil
}

// ListPendingRuns returns the session's unsubmitted runs, newest first
func (s *gameServiceImpl) ListPendingRuns(ctx context.Context, sessionID string) ([]runs.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.PendingRuns(), nil
}

// SubmitRun submits a pending run. The run leaves the pending list once the
// store has answered; a missing token or a store failure keeps it pending.
func (s *gameServiceImpl) SubmitRun(ctx context.Context, sessionID, runID, token string) (*runs.SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recorder == nil {
		return nil, ErrRunsUnavailable
	}

	sess, run, err := s.pendingRun(sessionID, runID)
	if err != nil {
		return nil, err
	}

	result, err := s.recorder.Submit(ctx, token, run)
	if err != nil {
		log.Printf("Warning: Failed to submit run %s for session %s: %v", run.ID, sessionID, err)
		return nil, fmt.Errorf("failed to submit run: %w", err)
	}
	if result.NeedsAuth {
		return result, nil
	}

	sess.RemovePendingRun(run.ID)
	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("Warning: Failed to persist session %s after submit: %v", sessionID, err)
	}
	return result, nil
}

// DismissRun drops a pending run without submitting it
func (s *gameServiceImpl) DismissRun(ctx context.Context, sessionID, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, run, err := s.pendingRun(sessionID, runID)
	if err != nil {
		return err
	}

	sess.RemovePendingRun(run.ID)
	if err := s.sessions.Save(sessionID); err != nil {
		log.Printf("Warning: Failed to persist session %s after dismiss: %v", sessionID, err)
	}
	return nil
}

// Leaderboard returns the fastest recorded times on a level
func (s *gameServiceImpl) Leaderboard(ctx context.Context, level, limit int) ([]runs.LeaderboardEntry, error) {
	if s.recorder == nil {
		return nil, ErrRunsUnavailable
	}
	if level < 1 || level > s.levels.Count() {
		return nil, fmt.Errorf("%w: %d", ErrLevelNotFound, level)
	}
	entries, err := s.recorder.Leaderboard(ctx, level, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	if entries == nil {
		entries = []runs.LeaderboardEntry{}
	}
	return entries, nil
}

// PlayerRuns returns a player's best time on every level they finished
func (s *gameServiceImpl) PlayerRuns(ctx context.Context, playerID string) ([]runs.PlayerRun, error) {
	if s.recorder == nil {
		return nil, ErrRunsUnavailable
	}
	history, err := s.recorder.PlayerRuns(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player runs: %w", err)
	}
	if history == nil {
		history = []runs.PlayerRun{}
	}
	return history, nil
}

// IssueToken signs a guest player token
func (s *gameServiceImpl) IssueToken(ctx context.Context, username string) (*runs.Token, error) {
	if s.issuer == nil {
		return nil, ErrRunsUnavailable
	}
	return s.issuer.Issue(username)
}

// ListLevels returns every catalog level
func (s *gameServiceImpl) ListLevels(ctx context.Context) ([]*LevelInfo, error) {
	return s.levels.ListLevels()
}

// GetLevel returns one catalog level
func (s *gameServiceImpl) GetLevel(ctx context.Context, level int) (*LevelInfo, error) {
	levels, err := s.levels.ListLevels()
	if err != nil {
		return nil, err
	}
	for _, info := range levels {
		if info.Number == level {
			return info, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrLevelNotFound, level)
}

// touch fetches a session and bumps its last access time.
func (s *gameServiceImpl) touch(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *gameServiceImpl) pendingRun(sessionID, runID string) (*Session, runs.Run, error) {
	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, runs.Run{}, err
	}

	id, err := uuid.Parse(runID)
	if err != nil {
		return nil, runs.Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	run, ok := sess.PendingRun(id)
	if !ok {
		return nil, runs.Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return sess, run, nil
}

func sessionInfo(sess *Session) *SessionInfo {
	snap := sess.Machine.Snapshot()
	return &SessionInfo{
		ID:             sess.ID,
		Level:          snap.Level,
		ResumeLevel:    sess.ResumeLevel(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessed(),
		Snapshot:       snap,
		PendingRuns:    sess.PendingRuns(),
	}
}

// LevelSummary builds a LevelInfo from a layout.
func LevelSummary(number int, name string, par int, layout engine.Layout) *LevelInfo {
	return &LevelInfo{
		Number: number,
		Name:   name,
		Par:    par,
		Rows:   layout.Rows(),
		Pieces: len(engine.ParseLevel(layout)),
		Layout: layout,
	}
}
