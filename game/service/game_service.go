package service

import (
	"context"
	"errors"

	"github.com/wricardo/superslide/game/engine"
	"github.com/wricardo/superslide/game/machine"
	"github.com/wricardo/superslide/game/runs"
)

var (
	ErrLevelNotFound   = errors.New("level not found")
	ErrRunNotFound     = errors.New("run not found")
	ErrInvalidAction   = errors.New("invalid button action")
	ErrRunsUnavailable = errors.New("run submission is not configured")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, level int) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Gestures
	Drag(ctx context.Context, sessionID string, req DragRequest) (*DragResult, error)
	Button(ctx context.Context, sessionID, button string, action ButtonAction) (*machine.Snapshot, error)

	// Game State
	GetSnapshot(ctx context.Context, sessionID string) (*machine.Snapshot, error)

	// Runs
	ListPendingRuns(ctx context.Context, sessionID string) ([]runs.Run, error)
	SubmitRun(ctx context.Context, sessionID, runID, token string) (*runs.SubmitResult, error)
	DismissRun(ctx context.Context, sessionID, runID string) error
	Leaderboard(ctx context.Context, level, limit int) ([]runs.LeaderboardEntry, error)
	PlayerRuns(ctx context.Context, playerID string) ([]runs.PlayerRun, error)
	IssueToken(ctx context.Context, username string) (*runs.Token, error)

	// Levels
	ListLevels(ctx context.Context) ([]*LevelInfo, error)
	GetLevel(ctx context.Context, level int) (*LevelInfo, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, level int) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// LevelCatalog serves level layouts by number
type LevelCatalog interface {
	Count() int
	Layout(level int) (engine.Layout, error)
	ListLevels() ([]*LevelInfo, error)
}

// RunRecorder stores submitted runs and answers leaderboard queries
type RunRecorder interface {
	Submit(ctx context.Context, token string, run runs.Run) (*runs.SubmitResult, error)
	Leaderboard(ctx context.Context, level, limit int) ([]runs.LeaderboardEntry, error)
	PlayerRuns(ctx context.Context, playerID string) ([]runs.PlayerRun, error)
}

// TokenIssuer hands out player tokens
type TokenIssuer interface {
	Issue(username string) (*runs.Token, error)
}
