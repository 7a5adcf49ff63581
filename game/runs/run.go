package runs

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wricardo/superslide/game/engine"
)

var (
	ErrInvalidRun       = errors.New("invalid run")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// DefaultLeaderboardLimit caps leaderboard queries that do not pass a limit.
const DefaultLeaderboardLimit = 20

// Run is one finished challenge.
type Run struct {
	ID         uuid.UUID     `json:"id"`
	SessionID  string        `json:"session_id,omitempty"`
	Level      int           `json:"level"`
	Seconds    int           `json:"seconds"`
	Rating     engine.Rating `json:"rating"`
	FinishedAt time.Time     `json:"finished_at"`
}

// NewRun stamps a fresh id on a finished challenge.
func NewRun(sessionID string, level, seconds int, rating engine.Rating, finishedAt time.Time) Run {
	return Run{
		ID:         uuid.New(),
		SessionID:  sessionID,
		Level:      level,
		Seconds:    seconds,
		Rating:     rating,
		FinishedAt: finishedAt,
	}
}

// Validate rejects runs no challenge could have produced.
func (r Run) Validate() error {
	if r.ID == uuid.Nil {
		return fmt.Errorf("%w: missing id", ErrInvalidRun)
	}
	if r.Level < 1 || r.Level > engine.MaxLevel {
		return fmt.Errorf("%w: level %d out of range", ErrInvalidRun, r.Level)
	}
	if r.Seconds < 0 {
		return fmt.Errorf("%w: negative time %d", ErrInvalidRun, r.Seconds)
	}
	if !r.Rating.Valid() {
		return fmt.Errorf("%w: unknown rating %q", ErrInvalidRun, r.Rating)
	}
	return nil
}

// Player identifies the owner of a submission.
type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// SubmitResult answers a submission. NeedsAuth means no valid token was
// given and nothing was stored.
type SubmitResult struct {
	NeedsAuth    bool `json:"needs_auth"`
	Saved        bool `json:"saved"`
	PreviousBest *int `json:"previous_best,omitempty"`
}

// LeaderboardEntry is one player's best time on a level.
type LeaderboardEntry struct {
	Rank       int           `json:"rank"`
	PlayerID   string        `json:"player_id"`
	Username   string        `json:"username"`
	Seconds    int           `json:"seconds"`
	Rating     engine.Rating `json:"rating"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// PlayerRun is a player's best time on one level.
type PlayerRun struct {
	Level      int           `json:"level"`
	Seconds    int           `json:"seconds"`
	Rating     engine.Rating `json:"rating"`
	RecordedAt time.Time     `json:"recorded_at"`
}
