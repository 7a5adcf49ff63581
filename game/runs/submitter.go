package runs

import (
	"context"
	"errors"
	"fmt"
)

// Verifier resolves a token to a player.
type Verifier interface {
	Verify(token string) (Player, error)
}

// Submitter checks credentials and records runs in a Store.
type Submitter struct {
	store    Store
	verifier Verifier
}

// NewSubmitter creates a submitter.
func NewSubmitter(store Store, verifier Verifier) *Submitter {
	return &Submitter{store: store, verifier: verifier}
}

// Submit records run for the player named by token. A missing or invalid
// token yields NeedsAuth with no error so the caller can keep the run and
// retry after signing in.
func (s *Submitter) Submit(ctx context.Context, token string, run Run) (*SubmitResult, error) {
	player, err := s.verifier.Verify(token)
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			return &SubmitResult{NeedsAuth: true}, nil
		}
		return nil, err
	}

	saved, previous, err := s.store.RecordBest(ctx, player, run)
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	return &SubmitResult{Saved: saved, PreviousBest: previous}, nil
}

// Leaderboard returns the fastest players on a level.
func (s *Submitter) Leaderboard(ctx context.Context, level, limit int) ([]LeaderboardEntry, error) {
	return s.store.Leaderboard(ctx, level, limit)
}

// PlayerRuns returns a player's best times.
func (s *Submitter) PlayerRuns(ctx context.Context, playerID string) ([]PlayerRun, error) {
	return s.store.PlayerRuns(ctx, playerID)
}
