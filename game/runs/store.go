package runs

import (
	"context"
	"sort"
	"sync"
)

// Store keeps each player's best run per level.
type Store interface {
	// RecordBest stores run as the player's best for its level when it is the
	// first or strictly faster. It reports whether it was stored and the
	// best time held before the call, if any.
	RecordBest(ctx context.Context, player Player, run Run) (saved bool, previous *int, err error)

	// Leaderboard returns the best times on a level, fastest first.
	Leaderboard(ctx context.Context, level, limit int) ([]LeaderboardEntry, error)

	// PlayerRuns returns a player's best times ordered by level.
	PlayerRuns(ctx context.Context, playerID string) ([]PlayerRun, error)

	Close() error
}

type bestRun struct {
	player Player
	run    Run
}

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	best map[int]map[string]*bestRun
	mu   sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{best: make(map[int]map[string]*bestRun)}
}

func (s *MemoryStore) RecordBest(ctx context.Context, player Player, run Run) (bool, *int, error) {
	if err := run.Validate(); err != nil {
		return false, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byPlayer := s.best[run.Level]
	if byPlayer == nil {
		byPlayer = make(map[string]*bestRun)
		s.best[run.Level] = byPlayer
	}

	current, exists := byPlayer[player.ID]
	if !exists {
		byPlayer[player.ID] = &bestRun{player: player, run: run}
		return true, nil, nil
	}

	previous := current.run.Seconds
	if run.Seconds < previous {
		byPlayer[player.ID] = &bestRun{player: player, run: run}
		return true, &previous, nil
	}
	return false, &previous, nil
}

func (s *MemoryStore) Leaderboard(ctx context.Context, level, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	s.mu.RLock()
	entries := make([]LeaderboardEntry, 0, len(s.best[level]))
	for _, b := range s.best[level] {
		entries = append(entries, LeaderboardEntry{
			PlayerID:   b.player.ID,
			Username:   b.player.Username,
			Seconds:    b.run.Seconds,
			Rating:     b.run.Rating,
			RecordedAt: b.run.FinishedAt,
		})
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Seconds != entries[j].Seconds {
			return entries[i].Seconds < entries[j].Seconds
		}
		return entries[i].RecordedAt.Before(entries[j].RecordedAt)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (s *MemoryStore) PlayerRuns(ctx context.Context, playerID string) ([]PlayerRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []PlayerRun
	for level, byPlayer := range s.best {
		if b, ok := byPlayer[playerID]; ok {
			out = append(out, PlayerRun{
				Level:      level,
				Seconds:    b.run.Seconds,
				Rating:     b.run.Rating,
				RecordedAt: b.run.FinishedAt,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
