package session

import (
	"time"

	"github.com/wricardo/superslide/game/runs"
	"github.com/wricardo/superslide/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves the stored data of a session by ID
	Load(id string) (*PersistedSessionData, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData represents the JSON structure for persisted sessions.
// Only the resume level and pending runs survive a restart; a restored
// session starts over on the preview of its resume level.
type PersistedSessionData struct {
	ID             string     `json:"id"`
	ResumeLevel    int        `json:"resume_level"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt time.Time  `json:"last_accessed_at"`
	PendingRuns    []runs.Run `json:"pending_runs"`
}

func persistedData(session *service.Session) PersistedSessionData {
	return PersistedSessionData{
		ID:             session.ID,
		ResumeLevel:    session.ResumeLevel(),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessed(),
		PendingRuns:    session.PendingRuns(),
	}
}
