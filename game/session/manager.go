package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/superslide/game/engine"
	"github.com/wricardo/superslide/game/machine"
	"github.com/wricardo/superslide/game/runs"
	"github.com/wricardo/superslide/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)

// ValidateID rejects ids that cannot double as a file name.
func ValidateID(id string) error {
	if !sessionIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	return nil
}

// Publisher receives every snapshot a session's machine produces.
type Publisher interface {
	PublishSnapshot(sessionID string, snap machine.Snapshot)
}

// Options configures the machines a Manager builds for its sessions.
type Options struct {
	Catalog     machine.Catalog
	Scheduler   machine.Scheduler
	Timing      machine.Timing
	Thresholds  engine.Thresholds
	Publisher   Publisher
	Persistence SessionPersistence
}

// Manager handles game session lifecycle
type Manager struct {
	sessions    map[string]*service.Session
	opts        Options
	persistence SessionPersistence
	mu          sync.RWMutex
}

// NewManager creates a new session manager
func NewManager(opts Options) *Manager {
	return &Manager{
		sessions:    make(map[string]*service.Session),
		opts:        opts,
		persistence: opts.Persistence,
	}
}

// Create creates a new session with the given ID, resting on level. An
// empty ID is generated; level 0 starts at level 1.
func (m *Manager) Create(id string, level int) (*service.Session, error) {
	if id == "" {
		id = m.generateSessionID()
	}
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.sessionExists(id) {
		m.mu.Unlock()
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	session, err := m.build(PersistedSessionData{
		ID:             id,
		ResumeLevel:    level,
		CreatedAt:      now,
		LastAccessedAt: now,
	})
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.sessions[strings.ToLower(id)] = session

	if m.persistence != nil {
		if err := m.persistence.Save(session); err != nil {
			log.Printf("Warning: Failed to persist session %s: %v", id, err)
		}
	}
	m.mu.Unlock()

	// Mount outside the manager lock; the first snapshot goes to the publisher.
	session.Machine.Mount()
	return session, nil
}

// Get retrieves a session by ID (case-insensitive), restoring it from
// persistence when it is not in memory.
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()

	if exists {
		return session, nil
	}

	if m.persistence == nil || !m.persistence.Exists(id) {
		return nil, ErrSessionNotFound
	}

	data, err := m.persistence.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	if session, exists := m.sessions[strings.ToLower(id)]; exists {
		m.mu.Unlock()
		return session, nil
	}
	session, err = m.build(*data)
	if err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	m.sessions[strings.ToLower(id)] = session
	m.mu.Unlock()

	session.Machine.Mount()
	return session, nil
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}

	return result
}

// Delete stops a session and removes it from memory and persistence
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	inMemory := false

	if session, exists := m.sessions[lowerID]; exists {
		session.Machine.Close()
		delete(m.sessions, lowerID)
		inMemory = true
	}

	if m.persistence != nil && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteFromMemory stops a session and drops it from memory only
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	session, exists := m.sessions[lowerID]
	if !exists {
		return ErrSessionNotFound
	}
	session.Machine.Close()
	delete(m.sessions, lowerID)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}

	session.Touch(time.Now())
	return nil
}

// Save saves a specific session to persistence
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()
	if !exists {
		return ErrSessionNotFound
	}

	return m.persistence.Save(session)
}

// CleanupExpiredSessions stops and removes sessions that haven't been
// accessed in the given duration. Their files are kept for a later resume.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if session.LastAccessed().Before(cutoff) {
			if m.persistence != nil {
				if err := m.persistence.Save(session); err != nil {
					log.Printf("Warning: Failed to persist expiring session %s: %v", id, err)
				}
			}
			session.Machine.Close()
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// LoadPersistedSessions restores every persisted session into memory
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	sessionIDs, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	loadedCount := 0
	for _, id := range sessionIDs {
		m.mu.RLock()
		_, exists := m.sessions[strings.ToLower(id)]
		m.mu.RUnlock()
		if exists {
			continue
		}

		if _, err := m.Get(id); err != nil {
			log.Printf("Warning: Failed to load persisted session %s: %v", id, err)
			continue
		}
		loadedCount++
	}

	if loadedCount > 0 {
		log.Printf("Loaded %d persisted sessions from storage", loadedCount)
	}

	return nil
}

// SaveAllSessions saves all in-memory sessions to persistence
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	sessions := m.List()
	errorCount := 0
	for _, session := range sessions {
		if err := m.persistence.Save(session); err != nil {
			log.Printf("Warning: Failed to save session %s: %v", session.ID, err)
			errorCount++
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("failed to save %d sessions", errorCount)
	}

	return nil
}

// Close stops every session machine.
func (m *Manager) Close() {
	for _, session := range m.List() {
		session.Machine.Close()
	}
}

// build assembles a session and its machine. Callers hold m.mu.
func (m *Manager) build(data PersistedSessionData) (*service.Session, error) {
	session := &service.Session{
		ID:        data.ID,
		CreatedAt: data.CreatedAt,
	}
	session.Touch(data.LastAccessedAt)
	session.SetResumeLevel(data.ResumeLevel)
	session.SetPendingRuns(data.PendingRuns)

	id := data.ID
	mach, err := machine.New(machine.Options{
		Level:      data.ResumeLevel,
		Catalog:    m.opts.Catalog,
		Scheduler:  m.opts.Scheduler,
		Timing:     m.opts.Timing,
		Thresholds: m.opts.Thresholds,
		Sink: machine.SinkFunc(func(snap machine.Snapshot) {
			if m.opts.Publisher != nil {
				m.opts.Publisher.PublishSnapshot(id, snap)
			}
		}),
		Resume: resumeStore{manager: m, session: session},
		OnRunEnd: func(result machine.RunResult) {
			session.AddPendingRun(runs.NewRun(id, result.Level, result.Seconds, result.Rating, result.FinishedAt))
			m.persist(session)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create machine: %w", err)
	}
	session.Machine = mach
	return session, nil
}

func (m *Manager) persist(session *service.Session) {
	if m.persistence == nil {
		return
	}
	if err := m.persistence.Save(session); err != nil {
		log.Printf("Warning: Failed to persist session %s: %v", session.ID, err)
	}
}

// resumeStore saves a session's resume level through the manager.
type resumeStore struct {
	manager *Manager
	session *service.Session
}

func (r resumeStore) SaveLevel(level int) error {
	r.session.SetResumeLevel(level)
	if r.manager.persistence == nil {
		return nil
	}
	return r.manager.persistence.Save(r.session)
}

// generateSessionID generates a random 4-character session ID
func (m *Manager) generateSessionID() string {
	for {
		bytes := make([]byte, 2)
		rand.Read(bytes)
		id := hex.EncodeToString(bytes)

		m.mu.RLock()
		taken := m.sessionExists(id)
		m.mu.RUnlock()
		if !taken && (m.persistence == nil || !m.persistence.Exists(id)) {
			return id
		}
	}
}

// sessionExists checks if a session exists (case-insensitive). Callers hold m.mu.
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}
