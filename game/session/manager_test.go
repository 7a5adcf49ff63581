package session

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/superslide/game/engine"
	"github.com/wricardo/superslide/game/machine"
)

type testCatalog struct {
	layouts []engine.Layout
}

func (c testCatalog) Layout(level int) (engine.Layout, error) {
	if level < 1 || level > len(c.layouts) {
		return nil, fmt.Errorf("level %d not found", level)
	}
	return c.layouts[level-1], nil
}

func (c testCatalog) Count() int { return len(c.layouts) }

func mustLayout(t *testing.T, rows ...string) engine.Layout {
	t.Helper()
	layout, err := engine.LayoutFromRows(rows)
	if err != nil {
		t.Fatalf("bad layout: %v", err)
	}
	return layout
}

// testLevels holds three levels; the first is won by sliding piece 1 right.
func testLevels(t *testing.T) testCatalog {
	return testCatalog{layouts: []engine.Layout{
		mustLayout(t, "....", "....", "....", "BB..", "BB.."),
		mustLayout(t, "UU..", "UUUU", "UUUU", "BBVU", "BBVU"),
		mustLayout(t, "UUUU", "..VU", "BBVU", "BBUU", "UUUU"),
	}}
}

// MockPublisher records published snapshots per session.
type MockPublisher struct {
	mu    sync.Mutex
	snaps map[string][]machine.Snapshot
}

func (p *MockPublisher) PublishSnapshot(sessionID string, snap machine.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snaps == nil {
		p.snaps = make(map[string][]machine.Snapshot)
	}
	p.snaps[sessionID] = append(p.snaps[sessionID], snap)
}

func (p *MockPublisher) count(sessionID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.snaps[sessionID])
}

func newTestManager(t *testing.T, persistence SessionPersistence) (*Manager, *machine.ManualScheduler, *MockPublisher) {
	t.Helper()
	clock := machine.NewManualScheduler(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	publisher := &MockPublisher{}
	manager := NewManager(Options{
		Catalog:     testLevels(t),
		Scheduler:   clock,
		Publisher:   publisher,
		Persistence: persistence,
	})
	return manager, clock, publisher
}

func TestManager_Create(t *testing.T) {
	manager, _, _ := newTestManager(t, nil)

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("test-session", 0)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test-session" {
			t.Errorf("Expected session ID 'test-session', got '%s'", session.ID)
		}
		if session.Machine == nil {
			t.Fatal("Expected machine to be initialized")
		}
		if session.Machine.Level() != 1 {
			t.Errorf("Expected level 1, got %d", session.Machine.Level())
		}
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create("", 2)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if !regexp.MustCompile(`^[0-9a-f]{4}$`).MatchString(session.ID) {
			t.Errorf("Expected 4 hex characters, got %q", session.ID)
		}
		if session.Machine.Level() != 2 {
			t.Errorf("Expected level 2, got %d", session.Machine.Level())
		}
	})

	t.Run("level is clamped to the catalog", func(t *testing.T) {
		session, err := manager.Create("clamped", 40)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.Machine.Level() != 3 {
			t.Errorf("Expected level 3, got %d", session.Machine.Level())
		}
	})

	t.Run("duplicate ID is rejected case-insensitively", func(t *testing.T) {
		if _, err := manager.Create("DUP", 0); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if _, err := manager.Create("dup", 0); !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("unsafe ID is rejected", func(t *testing.T) {
		for _, id := range []string{"../etc", "a b", strings.Repeat("x", 33)} {
			if _, err := manager.Create(id, 0); !errors.Is(err, ErrInvalidSessionID) {
				t.Errorf("Expected ErrInvalidSessionID for %q, got %v", id, err)
			}
		}
	})
}

func TestManager_CreateMountsAndPublishes(t *testing.T) {
	manager, clock, publisher := newTestManager(t, nil)

	session, err := manager.Create("abcd", 0)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if got := session.Machine.Snapshot().Screen; got != machine.ScreenLevelNumber {
		t.Errorf("Expected level-number after create, got %s", got)
	}
	if publisher.count("abcd") == 0 {
		t.Error("Expected the mount snapshot to be published")
	}

	clock.Advance(2 * time.Second)
	if got := session.Machine.Snapshot().Screen; got != machine.ScreenLevelPreview {
		t.Errorf("Expected level-preview after the entry animation, got %s", got)
	}
}

func TestManager_Get(t *testing.T) {
	manager, _, _ := newTestManager(t, nil)
	created, _ := manager.Create("Mixed", 0)

	for _, id := range []string{"Mixed", "mixed", "MIXED"} {
		got, err := manager.Get(id)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", id, err)
		}
		if got != created {
			t.Errorf("Get(%q) returned a different session", id)
		}
	}

	if _, err := manager.Get("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_Delete(t *testing.T) {
	manager, clock, _ := newTestManager(t, nil)
	session, _ := manager.Create("gone", 0)

	if err := manager.Delete("GONE"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !session.Machine.Closed() {
		t.Error("Expected machine to be closed")
	}
	clock.Advance(time.Minute)
	if got := session.Machine.Snapshot().Screen; got != machine.ScreenLevelNumber {
		t.Errorf("Expected a closed machine to stay on %s, got %s", machine.ScreenLevelNumber, got)
	}
	if _, err := manager.Get("gone"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if err := manager.Delete("gone"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestManager_CleanupExpiredSessions(t *testing.T) {
	manager, _, _ := newTestManager(t, nil)
	old, _ := manager.Create("old", 0)
	manager.Create("new", 0)

	old.Touch(time.Now().Add(-2 * time.Hour))

	removed := manager.CleanupExpiredSessions(time.Hour)
	if removed != 1 {
		t.Errorf("Expected 1 removed session, got %d", removed)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 remaining session, got %d", manager.Count())
	}
	if !old.Machine.Closed() {
		t.Error("Expected expired machine to be closed")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager, _, _ := newTestManager(t, nil)
	session, _ := manager.Create("touch", 0)
	before := session.LastAccessed()

	time.Sleep(2 * time.Millisecond)
	if err := manager.UpdateLastAccessed("TOUCH"); err != nil {
		t.Fatalf("UpdateLastAccessed failed: %v", err)
	}
	if !session.LastAccessed().After(before) {
		t.Error("Expected last accessed time to move forward")
	}
	if err := manager.UpdateLastAccessed("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_RunEndWhileTouched(t *testing.T) {
	persistence, err := NewFilePersistence(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	manager, clock, _ := newTestManager(t, persistence)
	session, err := manager.Create("race", 0)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	clock.Advance(2 * time.Second)
	session.Machine.Press(machine.ButtonNext)
	clock.Advance(3 * time.Second)
	session.Machine.Release(machine.ButtonNext)
	clock.Advance(4 * time.Second)
	if got := session.Machine.Snapshot().Screen; got != machine.ScreenTimer {
		t.Fatalf("Expected timer, got %s", got)
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				manager.UpdateLastAccessed("race")
			}
		}
	}()

	// Running out the clock ends the challenge and persists the run.
	clock.Advance(61 * time.Second)
	close(done)
	wg.Wait()

	if got := session.Machine.Snapshot().Screen; got != machine.ScreenScore {
		t.Fatalf("Expected score, got %s", got)
	}
	data, err := persistence.Load("race")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	if len(data.PendingRuns) != 1 || data.PendingRuns[0].Rating != engine.RatingF {
		t.Errorf("Expected one persisted F run, got %+v", data.PendingRuns)
	}
}

// playChallenge wins level 1 of testLevels as a challenge run.
func playChallenge(t *testing.T, m *machine.Machine, clock *machine.ManualScheduler) {
	t.Helper()
	clock.Advance(2 * time.Second)
	if err := m.Press(machine.ButtonNext); err != nil {
		t.Fatalf("Press failed: %v", err)
	}
	clock.Advance(3 * time.Second)
	m.Release(machine.ButtonNext)
	clock.Advance(4 * time.Second)
	clock.Advance(7 * time.Second)

	out, err := m.DragEnd(1, engine.Offset{X: 100}, engine.CellSize{Width: 100, Height: 100})
	if err != nil {
		t.Fatalf("DragEnd failed: %v", err)
	}
	if !out.Won {
		t.Fatalf("Expected a win, got %+v", out)
	}
	clock.Advance(10 * time.Second)
}

func TestManager_FinishedChallengeBecomesPendingRun(t *testing.T) {
	manager, clock, _ := newTestManager(t, nil)
	session, _ := manager.Create("run1", 0)

	playChallenge(t, session.Machine, clock)

	pending := session.PendingRuns()
	if len(pending) != 1 {
		t.Fatalf("Expected 1 pending run, got %d", len(pending))
	}
	run := pending[0]
	if run.Level != 1 || run.Seconds != 7 || run.Rating != engine.RatingS {
		t.Errorf("Unexpected run %+v", run)
	}
	if run.SessionID != "run1" {
		t.Errorf("Expected session id run1, got %q", run.SessionID)
	}
}

func TestManager_PreviousLongPressSavesResumeLevel(t *testing.T) {
	manager, clock, _ := newTestManager(t, nil)
	session, _ := manager.Create("resume", 2)
	clock.Advance(2 * time.Second)

	session.Machine.Press(machine.ButtonPrev)
	clock.Advance(3 * time.Second)
	session.Machine.Release(machine.ButtonPrev)

	if got := session.ResumeLevel(); got != 2 {
		t.Errorf("Expected resume level 2, got %d", got)
	}
}
