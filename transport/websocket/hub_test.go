package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/superslide/game/engine"
	"github.com/wricardo/superslide/game/machine"
	"github.com/wricardo/superslide/game/service"
)

// MockHandler is a GestureHandler with overridable behaviour
type MockHandler struct {
	DragFunc        func(ctx context.Context, sessionID string, req service.DragRequest) (*service.DragResult, error)
	ButtonFunc      func(ctx context.Context, sessionID, button string, action service.ButtonAction) (*machine.Snapshot, error)
	GetSnapshotFunc func(ctx context.Context, sessionID string) (*machine.Snapshot, error)
}

func (m *MockHandler) Drag(ctx context.Context, sessionID string, req service.DragRequest) (*service.DragResult, error) {
	if m.DragFunc != nil {
		return m.DragFunc(ctx, sessionID, req)
	}
	return &service.DragResult{}, nil
}

func (m *MockHandler) Button(ctx context.Context, sessionID, button string, action service.ButtonAction) (*machine.Snapshot, error) {
	if m.ButtonFunc != nil {
		return m.ButtonFunc(ctx, sessionID, button, action)
	}
	return &machine.Snapshot{}, nil
}

func (m *MockHandler) GetSnapshot(ctx context.Context, sessionID string) (*machine.Snapshot, error) {
	if m.GetSnapshotFunc != nil {
		return m.GetSnapshotFunc(ctx, sessionID)
	}
	return &machine.Snapshot{Screen: machine.ScreenLevelPreview, Level: 1}, nil
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.broadcast == nil {
		t.Error("Hub broadcast channel is nil")
	}
	if cap(hub.broadcast) != broadcastBuffer {
		t.Errorf("Expected broadcast buffer %d, got %d", broadcastBuffer, cap(hub.broadcast))
	}
	if hub.register == nil || hub.unregister == nil {
		t.Error("Hub register channels are nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()
	client := &Client{hub: hub, sessionID: "test-session", send: make(chan []byte, 256)}

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if len(hub.sessions["test-session"]) != 1 {
		t.Errorf("Expected 1 client in session, got %d", len(hub.sessions["test-session"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := &Client{hub: hub, sessionID: "test-session", send: make(chan []byte, 256)}

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Client send channel should be closed")
	}

	// A second unregister is a no-op
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}
	client2 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}

	hub.registerClient(client1)
	hub.registerClient(client2)

	if len(hub.sessions[sessionID]) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", len(hub.sessions[sessionID]))
	}

	hub.unregisterClient(client1)

	if len(hub.sessions[sessionID]) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", len(hub.sessions[sessionID]))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastSnapshot(t *testing.T) {
	hub := NewHub()
	sessionID := "broadcast-test"

	client := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}
	other := &Client{hub: hub, sessionID: "other", send: make(chan []byte, 256)}
	hub.registerClient(client)
	hub.registerClient(other)

	hub.PublishSnapshot(sessionID, machine.Snapshot{Screen: machine.ScreenTimer, Level: 4, Elapsed: 12})
	hub.broadcastMessage(<-hub.broadcast)

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.SessionID != sessionID {
			t.Errorf("Expected sessionID %s, got %s", sessionID, message.SessionID)
		}
		if message.Event != EventSnapshot {
			t.Errorf("Expected event %q, got %s", EventSnapshot, message.Event)
		}
		if message.Snapshot == nil || message.Snapshot.Level != 4 || message.Snapshot.Elapsed != 12 {
			t.Errorf("Snapshot not correctly transmitted: %+v", message.Snapshot)
		}
	default:
		t.Error("No message queued for client")
	}

	select {
	case <-other.send:
		t.Error("Client of another session should not receive the snapshot")
	default:
	}
}

func TestHubPublishDoesNotBlock(t *testing.T) {
	hub := NewHub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer+10; i++ {
			hub.PublishSnapshot("busy", machine.Snapshot{Sequence: uint64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PublishSnapshot blocked with no hub loop running")
	}

	if len(hub.broadcast) != broadcastBuffer {
		t.Errorf("Expected %d queued messages, got %d", broadcastBuffer, len(hub.broadcast))
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()

	hub.BroadcastEvent("event-test", "custom-event", "test-data")

	select {
	case message := <-hub.broadcast:
		if message.SessionID != "event-test" {
			t.Errorf("Expected sessionID 'event-test', got %s", message.SessionID)
		}
		if message.Event != "custom-event" {
			t.Errorf("Expected event 'custom-event', got %s", message.Event)
		}
		if message.Data != "test-data" {
			t.Errorf("Expected data 'test-data', got %v", message.Data)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No broadcast message received within timeout")
	}
}

func newTestServer(t *testing.T, hub *Hub, handler GestureHandler) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"), handler)
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	return message
}

func TestWebSocketInitialSnapshotAndPublish(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := newTestServer(t, hub, &MockHandler{})

	initial := readMessage(t, conn)
	if initial.Event != EventSnapshot || initial.Snapshot == nil {
		t.Fatalf("Expected initial snapshot, got %+v", initial)
	}
	if initial.Snapshot.Screen != machine.ScreenLevelPreview {
		t.Errorf("Expected level-preview screen, got %s", initial.Snapshot.Screen)
	}

	hub.PublishSnapshot("ws-test", machine.Snapshot{Screen: machine.ScreenCountdown, Level: 2})

	update := readMessage(t, conn)
	if update.Snapshot == nil || update.Snapshot.Screen != machine.ScreenCountdown {
		t.Errorf("Expected countdown snapshot, got %+v", update.Snapshot)
	}
}

func TestWebSocketGestures(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	var gotDrag service.DragRequest
	var gotButton string
	var gotAction service.ButtonAction
	handler := &MockHandler{
		DragFunc: func(ctx context.Context, sessionID string, req service.DragRequest) (*service.DragResult, error) {
			gotDrag = req
			return &service.DragResult{DragOutcome: machine.DragOutcome{Outcome: engine.Moved, Won: true}}, nil
		},
		ButtonFunc: func(ctx context.Context, sessionID, button string, action service.ButtonAction) (*machine.Snapshot, error) {
			gotButton, gotAction = button, action
			if button == "jump" {
				return nil, errors.New("unknown button")
			}
			return &machine.Snapshot{}, nil
		},
	}

	conn := newTestServer(t, hub, handler)
	readMessage(t, conn)

	drag := `{"type":"drag","piece_id":3,"dx":120,"dy":4,"cell_width":100,"cell_height":100}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(drag)); err != nil {
		t.Fatalf("write: %v", err)
	}
	result := readMessage(t, conn)
	if result.Event != EventDragResult {
		t.Fatalf("Expected drag_result, got %+v", result)
	}
	data, ok := result.Data.(map[string]interface{})
	if !ok || data["outcome"] != "moved" || data["won"] != true {
		t.Errorf("Unexpected drag result data: %v", result.Data)
	}
	want := service.DragRequest{PieceID: 3, Offset: engine.Offset{X: 120, Y: 4}, CellSize: engine.CellSize{Width: 100, Height: 100}}
	if gotDrag != want {
		t.Errorf("Expected drag %+v, got %+v", want, gotDrag)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"jump"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readMessage(t, conn); msg.Event != EventError {
		t.Errorf("Expected error event for unknown type, got %+v", msg)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"press","button":"jump"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readMessage(t, conn); msg.Event != EventError {
		t.Errorf("Expected error event for failed button, got %+v", msg)
	}
	if gotButton != "jump" || gotAction != service.ActionPress {
		t.Errorf("Expected press of jump, got %s %s", gotAction, gotButton)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`not json`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readMessage(t, conn); msg.Event != EventError {
		t.Errorf("Expected error event for invalid message, got %+v", msg)
	}
}
