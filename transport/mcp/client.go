package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/superslide/game/engine"
	"github.com/wricardo/superslide/game/machine"
	"github.com/wricardo/superslide/game/runs"
	"github.com/wricardo/superslide/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Super Slide",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Super Slide - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Slide the 2x2 block (B) down to the exit at the bottom centre of a 4x5 board.

AVAILABLE TOOLS:
- create_session / list_sessions / get_session: manage sessions
- get_state: board, screen and timer of a session
- drag_piece: slide a piece (offsets in cells)
- tap_button / press_button / release_button: the prev, next and reset controls
- list_levels / get_level: the level catalog
- pending_runs / submit_run / dismiss_run: finished challenge runs
- get_token: a player token for submit_run
- leaderboard: best times of a level
- game_instructions: full rules`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func buttonProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"prev", "next", "reset"},
		"description": "Control to use",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session, optionally starting at a level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level": map[string]interface{}{
					"type":        "integer",
					"description": "Level to start on (optional, defaults to 1)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session including pending runs",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetSession)

	// Gestures
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_state",
		Description: "Get the current board, screen, countdown and timer",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handleGetState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "drag_piece",
		Description: "Drag a piece and let go. dx/dy are in cells (1 = one cell right/down, -1 = one cell left/up). The larger of |dx| and |dy| decides the axis. A piece moves at most 2 cells and stops at the first obstacle.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"piece_id": map[string]interface{}{
					"type":        "integer",
					"description": "ID of the piece as shown by get_state",
				},
				"dx": map[string]interface{}{
					"type":        "number",
					"description": "Horizontal offset in cells",
				},
				"dy": map[string]interface{}{
					"type":        "number",
					"description": "Vertical offset in cells",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of why you are making this move",
				},
			},
			Required: []string{"session_id", "piece_id"},
		},
	}, c.handleDragPiece)

	for _, action := range []service.ButtonAction{service.ActionTap, service.ActionPress, service.ActionRelease} {
		c.mcpServer.AddTool(mcp.Tool{
			Name:        string(action) + "_button",
			Description: buttonToolDescriptions[action],
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"session_id": sessionProperty(),
					"button":     buttonProperty(),
				},
				Required: []string{"session_id", "button"},
			},
		}, c.buttonHandler(action))
	}

	// Levels
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List the level catalog",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_level",
		Description: "Show the starting layout of a level",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level": map[string]interface{}{
					"type":        "integer",
					"description": "Level number",
				},
			},
			Required: []string{"level"},
		},
	}, c.handleGetLevel)

	// Runs
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "pending_runs",
		Description: "List finished challenge runs waiting for submission (newest first, at most 3)",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionProperty()},
			Required:   []string{"session_id"},
		},
	}, c.handlePendingRuns)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "submit_run",
		Description: "Submit a pending run to the leaderboard. Without a token the answer is 'needs authentication' and the run stays pending.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID from pending_runs",
				},
				"token": map[string]interface{}{
					"type":        "string",
					"description": "Player token from get_token",
				},
			},
			Required: []string{"session_id", "run_id"},
		},
	}, c.handleSubmitRun)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "dismiss_run",
		Description: "Drop a pending run without submitting it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run ID from pending_runs",
				},
			},
			Required: []string{"session_id", "run_id"},
		},
	}, c.handleDismissRun)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_token",
		Description: "Get a signed player token for a username",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"username": map[string]interface{}{
					"type":        "string",
					"description": "Name to show on the leaderboard",
				},
			},
			Required: []string{"username"},
		},
	}, c.handleGetToken)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "leaderboard",
		Description: "Best times for a level, fastest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level": map[string]interface{}{
					"type":        "integer",
					"description": "Level number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum entries (default 20)",
				},
			},
			Required: []string{"level"},
		},
	}, c.handleLeaderboard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

var buttonToolDescriptions = map[service.ButtonAction]string{
	service.ActionTap:     "Tap a control. prev/next change level on the preview screen; reset replays the level or restarts a challenge.",
	service.ActionPress:   "Press and hold a control. Release after 3 seconds for a long press: next starts a challenge, reset ends one, prev saves your level.",
	service.ActionRelease: "Release a held control. A release within 1 second of the press is a tap, as is any release of a control with no long-press on the current screen.",
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	return c.apiCallWithToken(method, path, "", body, result)
}

func (c *Client) apiCallWithToken(method, path, token string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func argString(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return strings.TrimSpace(s)
}

func argNumber(args map[string]interface{}, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func sessionPath(sessionID string, parts ...string) string {
	path := "/api/sessions/" + url.PathEscape(sessionID)
	for _, p := range parts {
		path += "/" + url.PathEscape(p)
	}
	return path
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]int{}
	if level, ok := argNumber(args, "level"); ok {
		body["level"] = int(level)
	}

	var info service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nLevel: %d\n\n%s", info.ID, info.Level, formatSnapshot(&info.Snapshot))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Active Sessions (%d):\n\n", response.Count))
	for _, s := range response.Sessions {
		result.WriteString(fmt.Sprintf("- %s (Level: %d, Screen: %s, Pending runs: %d, Created: %s)\n",
			s.ID, s.Level, s.Snapshot.Screen, len(s.PendingRuns), s.CreatedAt.Format("15:04:05")))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := argString(arguments(request), "session_id")

	var info service.SessionInfo
	if err := c.apiCall("GET", sessionPath(sessionID), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := argString(arguments(request), "session_id")

	var snap machine.Snapshot
	if err := c.apiCall("GET", sessionPath(sessionID, "state"), nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSnapshot(&snap)), nil
}

func (c *Client) handleDragPiece(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := argString(args, "session_id")

	pieceID, ok := argNumber(args, "piece_id")
	if !ok {
		return mcp.NewToolResultError("piece_id is required"), nil
	}
	dx, _ := argNumber(args, "dx")
	dy, _ := argNumber(args, "dy")

	// Intent is for the caller's own reasoning only.
	_ = argString(args, "intent")

	body := service.DragRequest{
		PieceID:  int(pieceID),
		Offset:   engine.Offset{X: dx, Y: dy},
		CellSize: engine.CellSize{Width: 1, Height: 1},
	}

	var result service.DragResult
	if err := c.apiCall("POST", sessionPath(sessionID, "drag"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatDragResult(&result)), nil
}

func (c *Client) buttonHandler(action service.ButtonAction) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := arguments(request)
		sessionID := argString(args, "session_id")
		button := argString(args, "button")

		var snap machine.Snapshot
		if err := c.apiCall("POST", sessionPath(sessionID, "buttons", button, string(action)), nil, &snap); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		verb := string(action)
		result := fmt.Sprintf("%s %s\n\n%s", strings.ToUpper(verb[:1])+verb[1:], button, formatSnapshot(&snap))
		return mcp.NewToolResultText(result), nil
	}
}

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var levels []service.LevelInfo
	if err := c.apiCall("GET", "/api/levels", nil, &levels); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Levels:\n\n")
	for _, level := range levels {
		result.WriteString(fmt.Sprintf("• %d. %s (%d pieces", level.Number, level.Name, level.Pieces))
		if level.Par > 0 {
			result.WriteString(fmt.Sprintf(", par %d moves", level.Par))
		}
		result.WriteString(")\n")
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	level, ok := argNumber(arguments(request), "level")
	if !ok {
		return mcp.NewToolResultError("level is required"), nil
	}

	var info service.LevelInfo
	if err := c.apiCall("GET", fmt.Sprintf("/api/levels/%d", int(level)), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Level %d: %s\nPieces: %d\n\n%s", info.Number, info.Name, info.Pieces, strings.Join(info.Rows, "\n"))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handlePendingRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := argString(arguments(request), "session_id")

	var response struct {
		Count int        `json:"count"`
		Runs  []runs.Run `json:"runs"`
	}
	if err := c.apiCall("GET", sessionPath(sessionID, "runs"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPendingRuns(response.Runs)), nil
}

func (c *Client) handleSubmitRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := argString(args, "session_id")
	runID := argString(args, "run_id")
	token := argString(args, "token")

	var result runs.SubmitResult
	if err := c.apiCallWithToken("POST", sessionPath(sessionID, "runs", runID, "submit"), token, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSubmitResult(&result)), nil
}

func (c *Client) handleDismissRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID := argString(args, "session_id")
	runID := argString(args, "run_id")

	if err := c.apiCall("DELETE", sessionPath(sessionID, "runs", runID), nil, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Run %s dismissed", runID)), nil
}

func (c *Client) handleGetToken(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	username := argString(arguments(request), "username")

	var token runs.Token
	if err := c.apiCall("POST", "/api/auth/token", map[string]string{"username": username}, &token); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Token for %s (player %s, expires %s):\n%s",
		token.Username, token.PlayerID, token.ExpiresAt.Format(time.RFC3339), token.Token)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	level, ok := argNumber(args, "level")
	if !ok {
		return mcp.NewToolResultError("level is required"), nil
	}

	path := fmt.Sprintf("/api/levels/%d/leaderboard", int(level))
	if limit, ok := argNumber(args, "limit"); ok && limit > 0 {
		path += fmt.Sprintf("?limit=%d", int(limit))
	}

	var response struct {
		Level   int                     `json:"level"`
		Entries []runs.LeaderboardEntry `json:"entries"`
	}
	if err := c.apiCall("GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLeaderboard(int(level), response.Entries)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `🧩 Super Slide - Complete Instructions

GAME OBJECTIVE:
Slide the red 2x2 block down to the exit: rows 4-5, columns 2-3 of the
4-column, 5-row board. The level is won the moment the block sits exactly there.

BOARD LEGEND (get_state):
• B  - the 2x2 block
• V  - vertical domino (1 wide, 2 tall)
• H  - horizontal domino (2 wide, 1 tall)
• U  - unit square
• .  - empty cell
• Piece IDs are listed under the board together with the directions each
  piece can slide right now (x: horizontal, y: vertical).

MOVING PIECES (drag_piece):
• dx/dy are the drag offset in cells; the bigger one picks the axis.
• Offsets below 0.05 cells do nothing.
• Up to 1.30 cells moves the piece one cell; a longer drag moves it two.
• A piece never jumps over another; it stops at the first occupied cell.
• A drag toward a wall or another piece is rejected and the piece shakes.

CONTROLS (tap_button / press_button + release_button):
• prev tap  - previous level (on the preview screen)
• next tap  - next level (on the preview screen)
• reset tap - replay the level, or restart a running challenge
• next long press (hold 3s) on the preview screen - start a challenge
• reset long press during a challenge - leave the challenge
• prev long press - remember this level for next time
A release within 1 second of the press counts as a tap.

CHALLENGE MODE:
1. The intro shows for 1 second, then a 3-2-1 countdown.
2. The board resets and the timer starts; drags only work now.
3. Solve within 60 seconds to see your rating:
   S ≤10s, A ≤15s, B ≤20s, C ≤30s, D ≤45s, E ≤60s, F otherwise.
4. The finished run appears in pending_runs. Submit it with a token from
   get_token to enter the leaderboard, or dismiss it.

STRATEGY:
• Dominoes and units clear a path; the block needs a two-cell gap.
• Use get_state after each move and read the draggable directions
  instead of guessing.
• list_levels shows each level's par (fewest moves known).

Good luck sliding! 🟥`

// Formatting helpers

func formatSessionInfo(info *service.SessionInfo) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("Session: %s\nLevel: %d (resume level %d)\nCreated: %s\n\n",
		info.ID, info.Level, info.ResumeLevel, info.CreatedAt.Format("2006-01-02 15:04:05")))
	result.WriteString(formatSnapshot(&info.Snapshot))
	if len(info.PendingRuns) > 0 {
		result.WriteString("\n\n")
		result.WriteString(formatPendingRuns(info.PendingRuns))
	}
	return result.String()
}

var shapeLetters = map[engine.Shape]string{
	engine.Block:            "B",
	engine.VerticalDomino:   "V",
	engine.HorizontalDomino: "H",
	engine.Unit:             "U",
}

// formatBoard draws the pieces as a 4x5 character grid.
func formatBoard(pieces []engine.PieceView) string {
	var grid [engine.Rows][engine.Cols]string
	for r := range grid {
		for c := range grid[r] {
			grid[r][c] = "."
		}
	}
	for _, p := range pieces {
		for r := p.Rect.RowStart; r < p.Rect.RowEnd; r++ {
			for c := p.Rect.ColStart; c < p.Rect.ColEnd; c++ {
				if r >= 1 && r <= engine.Rows && c >= 1 && c <= engine.Cols {
					grid[r-1][c-1] = shapeLetters[p.Shape]
				}
			}
		}
	}

	var b strings.Builder
	for _, row := range grid {
		b.WriteString(strings.Join(row[:], ""))
		b.WriteString("\n")
	}
	b.WriteString(" ^^ exit\n")
	return b.String()
}

func formatSnapshot(snap *machine.Snapshot) string {
	if snap == nil {
		return "No state available"
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Screen: %s | Level: %d/%d", snap.Screen, snap.Level, snap.LevelCount))
	if snap.Challenge {
		result.WriteString(" | Challenge")
	}
	result.WriteString("\n")

	switch snap.Screen {
	case machine.ScreenCountdown:
		if snap.Countdown != nil {
			result.WriteString(fmt.Sprintf("Countdown: %d\n", *snap.Countdown))
		}
	case machine.ScreenTimer:
		result.WriteString(fmt.Sprintf("Elapsed: %ds\n", snap.Elapsed))
	case machine.ScreenVictory, machine.ScreenScore:
		result.WriteString(fmt.Sprintf("Time: %ds", snap.Elapsed))
		if snap.Rating != nil {
			result.WriteString(fmt.Sprintf(" | Rating: %s", *snap.Rating))
		}
		result.WriteString("\n")
	}
	result.WriteString("\n")

	result.WriteString(formatBoard(snap.Pieces))

	result.WriteString("\nPieces:\n")
	for _, p := range snap.Pieces {
		result.WriteString(fmt.Sprintf("  %2d %-17s %s", p.ID, p.Shape, p.Area))
		if p.Draggable.Movable() {
			result.WriteString(fmt.Sprintf("  x:%s y:%s", p.Draggable.X, p.Draggable.Y))
		}
		result.WriteString("\n")
	}

	if snap.Shake != nil {
		result.WriteString(fmt.Sprintf("\nPiece %d shakes along %s\n", snap.Shake.PieceID, snap.Shake.Axis))
	}
	if snap.Won {
		result.WriteString("\n🎉 SOLVED!")
	}

	return result.String()
}

func formatDragResult(result *service.DragResult) string {
	var b strings.Builder
	move := result.Move
	switch result.Outcome {
	case engine.Moved:
		b.WriteString(fmt.Sprintf("Moved piece %d %d cell(s) along %s\n", move.PieceID, move.Cells, move.Axis))
	case engine.Rejected:
		b.WriteString(fmt.Sprintf("Rejected: piece %d cannot move that way along %s\n", move.PieceID, move.Axis))
	case engine.NoDisplacement:
		b.WriteString("No displacement: the drag was too short\n")
	default:
		b.WriteString(fmt.Sprintf("Drag %s\n", result.Outcome))
	}
	if result.Won {
		b.WriteString("🎉 The block reached the exit!\n")
	}
	b.WriteString("\n")
	b.WriteString(formatSnapshot(&result.Snapshot))
	return b.String()
}

func formatPendingRuns(pending []runs.Run) string {
	if len(pending) == 0 {
		return "No pending runs"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Pending runs (%d):\n", len(pending)))
	for _, run := range pending {
		b.WriteString(fmt.Sprintf("- %s level %d: %ds rating %s\n", run.ID, run.Level, run.Seconds, run.Rating))
	}
	return b.String()
}

func formatSubmitResult(result *runs.SubmitResult) string {
	switch {
	case result.NeedsAuth:
		return "Needs authentication: call get_token and pass the token to submit_run. The run stays pending."
	case result.Saved:
		if result.PreviousBest != nil {
			return fmt.Sprintf("Saved! New best time (previous best %ds)", *result.PreviousBest)
		}
		return "Saved! First time on the leaderboard for this level"
	case result.PreviousBest != nil:
		return fmt.Sprintf("Not saved: your best time is still %ds", *result.PreviousBest)
	}
	return "Not saved"
}

func formatLeaderboard(level int, entries []runs.LeaderboardEntry) string {
	if len(entries) == 0 {
		return fmt.Sprintf("Level %d leaderboard is empty", level)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Level %d leaderboard:\n", level))
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("%3d. %-16s %3ds  %s\n", e.Rank, e.Username, e.Seconds, e.Rating))
	}
	return b.String()
}
