// Package mcp exposes Super Slide to AI agents over the Model Context
// Protocol.
//
// Client is a thin proxy: every tool call becomes a REST request against a
// running API server and the JSON answer is rendered as text an agent can
// read, including an ASCII board with piece ids and the directions each
// piece can slide.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - get_state
//   - drag_piece: offsets in cells, the API treats the cell size as 1x1
//   - tap_button, press_button, release_button: prev, next and reset
//   - list_levels, get_level
//   - pending_runs, submit_run, dismiss_run, get_token, leaderboard
//   - game_instructions
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer()) for local agents
//   - HTTP: the serve command mounts GetMCPServer().HandleMessage at /mcp
//
// Long presses need wall-clock time: call press_button, wait three seconds,
// then release_button.
package mcp
