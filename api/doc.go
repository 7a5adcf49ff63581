// Package api provides the HTTP REST API for Super Slide.
//
// Every gesture a player can make on the physical toy is an endpoint, so a
// browser, a script or an agent can play a session without a WebSocket.
//
// Sessions:
//   - POST /api/sessions {"level": 3} - Create a session (level optional)
//   - GET /api/sessions?sort=created&order=asc&limit=10 - List sessions
//   - GET /api/sessions/{id} - Session info with snapshot and pending runs
//   - DELETE /api/sessions/{id} - Delete a session
//
// Gestures:
//   - GET /api/sessions/{id}/state - Current snapshot
//   - POST /api/sessions/{id}/drag - End of a drag:
//     {"piece_id": 3, "dx": 120, "dy": 4, "cell_width": 100, "cell_height": 100}
//   - POST /api/sessions/{id}/buttons/{prev|next|reset}/{press|release|tap}
//
// Runs:
//   - GET /api/sessions/{id}/runs - Finished challenges waiting for submission
//   - POST /api/sessions/{id}/runs/{run_id}/submit - Submit with
//     "Authorization: Bearer <token>"; answers {"needs_auth": true} without one
//   - DELETE /api/sessions/{id}/runs/{run_id} - Dismiss a pending run
//
// Levels and players:
//   - GET /api/levels, GET /api/levels/{level}
//   - GET /api/levels/{level}/leaderboard?limit=20
//   - GET /api/players/{player_id}/runs
//   - POST /api/auth/token {"username": "ana"}
//
// Other:
//   - GET /ws?session={id} - WebSocket snapshots and gestures
//   - GET /health
//
// Errors are JSON bodies {"error": "..."} with 400 for bad input, 401 for a
// rejected token, 404 for unknown sessions, levels or runs, 409 for a closed
// session and 503 when run submission is not configured.
package api
