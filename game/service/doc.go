// Package service provides the business logic layer for Super Slide.
//
// The service package implements:
//   - Multi-session game management
//   - Gesture forwarding (drags and button press/release/tap) to each
//     session's state machine
//   - Pending challenge runs, their submission and dismissal
//   - Level catalog queries, leaderboards and player tokens
//
// Core Interfaces:
//
// GameService is the main service interface every transport calls.
// SessionManager handles session creation, retrieval, and lifecycle.
// LevelCatalog serves level layouts. RunRecorder and TokenIssuer back run
// submission.
//
// Usage:
//
//	sessions := session.NewManager(session.Options{Catalog: levels})
//	submitter := runs.NewSubmitter(runs.NewMemoryStore(), authority)
//	gameService := service.NewGameService(sessions, levels, submitter, authority)
//
//	info, err := gameService.CreateSession(ctx, 1)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Drag(ctx, info.ID, service.DragRequest{
//		PieceID:  3,
//		Offset:   engine.Offset{X: 42},
//		CellSize: engine.CellSize{Width: 64, Height: 64},
//	})
//
// Pending Runs:
//
// A challenge that reaches its score screen leaves a pending run on its
// session, newest first and at most MaxPendingRuns of them. Submitting
// without a valid token answers needs_auth and keeps the run; a store
// failure also keeps it so the player can retry.
package service
