// Package engine implements the sliding-block puzzle mechanics for Super Slide.
//
// The board is 4 columns by 5 rows. A level is a flat, row-major list of 20
// color tags which ParseLevel turns into pieces with 1-indexed, half-open
// bounding rectangles. Everything in this package is a pure function of its
// inputs; nothing here holds session state or locks.
//
// Core Types:
//
// Piece carries a stable id, a Shape (Unit, HorizontalDomino, VerticalDomino,
// Block) and a Rect. Draggable describes which slide directions are currently
// free along each axis and is always derived from the piece list, never stored.
// Board bundles a piece list with the queries the state machine needs.
//
// Usage:
//
//	board := engine.NewBoard(layout)
//	result, err := board.Drag(pieceID, engine.Offset{X: 42, Y: 3}, engine.CellSize{Width: 40, Height: 40}, engine.DefaultThresholds)
//	if err != nil {
//		log.Fatal(err)
//	}
//	switch result.Outcome {
//	case engine.Moved:
//		board = result.Board
//	case engine.Rejected:
//		// shake result.PieceID along result.Axis
//	}
//	if board.Won() {
//		rating := engine.RatingFor(elapsed)
//	}
//
// Game Rules:
//
// Pieces slide orthogonally and never overlap. A drag moves one piece by zero,
// one or two cells depending on the drag length relative to one cell, capped by
// the free space in front of it. The puzzle is solved when the 2×2 block sits
// exactly on the exit rectangle at the bottom center of the board.
package engine
