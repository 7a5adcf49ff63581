package engine

// Board is an immutable piece list with the queries a session needs. Methods
// that change the position return a new Board.
type Board struct {
	pieces []Piece
}

// NewBoard parses a layout into a board.
func NewBoard(layout Layout) Board {
	return Board{pieces: ParseLevel(layout)}
}

// BoardOf wraps an existing piece list. The slice is copied.
func BoardOf(pieces []Piece) Board {
	cp := make([]Piece, len(pieces))
	copy(cp, pieces)
	return Board{pieces: cp}
}

// Pieces returns a copy of the piece list.
func (b Board) Pieces() []Piece {
	cp := make([]Piece, len(b.pieces))
	copy(cp, b.pieces)
	return cp
}

// Views returns every piece with freshly computed draggable axes.
func (b Board) Views() []PieceView {
	return AnalyzeDraggable(b.pieces)
}

// Occupancy returns the occupancy grid.
func (b Board) Occupancy() Grid {
	return Occupancy(b.pieces)
}

// Won reports whether the block is on the exit.
func (b Board) Won() bool {
	return IsWin(b.pieces)
}

// Piece looks a piece up by id.
func (b Board) Piece(id int) (Piece, bool) {
	return FindPiece(b.pieces, id)
}

// DragResult is a MoveResult plus the board after the move.
type DragResult struct {
	MoveResult
	Board Board `json:"-"`
}

// Drag resolves a drag gesture. For anything but Moved the returned board is b.
func (b Board) Drag(id int, o Offset, cell CellSize, t Thresholds) (DragResult, error) {
	res, err := ResolveDrag(b.pieces, id, o, cell, t)
	if err != nil {
		return DragResult{MoveResult: res, Board: b}, err
	}
	if res.Outcome != Moved {
		return DragResult{MoveResult: res, Board: b}, nil
	}
	return DragResult{MoveResult: res, Board: Board{pieces: res.Pieces}}, nil
}

// Equal reports whether both boards hold the same pieces in the same places.
func (b Board) Equal(other Board) bool {
	if len(b.pieces) != len(other.pieces) {
		return false
	}
	for i := range b.pieces {
		if b.pieces[i] != other.pieces[i] {
			return false
		}
	}
	return true
}
