package engine

// Rating is the letter grade for a challenge run, S best through F.
type Rating string

const (
	RatingS Rating = "S"
	RatingA Rating = "A"
	RatingB Rating = "B"
	RatingC Rating = "C"
	RatingD Rating = "D"
	RatingE Rating = "E"
	RatingF Rating = "F"
)

var ratingBands = []struct {
	limit  int
	rating Rating
}{
	{10, RatingS},
	{15, RatingA},
	{20, RatingB},
	{30, RatingC},
	{45, RatingD},
	{60, RatingE},
}

// RatingFor maps elapsed whole seconds to a grade. Bounds are inclusive.
func RatingFor(seconds int) Rating {
	for _, band := range ratingBands {
		if seconds <= band.limit {
			return band.rating
		}
	}
	return RatingF
}

// Rank orders ratings from 0 (S) to 6 (F). Unknown ratings rank last.
func (r Rating) Rank() int {
	for i, band := range ratingBands {
		if band.rating == r {
			return i
		}
	}
	return len(ratingBands)
}

// Valid reports whether r is one of the seven grades.
func (r Rating) Valid() bool {
	return r == RatingF || r.Rank() < len(ratingBands)
}

// IsWin reports whether the block sits exactly on the exit rectangle.
func IsWin(pieces []Piece) bool {
	block, ok := FindBlock(pieces)
	return ok && block.Rect == ExitRect
}
