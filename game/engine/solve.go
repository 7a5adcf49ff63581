package engine

import "errors"

// ErrUnsolvable is returned when the search exhausts every reachable position.
var ErrUnsolvable = errors.New("level has no solution")

// ErrSearchLimit is returned when the search visits more positions than allowed.
var ErrSearchLimit = errors.New("search limit reached")

// DefaultSearchLimit bounds the number of distinct positions Solve visits.
const DefaultSearchLimit = 500000

// Step is one slide in a solution.
type Step struct {
	PieceID int  `json:"piece_id"`
	Axis    Axis `json:"axis"`
	Sign    int  `json:"sign"`
	Cells   int  `json:"cells"`
}

// Solution is the shortest sequence of slides that wins a level.
type Solution struct {
	Steps   []Step `json:"steps"`
	Visited int    `json:"visited"`
}

// Moves is the number of slides in the solution.
func (s Solution) Moves() int { return len(s.Steps) }

// positionKey encodes which shape covers each cell. Pieces of the same shape
// are interchangeable, so positions that only swap them share a key.
func positionKey(pieces []Piece) string {
	var key [CellCount]byte
	for i := range key {
		key[i] = '.'
	}
	codes := map[Shape]byte{Unit: 'U', HorizontalDomino: 'H', VerticalDomino: 'V', Block: 'B'}
	for _, p := range pieces {
		for r := p.Rect.RowStart; r < p.Rect.RowEnd; r++ {
			for c := p.Rect.ColStart; c < p.Rect.ColEnd; c++ {
				key[(r-1)*Cols+(c-1)] = codes[p.Shape]
			}
		}
	}
	return string(key[:])
}

type searchNode struct {
	parent string
	step   Step
}

// Solve runs a breadth-first search where one move slides one piece one or
// two free cells along an axis, the same moves a drag can produce. limit <= 0
// uses DefaultSearchLimit.
func Solve(layout Layout, limit int) (Solution, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	start := ParseLevel(layout)
	startKey := positionKey(start)
	if IsWin(start) {
		return Solution{Visited: 1}, nil
	}

	seen := map[string]searchNode{startKey: {}}
	queue := [][]Piece{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		currentKey := positionKey(current)
		grid := Occupancy(current)

		for _, p := range current {
			for _, axis := range []Axis{Horizontal, Vertical} {
				for _, sign := range []int{-1, 1} {
					for cells := 1; cells <= 2 && stepFree(p.Rect, grid, axis, sign, cells); cells++ {
						next := make([]Piece, len(current))
						copy(next, current)
						for i := range next {
							if next[i].ID == p.ID {
								next[i].Rect = next[i].Rect.Shift(axis, sign*cells)
							}
						}
						key := positionKey(next)
						if _, ok := seen[key]; ok {
							continue
						}
						step := Step{PieceID: p.ID, Axis: axis, Sign: sign, Cells: cells}
						seen[key] = searchNode{parent: currentKey, step: step}
						if IsWin(next) {
							return Solution{Steps: unwind(seen, key, startKey), Visited: len(seen)}, nil
						}
						if len(seen) >= limit {
							return Solution{Visited: len(seen)}, ErrSearchLimit
						}
						queue = append(queue, next)
					}
				}
			}
		}
	}

	return Solution{Visited: len(seen)}, ErrUnsolvable
}

func unwind(seen map[string]searchNode, key, startKey string) []Step {
	var steps []Step
	for key != startKey {
		node := seen[key]
		steps = append(steps, node.step)
		key = node.parent
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return steps
}
