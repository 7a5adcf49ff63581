package engine

import "testing"

func TestRatingFor(t *testing.T) {
	tests := []struct {
		seconds int
		want    Rating
	}{
		{0, RatingS},
		{10, RatingS},
		{11, RatingA},
		{15, RatingA},
		{16, RatingB},
		{20, RatingB},
		{21, RatingC},
		{30, RatingC},
		{31, RatingD},
		{45, RatingD},
		{46, RatingE},
		{60, RatingE},
		{61, RatingF},
		{3600, RatingF},
	}

	for _, tt := range tests {
		if got := RatingFor(tt.seconds); got != tt.want {
			t.Errorf("RatingFor(%d) = %s, want %s", tt.seconds, got, tt.want)
		}
	}
}

func TestRatingFor_Monotonic(t *testing.T) {
	prev := RatingFor(0).Rank()
	for s := 1; s <= 120; s++ {
		rank := RatingFor(s).Rank()
		if rank < prev {
			t.Fatalf("Rating improved from %d to %d at %ds", prev, rank, s)
		}
		prev = rank
	}
}

func TestRatingValid(t *testing.T) {
	for _, r := range []Rating{RatingS, RatingA, RatingB, RatingC, RatingD, RatingE, RatingF} {
		if !r.Valid() {
			t.Errorf("%s should be valid", r)
		}
	}
	if Rating("Z").Valid() {
		t.Error("Z should not be valid")
	}
	if RatingF.Rank() != 6 || RatingS.Rank() != 0 {
		t.Errorf("Unexpected ranks S=%d F=%d", RatingS.Rank(), RatingF.Rank())
	}
}

func TestIsWin(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		want bool
	}{
		{"on exit", []string{"....", "....", "....", ".BB.", ".BB."}, true},
		{"one column left", []string{"....", "....", "....", "BB..", "BB.."}, false},
		{"one row up", []string{"....", "....", ".BB.", ".BB.", "...."}, false},
		{"overlapping exit is not enough", []string{"....", "....", "....", "..BB", "..BB"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWin(ParseLevel(mustRows(t, tt.rows...))); got != tt.want {
				t.Errorf("IsWin = %v, want %v", got, tt.want)
			}
		})
	}

	if IsWin(nil) {
		t.Error("Empty board cannot be won")
	}
}
