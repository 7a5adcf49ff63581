package runs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/superslide/game/engine"
)

func TestNewRun(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	run := NewRun("ab12", 3, 17, engine.RatingA, at)

	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.Equal(t, "ab12", run.SessionID)
	assert.Equal(t, 3, run.Level)
	assert.Equal(t, 17, run.Seconds)
	assert.Equal(t, engine.RatingA, run.Rating)
	assert.Equal(t, at, run.FinishedAt)
	require.NoError(t, run.Validate())

	other := NewRun("ab12", 3, 17, engine.RatingA, at)
	assert.NotEqual(t, run.ID, other.ID)
}

func TestRunValidate(t *testing.T) {
	valid := NewRun("", 1, 10, engine.RatingS, time.Now())

	tests := []struct {
		name   string
		mutate func(*Run)
	}{
		{"missing id", func(r *Run) { r.ID = uuid.Nil }},
		{"level zero", func(r *Run) { r.Level = 0 }},
		{"level past max", func(r *Run) { r.Level = engine.MaxLevel + 1 }},
		{"negative time", func(r *Run) { r.Seconds = -1 }},
		{"unknown rating", func(r *Run) { r.Rating = "Z" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := valid
			tt.mutate(&run)
			assert.ErrorIs(t, run.Validate(), ErrInvalidRun)
		})
	}
}
