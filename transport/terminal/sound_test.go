package terminal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wricardo/superslide/game/engine"
	"github.com/wricardo/superslide/game/machine"
)

func intPtr(v int) *int { return &v }

func TestCues(t *testing.T) {
	shake := &machine.Shake{PieceID: 3, Axis: engine.Vertical}

	tests := []struct {
		name string
		prev *machine.Snapshot
		next machine.Snapshot
		want []Cue
	}{
		{
			name: "first snapshot on preview",
			next: machine.Snapshot{Screen: machine.ScreenLevelPreview},
		},
		{
			name: "new shake",
			prev: &machine.Snapshot{Screen: machine.ScreenLevelPreview},
			next: machine.Snapshot{Screen: machine.ScreenLevelPreview, Shake: shake},
			want: []Cue{CueShake},
		},
		{
			name: "same shake again",
			prev: &machine.Snapshot{Screen: machine.ScreenLevelPreview, Shake: shake},
			next: machine.Snapshot{Screen: machine.ScreenLevelPreview, Shake: &machine.Shake{PieceID: 3, Axis: engine.Vertical}},
		},
		{
			name: "countdown step",
			prev: &machine.Snapshot{Screen: machine.ScreenCountdown, Countdown: intPtr(3)},
			next: machine.Snapshot{Screen: machine.ScreenCountdown, Countdown: intPtr(2)},
			want: []Cue{CueTick},
		},
		{
			name: "countdown unchanged",
			prev: &machine.Snapshot{Screen: machine.ScreenCountdown, Countdown: intPtr(2)},
			next: machine.Snapshot{Screen: machine.ScreenCountdown, Countdown: intPtr(2)},
		},
		{
			name: "enter victory",
			prev: &machine.Snapshot{Screen: machine.ScreenTimer},
			next: machine.Snapshot{Screen: machine.ScreenVictory},
			want: []Cue{CueVictory},
		},
		{
			name: "victory frame",
			prev: &machine.Snapshot{Screen: machine.ScreenVictory, AnimationIndex: 1},
			next: machine.Snapshot{Screen: machine.ScreenVictory, AnimationIndex: 2},
		},
		{
			name: "enter score",
			prev: &machine.Snapshot{Screen: machine.ScreenVictory},
			next: machine.Snapshot{Screen: machine.ScreenScore},
			want: []Cue{CueScore},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Cues(tt.prev, tt.next))
		})
	}
}

func TestBuzzGenerator(t *testing.T) {
	g := NewBuzzGenerator(sampleRate, 120)
	samples := make([][2]float64, 512)

	n, ok := g.Stream(samples)
	assert.Equal(t, 512, n)
	assert.True(t, ok)
	assert.NoError(t, g.Err())
	assert.Zero(t, samples[0][0])
	for _, s := range samples {
		assert.Equal(t, s[0], s[1])
		assert.LessOrEqual(t, s[0], 0.2)
		assert.GreaterOrEqual(t, s[0], -0.2)
	}
}

func TestToneFor(t *testing.T) {
	for _, cue := range []Cue{CueShake, CueTick, CueVictory, CueScore} {
		assert.NotNil(t, toneFor(cue), cue)
	}
	assert.Nil(t, toneFor(Cue("unknown")))
}

func TestSoundManagerBeforeInitialize(t *testing.T) {
	sm := NewSoundManager()
	sm.Play(CueShake)
	sm.Cleanup()
}
