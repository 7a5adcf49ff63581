package terminal

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/wricardo/superslide/game/machine"
)

const sampleRate = beep.SampleRate(44100)

// Cue is a sound event derived from a pair of snapshots.
type Cue string

const (
	CueShake   Cue = "shake"
	CueTick    Cue = "tick"
	CueVictory Cue = "victory"
	CueScore   Cue = "score"
)

// Sounder plays cues.
type Sounder interface {
	Play(Cue)
}

type silent struct{}

func (silent) Play(Cue) {}

// Cues lists the sounds a transition from prev to next should play. prev is
// nil for the first snapshot.
func Cues(prev *machine.Snapshot, next machine.Snapshot) []Cue {
	var cues []Cue
	if next.Shake != nil && (prev == nil || prev.Shake == nil || *prev.Shake != *next.Shake) {
		cues = append(cues, CueShake)
	}
	if next.Countdown != nil && (prev == nil || prev.Countdown == nil || *prev.Countdown != *next.Countdown) {
		cues = append(cues, CueTick)
	}
	entered := func(s machine.Screen) bool {
		return next.Screen == s && (prev == nil || prev.Screen != s)
	}
	if entered(machine.ScreenVictory) {
		cues = append(cues, CueVictory)
	}
	if entered(machine.ScreenScore) {
		cues = append(cues, CueScore)
	}
	return cues
}

// SoundManager plays short synthesized tones through the system speaker.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewSoundManager creates a sound manager. Call Initialize before playing.
func NewSoundManager() *SoundManager {
	return &SoundManager{mixer: &beep.Mixer{}}
}

// Initialize opens the speaker.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup silences everything and closes the speaker.
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	sm.initialized = false
}

// Play queues the tone for cue. It is a no-op before Initialize.
func (sm *SoundManager) Play(cue Cue) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	streamer := toneFor(cue)
	if streamer == nil {
		return
	}
	speaker.Lock()
	sm.mixer.Add(streamer)
	speaker.Unlock()
}

func toneFor(cue Cue) beep.Streamer {
	switch cue {
	case CueShake:
		return beep.Take(sampleRate.N(150*time.Millisecond), NewBuzzGenerator(sampleRate, 120))
	case CueTick:
		return sine(880, 50*time.Millisecond)
	case CueVictory:
		return beep.Seq(
			sine(523.25, 120*time.Millisecond),
			sine(659.25, 120*time.Millisecond),
			sine(783.99, 240*time.Millisecond),
		)
	case CueScore:
		return beep.Seq(
			sine(783.99, 100*time.Millisecond),
			sine(1046.5, 200*time.Millisecond),
		)
	}
	return nil
}

func sine(freq float64, d time.Duration) beep.Streamer {
	tone, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return beep.Silence(sampleRate.N(d))
	}
	return beep.Take(sampleRate.N(d), tone)
}

// BuzzGenerator is a low buzz with a short fade in, used for refused moves.
type BuzzGenerator struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

// NewBuzzGenerator creates a buzz at freq Hz.
func NewBuzzGenerator(sr beep.SampleRate, freq float64) *BuzzGenerator {
	return &BuzzGenerator{sr: sr, freq: freq}
}

func (g *BuzzGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		sample := 0.3 * math.Sin(2*math.Pi*g.freq*t)
		sample += 0.15 * math.Sin(2*math.Pi*g.freq*2*t)
		sample += 0.075 * math.Sin(2*math.Pi*g.freq*3*t)

		envelope := math.Min(t/0.02, 1.0)
		sample *= envelope * 0.2

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *BuzzGenerator) Err() error {
	return nil
}
