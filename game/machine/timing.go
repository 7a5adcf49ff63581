package machine

import (
	"fmt"
	"time"

	"github.com/wricardo/superslide/game/lcd"
)

// IndicatorCells is the length of the elapsed-time indicator.
const IndicatorCells = 20

// Timing holds every cadence the machine schedules.
type Timing struct {
	HoldThreshold    time.Duration
	TapWindow        time.Duration
	ChallengeIntro   time.Duration
	CountdownStep    time.Duration
	CountdownFrom    int
	ElapsedTick      time.Duration
	TimeLimit        int
	LevelNumberFrame time.Duration
	VictoryFrame     time.Duration
	VictoryFrames    int
	VictoryCycles    int
	ScoreDwell       time.Duration
	Shake            time.Duration
}

// DefaultTiming returns the stock cadences.
func DefaultTiming() Timing {
	return Timing{
		HoldThreshold:    3 * time.Second,
		TapWindow:        time.Second,
		ChallengeIntro:   time.Second,
		CountdownStep:    time.Second,
		CountdownFrom:    3,
		ElapsedTick:      time.Second,
		TimeLimit:        60,
		LevelNumberFrame: 300 * time.Millisecond,
		VictoryFrame:     250 * time.Millisecond,
		VictoryFrames:    lcd.VictoryFrameCount,
		VictoryCycles:    2,
		ScoreDwell:       3 * time.Second,
		Shake:            400 * time.Millisecond,
	}
}

// Validate rejects non-positive durations and counts.
func (t Timing) Validate() error {
	durations := map[string]time.Duration{
		"hold_threshold":     t.HoldThreshold,
		"tap_window":         t.TapWindow,
		"challenge_intro":    t.ChallengeIntro,
		"countdown_step":     t.CountdownStep,
		"elapsed_tick":       t.ElapsedTick,
		"level_number_frame": t.LevelNumberFrame,
		"victory_frame":      t.VictoryFrame,
		"score_dwell":        t.ScoreDwell,
		"shake":              t.Shake,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("timing: %s must be positive, got %s", name, d)
		}
	}
	counts := map[string]int{
		"countdown_from": t.CountdownFrom,
		"time_limit":     t.TimeLimit,
		"victory_frames": t.VictoryFrames,
		"victory_cycles": t.VictoryCycles,
	}
	for name, n := range counts {
		if n <= 0 {
			return fmt.Errorf("timing: %s must be positive, got %d", name, n)
		}
	}
	if t.TapWindow >= t.HoldThreshold {
		return fmt.Errorf("timing: tap_window (%s) must be shorter than hold_threshold (%s)", t.TapWindow, t.HoldThreshold)
	}
	return nil
}

// Indicator returns the elapsed-time indicator cells and band color. Elapsed
// time in [0,20] uses band A, (20,40] band B, (40,60] band C; within a band
// the leading cells switch off one per second.
func Indicator(elapsed int) ([]bool, lcd.Cell) {
	band := 0
	if elapsed > IndicatorCells {
		band = (elapsed - 1) / IndicatorCells
	}
	colors := []lcd.Cell{lcd.BandA, lcd.BandB, lcd.BandC}
	if band >= len(colors) {
		band = len(colors) - 1
	}

	on := IndicatorCells - (elapsed - band*IndicatorCells)
	on = max(0, min(IndicatorCells, on))

	cells := make([]bool, IndicatorCells)
	for i := IndicatorCells - on; i < IndicatorCells; i++ {
		cells[i] = true
	}
	return cells, colors[band]
}

// IdleIndicator is the pattern shown outside a running timer.
func IdleIndicator() ([]bool, lcd.Cell) {
	return Indicator(0)
}
