package machine

import (
	"sort"

	"github.com/wricardo/superslide/game/engine"
	"github.com/wricardo/superslide/game/lcd"
)

// Snapshot is the read-only view handed to presentation sinks.
type Snapshot struct {
	Sequence       uint64             `json:"sequence"`
	Screen         Screen             `json:"screen"`
	Level          int                `json:"level"`
	LevelCount     int                `json:"level_count"`
	Pieces         []engine.PieceView `json:"pieces"`
	Challenge      bool               `json:"challenge"`
	Won            bool               `json:"won"`
	Countdown      *int               `json:"countdown"`
	Elapsed        int                `json:"elapsed"`
	Indicator      []bool             `json:"indicator"`
	IndicatorColor lcd.Cell           `json:"indicator_color"`
	Rating         *engine.Rating     `json:"rating"`
	AnimationIndex int                `json:"animation_index"`
	AnimationCycle int                `json:"animation_cycle"`
	Frame          *lcd.Frame         `json:"frame,omitempty"`
	Shake          *Shake             `json:"shake,omitempty"`
	Holding        []Button           `json:"holding,omitempty"`
	Preview        engine.Layout      `json:"preview"`
	Display        lcd.Screen         `json:"display"`
}

// Snapshot returns the current view.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() Snapshot {
	s := Snapshot{
		Sequence:   m.seq,
		Screen:     m.state.Phase.Screen(),
		Level:      m.state.Level,
		LevelCount: m.catalog.Count(),
		Pieces:     m.state.Board.Views(),
		Challenge:  m.state.Challenge,
		Won:        m.state.Won,
		Preview:    append(engine.Layout(nil), m.layout...),
	}
	if m.state.Shake != nil {
		shake := *m.state.Shake
		s.Shake = &shake
	}
	for b := range m.holds {
		s.Holding = append(s.Holding, b)
	}
	sort.Slice(s.Holding, func(i, j int) bool { return s.Holding[i] < s.Holding[j] })

	s.Indicator, s.IndicatorColor = IdleIndicator()

	switch p := m.state.Phase.(type) {
	case PreviewPhase:
		s.Display = lcd.Preview(m.layout)
	case LevelNumberPhase:
		s.AnimationIndex = p.Index
		if p.Index < len(p.Frames) {
			frame := p.Frames[p.Index]
			s.Frame = &frame
			s.Display = frame.Render()
		}
	case IntroPhase:
		s.Display = lcd.Glyph('C', lcd.Red)
	case CountdownPhase:
		value := p.Value
		s.Countdown = &value
		s.Display = lcd.Glyph(rune('0'+value%10), lcd.Yellow)
	case TimerPhase:
		s.Elapsed = p.Elapsed
		s.Indicator, s.IndicatorColor = Indicator(p.Elapsed)
		s.Display = lcd.Indicator(s.Indicator, s.IndicatorColor)
	case VictoryPhase:
		s.Elapsed = p.Elapsed
		s.AnimationIndex = p.Index
		s.AnimationCycle = p.Cycle
		if p.Rating != "" {
			rating := p.Rating
			s.Rating = &rating
		}
		s.Display = lcd.Victory(p.Index)
	case ScorePhase:
		s.Elapsed = p.Elapsed
		rating := p.Rating
		s.Rating = &rating
		if p.Rating != "" {
			s.Display = lcd.Glyph(rune(p.Rating[0]), lcd.Red)
		}
	}
	return s
}
