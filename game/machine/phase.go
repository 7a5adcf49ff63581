package machine

import (
	"github.com/wricardo/superslide/game/engine"
	"github.com/wricardo/superslide/game/lcd"
)

// Screen names the presentation state.
type Screen string

const (
	ScreenLevelPreview   Screen = "level-preview"
	ScreenLevelNumber    Screen = "level-number"
	ScreenChallengeIntro Screen = "challenge-intro"
	ScreenCountdown      Screen = "countdown"
	ScreenTimer          Screen = "timer"
	ScreenVictory        Screen = "victory"
	ScreenScore          Screen = "score"
)

// Phase is the screen-specific part of the session state.
type Phase interface {
	Screen() Screen
	phase()
}

// PreviewPhase is the idle resting screen.
type PreviewPhase struct{}

// LevelNumberPhase plays the level-number frame queue.
type LevelNumberPhase struct {
	Frames []lcd.Frame
	Index  int
}

// IntroPhase shows the challenge glyph before the countdown.
type IntroPhase struct{}

// CountdownPhase counts down to the timer start.
type CountdownPhase struct {
	Value int
}

// TimerPhase is a running challenge.
type TimerPhase struct {
	Elapsed int
}

// VictoryPhase plays the victory animation. Rating is empty outside a
// challenge.
type VictoryPhase struct {
	Elapsed int
	Rating  engine.Rating
	Index   int
	Cycle   int
}

// ScorePhase shows the rating of a finished challenge.
type ScorePhase struct {
	Elapsed int
	Rating  engine.Rating
}

func (PreviewPhase) Screen() Screen     { return ScreenLevelPreview }
func (LevelNumberPhase) Screen() Screen { return ScreenLevelNumber }
func (IntroPhase) Screen() Screen       { return ScreenChallengeIntro }
func (CountdownPhase) Screen() Screen   { return ScreenCountdown }
func (TimerPhase) Screen() Screen       { return ScreenTimer }
func (VictoryPhase) Screen() Screen     { return ScreenVictory }
func (ScorePhase) Screen() Screen       { return ScreenScore }

func (PreviewPhase) phase()     {}
func (LevelNumberPhase) phase() {}
func (IntroPhase) phase()       {}
func (CountdownPhase) phase()   {}
func (TimerPhase) phase()       {}
func (VictoryPhase) phase()     {}
func (ScorePhase) phase()       {}

// TimerRole names an independently cancellable timer.
type TimerRole string

const (
	RolePrevHold       TimerRole = "prev-hold"
	RoleNextHold       TimerRole = "next-hold"
	RoleResetHold      TimerRole = "reset-hold"
	RoleChallengeIntro TimerRole = "challenge-intro"
	RoleCountdown      TimerRole = "countdown"
	RoleElapsed        TimerRole = "elapsed"
	RoleAnimation      TimerRole = "animation"
	RoleScoreDwell     TimerRole = "score-dwell"
	RoleShake          TimerRole = "shake"
)

// screenRoles lists, per screen, the screen-bound roles allowed to stay
// outstanding while it is showing.
var screenRoles = map[Screen][]TimerRole{
	ScreenLevelPreview:   {RoleNextHold},
	ScreenLevelNumber:    {RoleAnimation},
	ScreenChallengeIntro: {RoleChallengeIntro},
	ScreenCountdown:      {RoleCountdown},
	ScreenTimer:          {RoleElapsed},
	ScreenVictory:        {RoleAnimation},
	ScreenScore:          {RoleScoreDwell},
}

var screenBoundRoles = []TimerRole{
	RoleNextHold,
	RoleChallengeIntro,
	RoleCountdown,
	RoleElapsed,
	RoleAnimation,
	RoleScoreDwell,
}

func roleApplies(s Screen, role TimerRole) bool {
	for _, r := range screenRoles[s] {
		if r == role {
			return true
		}
	}
	return false
}
