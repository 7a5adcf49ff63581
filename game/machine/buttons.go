package machine

import (
	"fmt"
	"log"
	"strings"
)

// Button is one of the three hardware-style controls.
type Button string

const (
	ButtonPrev  Button = "prev"
	ButtonNext  Button = "next"
	ButtonReset Button = "reset"
)

var buttonAliases = map[string]Button{
	"prev":      ButtonPrev,
	"previous":  ButtonPrev,
	"left":      ButtonPrev,
	"next":      ButtonNext,
	"right":     ButtonNext,
	"challenge": ButtonNext,
	"reset":     ButtonReset,
	"red":       ButtonReset,
}

// ParseButton resolves a button name or alias.
func ParseButton(name string) (Button, error) {
	if b, ok := buttonAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return b, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownButton, name)
}

func (b Button) holdRole() TimerRole {
	switch b {
	case ButtonPrev:
		return RolePrevHold
	case ButtonNext:
		return RoleNextHold
	}
	return RoleResetHold
}

func validButton(b Button) error {
	switch b {
	case ButtonPrev, ButtonNext, ButtonReset:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownButton, string(b))
}

// Press starts a button press. Holding past the hold threshold triggers the
// button's long-press action. A release within the tap window is a tap; a
// release between the tap window and the threshold abandons the press, unless
// the button has no long-press on the current screen, in which case any
// release is a tap.
func (m *Machine) Press(b Button) error {
	if err := validButton(b); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if _, down := m.holds[b]; down {
		return nil
	}
	h := &hold{pressedAt: m.scheduler.Now()}
	m.holds[b] = h

	switch b {
	case ButtonPrev:
		h.armed = true
	case ButtonNext:
		_, h.armed = m.state.Phase.(PreviewPhase)
	case ButtonReset:
		h.armed = m.state.Challenge
	}
	if h.armed {
		m.schedule(b.holdRole(), m.timing.HoldThreshold, func() { m.holdFired(b) })
	}
	m.publish()
	return nil
}

// Release ends a press. A release without a matching press is ignored.
func (m *Machine) Release(b Button) error {
	if err := validButton(b); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	h, down := m.holds[b]
	if !down {
		return nil
	}
	delete(m.holds, b)
	if !h.fired {
		m.cancel(b.holdRole())
		if !h.armed || m.scheduler.Now().Sub(h.pressedAt) <= m.timing.TapWindow {
			m.tap(b)
		}
	}
	m.publish()
	return nil
}

// Tap is a press immediately followed by a release.
func (m *Machine) Tap(b Button) error {
	if err := m.Press(b); err != nil {
		return err
	}
	return m.Release(b)
}

func (m *Machine) holdFired(b Button) {
	h, down := m.holds[b]
	if !down {
		return
	}
	switch b {
	case ButtonPrev:
		h.fired = true
		if m.resume != nil {
			if err := m.resume.SaveLevel(m.state.Level); err != nil {
				log.Printf("Warning: failed to save resume level %d: %v", m.state.Level, err)
			}
		}
	case ButtonNext:
		if _, ok := m.state.Phase.(PreviewPhase); !ok {
			return
		}
		h.fired = true
		m.state.Challenge = true
		m.startChallengeSequence()
	case ButtonReset:
		if !m.state.Challenge {
			return
		}
		h.fired = true
		m.deactivateChallenge()
	}
}

func (m *Machine) tap(b Button) {
	_, preview := m.state.Phase.(PreviewPhase)
	switch b {
	case ButtonPrev:
		if preview {
			m.changeLevel(max(m.state.Level-1, 1))
		}
	case ButtonNext:
		if preview {
			m.changeLevel(min(m.state.Level+1, m.catalog.Count()))
		}
	case ButtonReset:
		if m.state.Challenge {
			m.startChallengeSequence()
		} else {
			m.replay()
		}
	}
}
