// Package trough implements the ball lifecycle/trough mode: ejecting a
// ball at ball start, tracking balls-in-play across multiball, and
// running the drain policy (ball-save re-eject, BallDrained hand-off, or
// a direct EndBall).
package trough

import (
	"pinhal/device"
	"pinhal/mode"
)

// Config names the hardware this mode owns, resolved by name at
// ModeStarted against the game's switch/coil collections.
type Config struct {
	TroughSwitches      []string
	EjectCoil           string
	ShooterLaneSwitch   string
	AutoBallSaveSeconds float64
}

// Mode is a Ball-lifecycle mode: added by StartBall, removed by EndBall,
// so its state starts fresh every ball.
type Mode struct {
	mode.Base
	cfg Config

	ballsInPlay    int
	launchPending  bool
	saveWindowOpen bool
}

// New returns a trough mode at the given dispatch priority.
func New(cfg Config, priority int) *Mode {
	m := &Mode{cfg: cfg}
	m.Base = mode.NewBase(priority, mode.Ball)
	return m
}

func (m *Mode) ModeStarted() {
	m.Reset()
	m.ballsInPlay = 0
	m.launchPending = true
	m.saveWindowOpen = false

	for _, name := range m.cfg.TroughSwitches {
		m.AddHandler(name, device.Active, 0, m.onTroughActive)
	}
	m.AddHandler(m.cfg.ShooterLaneSwitch, device.Inactive, 0, m.onShooterLaneInactive)

	_ = m.Game().PulseCoil(m.cfg.EjectCoil, 0)
	if m.cfg.AutoBallSaveSeconds > 0 {
		m.saveWindowOpen = true
		m.Delay(m.cfg.AutoBallSaveSeconds, m.closeSaveWindow, "save_window")
	}
}

func (m *Mode) closeSaveWindow() { m.saveWindowOpen = false }

// onShooterLaneInactive fires when the ball has left the shooter lane
// after a pending eject, counting it into play.
func (m *Mode) onShooterLaneInactive(sw *device.Switch) mode.DispatchResult {
	if !m.launchPending {
		return mode.Continue
	}
	m.launchPending = false
	m.ballsInPlay++
	if m.ballsInPlay == 2 {
		m.Game().Media().Post("multiball_started", map[string]any{"balls_in_play": m.ballsInPlay})
	}
	return mode.Continue
}

// onTroughActive fires when a ball settles back into the trough.
func (m *Mode) onTroughActive(sw *device.Switch) mode.DispatchResult {
	if m.ballsInPlay == 0 {
		return mode.Continue
	}
	m.ballsInPlay--
	switch m.ballsInPlay {
	case 1:
		m.Game().Media().Post("multiball_ended", nil)
	case 0:
		m.drain()
	}
	return mode.Continue
}

func (m *Mode) drain() {
	if m.saveWindowOpen {
		_ = m.Game().PulseCoil(m.cfg.EjectCoil, 0)
		m.launchPending = true
		m.Game().Media().Post("ball_saved", nil)
		return
	}
	if m.Game().BallDrained().HasSubscribers() {
		m.Game().BallDrained().Emit(nil)
		return
	}
	m.Game().EndBall()
}
