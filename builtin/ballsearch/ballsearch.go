// Package ballsearch implements the stuck-ball recovery mode: an idle
// timer armed by playfield activity, suspended while the shooter lane
// holds a ball, that on timeout round-robin pulses a configured coil
// list until a playfield switch fires again.
package ballsearch

import (
	"pinhal/device"
	"pinhal/mode"
)

// Config names the coils to sweep and the timing knobs. Zero values fall
// back to the defaults: a 15 s idle timeout, a 0.25 s search interval
// between pulses.
type Config struct {
	IdleSeconds           float64
	SearchIntervalSeconds float64
	SearchCoils           []string
}

const (
	defaultIdleSeconds           = 15
	defaultSearchIntervalSeconds = 0.25

	idleDelayName  = "idle"
	pulseDelayName = "search_pulse"
)

// Mode is a Ball-lifecycle mode: the idle timer and search state reset
// every ball.
type Mode struct {
	mode.Base
	cfg Config

	searching   bool
	nextCoilIdx int
}

// New returns a ball-search mode at the given dispatch priority.
func New(cfg Config, priority int) *Mode {
	if cfg.IdleSeconds <= 0 {
		cfg.IdleSeconds = defaultIdleSeconds
	}
	if cfg.SearchIntervalSeconds <= 0 {
		cfg.SearchIntervalSeconds = defaultSearchIntervalSeconds
	}
	m := &Mode{cfg: cfg}
	m.Base = mode.NewBase(priority, mode.Ball)
	return m
}

// IsSearching reports whether the coil sweep is currently running.
func (m *Mode) IsSearching() bool { return m.searching }

func (m *Mode) ModeStarted() {
	m.Reset()
	m.searching = false
	m.nextCoilIdx = 0

	for _, sw := range m.Game().Switches().All() {
		tags := sw.Tags()
		switch {
		case tags.Has(device.TagPlayfield), tags.Has(device.TagEos):
			m.AddHandler(sw.Name(), device.Active, 0, m.onActivity)
		case tags.Has(device.TagShooterLane):
			m.AddHandler(sw.Name(), device.Active, 0, m.onShooterActive)
			m.AddHandler(sw.Name(), device.Inactive, 0, m.onShooterInactive)
		}
	}
	m.armIdleTimer()
}

func (m *Mode) armIdleTimer() {
	m.Delay(m.cfg.IdleSeconds, m.onIdleTimeout, idleDelayName)
}

// onActivity handles both Playfield and Eos switches: while searching,
// only a Playfield hit stops the sweep; otherwise any hit resets the idle
// timer.
func (m *Mode) onActivity(sw *device.Switch) mode.DispatchResult {
	if m.searching {
		if sw.Tags().Has(device.TagPlayfield) {
			m.stopSearch()
		}
		return mode.Continue
	}
	m.armIdleTimer()
	return mode.Continue
}

func (m *Mode) onShooterActive(sw *device.Switch) mode.DispatchResult {
	m.CancelDelay(idleDelayName)
	return mode.Continue
}

func (m *Mode) onShooterInactive(sw *device.Switch) mode.DispatchResult {
	m.armIdleTimer()
	return mode.Continue
}

func (m *Mode) onIdleTimeout() {
	if len(m.cfg.SearchCoils) == 0 {
		return
	}
	m.searching = true
	m.Game().Media().Post("ball_search_started", nil)
	m.pulseNext()
}

func (m *Mode) pulseNext() {
	if !m.searching {
		return
	}
	name := m.cfg.SearchCoils[m.nextCoilIdx%len(m.cfg.SearchCoils)]
	m.nextCoilIdx++
	_ = m.Game().PulseCoil(name, 0)
	m.Delay(m.cfg.SearchIntervalSeconds, m.pulseNext, pulseDelayName)
}

func (m *Mode) stopSearch() {
	m.searching = false
	m.CancelDelay(pulseDelayName)
	m.Game().Media().Post("ball_search_stopped", nil)
}
