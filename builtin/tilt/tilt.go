// Package tilt implements the tilt mode: a cooldown-debounced tilt-bob
// switch, a warning counter, a tilted state that pulls flipper hardware
// rules, and a slam-tilt switch that ends the game outright. The
// cooldown window is measured against the mode's own monotonic clock to
// swallow rapid bounces without counting each one as a separate hit.
package tilt

import (
	"time"

	"pinhal/device"
	"pinhal/internal/timex"
	"pinhal/mode"
)

// FlipperRule is one flipper's hardware reflex, reinstalled after a tilted
// ball ends.
type FlipperRule struct {
	SwitchName string
	CoilName   string
	PulseMs    int
	HoldPower  float64
}

// Config names the tilt-bob and slam-tilt switches, the cooldown window,
// the warning allowance, and the flipper rules to pull/restore.
type Config struct {
	TiltSwitch      string
	SlamTiltSwitch  string
	CooldownSeconds float64
	WarningsAllowed int
	Flippers        []FlipperRule
}

const defaultCooldownSeconds = 0.5

// Mode is a Ball-lifecycle mode: its warning count and tilted state reset
// every ball.
type Mode struct {
	mode.Base
	cfg Config

	warnings  int
	tilted    bool
	lastHitAt time.Time
}

// New returns a tilt mode at the given dispatch priority.
func New(cfg Config, priority int) *Mode {
	if cfg.CooldownSeconds <= 0 {
		cfg.CooldownSeconds = defaultCooldownSeconds
	}
	m := &Mode{cfg: cfg}
	m.Base = mode.NewBase(priority, mode.Ball)
	return m
}

// IsTilted reports whether this ball has tilted.
func (m *Mode) IsTilted() bool { return m.tilted }

func (m *Mode) ModeStarted() {
	m.Reset()
	m.warnings = 0
	m.tilted = false
	m.lastHitAt = time.Time{}

	m.AddHandler(m.cfg.TiltSwitch, device.Active, 0, m.onTiltHit)
	if m.cfg.SlamTiltSwitch != "" {
		m.AddHandler(m.cfg.SlamTiltSwitch, device.Active, 0, m.onSlamTilt)
	}
}

// ModeStopped re-installs every flipper rule pulled by a tilt, restoring
// hardware behavior for the next ball.
func (m *Mode) ModeStopped() {
	if !m.tilted {
		return
	}
	for _, f := range m.cfg.Flippers {
		_ = m.Game().Machine().AddFlipperRule(f.SwitchName, f.CoilName, f.PulseMs, f.HoldPower)
	}
}

func (m *Mode) onTiltHit(sw *device.Switch) mode.DispatchResult {
	if m.tilted {
		return mode.Continue
	}
	now := timex.Monotonic()
	if !m.lastHitAt.IsZero() && now.Sub(m.lastHitAt) < durationFromSeconds(m.cfg.CooldownSeconds) {
		return mode.Continue // bounce within the cooldown window
	}
	m.lastHitAt = now

	m.warnings++
	if m.warnings <= m.cfg.WarningsAllowed {
		m.Game().Media().Post("tilt_warning", map[string]any{"warning": m.warnings, "allowed": m.cfg.WarningsAllowed})
		return mode.Continue
	}

	m.tilted = true
	for _, f := range m.cfg.Flippers {
		_ = m.Game().Machine().RemoveHardwareRule(f.SwitchName)
	}
	m.Game().Media().Post("tilt", nil)
	return mode.Continue
}

func (m *Mode) onSlamTilt(sw *device.Switch) mode.DispatchResult {
	m.Game().Media().Post("slam_tilt", nil)
	m.Game().EndGame()
	return mode.Stop
}

func durationFromSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
