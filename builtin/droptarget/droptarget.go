// Package droptarget implements the drop-target bank mode: a
// bounce-guarded down-set tracked per target switch, a bank-complete
// event once every target is down, and an optional auto-reset.
package droptarget

import (
	"pinhal/device"
	"pinhal/mode"
)

// Config names the target switches, the reset coil, and the optional
// auto-reset delay (0 disables it).
type Config struct {
	Targets          []string
	ResetCoil        string
	AutoResetSeconds float64
}

const autoResetDelayName = "auto_reset"

// Mode is a Ball-lifecycle mode: the down-set clears every ball.
type Mode struct {
	mode.Base
	cfg  Config
	down map[string]bool
}

// New returns a drop-target bank mode at the given dispatch priority.
func New(cfg Config, priority int) *Mode {
	m := &Mode{cfg: cfg}
	m.Base = mode.NewBase(priority, mode.Ball)
	return m
}

// IsDown reports whether name has been hit this ball.
func (m *Mode) IsDown(name string) bool { return m.down[name] }

// Complete reports whether every target in the bank is down.
func (m *Mode) Complete() bool { return len(m.down) == len(m.cfg.Targets) }

func (m *Mode) ModeStarted() {
	m.Reset()
	m.down = make(map[string]bool, len(m.cfg.Targets))
	for _, name := range m.cfg.Targets {
		m.AddHandler(name, device.Active, 0, m.onTargetHit)
	}
}

func (m *Mode) onTargetHit(sw *device.Switch) mode.DispatchResult {
	if m.down[sw.Name()] {
		return mode.Continue // bounce guard: already recorded
	}
	m.down[sw.Name()] = true
	m.Game().Media().Post("drop_target_hit", map[string]any{"target": sw.Name()})

	if m.Complete() {
		m.Game().Media().Post("drop_target_bank_complete", map[string]any{"targets": m.cfg.Targets})
		if m.cfg.AutoResetSeconds > 0 {
			m.Delay(m.cfg.AutoResetSeconds, m.ResetBank, autoResetDelayName)
		}
	}
	return mode.Continue
}

// ResetBank cancels any pending auto-reset, clears the down set, pulses
// the reset coil, and emits drop_target_bank_reset.
func (m *Mode) ResetBank() {
	m.CancelDelay(autoResetDelayName)
	m.down = make(map[string]bool, len(m.cfg.Targets))
	_ = m.Game().PulseCoil(m.cfg.ResetCoil, 0)
	m.Game().Media().Post("drop_target_bank_reset", nil)
}
