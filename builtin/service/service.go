// Package service implements the service mode: a System-lifecycle mode
// at the highest dispatch priority that, once entered, disables every
// coil and swallows every other switch activation so a technician can
// work the playfield without triggering game logic. "Highest priority
// intercepts, everything below never sees the event" is ordinary
// Stop-propagation; service just exercises it maximally by registering
// against every known switch rather than a handful.
package service

import (
	"pinhal/device"
	"pinhal/mode"
)

// Config names the switch(es) tagged Service that toggle service mode on
// and off.
type Config struct {
	ToggleSwitches []string
}

// Mode is a System-lifecycle mode, added once at startup and never
// removed by the game's own lifecycle transitions.
type Mode struct {
	mode.Base
	cfg Config

	active bool
}

// Priority is the fixed dispatch priority service mode always runs at.
const Priority = 100

// New returns a service mode at the fixed priority 100.
func New(cfg Config) *Mode {
	m := &Mode{cfg: cfg}
	m.Base = mode.NewBase(Priority, mode.System)
	return m
}

// Active reports whether service mode is currently entered.
func (m *Mode) Active() bool { return m.active }

// TestCoil temporarily enables, pulses, and re-disables the named coil —
// the technician's "fire this coil once" tool.
func (m *Mode) TestCoil(name string) error {
	coil, ok := m.Game().Coils().ByName(name)
	if !ok {
		return nil
	}
	coil.Enable()
	err := m.Game().PulseCoil(name, 0)
	coil.Disable()
	return err
}

func (m *Mode) ModeStarted() {
	m.Reset()
	m.active = false

	toggle := make(map[string]bool, len(m.cfg.ToggleSwitches))
	for _, name := range m.cfg.ToggleSwitches {
		toggle[name] = true
		m.AddHandler(name, device.Active, 0, m.onToggle)
	}
	for _, sw := range m.Game().Switches().All() {
		if toggle[sw.Name()] {
			continue
		}
		m.AddHandler(sw.Name(), device.Active, 0, m.onIntercept)
	}
}

func (m *Mode) onToggle(sw *device.Switch) mode.DispatchResult {
	if m.active {
		m.exit()
	} else {
		m.enter()
	}
	return mode.Stop
}

func (m *Mode) onIntercept(sw *device.Switch) mode.DispatchResult {
	if !m.active {
		return mode.Continue
	}
	m.Game().Media().Post("service_switch_activated", map[string]any{"name": sw.Name()})
	return mode.Stop
}

func (m *Mode) enter() {
	m.active = true
	for _, coil := range m.Game().Coils().All() {
		coil.Disable()
	}
	m.Game().Media().Post("service_mode_entered", nil)
}

func (m *Mode) exit() {
	m.active = false
	for _, coil := range m.Game().Coils().All() {
		coil.Enable()
	}
	m.Game().Media().Post("service_mode_exited", nil)
}
