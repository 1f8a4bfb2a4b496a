// Package switchio defines the sole seam between the runtime core and a
// physical or simulated hardware backend. It owes no game semantics: it
// moves switch, coil, and LED state across a thread boundary and installs
// local switch→coil reflexes. The interface is a narrow, driver-owned
// contract with no game logic leaking in.
package switchio

import (
	"context"
	"time"
)

// State mirrors device.PhysicalState without importing the device package,
// keeping this seam free of core-domain types.
type State int

const (
	Open State = iota
	Closed
)

// Change is a single (address, new-state) event, possibly produced on a
// background thread.
type Change struct {
	Address int
	State   State
}

// ChangeStream is a subscribable, ordered channel of switch changes. The
// producer may run on any goroutine; the core's switch-event pipeline is
// the sole consumer.
type ChangeStream <-chan Change

// Platform is the complete hardware contract. Every backend — a real
// board's GPIO/I2C driver stack, the in-process simulator, or a test
// double — satisfies this one interface.
type Platform interface {
	// Connect must complete before any other method is called. ctx governs
	// cooperative cancellation of the connect attempt itself.
	Connect(ctx context.Context) error
	// Disconnect releases hardware resources. Safe to call after a failed
	// or successful Connect.
	Disconnect(ctx context.Context) error

	// InitialStates returns the ground-truth state of every known switch
	// address at boot, read synchronously during startup.
	InitialStates() map[int]State

	// Changes returns the stream of subsequent switch transitions. Called
	// once, after InitialStates, during startup.
	Changes() ChangeStream

	// Pulse fires a coil for the given duration. Hold sustains a coil on
	// until Disable. Disable is the hardware-level de-energize; this
	// interface has no matching enable call, and the core's software
	// enable flag lives on device.Coil.
	Pulse(addr int, d time.Duration) error
	Hold(addr int) error
	Disable(addr int) error

	// ConfigureFlipperRule installs a switch→coil reflex that runs without
	// a host round-trip: closing switchAddr drives coilAddr for pulseMs,
	// then holds at holdPower (0..1) until the switch releases.
	ConfigureFlipperRule(switchAddr, coilAddr int, pulseMs int, holdPower float64) error
	// ConfigureBumperRule installs a fixed-pulse switch→coil reflex.
	ConfigureBumperRule(switchAddr, coilAddr int, pulseMs int) error
	// RemoveHardwareRule uninstalls any rule keyed by switchAddr.
	RemoveHardwareRule(switchAddr int) error

	// SetLed writes a single RGB value.
	SetLed(addr int, r, g, b uint8) error
	// SetLedRun writes the same RGB value to a contiguous run of addresses
	// starting at addr, inclusive.
	SetLedRun(addr int, count int, r, g, b uint8) error
}
