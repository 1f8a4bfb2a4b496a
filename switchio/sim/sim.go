// Package sim implements switchio.Platform entirely in-process: a flat
// address-space map of switches/coils/LEDs and a manual TestControl API
// in place of real wiring. The change producer is a bounded, non-blocking
// queue drained by a single background goroutine, so a slow consumer can
// never block whatever toggles a switch, even though there is no real
// interrupt here — only a caller that may run on any goroutine.
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pinhal/internal/logx"
	"pinhal/switchio"
)

type flipperRule struct {
	coilAddr  int
	pulseMs   int
	holdPower float64
}

type bumperRule struct {
	coilAddr int
	pulseMs  int
}

// Sim is an in-process simulated hardware backend. It is safe for the
// switch-toggling side (Toggle) to be called from any goroutine;
// the Changes() stream is the only thing the core game loop reads.
type Sim struct {
	log *logx.Logger

	mu        sync.RWMutex
	switches  map[int]switchio.State
	connected bool

	flipperRules map[int]flipperRule
	bumperRules  map[int]bumperRule

	coilEnabled map[int]bool
	coilHeld    map[int]bool
	ledColor    map[int][3]uint8

	// isrQ is written by Toggle (the simulated ISR path) and drained by a
	// single background goroutine into outQ, so a slow consumer of outQ
	// cannot block the producer.
	isrQ chan switchio.Change
	outQ chan switchio.Change

	stop chan struct{}
	done chan struct{}

	coilPulses []PulseRecord
}

// PulseRecord is kept for test assertions ("a PULSE on the eject coil").
type PulseRecord struct {
	Addr int
	At   time.Time
	Ms   int
}

const (
	isrQueueSize = 256
	outQueueSize = 256
)

// New returns a simulator seeded with the given initial switch states.
func New(initial map[int]switchio.State) *Sim {
	states := make(map[int]switchio.State, len(initial))
	for addr, st := range initial {
		states[addr] = st
	}
	return &Sim{
		log:          logx.New("sim"),
		switches:     states,
		flipperRules: make(map[int]flipperRule),
		bumperRules:  make(map[int]bumperRule),
		coilEnabled:  make(map[int]bool),
		coilHeld:     make(map[int]bool),
		ledColor:     make(map[int][3]uint8),
		isrQ:         make(chan switchio.Change, isrQueueSize),
		outQ:         make(chan switchio.Change, outQueueSize),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

func (s *Sim) Connect(ctx context.Context) error {
	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()
	go s.run()
	return nil
}

func (s *Sim) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	connected := s.connected
	s.connected = false
	s.mu.Unlock()
	if !connected {
		return nil
	}
	close(s.stop)
	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// run drains isrQ into outQ, applying flipper/bumper reflex simulation
// before forwarding the event. There is no debounce stage; the caller
// controls timing explicitly in tests.
func (s *Sim) run() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		case ch := <-s.isrQ:
			s.applyReflex(ch)
			select {
			case s.outQ <- ch:
			default:
				s.log.Warn("change stream full, dropping event for addr %d", ch.Address)
			}
		}
	}
}

func (s *Sim) applyReflex(ch switchio.Change) {
	s.mu.RLock()
	fr, hasFlipper := s.flipperRules[ch.Address]
	br, hasBumper := s.bumperRules[ch.Address]
	s.mu.RUnlock()

	switch {
	case hasFlipper:
		if ch.State == switchio.Closed {
			s.recordPulse(fr.coilAddr, fr.pulseMs)
			s.mu.Lock()
			s.coilHeld[fr.coilAddr] = true
			s.mu.Unlock()
		} else {
			s.mu.Lock()
			s.coilHeld[fr.coilAddr] = false
			s.mu.Unlock()
		}
	case hasBumper:
		if ch.State == switchio.Closed {
			s.recordPulse(br.coilAddr, br.pulseMs)
		}
	}
}

func (s *Sim) recordPulse(addr, ms int) {
	s.mu.Lock()
	s.coilPulses = append(s.coilPulses, PulseRecord{Addr: addr, At: time.Now(), Ms: ms})
	s.mu.Unlock()
}

func (s *Sim) InitialStates() map[int]switchio.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int]switchio.State, len(s.switches))
	for k, v := range s.switches {
		out[k] = v
	}
	return out
}

func (s *Sim) Changes() switchio.ChangeStream { return s.outQ }

func (s *Sim) Pulse(addr int, d time.Duration) error {
	s.mu.RLock()
	enabled := s.coilEnabled[addr]
	s.mu.RUnlock()
	if !enabled {
		return nil
	}
	s.recordPulse(addr, int(d.Milliseconds()))
	return nil
}

func (s *Sim) Hold(addr int) error {
	s.mu.RLock()
	enabled := s.coilEnabled[addr]
	s.mu.RUnlock()
	if !enabled {
		return nil
	}
	s.mu.Lock()
	s.coilHeld[addr] = true
	s.mu.Unlock()
	return nil
}

func (s *Sim) Disable(addr int) error {
	s.mu.Lock()
	s.coilEnabled[addr] = false
	s.coilHeld[addr] = false
	s.mu.Unlock()
	return nil
}

// EnableCoil is sim-only test plumbing: the simulator starts every coil
// address disabled until a rule or explicit enable arms it, so Pulse/Hold
// calls from freshly-configured demo code are observable.
func (s *Sim) EnableCoil(addr int) {
	s.mu.Lock()
	s.coilEnabled[addr] = true
	s.mu.Unlock()
}

func (s *Sim) ConfigureFlipperRule(switchAddr, coilAddr int, pulseMs int, holdPower float64) error {
	s.mu.Lock()
	s.flipperRules[switchAddr] = flipperRule{coilAddr: coilAddr, pulseMs: pulseMs, holdPower: holdPower}
	s.coilEnabled[coilAddr] = true
	s.mu.Unlock()
	return nil
}

func (s *Sim) ConfigureBumperRule(switchAddr, coilAddr int, pulseMs int) error {
	s.mu.Lock()
	s.bumperRules[switchAddr] = bumperRule{coilAddr: coilAddr, pulseMs: pulseMs}
	s.coilEnabled[coilAddr] = true
	s.mu.Unlock()
	return nil
}

func (s *Sim) RemoveHardwareRule(switchAddr int) error {
	s.mu.Lock()
	delete(s.flipperRules, switchAddr)
	delete(s.bumperRules, switchAddr)
	s.mu.Unlock()
	return nil
}

func (s *Sim) SetLed(addr int, r, g, b uint8) error {
	s.mu.Lock()
	s.ledColor[addr] = [3]uint8{r, g, b}
	s.mu.Unlock()
	return nil
}

func (s *Sim) SetLedRun(addr int, count int, r, g, b uint8) error {
	s.mu.Lock()
	for i := 0; i < count; i++ {
		s.ledColor[addr+i] = [3]uint8{r, g, b}
	}
	s.mu.Unlock()
	return nil
}

// --- Test-control API: the harness-facing half of the simulator. ---

// Toggle sets addr to the given state and enqueues a Change, mimicking an
// ISR firing on a background thread. Safe to call concurrently with the
// game loop; send is non-blocking, matching the real platform's
// "producers must not assume the subscriber is re-entrant" contract.
func (s *Sim) Toggle(addr int, state switchio.State) {
	s.mu.Lock()
	s.switches[addr] = state
	s.mu.Unlock()

	select {
	case s.isrQ <- switchio.Change{Address: addr, State: state}:
	default:
		s.log.Warn("isr queue full, dropping toggle for addr %d", addr)
	}
}

// CoilPulses returns every recorded Pulse/reflex-triggered pulse so far,
// for assertions like "a PULSE on the eject coil and no ball increment".
func (s *Sim) CoilPulses() []PulseRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PulseRecord, len(s.coilPulses))
	copy(out, s.coilPulses)
	return out
}

// IsCoilHeld reports whether a flipper's coil is currently energized by
// its flipper rule, for assertions on sustained hold.
func (s *Sim) IsCoilHeld(addr int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.coilHeld[addr]
}

// HasFlipperRule and HasBumperRule support assertions that tilt correctly
// removed/restored hardware rules.
func (s *Sim) HasFlipperRule(switchAddr int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.flipperRules[switchAddr]
	return ok
}

func (s *Sim) HasBumperRule(switchAddr int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.bumperRules[switchAddr]
	return ok
}

func (s *Sim) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("sim(switches=%d, flippers=%d, bumpers=%d)", len(s.switches), len(s.flipperRules), len(s.bumperRules))
}

var _ switchio.Platform = (*Sim)(nil)
