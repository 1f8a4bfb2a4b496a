package mode

import (
	"fmt"
	"time"

	"pinhal/device"
	"pinhal/errcode"
	"pinhal/internal/timex"
)

// Base is embedded by every concrete mode. It supplies priority,
// lifecycle, the bound game back-reference, handler registration, the
// hold-duration/auto-cancel machinery, and the delay scheduler. Concrete
// modes override ModeStarted/ModeStopped/Tick as needed; Base's versions
// are no-ops so a mode that only needs handlers can skip all three.
type Base struct {
	priority  int
	lifecycle Lifecycle

	game  GameAPI
	bound bool

	handlers []*SwitchHandler
	delays   *delayScheduler
}

// NewBase constructs a Base with the given priority and default
// lifecycle. Concrete modes call this from their own constructor.
func NewBase(priority int, lifecycle Lifecycle) Base {
	return Base{
		priority:  priority,
		lifecycle: lifecycle,
		delays:    newDelayScheduler(),
	}
}

func (b *Base) Priority() int                { return b.priority }
func (b *Base) DefaultLifecycle() Lifecycle  { return b.lifecycle }
func (b *Base) Game() GameAPI                { return b.game }

// BindGame binds the game back-reference the first time the mode enters
// the queue. Ball-lifecycle modes re-enter the same queue every ball, so
// binding the same game again is a no-op; binding a different game is an
// error — the reference is never rebound.
func (b *Base) BindGame(g GameAPI) error {
	if b.bound {
		if b.game == g {
			return nil
		}
		return errcode.New(errcode.AlreadyBound, "mode.BindGame", "game reference already bound")
	}
	b.game = g
	b.bound = true
	return nil
}

// ModeStarted, ModeStopped, Tick are no-op defaults. A concrete mode type
// that declares its own method of the same name and embeds Base
// satisfies Mode with its own override; Go's embedding does not require
// the override to call through to Base's version.
func (b *Base) ModeStarted()            {}
func (b *Base) ModeStopped()            {}
func (b *Base) Tick(delta time.Duration) {}

// Reset clears every registered handler and pending delay.
// Ball-lifecycle modes are added and removed once per ball by the same
// instance; since ModeStarted re-registers handlers every ball, a mode
// whose ModeStarted calls AddHandler must call Reset first or handlers
// from prior balls accumulate.
func (b *Base) Reset() {
	b.handlers = nil
	b.delays = newDelayScheduler()
}

// AddHandler registers a switch handler. This must only be called from a
// mode's ModeStarted hook.
func (b *Base) AddHandler(switchName string, activation device.Activation, holdSeconds float64, cb HandlerFunc) {
	b.handlers = append(b.handlers, &SwitchHandler{
		SwitchName:  switchName,
		Activation:  activation,
		Callback:    cb,
		HoldSeconds: holdSeconds,
	})
}

// Dispatch walks this mode's handlers against sw's current transition. A
// handler with no hold-duration fires immediately; one with a
// hold-duration arms a private delay instead, and that handler's pending
// hold delay is cancelled when the same switch transitions to the
// opposite activation before it fires.
func (b *Base) Dispatch(sw *device.Switch) DispatchResult {
	result := Continue
	for _, h := range b.handlers {
		if h.SwitchName != sw.Name() {
			continue
		}
		switch {
		case sw.Matches(h.Activation):
			if h.HoldSeconds > 0 {
				b.armHold(h, sw)
				continue
			}
			if h.Callback(sw) == Stop {
				result = Stop
			}
		case h.HoldSeconds > 0 && h.pendingDelay != "" && sw.Matches(device.Opposite(h.Activation)):
			b.delays.cancel(h.pendingDelay)
			h.pendingDelay = ""
		}
	}
	return result
}

func (b *Base) armHold(h *SwitchHandler, sw *device.Switch) {
	name := fmt.Sprintf("sw_%s_%s_%g", h.SwitchName, h.Activation, h.HoldSeconds)
	h.pendingDelay = name
	b.delays.schedule(timex.Monotonic(), durationFromSeconds(h.HoldSeconds), func() {
		h.pendingDelay = ""
		h.Callback(sw)
	}, name)
}

func durationFromSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Delay schedules cb to run after seconds have elapsed. If name is
// supplied and a pending delay with that name already exists, it is
// replaced atomically. Returns the (possibly generated) name.
func (b *Base) Delay(seconds float64, cb func(), name string) string {
	return b.delays.schedule(timex.Monotonic(), durationFromSeconds(seconds), cb, name)
}

// CancelDelay removes the pending delay named name; a no-op if none
// exists.
func (b *Base) CancelDelay(name string) { b.delays.cancel(name) }

// IsDelayed reports whether a delay named name is pending.
func (b *Base) IsDelayed(name string) bool { return b.delays.isDelayed(name) }

// TickDelays fires every delay whose fire-at has passed, in ascending
// fire-at order with ties broken by scheduling order.
func (b *Base) TickDelays(now time.Time) { b.delays.tick(now) }
