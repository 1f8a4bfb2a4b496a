// Package modequeue holds the priority-ordered list of active modes and
// drives dispatch, ticking, and the game back-reference binding that
// happens the moment a mode is added. Modes register and unregister by
// identity, and every fan-out walks a snapshot so Add/Remove can safely
// mutate the live queue mid-dispatch.
package modequeue

import (
	"sort"
	"time"

	"pinhal/device"
	"pinhal/errcode"
	"pinhal/internal/logx"
	"pinhal/internal/timex"
	"pinhal/mode"
)

// Queue is the descending-priority, stable-tie-break ordered list of
// active modes. It also tracks parent/child mode ownership for cascade
// removal.
type Queue struct {
	log  *logx.Logger
	game mode.GameAPI

	modes   []mode.Mode
	present map[mode.Mode]bool

	owner    map[mode.Mode]mode.Mode
	children map[mode.Mode][]mode.Mode
}

// New returns an empty queue bound to game, the back-reference every
// added mode receives.
func New(game mode.GameAPI) *Queue {
	return &Queue{
		log:      logx.New("modequeue"),
		game:     game,
		present:  make(map[mode.Mode]bool),
		owner:    make(map[mode.Mode]mode.Mode),
		children: make(map[mode.Mode][]mode.Mode),
	}
}

// Add binds the game reference, appends m, re-sorts by descending
// priority (stable, so equal-priority modes keep insertion order), and
// invokes ModeStarted. Re-adding the same instance is an error.
func (q *Queue) Add(m mode.Mode) error {
	if q.present[m] {
		return errcode.New(errcode.ModeAlreadyQueued, "modequeue.Add", "mode already in queue")
	}
	if err := m.BindGame(q.game); err != nil {
		return err
	}
	q.modes = append(q.modes, m)
	q.present[m] = true
	q.resort()
	q.log.Printf("mode added, priority=%d", m.Priority())
	m.ModeStarted()
	return nil
}

// AddChild registers owner as m's parent and adds m to the queue. Adding
// the same child under the same owner twice is a no-op. Adding a mode
// already owned by a *different* parent is an error.
func (q *Queue) AddChild(owner, child mode.Mode) error {
	if existing, ok := q.owner[child]; ok {
		if existing == owner {
			return nil
		}
		return errcode.New(errcode.ChildAlreadyOwned, "modequeue.AddChild", "child already owned by another mode")
	}
	if err := q.Add(child); err != nil {
		return err
	}
	q.owner[child] = owner
	q.children[owner] = append(q.children[owner], child)
	return nil
}

// Remove calls ModeStopped after removal, then cascades to any children
// owned by m. Removing a non-member is a silent no-op.
func (q *Queue) Remove(m mode.Mode) {
	if !q.present[m] {
		return
	}
	q.removeOne(m)

	kids := q.children[m]
	delete(q.children, m)
	for _, c := range kids {
		delete(q.owner, c)
		q.Remove(c)
	}
}

func (q *Queue) removeOne(m mode.Mode) {
	idx := -1
	for i, cur := range q.modes {
		if cur == m {
			idx = i
			break
		}
	}
	if idx >= 0 {
		q.modes = append(q.modes[:idx], q.modes[idx+1:]...)
	}
	delete(q.present, m)
	m.ModeStopped()
}

func (q *Queue) resort() {
	sort.SliceStable(q.modes, func(i, j int) bool {
		return q.modes[i].Priority() > q.modes[j].Priority()
	})
}

// Snapshot returns the current dispatch order, copied so callers may
// iterate it while Add/Remove mutate the live queue.
func (q *Queue) Snapshot() []mode.Mode {
	out := make([]mode.Mode, len(q.modes))
	copy(out, q.modes)
	return out
}

// Dispatch walks a snapshot in descending-priority order, invoking
// Dispatch on each mode. The loop breaks at the first mode whose
// aggregate result is Stop, so no lower-priority mode observes the
// event.
func (q *Queue) Dispatch(sw *device.Switch) {
	for _, m := range q.Snapshot() {
		if q.safeDispatch(m, sw) == mode.Stop {
			return
		}
	}
}

// safeDispatch recovers a panicking handler so one mode's bug cannot
// crash the game loop. The offending mode's own state is left exactly as
// it was; only the dispatch call itself is aborted.
func (q *Queue) safeDispatch(m mode.Mode, sw *device.Switch) (result mode.DispatchResult) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Warn("recovered from panic in mode dispatch: %v", r)
			result = mode.Continue
		}
	}()
	return m.Dispatch(sw)
}

// Tick fires due delays and calls Tick(delta) on every mode in a
// snapshot, delays before Tick for each mode in turn.
func (q *Queue) Tick(delta time.Duration) {
	now := timex.Monotonic()
	for _, m := range q.Snapshot() {
		q.safeTick(m, now, delta)
	}
}

func (q *Queue) safeTick(m mode.Mode, now time.Time, delta time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Warn("recovered from panic in mode tick: %v", r)
		}
	}()
	m.TickDelays(now)
	m.Tick(delta)
}

// Contains reports whether m is currently in the queue.
func (q *Queue) Contains(m mode.Mode) bool { return q.present[m] }

// Len reports how many modes are currently queued.
func (q *Queue) Len() int { return len(q.modes) }
