// Package media carries game events outward. Sink is the narrow,
// no-semantics interface built-in modes call into; Signal is the
// synchronous, lock-free subscriber-list primitive used for in-process
// lifecycle hooks (GameEnded, BallDrained) where the caller needs to
// know whether anyone is listening and must not pay for a channel round
// trip. No synchronization primitive is used inside event emission; the
// single-threaded invariant is enforced by the game loop itself.
package media

import "pinhal/eventbus"

// Sink is the one-method external media event interface. Failures are
// swallowed by the implementation; nothing here propagates back into the
// game loop.
type Sink interface {
	Post(eventType string, payload any)
}

// NullSink discards every event. Useful for tests and for a demo run
// with no media backend wired up.
type NullSink struct{}

func (NullSink) Post(eventType string, payload any) {}

// BusSink fans a Post call out to every bus subscriber watching the
// media family. Any number of downstream consumers (a websocket pusher,
// a scorekeeping log, a metrics counter) subscribe independently without
// the game loop knowing they exist.
type BusSink struct {
	bus *eventbus.Bus
}

// NewBusSink wraps an event bus.
func NewBusSink(bus *eventbus.Bus) *BusSink {
	return &BusSink{bus: bus}
}

func (s *BusSink) Post(eventType string, payload any) {
	s.bus.Publish(eventbus.MediaTopic(eventType), payload)
}
