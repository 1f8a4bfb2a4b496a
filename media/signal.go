package media

// Signal is a synchronous, in-process multi-subscriber callback list,
// used where a built-in mode needs to know synchronously whether anyone
// is listening (trough's drain policy: if a BallDrained subscriber
// exists, notify and defer EndBall to it; else call EndBall directly).
// Subscribers are invoked in registration order on the caller's
// goroutine; callers must only ever touch a Signal from the main loop.
type Signal struct {
	subs []func(payload any)
}

// Subscribe registers cb to run on every future Emit.
func (s *Signal) Subscribe(cb func(payload any)) {
	s.subs = append(s.subs, cb)
}

// HasSubscribers reports whether any callback is registered.
func (s *Signal) HasSubscribers() bool { return len(s.subs) > 0 }

// Emit runs every subscriber in registration order.
func (s *Signal) Emit(payload any) {
	for _, cb := range s.subs {
		cb(payload)
	}
}
