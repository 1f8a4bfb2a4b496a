package mode

import "pinhal/device"

// HandlerFunc is invoked when a registered switch transition matches. The
// switch passed is the live device.Switch; its State()/IsActive() already
// reflect the transition that triggered the call.
type HandlerFunc func(sw *device.Switch) DispatchResult

// SwitchHandler pairs a watched (switch name, activation) with a
// callback, and optionally a hold-duration that defers the callback
// until the switch has sat in that activation continuously for the
// given span.
type SwitchHandler struct {
	SwitchName  string
	Activation  device.Activation
	Callback    HandlerFunc
	HoldSeconds float64

	pendingDelay string // non-empty while a hold-duration delay is armed
}

// Matches reports whether this handler watches sw's current transition
// (polarity resolution is device.Switch.Matches' job; this only compares
// names and activation).
func (h *SwitchHandler) Matches(sw *device.Switch) bool {
	return h.SwitchName == sw.Name() && sw.Matches(h.Activation)
}
