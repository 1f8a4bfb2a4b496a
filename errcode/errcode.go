// Package errcode provides a stable, comparable error identifier used
// throughout the runtime core, plus a lightweight wrapper that keeps an
// operation name, a human message, and an optional cause.
package errcode

// Code is a stable error identifier. It is a string newtype, comparable,
// allocation-free, and implements error directly so it can be returned
// or compared with errors.Is without a wrapper.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes, grouped per the error kinds in §7 of the spec.
const (
	// Configuration errors — fail fast from the registration/lookup call.
	UnknownDevice     Code = "unknown_device"
	DuplicateDevice   Code = "duplicate_device"
	DuplicateAddress  Code = "duplicate_address"
	NotConfigured     Code = "not_configured"
	AlreadyConfigured Code = "already_configured"

	// Lifecycle misuse — fail fast.
	ModeAlreadyQueued Code = "mode_already_queued"
	ChildAlreadyOwned Code = "child_already_owned"
	AlreadyBound      Code = "already_bound"

	// Platform faults — propagate to the main loop.
	PlatformConnectFailed Code = "platform_connect_failed"
	PlatformFault         Code = "platform_fault"

	// Unknown switch events — warn and drop, not a hard error, but still
	// a named code so callers can recognize it in logs/tests.
	UnknownSwitchAddress Code = "unknown_switch_address"

	// Generic fallback.
	Error Code = "error"
)

// E keeps an operation name, a message, and an optional wrapped cause
// alongside a Code, for errors that need more context than the bare code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := e.Op
	if s != "" {
		s += ": "
	}
	s += string(e.C)
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// New builds an *E with the given code, operation, and message.
func New(c Code, op, msg string) *E {
	return &E{C: c, Op: op, Msg: msg}
}

// Of extracts a Code from an error, defaulting to Error; a nil error
// yields the empty Code.
func Of(err error) Code {
	if err == nil {
		return ""
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
