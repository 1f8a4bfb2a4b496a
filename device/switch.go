package device

import "pinhal/internal/timex"

// LogicalType is the wiring polarity of a switch.
type LogicalType int

const (
	// NormallyOpen switches read Closed when triggered.
	NormallyOpen LogicalType = iota
	// NormallyClosed switches read Open when triggered (typical for optos).
	NormallyClosed
)

func (t LogicalType) String() string {
	if t == NormallyClosed {
		return "NC"
	}
	return "NO"
}

// PhysicalState is the raw electrical state of a switch contact.
type PhysicalState int

const (
	Open PhysicalState = iota
	Closed
)

func (s PhysicalState) String() string {
	if s == Closed {
		return "closed"
	}
	return "open"
}

// Activation is the polarity-aware (or polarity-blind) direction a handler
// cares about.
type Activation int

const (
	Active Activation = iota
	Inactive
	ActivationClosed
	ActivationOpen
)

func (a Activation) String() string {
	switch a {
	case Active:
		return "active"
	case Inactive:
		return "inactive"
	case ActivationClosed:
		return "closed"
	case ActivationOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Tag marks a switch with a role that built-in modes key off of, e.g. the
// ball-search sweep subscribes to every Playfield/Eos/ShooterLane switch.
type Tag int

const (
	TagPlayfield Tag = 1 << iota
	TagEos
	TagShooterLane
	TagService
	TagTrough
)

// TagSet is a bitset of Tag values.
type TagSet int

// TagNone is the empty tag set.
const TagNone TagSet = 0

func (s TagSet) Has(t Tag) bool { return int(s)&int(t) != 0 }

func NewTagSet(tags ...Tag) TagSet {
	var s TagSet
	for _, t := range tags {
		s |= TagSet(t)
	}
	return s
}

// Switch is the runtime model of one physical switch: immutable identity
// plus mutable physical state and a change timestamp.
type Switch struct {
	name     string
	addr     int
	logical  LogicalType
	debounce bool
	tags     TagSet

	state      PhysicalState
	changedAtMs int64
}

// NewSwitch constructs a switch at its boot-time physical state.
func NewSwitch(name string, addr int, logical LogicalType, debounce bool, tags TagSet, initial PhysicalState) *Switch {
	return &Switch{
		name:        name,
		addr:        addr,
		logical:     logical,
		debounce:    debounce,
		tags:        tags,
		state:       initial,
		changedAtMs: timex.NowMs(),
	}
}

func (s *Switch) Name() string          { return s.name }
func (s *Switch) Address() int          { return s.addr }
func (s *Switch) LogicalType() LogicalType { return s.logical }
func (s *Switch) Debounce() bool        { return s.debounce }
func (s *Switch) Tags() TagSet          { return s.tags }
func (s *Switch) State() PhysicalState  { return s.state }
func (s *Switch) ChangedAtMs() int64    { return s.changedAtMs }

// IsActive derives the polarity-aware semantic state:
// (Type = NO ∧ State = Closed) ∨ (Type = NC ∧ State = Open).
func (s *Switch) IsActive() bool {
	if s.logical == NormallyOpen {
		return s.state == Closed
	}
	return s.state == Open
}

// SetState updates the physical state and timestamp. Callers (the switch
// pipeline in game.Controller) are responsible for dedup before calling.
func (s *Switch) SetState(state PhysicalState) {
	s.state = state
	s.changedAtMs = timex.NowMs()
}

// Matches reports whether the switch's current transition satisfies the
// given activation.
func (s *Switch) Matches(a Activation) bool {
	switch a {
	case Active:
		return s.IsActive()
	case Inactive:
		return !s.IsActive()
	case ActivationClosed:
		return s.state == Closed
	case ActivationOpen:
		return s.state == Open
	default:
		return false
	}
}

// TriggerState returns the physical state that this activation watches
// for on this switch. Both Active/Inactive (polarity-aware) and
// Closed/Open (polarity-blind) resolve to a concrete PhysicalState target.
func (s *Switch) TriggerState(a Activation) PhysicalState {
	switch a {
	case Active:
		if s.logical == NormallyOpen {
			return Closed
		}
		return Open
	case Inactive:
		if s.logical == NormallyOpen {
			return Open
		}
		return Closed
	case ActivationClosed:
		return Closed
	case ActivationOpen:
		return Open
	default:
		return s.state
	}
}

// Opposite returns the activation that fires on the opposite transition of
// a, used by hold-duration auto-cancel.
func Opposite(a Activation) Activation {
	switch a {
	case Active:
		return Inactive
	case Inactive:
		return Active
	case ActivationClosed:
		return ActivationOpen
	case ActivationOpen:
		return ActivationClosed
	default:
		return a
	}
}
