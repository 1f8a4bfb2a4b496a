// Package attract implements the attract/game-over mode: a
// System-lifecycle mode that starts a game on the first Start press, adds
// players up to the machine's cap while ball 1 sits unplunged, and —
// once GameEnded fires — holds final scores on display for a dwell
// period before returning to the attract loop. A Start press during the
// dwell dismisses it immediately without being consumed, so the very
// same press both ends the recap and starts the next game. The recap's
// optional LED breathe is the one place in this mode set that drives
// hardware off the main loop: a bounded background goroutine that only
// ever touches one decorative, game-state-free LED.
package attract

import (
	"pinhal/device"
	"pinhal/internal/ramp"
	"pinhal/mode"
	"pinhal/player"
)

const defaultDwellSeconds = 12.0

const dwellDelayName = "gameover_dwell"

// Config names the hardware this mode watches and the recap's timing and
// decoration.
type Config struct {
	StartSwitch       string
	ShooterLaneSwitch string // optional; detects the plunge that ends the player-adding window
	DwellSeconds       float64
	DwellLed           string // optional; breathes while final scores are on display
}

// Mode is a System-lifecycle mode, added once at startup and never
// removed.
type Mode struct {
	mode.Base
	cfg Config

	inProgress bool
	plunged    bool
	dwelling   bool
	finalScores []map[string]any

	ledStop chan struct{}
}

// New returns an attract/game-over mode at the given dispatch priority.
func New(cfg Config, priority int) *Mode {
	if cfg.DwellSeconds <= 0 {
		cfg.DwellSeconds = defaultDwellSeconds
	}
	m := &Mode{cfg: cfg}
	m.Base = mode.NewBase(priority, mode.System)
	return m
}

// Dwelling reports whether the game-over recap is currently on display.
func (m *Mode) Dwelling() bool { return m.dwelling }

func (m *Mode) ModeStarted() {
	m.Reset()
	m.inProgress = false
	m.plunged = false
	m.dwelling = false

	m.AddHandler(m.cfg.StartSwitch, device.Active, 0, m.onStart)
	if m.cfg.ShooterLaneSwitch != "" {
		m.AddHandler(m.cfg.ShooterLaneSwitch, device.Inactive, 0, m.onPlunge)
	}
	m.Game().GameEnded().Subscribe(m.onGameEnded)
}

// onStart is deliberately never told to Stop: a Start press is always
// allowed to keep propagating (e.g. to a diagnostics mode layered below
// it), even when it also dismisses the dwell.
func (m *Mode) onStart(sw *device.Switch) mode.DispatchResult {
	if m.dwelling {
		m.dismissDwell()
		m.inProgress = true
		m.plunged = false
		m.Game().StartGame()
		return mode.Continue
	}
	if !m.inProgress {
		m.inProgress = true
		m.plunged = false
		m.Game().StartGame()
		return mode.Continue
	}
	if !m.plunged {
		_ = m.Game().AddPlayer()
	}
	return mode.Continue
}

func (m *Mode) onPlunge(sw *device.Switch) mode.DispatchResult {
	m.plunged = true
	return mode.Continue
}

func (m *Mode) onGameEnded(payload any) {
	m.inProgress = false
	m.plunged = false
	m.dwelling = true

	players, _ := payload.([]*player.Player)
	m.finalScores = make([]map[string]any, len(players))
	for i, p := range players {
		m.finalScores[i] = map[string]any{"name": p.Name, "score": p.Score}
	}

	m.Delay(m.cfg.DwellSeconds, m.endDwell, dwellDelayName)
	m.startBreathing()
}

// endDwell is the timeout path: the recap times out on its own.
func (m *Mode) endDwell() {
	m.dwelling = false
	m.stopBreathing()
	m.Game().Media().Post("attract_idle", nil)
}

// dismissDwell is the Start-press path: the same recap is cut short by
// the next game's Start press rather than its own timer.
func (m *Mode) dismissDwell() {
	m.CancelDelay(dwellDelayName)
	m.dwelling = false
	m.stopBreathing()
}

// startBreathing drives cfg.DwellLed through a slow up/down ramp for as
// long as the recap is on display. It is the sole code path in this mode
// set that writes hardware from outside the main-loop's Tick/Dispatch
// call chain; LEDs carry no game state, so there is nothing here for a
// concurrent write to race against.
func (m *Mode) startBreathing() {
	if m.cfg.DwellLed == "" {
		return
	}
	stop := make(chan struct{})
	m.ledStop = stop
	led := m.cfg.DwellLed
	game := m.Game()

	go func() {
		set := func(v uint8) { _ = game.SetLed(led, v, v, v) }
		for {
			ramp.Breathe(0, 255, 1500, 30, stop, set)
			select {
			case <-stop:
				return
			default:
			}
			ramp.Breathe(255, 0, 1500, 30, stop, set)
		}
	}()
}

func (m *Mode) stopBreathing() {
	if m.ledStop == nil {
		return
	}
	close(m.ledStop)
	m.ledStop = nil
}
