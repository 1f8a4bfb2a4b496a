// Package bonus implements the end-of-ball bonus countdown: an
// accumulated bonus value times a clamped multiplier, awarded to the
// current player in fixed-size steps separated by a step interval, ending
// the ball when the countdown completes. Each step reschedules the next
// one through mode.Base's named delay.
package bonus

import (
	"pinhal/mode"
)

// Config controls the award granularity. Zero values fall back to the
// defaults: 1000 points per step, a 0.1 s step interval.
type Config struct {
	StepSize            int64
	StepIntervalSeconds float64
}

const (
	defaultStepSize            = 1000
	defaultStepIntervalSeconds = 0.1
)

// Mode is a Ball-lifecycle mode: accumulated bonus and multiplier reset
// every ball.
type Mode struct {
	mode.Base
	cfg Config

	bonus      int64
	multiplier int64
	remaining  int64
}

// New returns a bonus mode at the given dispatch priority.
func New(cfg Config, priority int) *Mode {
	if cfg.StepSize <= 0 {
		cfg.StepSize = defaultStepSize
	}
	if cfg.StepIntervalSeconds <= 0 {
		cfg.StepIntervalSeconds = defaultStepIntervalSeconds
	}
	m := &Mode{cfg: cfg}
	m.Base = mode.NewBase(priority, mode.Ball)
	return m
}

func (m *Mode) ModeStarted() {
	m.Reset()
	m.bonus = 0
	m.multiplier = 1
	m.remaining = 0
}

// AddBonus accumulates v into the ball's bonus value.
func (m *Mode) AddBonus(v int64) { m.bonus += v }

// SetMultiplier sets the bonus multiplier, clamped to a minimum of 1.
func (m *Mode) SetMultiplier(v int64) {
	if v < 1 {
		v = 1
	}
	m.multiplier = v
}

// StartBonus computes total = bonus × multiplier and begins awarding it in
// steps. A zero total ends the ball immediately without emitting a step.
func (m *Mode) StartBonus() {
	total := m.bonus * m.multiplier
	m.remaining = total
	m.Game().Media().Post("bonus_started", map[string]any{"bonus": m.bonus, "multiplier": m.multiplier, "total": total})
	if total == 0 {
		m.Game().EndBall()
		return
	}
	m.step()
}

func (m *Mode) step() {
	award := m.cfg.StepSize
	if award > m.remaining {
		award = m.remaining
	}
	m.remaining -= award
	if cp := m.Game().CurrentPlayer(); cp != nil {
		cp.Score += award
	}
	m.Game().Media().Post("bonus_step", map[string]any{"awarded": award, "remaining": m.remaining})

	if m.remaining <= 0 {
		m.Game().Media().Post("bonus_completed", map[string]any{"awarded": award})
		m.Game().EndBall()
		return
	}
	m.Delay(m.cfg.StepIntervalSeconds, m.step, "bonus_step")
}
