package droptarget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinhal/device"
	"pinhal/machine"
	"pinhal/media"
	"pinhal/mode"
	"pinhal/player"
)

type fakeGame struct {
	pulses []string
	posts  []string
}

func (g *fakeGame) Switches() *device.Collection[*device.Switch] { return nil }
func (g *fakeGame) Coils() *device.Collection[*device.Coil]       { return nil }
func (g *fakeGame) Leds() *device.Collection[*device.Led]         { return nil }
func (g *fakeGame) Players() []*player.Player                     { return nil }
func (g *fakeGame) CurrentPlayer() *player.Player                 { return nil }
func (g *fakeGame) Media() media.Sink                             { return g }
func (g *fakeGame) Post(eventType string, payload any)            { g.posts = append(g.posts, eventType) }
func (g *fakeGame) EndBall()                                      {}
func (g *fakeGame) EndGame()                                      {}
func (g *fakeGame) StartBall()                                    {}
func (g *fakeGame) AddPlayer() error                              { return nil }
func (g *fakeGame) StartGame()                                    {}
func (g *fakeGame) GameEnded() *media.Signal                      { return &media.Signal{} }
func (g *fakeGame) BallDrained() *media.Signal                    { return &media.Signal{} }
func (g *fakeGame) Machine() *machine.Config                      { return nil }
func (g *fakeGame) PulseCoil(name string, d time.Duration) error {
	g.pulses = append(g.pulses, name)
	return nil
}
func (g *fakeGame) SetLed(name string, r, gr, b uint8) error { return nil }

var _ mode.GameAPI = (*fakeGame)(nil)

func newMode(t *testing.T, g *fakeGame, cfg Config) *Mode {
	t.Helper()
	m := New(cfg, 0)
	require.NoError(t, m.BindGame(g))
	m.ModeStarted()
	return m
}

func targetSwitch(name string) *device.Switch {
	return device.NewSwitch(name, 1, device.NormallyOpen, false, device.NewTagSet(device.TagPlayfield), device.Open)
}

func TestDropTarget_FirstHit_EmitsAndRecords(t *testing.T) {
	g := &fakeGame{}
	m := newMode(t, g, Config{Targets: []string{"t1", "t2"}, ResetCoil: "reset"})

	t1 := targetSwitch("t1")
	t1.SetState(device.Closed)
	m.Dispatch(t1)

	assert.True(t, m.IsDown("t1"))
	assert.Contains(t, g.posts, "drop_target_hit")
	assert.False(t, m.Complete())
}

func TestDropTarget_ReHit_IsIdempotent(t *testing.T) {
	g := &fakeGame{}
	m := newMode(t, g, Config{Targets: []string{"t1"}, ResetCoil: "reset"})

	t1 := targetSwitch("t1")
	t1.SetState(device.Closed)
	m.Dispatch(t1)
	hitsBefore := len(g.posts)

	t1.SetState(device.Open)
	t1.SetState(device.Closed)
	m.Dispatch(t1)

	assert.Equal(t, hitsBefore, len(g.posts), "re-hitting an already-down target is a bounce, not a new event")
}

func TestDropTarget_BankComplete_EmitsAndSchedulesAutoReset(t *testing.T) {
	g := &fakeGame{}
	m := newMode(t, g, Config{Targets: []string{"t1", "t2"}, ResetCoil: "reset", AutoResetSeconds: 0.01})

	t1 := targetSwitch("t1")
	t1.SetState(device.Closed)
	m.Dispatch(t1)

	t2 := targetSwitch("t2")
	t2.SetState(device.Closed)
	m.Dispatch(t2)

	assert.True(t, m.Complete())
	assert.Contains(t, g.posts, "drop_target_bank_complete")

	m.TickDelays(time.Now().Add(time.Second))
	assert.Contains(t, g.posts, "drop_target_bank_reset")
	assert.Equal(t, []string{"reset"}, g.pulses)
	assert.False(t, m.IsDown("t1"), "auto-reset clears the down set")
}

func TestDropTarget_Reset_CancelsPendingAutoResetAndPulsesCoil(t *testing.T) {
	g := &fakeGame{}
	m := newMode(t, g, Config{Targets: []string{"t1"}, ResetCoil: "reset", AutoResetSeconds: 100})

	t1 := targetSwitch("t1")
	t1.SetState(device.Closed)
	m.Dispatch(t1)
	require.True(t, m.IsDown("t1"))

	m.ResetBank()

	assert.False(t, m.IsDown("t1"))
	assert.False(t, m.IsDelayed(autoResetDelayName))
	assert.Equal(t, []string{"reset"}, g.pulses)
}
