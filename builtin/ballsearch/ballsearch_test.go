package ballsearch

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
	switches *device.Collection[*device.Switch]
	pulses   []string
}

func (g *fakeGame) Switches() *device.Collection[*device.Switch] { return g.switches }
func (g *fakeGame) Coils() *device.Collection[*device.Coil]       { return nil }
func (g *fakeGame) Leds() *device.Collection[*device.Led]         { return nil }
func (g *fakeGame) Players() []*player.Player                     { return nil }
func (g *fakeGame) CurrentPlayer() *player.Player                 { return nil }
func (g *fakeGame) Media() media.Sink                             { return media.NullSink{} }
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

func newFakeGame(t *testing.T) *fakeGame {
	t.Helper()
	coll := device.NewCollection[*device.Switch]()
	require.NoError(t, coll.Add(device.NewSwitch("pf1", 1, device.NormallyOpen, false, device.NewTagSet(device.TagPlayfield), device.Open)))
	require.NoError(t, coll.Add(device.NewSwitch("shooter", 2, device.NormallyOpen, false, device.NewTagSet(device.TagShooterLane), device.Open)))
	return &fakeGame{switches: coll}
}

func newMode(t *testing.T, g *fakeGame, cfg Config) *Mode {
	t.Helper()
	m := New(cfg, 0)
	require.NoError(t, m.BindGame(g))
	m.ModeStarted()
	return m
}

func TestBallSearch_TimesOutAndRoundRobinsCoils(t *testing.T) {
	g := newFakeGame(t)
	m := newMode(t, g, Config{IdleSeconds: 0, SearchIntervalSeconds: 0, SearchCoils: []string{"c1", "c2"}})

	m.TickDelays(time.Now().Add(time.Minute))
	assert.True(t, m.IsSearching())
	assert.Equal(t, []string{"c1"}, g.pulses)

	m.TickDelays(time.Now().Add(time.Minute))
	assert.Equal(t, []string{"c1", "c2"}, g.pulses)

	m.TickDelays(time.Now().Add(time.Minute))
	assert.Equal(t, []string{"c1", "c2", "c1"}, g.pulses, "the coil list wraps around")
}

func TestBallSearch_PlayfieldHitStopsSearch(t *testing.T) {
	g := newFakeGame(t)
	m := newMode(t, g, Config{IdleSeconds: 0, SearchIntervalSeconds: 0, SearchCoils: []string{"c1"}})

	m.TickDelays(time.Now().Add(time.Minute))
	require.True(t, m.IsSearching())

	pf, _ := g.switches.ByName("pf1")
	pf.SetState(device.Closed)
	m.Dispatch(pf)

	assert.False(t, m.IsSearching())
	before := len(g.pulses)
	m.TickDelays(time.Now().Add(time.Minute))
	assert.Equal(t, before, len(g.pulses), "the search-pulse delay was cancelled")
}

func TestBallSearch_PlayfieldActivityResetsIdleTimer(t *testing.T) {
	g := newFakeGame(t)
	m := newMode(t, g, Config{IdleSeconds: 10, SearchIntervalSeconds: 0, SearchCoils: []string{"c1"}})

	pf, _ := g.switches.ByName("pf1")
	pf.SetState(device.Closed)
	m.Dispatch(pf)

	m.TickDelays(time.Now())
	assert.False(t, m.IsSearching(), "a reset idle timer has not yet elapsed")
}

func TestBallSearch_ShooterLaneSuspendsIdleTimer(t *testing.T) {
	g := newFakeGame(t)
	m := newMode(t, g, Config{IdleSeconds: 0, SearchIntervalSeconds: 0, SearchCoils: []string{"c1"}})

	sl, _ := g.switches.ByName("shooter")
	sl.SetState(device.Closed) // Active: ball held in the lane
	m.Dispatch(sl)

	m.TickDelays(time.Now().Add(time.Minute))
	assert.False(t, m.IsSearching(), "the idle timer is suspended while the shooter lane holds a ball")

	sl.SetState(device.Open) // Inactive: ball leaves, timer restarts
	m.Dispatch(sl)
	m.TickDelays(time.Now().Add(time.Minute))
	assert.True(t, m.IsSearching())
}
