package attract

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
	switches      *device.Collection[*device.Switch]
	posts         []string
	startGameCnt  int
	addPlayerCnt  int
	addPlayerErr  error
	gameEnded     media.Signal
}

func (g *fakeGame) Switches() *device.Collection[*device.Switch] { return g.switches }
func (g *fakeGame) Coils() *device.Collection[*device.Coil]       { return nil }
func (g *fakeGame) Leds() *device.Collection[*device.Led]         { return nil }
func (g *fakeGame) Players() []*player.Player                     { return nil }
func (g *fakeGame) CurrentPlayer() *player.Player                 { return nil }
func (g *fakeGame) Media() media.Sink                             { return g }
func (g *fakeGame) Post(eventType string, payload any)            { g.posts = append(g.posts, eventType) }
func (g *fakeGame) EndBall()                                      {}
func (g *fakeGame) EndGame()                                      {}
func (g *fakeGame) StartBall()                                    {}
func (g *fakeGame) AddPlayer() error                              { g.addPlayerCnt++; return g.addPlayerErr }
func (g *fakeGame) StartGame()                                    { g.startGameCnt++ }
func (g *fakeGame) GameEnded() *media.Signal                      { return &g.gameEnded }
func (g *fakeGame) BallDrained() *media.Signal                    { return &media.Signal{} }
func (g *fakeGame) Machine() *machine.Config                      { return nil }
func (g *fakeGame) PulseCoil(name string, d time.Duration) error  { return nil }
func (g *fakeGame) SetLed(name string, r, gr, b uint8) error      { return nil }

var _ mode.GameAPI = (*fakeGame)(nil)

func newFakeGame(t *testing.T) *fakeGame {
	t.Helper()
	switches := device.NewCollection[*device.Switch]()
	require.NoError(t, switches.Add(device.NewSwitch("start", 1, device.NormallyOpen, false, device.TagNone, device.Open)))
	require.NoError(t, switches.Add(device.NewSwitch("shooter", 2, device.NormallyOpen, false, device.NewTagSet(device.TagShooterLane), device.Open)))
	return &fakeGame{switches: switches}
}

func newMode(t *testing.T, g *fakeGame, cfg Config) *Mode {
	t.Helper()
	m := New(cfg, 0)
	require.NoError(t, m.BindGame(g))
	m.ModeStarted()
	return m
}

func TestAttract_FirstStartPress_StartsGame(t *testing.T) {
	g := newFakeGame(t)
	m := newMode(t, g, Config{StartSwitch: "start"})

	start, _ := g.switches.ByName("start")
	start.SetState(device.Closed)
	m.Dispatch(start)

	assert.Equal(t, 1, g.startGameCnt)
}

func TestAttract_SecondPressBeforePlunge_AddsPlayer(t *testing.T) {
	g := newFakeGame(t)
	m := newMode(t, g, Config{StartSwitch: "start", ShooterLaneSwitch: "shooter"})

	start, _ := g.switches.ByName("start")
	start.SetState(device.Closed)
	m.Dispatch(start)
	start.SetState(device.Open)
	m.Dispatch(start)
	start.SetState(device.Closed)
	m.Dispatch(start)

	assert.Equal(t, 1, g.startGameCnt)
	assert.Equal(t, 1, g.addPlayerCnt)
}

func TestAttract_PressAfterPlunge_DoesNotAddPlayer(t *testing.T) {
	g := newFakeGame(t)
	m := newMode(t, g, Config{StartSwitch: "start", ShooterLaneSwitch: "shooter"})

	start, _ := g.switches.ByName("start")
	start.SetState(device.Closed)
	m.Dispatch(start)

	shooter, _ := g.switches.ByName("shooter")
	shooter.SetState(device.Closed)
	m.Dispatch(shooter)
	shooter.SetState(device.Open) // Inactive: plunge
	m.Dispatch(shooter)

	start.SetState(device.Open)
	m.Dispatch(start)
	start.SetState(device.Closed)
	m.Dispatch(start)

	assert.Equal(t, 0, g.addPlayerCnt)
}

func TestAttract_GameEnded_EntersDwell(t *testing.T) {
	g := newFakeGame(t)
	m := newMode(t, g, Config{StartSwitch: "start", DwellSeconds: 0.01})

	g.gameEnded.Emit([]*player.Player{{Name: "P1", Score: 100}})

	assert.True(t, m.Dwelling())
	require.Len(t, m.finalScores, 1)
	assert.Equal(t, "P1", m.finalScores[0]["name"])
}

func TestAttract_DwellTimesOut(t *testing.T) {
	g := newFakeGame(t)
	m := newMode(t, g, Config{StartSwitch: "start", DwellSeconds: 0.01})

	g.gameEnded.Emit([]*player.Player{{Name: "P1", Score: 100}})
	require.True(t, m.Dwelling())

	time.Sleep(20 * time.Millisecond)
	m.TickDelays(time.Now())

	assert.False(t, m.Dwelling())
	assert.Contains(t, g.posts, "attract_idle")
}

func TestAttract_StartDuringDwell_DismissesAndStartsWithoutConsumingEvent(t *testing.T) {
	g := newFakeGame(t)
	m := newMode(t, g, Config{StartSwitch: "start", DwellSeconds: 10})

	g.gameEnded.Emit([]*player.Player{{Name: "P1", Score: 100}})
	require.True(t, m.Dwelling())

	start, _ := g.switches.ByName("start")
	start.SetState(device.Closed)
	result := m.Dispatch(start)

	assert.False(t, m.Dwelling())
	assert.Equal(t, 1, g.startGameCnt)
	assert.Equal(t, mode.Continue, result, "the Start event is not consumed by the dismiss")
}
