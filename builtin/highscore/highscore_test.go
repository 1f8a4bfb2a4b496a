package highscore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinhal/device"
	"pinhal/machine"
	"pinhal/media"
	"pinhal/mode"
	"pinhal/persist"
	"pinhal/player"
)

type fakeGame struct {
	cp        *player.Player
	posts     []map[string]any
	gameEnded media.Signal
}

func (g *fakeGame) Switches() *device.Collection[*device.Switch] { return nil }
func (g *fakeGame) Coils() *device.Collection[*device.Coil]       { return nil }
func (g *fakeGame) Leds() *device.Collection[*device.Led]         { return nil }
func (g *fakeGame) Players() []*player.Player                     { return []*player.Player{g.cp} }
func (g *fakeGame) CurrentPlayer() *player.Player                 { return g.cp }
func (g *fakeGame) Media() media.Sink                             { return g }
func (g *fakeGame) Post(eventType string, payload any) {
	p, _ := payload.(map[string]any)
	g.posts = append(g.posts, map[string]any{"type": eventType, "payload": p})
}
func (g *fakeGame) EndBall()          {}
func (g *fakeGame) EndGame()          {}
func (g *fakeGame) StartBall()        {}
func (g *fakeGame) AddPlayer() error  { return nil }
func (g *fakeGame) StartGame()        {}
func (g *fakeGame) GameEnded() *media.Signal   { return &g.gameEnded }
func (g *fakeGame) BallDrained() *media.Signal { return &media.Signal{} }
func (g *fakeGame) Machine() *machine.Config   { return nil }
func (g *fakeGame) PulseCoil(name string, d time.Duration) error { return nil }
func (g *fakeGame) SetLed(name string, r, gr, b uint8) error     { return nil }

var _ mode.GameAPI = (*fakeGame)(nil)

func newMode(t *testing.T, g *fakeGame, cfg Config) *Mode {
	t.Helper()
	m := New(cfg, 0)
	require.NoError(t, m.BindGame(g))
	m.ModeStarted()
	return m
}

func TestHighScore_EmptyTable_AnyScoreQualifies(t *testing.T) {
	store := &persist.MemoryHighScoreStore{}
	g := &fakeGame{cp: &player.Player{Name: "P1", Score: 0}}
	newMode(t, g, Config{Store: store})

	g.gameEnded.Emit([]*player.Player{{Name: "P1", Score: 0}})

	saved, err := store.Load()
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, int64(0), saved[0].Score)
}

func TestHighScore_FullTable_LowScoreDoesNotQualify(t *testing.T) {
	store := &persist.MemoryHighScoreStore{}
	entries := make([]persist.HighScoreEntry, 10)
	for i := range entries {
		entries[i] = persist.HighScoreEntry{Name: "seed", Score: 1000}
	}
	store.Seed(entries)

	g := &fakeGame{}
	newMode(t, g, Config{Store: store})

	g.gameEnded.Emit([]*player.Player{{Name: "P1", Score: 1}})

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, saved, 10)
	for _, e := range saved {
		assert.NotEqual(t, "P1", e.Name)
	}
	assert.Empty(t, g.posts, "no qualifying score means no high_score_updated event")
}

func TestHighScore_BeatsLowestEntry_ReplacesAndSorts(t *testing.T) {
	store := &persist.MemoryHighScoreStore{}
	store.Seed([]persist.HighScoreEntry{
		{Name: "a", Score: 500},
		{Name: "b", Score: 300},
		{Name: "c", Score: 100},
	})

	g := &fakeGame{}
	newMode(t, g, Config{Store: store, MaxEntries: 3})

	g.gameEnded.Emit([]*player.Player{{Name: "winner", Score: 400}})

	saved, err := store.Load()
	require.NoError(t, err)
	require.Len(t, saved, 3)
	assert.Equal(t, "a", saved[0].Name)
	assert.Equal(t, "winner", saved[1].Name)
	assert.Equal(t, "b", saved[2].Name)
	require.Len(t, g.posts, 1)
	assert.Equal(t, "high_score_updated", g.posts[0]["type"])
}
