// Package game wires a machine.Config and a switchio.Platform into the
// runtime core's main loop: the switch-event pipeline and the lifecycle
// transitions. The main loop is a select over one case per inbound
// source plus a re-armed yield ticker.
package game

import (
	"context"
	"fmt"
	"time"

	"pinhal/device"
	"pinhal/errcode"
	"pinhal/internal/logx"
	"pinhal/internal/timex"
	"pinhal/machine"
	"pinhal/media"
	"pinhal/mode"
	"pinhal/modequeue"
	"pinhal/player"
	"pinhal/switchio"
)

// yieldInterval is the main loop's cooperative yield between ticks.
const yieldInterval = time.Millisecond

// Controller owns the machine configuration, the mode queue, the player
// list, and the lifecycle state machine.
type Controller struct {
	log      *logx.Logger
	platform switchio.Platform
	machine  *machine.Config
	queue    *modequeue.Queue
	sink     media.Sink

	players       []*player.Player
	currentPlayer int
	ball          int
	ballsPerGame  int
	maxPlayers    int

	registered      map[mode.Lifecycle][]mode.Mode
	systemPhaseDone bool

	gameEnded   media.Signal
	ballDrained media.Signal

	onStartup     func(*Controller)
	ballStartedAt time.Time
}

// Config is the set of knobs New reads at construction; everything else
// (device registration, rule installation) happens on the returned
// Controller's Machine() from within OnStartup.
type Config struct {
	Platform     switchio.Platform
	BallsPerGame int
	MaxPlayers   int
	Sink         media.Sink
	// OnStartup is called once, after the platform connects and before the
	// machine configuration closes. Register devices on Machine() and
	// modes via Register here.
	OnStartup func(*Controller)
}

// New constructs a Controller. Call Register for every mode before Run,
// from within cfg.OnStartup or beforehand for System-lifecycle modes
// that should be live from the very first tick.
func New(cfg Config) *Controller {
	sink := cfg.Sink
	if sink == nil {
		sink = media.NullSink{}
	}
	c := &Controller{
		log:          logx.New("game"),
		platform:     cfg.Platform,
		machine:      machine.New(cfg.Platform),
		sink:         sink,
		ballsPerGame: cfg.BallsPerGame,
		maxPlayers:   cfg.MaxPlayers,
		registered:   make(map[mode.Lifecycle][]mode.Mode),
		onStartup:    cfg.OnStartup,
	}
	c.queue = modequeue.New(c)
	return c
}

// Machine exposes the device registration surface.
func (c *Controller) Machine() *machine.Config { return c.machine }

// Queue exposes the mode queue directly, for modes that manage children
// or tests that want to inspect dispatch order.
func (c *Controller) Queue() *modequeue.Queue { return c.queue }

// Register records m under its explicit or default lifecycle. System
// modes already past the startup phase are added immediately; all others
// are added by the lifecycle transitions in lifecycle.go.
func (c *Controller) Register(m mode.Mode, lifecycle ...mode.Lifecycle) error {
	lc := m.DefaultLifecycle()
	if len(lifecycle) > 0 {
		lc = lifecycle[0]
	}
	c.registered[lc] = append(c.registered[lc], m)
	if lc == mode.System && c.systemPhaseDone {
		return c.queue.Add(m)
	}
	return nil
}

// --- mode.GameAPI ---

func (c *Controller) Switches() *device.Collection[*device.Switch] { return c.machine.Switches }
func (c *Controller) Coils() *device.Collection[*device.Coil]      { return c.machine.Coils }
func (c *Controller) Leds() *device.Collection[*device.Led]        { return c.machine.Leds }
func (c *Controller) Media() media.Sink                            { return c.sink }
func (c *Controller) GameEnded() *media.Signal                      { return &c.gameEnded }
func (c *Controller) BallDrained() *media.Signal                    { return &c.ballDrained }

func (c *Controller) Players() []*player.Player {
	out := make([]*player.Player, len(c.players))
	copy(out, c.players)
	return out
}

func (c *Controller) CurrentPlayer() *player.Player {
	if c.currentPlayer < 0 || c.currentPlayer >= len(c.players) {
		return nil
	}
	return c.players[c.currentPlayer]
}

// Ball returns the current ball number (0 means no game in progress).
func (c *Controller) Ball() int { return c.ball }

// PulseCoil fires the named coil for d, or for the coil's own default
// pulse duration if d <= 0. A no-op (nil error) if the coil has been
// software-disabled via device.Coil.Disable.
func (c *Controller) PulseCoil(name string, d time.Duration) error {
	coil, ok := c.machine.Coils.ByName(name)
	if !ok {
		return errcode.New(errcode.UnknownDevice, "game.PulseCoil", "no such coil: "+name)
	}
	if !coil.Enabled() {
		return nil
	}
	if d <= 0 {
		d = coil.DefaultPulse()
	}
	return c.platform.Pulse(coil.Address(), d)
}

// SetLed writes an RGB value to the named LED, a direct write-through to
// the platform. LEDs carry no state on the core's side.
func (c *Controller) SetLed(name string, r, g, b uint8) error {
	led, ok := c.machine.Leds.ByName(name)
	if !ok {
		return errcode.New(errcode.UnknownDevice, "game.SetLed", "no such led: "+name)
	}
	return c.platform.SetLed(led.Address(), r, g, b)
}

// --- main loop ---

// Run executes the full startup sequence and then the main loop until
// ctx is cancelled, at which point it disconnects the platform cleanly
// and returns.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.platform.Connect(ctx); err != nil {
		return errcode.New(errcode.PlatformConnectFailed, "game.Run", err.Error())
	}

	// The startup hook registers devices, hardware rules, and modes; only
	// then does the configuration close and the initial-states snapshot
	// have switches to land on.
	if c.onStartup != nil {
		c.onStartup(c)
	}
	if err := c.machine.Configure(); err != nil {
		return err
	}

	for addr, st := range c.platform.InitialStates() {
		if sw, ok := c.machine.Switches.ByAddress(addr); ok {
			sw.SetState(fromPlatformState(st))
		}
	}
	changes := c.platform.Changes()

	c.systemPhaseDone = true
	c.addLifecycleModes(mode.System)

	ticker := time.NewTicker(yieldInterval)
	defer ticker.Stop()

	last := timex.Monotonic()
	for {
		select {
		case <-ctx.Done():
			_ = c.platform.Disconnect(context.Background())
			return nil

		case ch := <-changes:
			c.handleChange(ch)
			c.drainChanges(changes)
			last = c.tick(last)

		case <-ticker.C:
			last = c.tick(last)
		}
	}
}

func (c *Controller) tick(last time.Time) time.Time {
	now := timex.Monotonic()
	c.queue.Tick(now.Sub(last))
	return now
}

// drainChanges empties whatever is already queued without blocking, so
// one loop iteration processes every event the platform enqueued since
// the last iteration.
func (c *Controller) drainChanges(changes switchio.ChangeStream) {
	for {
		select {
		case ch := <-changes:
			c.handleChange(ch)
		default:
			return
		}
	}
}

// handleChange is the switch-event pipeline: resolve, dedup, update,
// dispatch.
func (c *Controller) handleChange(ch switchio.Change) {
	sw, ok := c.machine.Switches.ByAddress(ch.Address)
	if !ok {
		c.log.Warn("unknown switch address %d", ch.Address)
		return
	}
	newState := fromPlatformState(ch.State)
	if sw.State() == newState {
		return
	}
	sw.SetState(newState)
	c.queue.Dispatch(sw)
}

func fromPlatformState(st switchio.State) device.PhysicalState {
	if st == switchio.Closed {
		return device.Closed
	}
	return device.Open
}

func (c *Controller) addLifecycleModes(lc mode.Lifecycle) {
	for _, m := range c.registered[lc] {
		if c.queue.Contains(m) {
			continue
		}
		if err := c.queue.Add(m); err != nil {
			c.log.Warn("failed to add %s-lifecycle mode: %v", lc, err)
		}
	}
}

func (c *Controller) removeLifecycleModes(lc mode.Lifecycle) {
	for _, m := range c.registered[lc] {
		if c.queue.Contains(m) {
			c.queue.Remove(m)
		}
	}
}

func (c *Controller) nextPlayerName(n int) string {
	return fmt.Sprintf("Player %d", n)
}
