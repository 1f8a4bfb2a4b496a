// Command pinball-demo wires every built-in mode onto the in-process
// simulator backend and drives a short scripted burst of simulated play,
// logging every media event to stderr. It exists to prove the whole
// core — machine config, mode queue, lifecycle, and built-ins — actually
// cooperates end to end; it is not itself part of the runtime core.
package main

import (
	"context"
	"log"
	"time"

	"pinhal/builtin/attract"
	"pinhal/builtin/ballsearch"
	"pinhal/builtin/bonus"
	"pinhal/builtin/droptarget"
	"pinhal/builtin/highscore"
	"pinhal/builtin/service"
	"pinhal/builtin/tilt"
	"pinhal/builtin/trough"
	"pinhal/device"
	"pinhal/game"
	"pinhal/media"
	"pinhal/mode"
	"pinhal/persist"
	"pinhal/switchio"
	"pinhal/switchio/sim"
)

// Hardware addresses for the demo's one-bank, two-flipper sample machine.
const (
	addrTrough1     = 1
	addrShooterLane = 2
	addrTiltBob     = 3
	addrSlamTilt    = 4
	addrLFlipperSw  = 5
	addrRFlipperSw  = 6
	addrDrop1       = 7
	addrDrop2       = 8
	addrDrop3       = 9
	addrStart       = 10
	addrService     = 11
	addrPopBumper   = 12

	addrEjectCoil   = 100
	addrLFlipperCoil = 101
	addrRFlipperCoil = 102
	addrDropResetCoil = 103
	addrSearchCoil1 = 104
	addrSearchCoil2 = 105
	addrPopCoil     = 106

	addrBackboxLed = 200
)

func main() {
	backend := sim.New(map[int]switchio.State{
		addrShooterLane: switchio.Closed, // ball waiting in the shooter lane at boot
	})

	highScores := &persist.MemoryHighScoreStore{}
	sink := media.NewLogSink()

	settings, err := (&persist.MemoryOperatorSettingsStore{}).Load()
	if err != nil {
		settings = persist.DefaultOperatorSettings
	}

	cfg := game.Config{
		Platform:     backend,
		BallsPerGame: settings.BallsPerGame,
		MaxPlayers:   settings.MaxPlayers,
		Sink:         sink,
		OnStartup:    registerMachineAndModes(backend, highScores, settings),
	}
	ctrl := game.New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()

	driveDemoPlay(backend)

	cancel()
	if err := <-done; err != nil {
		log.Fatalf("game loop exited with error: %v", err)
	}
}

func registerMachineAndModes(backend *sim.Sim, highScores persist.HighScoreStore, settings persist.OperatorSettings) func(*game.Controller) {
	return func(c *game.Controller) {
		m := c.Machine()
		must := func(err error) {
			if err != nil {
				log.Fatalf("machine configuration: %v", err)
			}
		}

		must(m.AddSwitch("trough1", addrTrough1, device.NormallyClosed, false, device.NewTagSet(device.TagTrough), device.Open))
		must(m.AddSwitch("shooter_lane", addrShooterLane, device.NormallyOpen, false, device.NewTagSet(device.TagShooterLane), device.Closed))
		must(m.AddSwitch("tilt_bob", addrTiltBob, device.NormallyOpen, false, device.TagNone, device.Open))
		must(m.AddSwitch("slam_tilt", addrSlamTilt, device.NormallyOpen, false, device.TagNone, device.Open))
		must(m.AddSwitch("left_flipper", addrLFlipperSw, device.NormallyOpen, false, device.TagNone, device.Open))
		must(m.AddSwitch("right_flipper", addrRFlipperSw, device.NormallyOpen, false, device.TagNone, device.Open))
		must(m.AddSwitch("drop1", addrDrop1, device.NormallyOpen, false, device.NewTagSet(device.TagPlayfield), device.Open))
		must(m.AddSwitch("drop2", addrDrop2, device.NormallyOpen, false, device.NewTagSet(device.TagPlayfield), device.Open))
		must(m.AddSwitch("drop3", addrDrop3, device.NormallyOpen, false, device.NewTagSet(device.TagPlayfield), device.Open))
		must(m.AddSwitch("start", addrStart, device.NormallyOpen, false, device.TagNone, device.Open))
		must(m.AddSwitch("service_enter", addrService, device.NormallyOpen, false, device.NewTagSet(device.TagService), device.Open))
		must(m.AddSwitch("pop_bumper", addrPopBumper, device.NormallyOpen, false, device.NewTagSet(device.TagPlayfield), device.Open))

		must(m.AddCoil("eject", addrEjectCoil, 30*time.Millisecond))
		must(m.AddCoil("left_flipper_coil", addrLFlipperCoil, 25*time.Millisecond))
		must(m.AddCoil("right_flipper_coil", addrRFlipperCoil, 25*time.Millisecond))
		must(m.AddCoil("drop_reset", addrDropResetCoil, 40*time.Millisecond))
		must(m.AddCoil("search1", addrSearchCoil1, 20*time.Millisecond))
		must(m.AddCoil("search2", addrSearchCoil2, 20*time.Millisecond))
		must(m.AddCoil("pop_coil", addrPopCoil, 20*time.Millisecond))

		must(m.AddLed("backbox", addrBackboxLed))

		must(m.AddFlipperRule("left_flipper", "left_flipper_coil", 25, 0.3))
		must(m.AddFlipperRule("right_flipper", "right_flipper_coil", 25, 0.3))
		must(m.AddBumperRule("pop_bumper", "pop_coil", 20))

		// The simulator gates coil commands behind an explicit enable
		// separate from the rule-installing path (sim.Sim.EnableCoil);
		// coils driven directly by a mode (not through a flipper/bumper
		// rule) need it armed once up front.
		backend.EnableCoil(addrEjectCoil)
		backend.EnableCoil(addrDropResetCoil)
		backend.EnableCoil(addrSearchCoil1)
		backend.EnableCoil(addrSearchCoil2)

		troughMode := trough.New(trough.Config{
			TroughSwitches:      []string{"trough1"},
			EjectCoil:           "eject",
			ShooterLaneSwitch:   "shooter_lane",
			AutoBallSaveSeconds: settings.BallSaveSeconds,
		}, 50)
		tiltMode := tilt.New(tilt.Config{
			TiltSwitch:      "tilt_bob",
			SlamTiltSwitch:  "slam_tilt",
			WarningsAllowed: settings.TiltWarnings,
			Flippers: []tilt.FlipperRule{
				{SwitchName: "left_flipper", CoilName: "left_flipper_coil", PulseMs: 25, HoldPower: 0.3},
				{SwitchName: "right_flipper", CoilName: "right_flipper_coil", PulseMs: 25, HoldPower: 0.3},
			},
		}, 90)
		bonusMode := bonus.New(bonus.Config{}, 10)
		searchMode := ballsearch.New(ballsearch.Config{
			SearchCoils: []string{"search1", "search2"},
		}, 5)
		dropMode := droptarget.New(droptarget.Config{
			Targets:          []string{"drop1", "drop2", "drop3"},
			ResetCoil:        "drop_reset",
			AutoResetSeconds: 3,
		}, 20)
		serviceMode := service.New(service.Config{ToggleSwitches: []string{"service_enter"}})
		highScoreMode := highscore.New(highscore.Config{Store: highScores}, 0)
		attractMode := attract.New(attract.Config{
			StartSwitch:       "start",
			ShooterLaneSwitch: "shooter_lane",
			DwellLed:          "backbox",
		}, 0)

		must(c.Register(troughMode, mode.Ball))
		must(c.Register(tiltMode, mode.Ball))
		must(c.Register(bonusMode, mode.Ball))
		must(c.Register(searchMode, mode.Ball))
		must(c.Register(dropMode, mode.Ball))
		must(c.Register(serviceMode, mode.System))
		must(c.Register(highScoreMode, mode.System))
		must(c.Register(attractMode, mode.System))
	}
}

// driveDemoPlay pokes the simulator like a short play session: start a
// game, settle the plunge, knock down the drop-target bank, then let the
// ball drain back to the trough.
func driveDemoPlay(backend *sim.Sim) {
	time.Sleep(20 * time.Millisecond)

	backend.Toggle(addrStart, switchio.Closed)
	backend.Toggle(addrStart, switchio.Open)
	time.Sleep(10 * time.Millisecond)

	backend.Toggle(addrTrough1, switchio.Closed) // the ejected ball leaves the trough (Inactive)
	time.Sleep(5 * time.Millisecond)

	backend.Toggle(addrShooterLane, switchio.Open) // plunge: ball leaves the lane
	time.Sleep(10 * time.Millisecond)

	for _, addr := range []int{addrDrop1, addrDrop2, addrDrop3} {
		backend.Toggle(addr, switchio.Closed)
		time.Sleep(5 * time.Millisecond)
	}

	backend.Toggle(addrPopBumper, switchio.Closed) // bumper reflex fires pop_coil without a host round-trip
	backend.Toggle(addrPopBumper, switchio.Open)
	time.Sleep(5 * time.Millisecond)

	backend.Toggle(addrTrough1, switchio.Open) // the ball drains back into the trough (Active again)
	time.Sleep(50 * time.Millisecond)
}
