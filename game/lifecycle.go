package game

import (
	"pinhal/errcode"
	"pinhal/internal/timex"
	"pinhal/mode"
	"pinhal/player"
)

// StartGame transitions Idle -> BallInProgress: clears players, creates
// player 1, sets ball = 1, emits game_started, adds Game-lifecycle
// modes, then calls StartBall. Idempotent when already in progress.
func (c *Controller) StartGame() {
	if c.ball > 0 {
		return
	}
	c.players = []*player.Player{player.New(c.nextPlayerName(1))}
	c.currentPlayer = 0
	c.ball = 1

	c.sink.Post("game_started", map[string]any{
		"player":         1,
		"balls_per_game": c.ballsPerGame,
	})

	c.addLifecycleModes(mode.Game)
	c.StartBall()
}

// AddPlayer appends a player. Timing policy — only meaningful on ball 1
// before the first plunge — lives in the attract mode, not here; this
// method only enforces the hard cap on player count.
func (c *Controller) AddPlayer() error {
	if c.ball == 0 {
		return errcode.New(errcode.Error, "game.AddPlayer", "no game in progress")
	}
	if len(c.players) >= c.maxPlayers {
		return errcode.New(errcode.Error, "game.AddPlayer", "max players already reached")
	}
	c.players = append(c.players, player.New(c.nextPlayerName(len(c.players)+1)))

	c.sink.Post("player_added", map[string]any{
		"player":        len(c.players),
		"total_players": len(c.players),
	})
	return nil
}

// StartBall adds Ball-lifecycle modes not already queued, resets the
// current player's ball-scoped state, emits ball_starting, and records
// the ball start time.
func (c *Controller) StartBall() {
	if c.ball == 0 {
		return
	}
	c.addLifecycleModes(mode.Ball)
	c.CurrentPlayer().ResetBallState()

	c.sink.Post("ball_starting", map[string]any{
		"ball":   c.ball,
		"player": c.currentPlayer + 1,
	})
	c.ballStartedAt = timex.Monotonic()
}

// EndBall adds the elapsed ball time to the current player, emits
// ball_ended, removes Ball-lifecycle modes, and either restarts the
// current player's ball (extra ball), advances to the next player, or
// ends the game.
func (c *Controller) EndBall() {
	if c.ball == 0 {
		return
	}
	cp := c.CurrentPlayer()
	elapsed := timex.Monotonic().Sub(c.ballStartedAt)
	cp.GameTimeMs += elapsed.Milliseconds()

	c.sink.Post("ball_ended", map[string]any{
		"ball":   c.ball,
		"player": c.currentPlayer + 1,
		"score":  cp.Score,
	})
	c.removeLifecycleModes(mode.Ball)

	if cp.ExtraBalls > 0 {
		cp.ExtraBalls--
		c.StartBall()
		return
	}

	lastPlayer := c.currentPlayer == len(c.players)-1
	if lastPlayer {
		c.currentPlayer = 0
		c.ball++
	} else {
		c.currentPlayer++
	}

	if c.ball > c.ballsPerGame {
		c.EndGame()
		return
	}
	c.StartBall()
}

// EndGame transitions BallInProgress -> Idle: removes Game-lifecycle
// modes, emits game_ended with every player's final score, notifies
// GameEnded subscribers (the high-score mode), and sets ball = 0.
func (c *Controller) EndGame() {
	if c.ball == 0 {
		return
	}
	c.removeLifecycleModes(mode.Game)

	scores := make([]map[string]any, len(c.players))
	for i, p := range c.players {
		scores[i] = map[string]any{"name": p.Name, "score": p.Score}
	}
	c.sink.Post("game_ended", map[string]any{"scores": scores})
	c.gameEnded.Emit(c.players)
	c.ball = 0
}
