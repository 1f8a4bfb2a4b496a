// Package highscore implements the high-score mode: on every GameEnded
// emission it walks the final player list, appends any score that
// qualifies against the persisted table, re-sorts descending, truncates
// to a fixed size, and persists the result.
package highscore

import (
	"sort"
	"time"

	"pinhal/internal/logx"
	"pinhal/internal/timex"
	"pinhal/mode"
	"pinhal/persist"
	"pinhal/player"
)

const defaultMaxEntries = 10

// Config names the backing store and the table size.
type Config struct {
	Store      persist.HighScoreStore
	MaxEntries int
}

// Mode is a System-lifecycle mode: it subscribes once, at ModeStarted,
// and lives for the life of the process.
type Mode struct {
	mode.Base
	cfg Config
	log *logx.Logger
}

// New returns a high-score mode at the given dispatch priority. Priority
// is largely irrelevant here since this mode registers no switch
// handlers; it only listens on GameEnded.
func New(cfg Config, priority int) *Mode {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = defaultMaxEntries
	}
	m := &Mode{cfg: cfg, log: logx.New("highscore")}
	m.Base = mode.NewBase(priority, mode.System)
	return m
}

func (m *Mode) ModeStarted() {
	m.Reset()
	m.Game().GameEnded().Subscribe(m.onGameEnded)
}

func (m *Mode) onGameEnded(payload any) {
	players, ok := payload.([]*player.Player)
	if !ok {
		return
	}

	entries, err := m.cfg.Store.Load()
	if err != nil {
		m.log.Warn("load failed, treating as empty table: %v", err)
		entries = nil
	}

	changed := false
	for _, p := range players {
		if !qualifies(entries, p.Score, m.cfg.MaxEntries) {
			continue
		}
		name := p.Name
		if name == "" {
			name = "???"
		}
		entries = append(entries, persist.HighScoreEntry{
			Name:  name,
			Score: p.Score,
			Date:  time.UnixMilli(timex.NowMs()),
		})
		changed = true
	}
	if !changed {
		return
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	if len(entries) > m.cfg.MaxEntries {
		entries = entries[:m.cfg.MaxEntries]
	}

	if err := m.cfg.Store.Save(entries); err != nil {
		m.log.Warn("save failed, high scores unchanged on disk: %v", err)
		return
	}

	out := make([]map[string]any, len(entries))
	for i, e := range entries {
		out[i] = map[string]any{"name": e.Name, "score": e.Score, "date": e.Date}
	}
	m.Game().Media().Post("high_score_updated", map[string]any{"entries": out})
}

// qualifies reports whether score earns a spot: the table has room, or
// score beats the current lowest kept entry.
func qualifies(entries []persist.HighScoreEntry, score int64, maxEntries int) bool {
	if len(entries) < maxEntries {
		return true
	}
	lowest := entries[0].Score
	for _, e := range entries {
		if e.Score < lowest {
			lowest = e.Score
		}
	}
	return score > lowest
}
