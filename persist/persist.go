// Package persist declares two narrow persistence collaborators:
// operator settings and the high-score table. Concrete file/JSON-backed
// implementations are an external concern; this package defines only the
// interfaces and in-memory test doubles, treating persistence as
// something injected, not owned.
package persist

import "time"

// OperatorSettings are the handful of knobs built-in modes read at
// startup. Load returns these defaults when no settings have been saved.
type OperatorSettings struct {
	BallsPerGame    int
	MaxPlayers      int
	TiltWarnings    int
	BallSaveSeconds float64
}

// DefaultOperatorSettings are returned by Load when the backing store has
// nothing saved yet.
var DefaultOperatorSettings = OperatorSettings{
	BallsPerGame:    3,
	MaxPlayers:      4,
	TiltWarnings:    2,
	BallSaveSeconds: 8.0,
}

// OperatorSettingsStore loads and saves the operator settings.
type OperatorSettingsStore interface {
	Load() (OperatorSettings, error)
	Save(OperatorSettings) error
}

// HighScoreEntry is one row of the high-score table.
type HighScoreEntry struct {
	Name  string
	Score int64
	Date  time.Time
}

// HighScoreStore loads (highest first) and saves (already ordered and
// truncated) the high-score table. Load on empty storage returns an
// empty list, never an error.
type HighScoreStore interface {
	Load() ([]HighScoreEntry, error)
	Save([]HighScoreEntry) error
}
