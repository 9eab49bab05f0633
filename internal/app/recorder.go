package app

import (
	"log/slog"

	"wordclash/internal/domain"
)

// MatchRecorder is the persistence collaborator boundary. The core only
// hands finished outcomes across it; storage internals live elsewhere.
type MatchRecorder interface {
	RecordMatch(outcome *domain.MatchOutcome)
}

// LogRecorder is the default recorder: it writes outcomes to the
// structured log and nothing else
type LogRecorder struct {
	logger *slog.Logger
}

// NewLogRecorder creates a log-backed recorder
func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

// RecordMatch logs the final outcome
func (r *LogRecorder) RecordMatch(outcome *domain.MatchOutcome) {
	r.logger.Info("match finished",
		"matchId", outcome.MatchID,
		"mode", outcome.Mode,
		"winnerId", outcome.WinnerID,
		"totals", outcome.Totals,
		"rounds", outcome.RoundsPlayed,
		"forfeit", outcome.Forfeit,
	)
}
