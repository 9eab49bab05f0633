package domain

import "time"

// Match is the full best-of-N-rounds contest between two participants.
// It owns the round loop, the cumulative totals and the round history.
// All methods assume the caller serializes access; a match shares no
// mutable state with any other match.
type Match struct {
	ID           string         `json:"id"`
	Mode         Mode           `json:"mode"`
	Status       Status         `json:"status"`
	Participants []*Participant `json:"participants"`
	Totals       map[string]int `json:"totals"`
	CurrentRound *Round         `json:"currentRound,omitempty"`
	Rounds       []*Round       `json:"rounds"`
	CreatedAt    time.Time      `json:"createdAt"`
	ForfeitedBy  string         `json:"forfeitedBy,omitempty"`

	validator *Validator
	scorer    *Scorer
}

// NewMatch creates a match in the waiting state
func NewMatch(id string, mode Mode, validator *Validator, scorer *Scorer) *Match {
	return &Match{
		ID:           id,
		Mode:         mode,
		Status:       StatusWaiting,
		Participants: make([]*Participant, 0, 2),
		Totals:       make(map[string]int, 2),
		Rounds:       make([]*Round, 0, mode.RoundsPerMatch),
		CreatedAt:    time.Now(),
		validator:    validator,
		scorer:       scorer,
	}
}

// AddParticipant seats a participant. Filling the second seat moves the
// match from waiting to playing.
func (m *Match) AddParticipant(p *Participant) error {
	if m.Status == StatusFinished {
		return ErrMatchFinished
	}
	if len(m.Participants) >= 2 {
		return ErrMatchFull
	}
	m.Participants = append(m.Participants, p)
	m.Totals[p.ID] = 0

	if len(m.Participants) == 2 {
		m.Status = StatusPlaying
	}
	return nil
}

// GetParticipant returns a seated participant by ID
func (m *Match) GetParticipant(id string) (*Participant, error) {
	for _, p := range m.Participants {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrParticipantNotFound
}

// Opponent returns the other seated participant, or nil if the seat is empty
func (m *Match) Opponent(id string) *Participant {
	for _, p := range m.Participants {
		if p.ID != id {
			return p
		}
	}
	return nil
}

// ParticipantIDs returns the seated participant IDs in seating order
func (m *Match) ParticipantIDs() []string {
	ids := make([]string, 0, len(m.Participants))
	for _, p := range m.Participants {
		ids = append(ids, p.ID)
	}
	return ids
}

// StartRound opens a new round with the given rack and bonus tiles.
// Allowed only while playing and only after the previous round has sealed.
func (m *Match) StartRound(rack Rack, bonuses []BonusTile) (*Round, error) {
	if m.Status != StatusPlaying {
		return nil, ErrMatchNotPlaying
	}
	if m.CurrentRound != nil && !m.CurrentRound.Sealed() {
		return nil, ErrRoundInProgress
	}

	m.CurrentRound = NewRound(len(m.Rounds)+1, rack, bonuses, m.Mode.RoundDuration)
	return m.CurrentRound, nil
}

// Submit runs a word through validation and scoring and records the result.
// Once called against an active round for a seated participant it always
// produces a submission: an illegal word yields a zero-score submission
// with a reason, never an error. A word arriving after the deadline is
// recorded as an empty time-expired submission so late arrivals cannot
// score.
func (m *Match) Submit(participantID, word string, now time.Time) (*Submission, error) {
	if _, err := m.GetParticipant(participantID); err != nil {
		return nil, err
	}
	round := m.CurrentRound
	if m.Status != StatusPlaying || round == nil || round.Sealed() {
		return nil, ErrNoActiveRound
	}
	if round.HasSubmitted(participantID) {
		return nil, ErrAlreadySubmitted
	}

	if round.Expired(now) {
		sub := EmptySubmission(participantID)
		if err := round.Record(sub); err != nil {
			return nil, err
		}
		return sub, nil
	}

	verdict := m.validator.Validate(word, round.Rack)
	score := 0
	if verdict.Legal {
		score = m.scorer.Calculate(word, round.Rack, round.Bonuses)
	}

	sub := NewSubmission(participantID, word, score, verdict.Legal, verdict.Reason)
	if err := round.Record(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// BothSubmitted reports whether every seated participant has a submission
// in the current round
func (m *Match) BothSubmitted() bool {
	if m.CurrentRound == nil {
		return false
	}
	for _, p := range m.Participants {
		if !m.CurrentRound.HasSubmitted(p.ID) {
			return false
		}
	}
	return len(m.Participants) == 2
}

// RoundOutcome summarizes one sealed round
type RoundOutcome struct {
	Number      int                    `json:"number"`
	TotalRounds int                    `json:"totalRounds"`
	Submissions map[string]*Submission `json:"submissions"`
	WinnerID    string                 `json:"winnerId,omitempty"`
	Totals      map[string]int         `json:"totals"`
	Final       bool                   `json:"final"`
}

// SealRound seals the current round, folds its scores into the cumulative
// totals and archives it. Returns false if there was nothing to seal or it
// was already sealed; timer and both-submitted races land here and must be
// swallowed, not surfaced.
func (m *Match) SealRound() (*RoundOutcome, bool) {
	round := m.CurrentRound
	if round == nil || !round.Seal(m.ParticipantIDs()) {
		return nil, false
	}

	winnerID := ""
	best := -1
	tied := false
	for id, sub := range round.Submissions {
		m.Totals[id] += sub.Score
		switch {
		case sub.Score > best:
			best = sub.Score
			winnerID = id
			tied = false
		case sub.Score == best:
			tied = true
		}
	}
	if tied {
		winnerID = ""
	}

	m.Rounds = append(m.Rounds, round)
	m.CurrentRound = nil

	final := len(m.Rounds) >= m.Mode.RoundsPerMatch
	if final {
		m.Status = StatusFinished
	}

	return &RoundOutcome{
		Number:      round.Number,
		TotalRounds: m.Mode.RoundsPerMatch,
		Submissions: round.Submissions,
		WinnerID:    winnerID,
		Totals:      m.snapshotTotals(),
		Final:       final,
	}, true
}

// Forfeit ends the match immediately with the remaining participant the
// winner. This is a fixed policy: a mid-match leave never falls back to a
// score comparison.
func (m *Match) Forfeit(leaverID string) *MatchOutcome {
	if m.Status == StatusFinished {
		return m.Outcome()
	}
	m.Status = StatusFinished
	m.ForfeitedBy = leaverID
	if m.CurrentRound != nil {
		m.CurrentRound.Seal(m.ParticipantIDs())
		m.Rounds = append(m.Rounds, m.CurrentRound)
		m.CurrentRound = nil
	}
	return m.Outcome()
}

// MatchOutcome is the final report for a finished match
type MatchOutcome struct {
	MatchID      string         `json:"matchId"`
	Mode         string         `json:"mode"`
	Totals       map[string]int `json:"totals"`
	WinnerID     string         `json:"winnerId,omitempty"`
	RoundsPlayed int            `json:"roundsPlayed"`
	Forfeit      bool           `json:"forfeit"`
}

// Outcome computes the final result. On a forfeit the remaining participant
// wins regardless of totals; otherwise the higher cumulative total wins and
// equal totals are a draw (empty winner ID).
func (m *Match) Outcome() *MatchOutcome {
	outcome := &MatchOutcome{
		MatchID:      m.ID,
		Mode:         m.Mode.Name,
		Totals:       m.snapshotTotals(),
		RoundsPlayed: len(m.Rounds),
		Forfeit:      m.ForfeitedBy != "",
	}

	if m.ForfeitedBy != "" {
		if opp := m.Opponent(m.ForfeitedBy); opp != nil {
			outcome.WinnerID = opp.ID
		}
		return outcome
	}

	best := -1
	tied := false
	for id, total := range m.Totals {
		switch {
		case total > best:
			best = total
			outcome.WinnerID = id
			tied = false
		case total == best:
			tied = true
		}
	}
	if tied {
		outcome.WinnerID = ""
	}
	return outcome
}

func (m *Match) snapshotTotals() map[string]int {
	totals := make(map[string]int, len(m.Totals))
	for id, total := range m.Totals {
		totals[id] = total
	}
	return totals
}
