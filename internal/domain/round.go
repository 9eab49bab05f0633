package domain

import "time"

// Round is one timed word-submission contest within a match. It is created
// when the match advances, sealed the instant both submissions exist or the
// deadline passes, and never mutated after sealing.
type Round struct {
	Number      int                    `json:"number"`
	Rack        Rack                   `json:"rack"`
	Bonuses     []BonusTile            `json:"bonuses"`
	StartedAt   time.Time              `json:"startedAt"`
	Deadline    time.Time              `json:"deadline"`
	Submissions map[string]*Submission `json:"submissions"`
	EndedAt     time.Time              `json:"endedAt,omitempty"`

	sealed bool
}

// NewRound creates a round starting now with the given deadline window
func NewRound(number int, rack Rack, bonuses []BonusTile, duration time.Duration) *Round {
	now := time.Now()
	return &Round{
		Number:      number,
		Rack:        rack,
		Bonuses:     bonuses,
		StartedAt:   now,
		Deadline:    now.Add(duration),
		Submissions: make(map[string]*Submission, 2),
	}
}

// HasSubmitted reports whether the participant already has a submission
// this round
func (r *Round) HasSubmitted(participantID string) bool {
	_, ok := r.Submissions[participantID]
	return ok
}

// Record stores a submission. A participant may submit only once; later
// attempts are rejected, never overwritten.
func (r *Round) Record(sub *Submission) error {
	if r.sealed {
		return ErrNoActiveRound
	}
	if r.HasSubmitted(sub.ParticipantID) {
		return ErrAlreadySubmitted
	}
	r.Submissions[sub.ParticipantID] = sub
	return nil
}

// Expired reports whether the given time is past the round deadline
func (r *Round) Expired(now time.Time) bool {
	return now.After(r.Deadline)
}

// Sealed reports whether the round has been sealed
func (r *Round) Sealed() bool {
	return r.sealed
}

// Seal closes the round, filling an empty time-expired submission for any
// participant without one. Sealing is idempotent: a second attempt is a
// no-op and returns false. Exactly one of the both-submitted path and the
// deadline path gets to seal a round.
func (r *Round) Seal(participantIDs []string) bool {
	if r.sealed {
		return false
	}
	for _, id := range participantIDs {
		if !r.HasSubmitted(id) {
			r.Submissions[id] = EmptySubmission(id)
		}
	}
	r.sealed = true
	r.EndedAt = time.Now()
	return true
}
