package domain

import "time"

// Submission is one participant's recorded word for a round. It is owned
// by the round that produced it and is immutable once recorded.
type Submission struct {
	ParticipantID string       `json:"participantId"`
	Word          string       `json:"word"`
	Score         int          `json:"score"`
	Legal         bool         `json:"legal"`
	Reason        RejectReason `json:"reason,omitempty"`
	SubmittedAt   time.Time    `json:"submittedAt"`
}

// NewSubmission creates a recorded submission
func NewSubmission(participantID, word string, score int, legal bool, reason RejectReason) *Submission {
	return &Submission{
		ParticipantID: participantID,
		Word:          word,
		Score:         score,
		Legal:         legal,
		Reason:        reason,
		SubmittedAt:   time.Now(),
	}
}

// EmptySubmission creates the zero-score illegal submission recorded for a
// participant who never submitted before the deadline
func EmptySubmission(participantID string) *Submission {
	return NewSubmission(participantID, "", 0, false, ReasonTimeExpired)
}
