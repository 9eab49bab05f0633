package domain

import "time"

// EventType represents the type of match event delivered to clients
type EventType string

const (
	EventQueued            EventType = "queued"
	EventMatchFound        EventType = "match_found"
	EventRoundStart        EventType = "round_start"
	EventOpponentSubmitted EventType = "opponent_submitted"
	EventRoundResult       EventType = "round_result"
	EventMatchResult       EventType = "match_result"
	EventError             EventType = "error"
)

// MatchEvent is one server-to-client protocol message. An empty
// ParticipantID means the event goes to every participant in the match.
type MatchEvent struct {
	Type          EventType   `json:"type"`
	MatchID       string      `json:"matchId,omitempty"`
	ParticipantID string      `json:"-"`
	Payload       interface{} `json:"payload,omitempty"`
	Timestamp     time.Time   `json:"timestamp"`
}

// NewEvent creates an event broadcast to all participants of a match
func NewEvent(eventType EventType, matchID string, payload interface{}) *MatchEvent {
	return &MatchEvent{
		Type:      eventType,
		MatchID:   matchID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// NewParticipantEvent creates an event addressed to a single participant
func NewParticipantEvent(eventType EventType, matchID, participantID string, payload interface{}) *MatchEvent {
	event := NewEvent(eventType, matchID, payload)
	event.ParticipantID = participantID
	return event
}

// QueuedPayload acknowledges a matchmaking enqueue
type QueuedPayload struct {
	Mode     string `json:"mode"`
	Position int    `json:"position"`
}

// MatchFoundPayload is sent to each participant when a match forms
type MatchFoundPayload struct {
	MatchID  string          `json:"matchId"`
	Mode     string          `json:"mode"`
	Opponent ParticipantInfo `json:"opponent"`
}

// RoundStartPayload carries the shared rack and timing for a new round
type RoundStartPayload struct {
	Number      int         `json:"number"`
	TotalRounds int         `json:"totalRounds"`
	Letters     []string    `json:"letters"`
	Bonuses     []BonusTile `json:"bonuses"`
	Deadline    time.Time   `json:"deadline"`
	DurationMs  int64       `json:"durationMs"`
	PreRoundMs  int64       `json:"preRoundMs"`
}

// RoundResultPayload is sent when a round seals
type RoundResultPayload struct {
	Number      int                    `json:"number"`
	TotalRounds int                    `json:"totalRounds"`
	Submissions map[string]*Submission `json:"submissions"`
	WinnerID    string                 `json:"winnerId,omitempty"`
	Totals      map[string]int         `json:"totals"`
	NextRoundAt *time.Time             `json:"nextRoundAt,omitempty"`
}

// MatchResultPayload is the terminal report for a match
type MatchResultPayload struct {
	Totals   map[string]int `json:"totals"`
	WinnerID string         `json:"winnerId,omitempty"`
	Forfeit  bool           `json:"forfeit"`
}

// ErrorPayload is sent for any participant-facing failure
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
