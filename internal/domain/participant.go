package domain

import "time"

// ParticipantKind distinguishes human contestants from bot contestants
type ParticipantKind string

const (
	KindHuman ParticipantKind = "HUMAN"
	KindBot   ParticipantKind = "BOT"
)

// Participant represents one contestant in a match. A bot participant has
// no network transport; its submissions arrive from a scheduled callback
// instead of a socket message.
type Participant struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Kind     ParticipantKind `json:"kind"`
	JoinedAt time.Time       `json:"joinedAt"`
}

// NewHuman creates a human participant
func NewHuman(id, name string) *Participant {
	return &Participant{
		ID:       id,
		Name:     name,
		Kind:     KindHuman,
		JoinedAt: time.Now(),
	}
}

// NewBot creates a bot participant
func NewBot(id, name string) *Participant {
	return &Participant{
		ID:       id,
		Name:     name,
		Kind:     KindBot,
		JoinedAt: time.Now(),
	}
}

// IsBot returns true if this participant is a bot
func (p *Participant) IsBot() bool {
	return p.Kind == KindBot
}

// ParticipantInfo is the view of a participant sent to the opponent
type ParticipantInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	IsBot bool   `json:"isBot"`
}

// ToInfo converts a Participant to its wire view
func (p *Participant) ToInfo() ParticipantInfo {
	return ParticipantInfo{
		ID:    p.ID,
		Name:  p.Name,
		IsBot: p.IsBot(),
	}
}
