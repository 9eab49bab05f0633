package ws

import "time"

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgIdentify   MessageType = "identify"
	MsgEnqueue    MessageType = "enqueue"
	MsgSubmitWord MessageType = "submit_word"
	MsgLeave      MessageType = "leave"
	MsgHeartbeat  MessageType = "heartbeat"
)

// Server → Client message types sent directly by the transport layer.
// Match events (queued, match_found, round_start, opponent_submitted,
// round_result, match_result) are domain events serialized as they come.
const (
	MsgIdentified   MessageType = "identified"
	MsgLeft         MessageType = "left"
	MsgHeartbeatAck MessageType = "heartbeat_ack"
	MsgError        MessageType = "error"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// ServerMessage represents a transport-level message from server to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// IdentifyPayload is the payload for the identify message
type IdentifyPayload struct {
	Name          string `json:"name"`
	ClientVersion string `json:"clientVersion"`
	DeviceID      string `json:"deviceId"`
}

// EnqueuePayload is the payload for the enqueue message
type EnqueuePayload struct {
	Mode       string `json:"mode"`
	Kind       string `json:"kind"` // "pvp", "bot" or "challenge"
	Difficulty string `json:"difficulty,omitempty"`
}

// SubmitWordPayload is the payload for the submit_word message
type SubmitWordPayload struct {
	Word string `json:"word"`
}

// IdentifiedPayload acknowledges an identify with the assigned identity
type IdentifiedPayload struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
}

// ErrorPayload is the payload for transport-level error messages
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeInvalidMessage   = "INVALID_MESSAGE"
	ErrCodeNotIdentified    = "NOT_IDENTIFIED"
	ErrCodeUnknownMode      = "UNKNOWN_MODE"
	ErrCodeAlreadyInMatch   = "ALREADY_IN_MATCH"
	ErrCodeNotInMatch       = "NOT_IN_MATCH"
	ErrCodeNoActiveRound    = "NO_ACTIVE_ROUND"
	ErrCodeAlreadySubmitted = "ALREADY_SUBMITTED"
	ErrCodeNotQueued        = "NOT_QUEUED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)
