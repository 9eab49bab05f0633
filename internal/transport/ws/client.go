package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"wordclash/internal/app"
	"wordclash/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Client represents a WebSocket client connection for one participant
type Client struct {
	conn          *websocket.Conn
	hub           *app.Hub
	participantID string
	logger        *slog.Logger

	send chan []byte
	done chan struct{}

	mu          sync.Mutex
	closed      bool
	participant *domain.Participant // set by identify
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, hub *app.Hub, participantID string, logger *slog.Logger) *Client {
	return &Client{
		conn:          conn,
		hub:           hub,
		participantID: participantID,
		logger:        logger,
		send:          make(chan []byte, sendBufferSize),
		done:          make(chan struct{}),
	}
}

// GetParticipantID returns the participant ID for this client
func (c *Client) GetParticipantID() string {
	return c.participantID
}

// Send implements app.ClientConnection
func (c *Client) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer full, message dropped
		c.logger.Warn("send buffer full, message dropped", "participantId", c.participantID)
		return nil
	}
}

// Close implements app.ClientConnection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection. A read failure
// means the transport dropped: the participant leaves, which dequeues a
// waiter or forfeits a live match.
func (c *Client) readPump() {
	defer func() {
		c.hub.Leave(c.participantID)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid message format")
		return
	}

	switch msg.Type {
	case MsgIdentify:
		c.handleIdentify(msg.Payload)
	case MsgEnqueue:
		c.handleEnqueue(msg.Payload)
	case MsgSubmitWord:
		c.handleSubmitWord(msg.Payload)
	case MsgLeave:
		c.handleLeave()
	case MsgHeartbeat:
		c.Send(NewServerMessage(MsgHeartbeatAck, nil))
	default:
		c.sendError(ErrCodeInvalidMessage, "Unknown message type")
	}
}

// handleIdentify binds a display name to this connection's participant
func (c *Client) handleIdentify(payload interface{}) {
	payloadMap, ok := payload.(map[string]interface{})
	if !ok {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}

	name, ok := payloadMap["name"].(string)
	if !ok || name == "" {
		c.sendError(ErrCodeInvalidMessage, "Name is required")
		return
	}

	c.mu.Lock()
	c.participant = domain.NewHuman(c.participantID, name)
	c.mu.Unlock()

	c.Send(NewServerMessage(MsgIdentified, &IdentifiedPayload{
		ParticipantID: c.participantID,
		Name:          name,
	}))
}

// handleEnqueue places the participant into matchmaking
func (c *Client) handleEnqueue(payload interface{}) {
	participant := c.getParticipant()
	if participant == nil {
		c.sendError(ErrCodeNotIdentified, "Identify before enqueueing")
		return
	}

	payloadMap, ok := payload.(map[string]interface{})
	if !ok {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}

	mode, _ := payloadMap["mode"].(string)
	kind, _ := payloadMap["kind"].(string)
	difficulty, _ := payloadMap["difficulty"].(string)

	err := c.hub.Enqueue(participant, c, mode, app.MatchKind(kind), difficulty)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownMode):
			c.sendError(ErrCodeUnknownMode, "Unknown game mode")
		case errors.Is(err, domain.ErrAlreadyInMatch):
			c.sendError(ErrCodeAlreadyInMatch, "Already in a match")
		default:
			c.sendError(ErrCodeInternalError, err.Error())
		}
	}
}

// handleSubmitWord routes a word to the participant's live match
func (c *Client) handleSubmitWord(payload interface{}) {
	payloadMap, ok := payload.(map[string]interface{})
	if !ok {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}

	word, ok := payloadMap["word"].(string)
	if !ok {
		c.sendError(ErrCodeInvalidMessage, "Word is required")
		return
	}

	session, ok := c.hub.SessionFor(c.participantID)
	if !ok {
		c.sendError(ErrCodeNotInMatch, "Not in a match")
		return
	}

	err := session.SubmitWord(c.participantID, word)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoActiveRound):
			c.sendError(ErrCodeNoActiveRound, "No active round")
		case errors.Is(err, domain.ErrAlreadySubmitted):
			c.sendError(ErrCodeAlreadySubmitted, "Already submitted this round")
		default:
			c.sendError(ErrCodeInternalError, err.Error())
		}
	}
}

// handleLeave removes the participant from the queue or forfeits their match
func (c *Client) handleLeave() {
	c.hub.Leave(c.participantID)
	c.Send(NewServerMessage(MsgLeft, nil))
}

func (c *Client) getParticipant() *domain.Participant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.participant
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	c.Send(NewServerMessage(MsgError, &ErrorPayload{
		Code:    code,
		Message: message,
	}))
}
