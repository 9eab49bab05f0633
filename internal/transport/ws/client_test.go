package ws

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"wordclash/internal/app"
	"wordclash/internal/daily"
	"wordclash/internal/dict"
	"wordclash/internal/domain"
)

type nopRecorder struct{}

func (nopRecorder) RecordMatch(outcome *domain.MatchOutcome) {}

// envelope covers both transport messages and serialized match events
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T) (*httptest.Server, *app.Hub) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	index, err := dict.Load("", "", logger)
	if err != nil {
		t.Fatalf("dict.Load: %v", err)
	}
	hub := app.NewHub(index, daily.NewStore("test-salt"), nopRecorder{}, 30*time.Minute, logger)
	t.Cleanup(hub.Close)

	server := httptest.NewServer(NewHandler(hub, logger))
	t.Cleanup(server.Close)
	return server, hub
}

// testConn wraps a dialed socket and buffers envelopes, since the write
// pump may batch several frames into one message
type testConn struct {
	conn    *websocket.Conn
	pending []envelope
}

func dialTestServer(t *testing.T, server *httptest.Server) *testConn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &testConn{conn: conn}
}

func (c *testConn) send(t *testing.T, msgType MessageType, payload interface{}) {
	t.Helper()
	if err := c.conn.WriteJSON(ClientMessage{Type: msgType, Payload: payload}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

// readUntil drains messages until one of the wanted type arrives
func (c *testConn) readUntil(t *testing.T, msgType string) envelope {
	t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		for len(c.pending) > 0 {
			env := c.pending[0]
			c.pending = c.pending[1:]
			if env.Type == msgType {
				return env
			}
		}

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			t.Fatalf("reading until %s: %v", msgType, err)
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		for {
			var env envelope
			if err := dec.Decode(&env); err != nil {
				break
			}
			c.pending = append(c.pending, env)
		}
	}
}

func (c *testConn) identify(t *testing.T, name string) IdentifiedPayload {
	t.Helper()
	c.send(t, MsgIdentify, IdentifyPayload{Name: name})
	env := c.readUntil(t, string(MsgIdentified))
	var ack IdentifiedPayload
	if err := json.Unmarshal(env.Payload, &ack); err != nil {
		t.Fatalf("identified payload: %v", err)
	}
	return ack
}

func TestIdentify(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dialTestServer(t, server)

	ack := conn.identify(t, "alice")
	if ack.Name != "alice" {
		t.Errorf("identified name %q, want alice", ack.Name)
	}
	if ack.ParticipantID == "" {
		t.Error("identified without a participant id")
	}
}

func TestEnqueueBeforeIdentify(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dialTestServer(t, server)

	conn.send(t, MsgEnqueue, EnqueuePayload{Mode: "classic", Kind: "pvp"})
	env := conn.readUntil(t, string(MsgError))

	var errPayload ErrorPayload
	if err := json.Unmarshal(env.Payload, &errPayload); err != nil {
		t.Fatalf("error payload: %v", err)
	}
	if errPayload.Code != ErrCodeNotIdentified {
		t.Errorf("error code %s, want %s", errPayload.Code, ErrCodeNotIdentified)
	}
}

func TestEnqueueUnknownMode(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dialTestServer(t, server)
	conn.identify(t, "alice")

	conn.send(t, MsgEnqueue, EnqueuePayload{Mode: "speedrun", Kind: "pvp"})
	env := conn.readUntil(t, string(MsgError))

	var errPayload ErrorPayload
	json.Unmarshal(env.Payload, &errPayload)
	if errPayload.Code != ErrCodeUnknownMode {
		t.Errorf("error code %s, want %s", errPayload.Code, ErrCodeUnknownMode)
	}
}

func TestBotMatchOverSocket(t *testing.T) {
	server, hub := newTestServer(t)
	conn := dialTestServer(t, server)
	conn.identify(t, "alice")

	conn.send(t, MsgEnqueue, EnqueuePayload{Mode: "classic", Kind: "bot", Difficulty: "hard"})

	env := conn.readUntil(t, string(domain.EventMatchFound))
	var found domain.MatchFoundPayload
	if err := json.Unmarshal(env.Payload, &found); err != nil {
		t.Fatalf("match_found payload: %v", err)
	}
	if !found.Opponent.IsBot {
		t.Errorf("opponent %s not flagged as a bot", found.Opponent.Name)
	}
	if hub.ActiveMatches() != 1 {
		t.Errorf("active matches %d, want 1", hub.ActiveMatches())
	}

	env = conn.readUntil(t, string(domain.EventRoundStart))
	var start domain.RoundStartPayload
	if err := json.Unmarshal(env.Payload, &start); err != nil {
		t.Fatalf("round_start payload: %v", err)
	}
	if start.Number != 1 || len(start.Letters) != domain.ModeClassic.RackSize {
		t.Errorf("round_start payload %+v", start)
	}
}

func TestPvPMatchOverSockets(t *testing.T) {
	server, _ := newTestServer(t)

	alice := dialTestServer(t, server)
	bob := dialTestServer(t, server)
	alice.identify(t, "alice")
	bob.identify(t, "bob")

	alice.send(t, MsgEnqueue, EnqueuePayload{Mode: "blitz", Kind: "pvp"})
	alice.readUntil(t, string(domain.EventQueued))

	bob.send(t, MsgEnqueue, EnqueuePayload{Mode: "blitz", Kind: "pvp"})

	alice.readUntil(t, string(domain.EventMatchFound))
	bob.readUntil(t, string(domain.EventMatchFound))
}

func TestSubmitWithoutMatch(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dialTestServer(t, server)
	conn.identify(t, "alice")

	conn.send(t, MsgSubmitWord, SubmitWordPayload{Word: "CAT"})
	env := conn.readUntil(t, string(MsgError))

	var errPayload ErrorPayload
	json.Unmarshal(env.Payload, &errPayload)
	if errPayload.Code != ErrCodeNotInMatch {
		t.Errorf("error code %s, want %s", errPayload.Code, ErrCodeNotInMatch)
	}
}

func TestHeartbeat(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dialTestServer(t, server)

	conn.send(t, MsgHeartbeat, nil)
	conn.readUntil(t, string(MsgHeartbeatAck))
}
