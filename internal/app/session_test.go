package app

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"wordclash/internal/bot"
	"wordclash/internal/dict"
	"wordclash/internal/domain"
)

// fakeClient records every event a session delivers to one participant
type fakeClient struct {
	participantID string

	mu     sync.Mutex
	events []*domain.MatchEvent
}

func newFakeClient(participantID string) *fakeClient {
	return &fakeClient{participantID: participantID}
}

func (c *fakeClient) Send(message interface{}) error {
	event, ok := message.(*domain.MatchEvent)
	if !ok {
		return nil
	}
	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()
	return nil
}

func (c *fakeClient) GetParticipantID() string { return c.participantID }
func (c *fakeClient) Close() error             { return nil }

func (c *fakeClient) eventsOfType(eventType domain.EventType) []*domain.MatchEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*domain.MatchEvent
	for _, e := range c.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (c *fakeClient) waitForEvent(t *testing.T, eventType domain.EventType, timeout time.Duration) *domain.MatchEvent {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if events := c.eventsOfType(eventType); len(events) > 0 {
			return events[0]
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no %s event within %s", eventType, timeout)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadTestIndex(t *testing.T) *dict.Index {
	t.Helper()
	index, err := dict.Load("", "", testLogger())
	if err != nil {
		t.Fatalf("dict.Load: %v", err)
	}
	return index
}

// fastMode keeps the round loop short enough for tests
var fastMode = domain.Mode{
	Name:            "classic",
	RoundsPerMatch:  2,
	RoundDuration:   300 * time.Millisecond,
	PreRoundDelay:   10 * time.Millisecond,
	InterRoundDelay: 10 * time.Millisecond,
	RackSize:        7,
	MinVowels:       2,
	MaxRareLetters:  2,
	MinBonusTiles:   2,
	MaxBonusTiles:   3,
}

func newTestSession(t *testing.T, mode domain.Mode, onFinish func(*domain.MatchOutcome)) (*MatchSession, *fakeClient, *fakeClient) {
	t.Helper()
	index := loadTestIndex(t)
	match := domain.NewMatch("m1", mode, domain.NewValidator(index), domain.NewScorer())
	session := NewMatchSession(match, domain.NewGenerator(), testLogger(), onFinish)

	alice := newFakeClient("p1")
	bob := newFakeClient("p2")
	if err := session.SeatHuman(domain.NewHuman("p1", "alice"), alice); err != nil {
		t.Fatalf("SeatHuman(alice): %v", err)
	}
	if err := session.SeatHuman(domain.NewHuman("p2", "bob"), bob); err != nil {
		t.Fatalf("SeatHuman(bob): %v", err)
	}
	return session, alice, bob
}

func TestSessionFullMatch(t *testing.T) {
	finished := make(chan *domain.MatchOutcome, 1)
	session, alice, bob := newTestSession(t, fastMode, func(outcome *domain.MatchOutcome) {
		finished <- outcome
	})
	defer session.Close()
	session.SetChallenge(domain.ParseRack("CATSERN"), nil)

	session.Begin()

	found := alice.waitForEvent(t, domain.EventMatchFound, time.Second)
	payload, ok := found.Payload.(*domain.MatchFoundPayload)
	if !ok {
		t.Fatalf("match_found payload type %T", found.Payload)
	}
	if payload.Opponent.ID != "p2" {
		t.Errorf("alice's opponent %s, want p2", payload.Opponent.ID)
	}
	bob.waitForEvent(t, domain.EventMatchFound, time.Second)

	for round := 1; round <= fastMode.RoundsPerMatch; round++ {
		deadline := time.Now().Add(time.Second)
		for len(alice.eventsOfType(domain.EventRoundStart)) < round {
			if time.Now().After(deadline) {
				t.Fatalf("round %d never started", round)
			}
			time.Sleep(5 * time.Millisecond)
		}

		if err := session.SubmitWord("p1", "CATS"); err != nil {
			t.Fatalf("round %d SubmitWord(p1): %v", round, err)
		}
		if err := session.SubmitWord("p2", "RAT"); err != nil {
			t.Fatalf("round %d SubmitWord(p2): %v", round, err)
		}

		deadline = time.Now().Add(time.Second)
		for len(alice.eventsOfType(domain.EventRoundResult)) < round {
			if time.Now().After(deadline) {
				t.Fatalf("round %d result never arrived", round)
			}
			time.Sleep(5 * time.Millisecond)
		}
	}

	results := alice.eventsOfType(domain.EventRoundResult)
	last, ok := results[len(results)-1].Payload.(*domain.RoundResultPayload)
	if !ok {
		t.Fatalf("round_result payload type %T", results[len(results)-1].Payload)
	}
	if last.WinnerID != "p1" {
		t.Errorf("round winner %s, want p1", last.WinnerID)
	}
	if last.NextRoundAt != nil {
		t.Error("final round result carries a next round time")
	}

	final := alice.waitForEvent(t, domain.EventMatchResult, time.Second)
	matchPayload, ok := final.Payload.(*domain.MatchResultPayload)
	if !ok {
		t.Fatalf("match_result payload type %T", final.Payload)
	}
	if matchPayload.WinnerID != "p1" {
		t.Errorf("match winner %s, want p1", matchPayload.WinnerID)
	}
	bob.waitForEvent(t, domain.EventMatchResult, time.Second)

	select {
	case outcome := <-finished:
		if outcome.WinnerID != "p1" || outcome.RoundsPlayed != fastMode.RoundsPerMatch {
			t.Errorf("finish outcome %+v", outcome)
		}
	case <-time.After(time.Second):
		t.Fatal("finish callback never fired")
	}
}

func TestSessionDeadlineSealsRound(t *testing.T) {
	session, alice, _ := newTestSession(t, fastMode, nil)
	defer session.Close()
	session.SetChallenge(domain.ParseRack("CATSERN"), nil)

	session.Begin()
	alice.waitForEvent(t, domain.EventRoundStart, time.Second)

	if err := session.SubmitWord("p1", "CAT"); err != nil {
		t.Fatalf("SubmitWord: %v", err)
	}

	// Bob never submits; the deadline fills his seat with a timeout
	result := alice.waitForEvent(t, domain.EventRoundResult, time.Second)
	payload := result.Payload.(*domain.RoundResultPayload)
	absent := payload.Submissions["p2"]
	if absent == nil {
		t.Fatal("no submission recorded for the silent participant")
	}
	if absent.Reason != domain.ReasonTimeExpired || absent.Score != 0 {
		t.Errorf("silent participant submission %+v", absent)
	}
	if payload.WinnerID != "p1" {
		t.Errorf("round winner %s, want p1", payload.WinnerID)
	}
}

func TestSessionIllegalWordReported(t *testing.T) {
	session, alice, bob := newTestSession(t, fastMode, nil)
	defer session.Close()
	session.SetChallenge(domain.ParseRack("CATSERN"), nil)

	session.Begin()
	alice.waitForEvent(t, domain.EventRoundStart, time.Second)

	if err := session.SubmitWord("p1", "XQZT"); err != nil {
		t.Fatalf("SubmitWord(illegal): %v", err)
	}

	errEvent := alice.waitForEvent(t, domain.EventError, time.Second)
	errPayload := errEvent.Payload.(*domain.ErrorPayload)
	if errPayload.Code != "ILLEGAL_WORD" {
		t.Errorf("error code %s, want ILLEGAL_WORD", errPayload.Code)
	}
	if len(bob.eventsOfType(domain.EventError)) != 0 {
		t.Error("illegal-word error leaked to the opponent")
	}
	bob.waitForEvent(t, domain.EventOpponentSubmitted, time.Second)

	// The illegal word still occupies the seat's submission
	if err := session.SubmitWord("p1", "CATS"); err != domain.ErrAlreadySubmitted {
		t.Errorf("resubmission error %v, want %v", err, domain.ErrAlreadySubmitted)
	}
}

func TestSessionLeaveForfeits(t *testing.T) {
	finished := make(chan *domain.MatchOutcome, 1)
	session, alice, bob := newTestSession(t, fastMode, func(outcome *domain.MatchOutcome) {
		finished <- outcome
	})
	defer session.Close()
	session.SetChallenge(domain.ParseRack("CATSERN"), nil)

	session.Begin()
	alice.waitForEvent(t, domain.EventRoundStart, time.Second)

	session.Leave("p1")

	result := bob.waitForEvent(t, domain.EventMatchResult, time.Second)
	payload := result.Payload.(*domain.MatchResultPayload)
	if !payload.Forfeit || payload.WinnerID != "p2" {
		t.Errorf("forfeit result %+v, want p2 winning by forfeit", payload)
	}

	select {
	case outcome := <-finished:
		if !outcome.Forfeit || outcome.WinnerID != "p2" {
			t.Errorf("finish outcome %+v", outcome)
		}
	case <-time.After(time.Second):
		t.Fatal("finish callback never fired")
	}
}

func TestSessionCloseFlushesTerminalEvents(t *testing.T) {
	// The hub closes a session from the finish callback, racing the event
	// loop with the terminal events still queued. The remaining participant
	// must receive the match result every time.
	index := loadTestIndex(t)
	for i := 0; i < 20; i++ {
		match := domain.NewMatch("m1", fastMode, domain.NewValidator(index), domain.NewScorer())

		var session *MatchSession
		closed := make(chan struct{})
		session = NewMatchSession(match, domain.NewGenerator(), testLogger(), func(*domain.MatchOutcome) {
			session.Close()
			close(closed)
		})

		alice := newFakeClient("p1")
		bob := newFakeClient("p2")
		if err := session.SeatHuman(domain.NewHuman("p1", "alice"), alice); err != nil {
			t.Fatalf("SeatHuman(alice): %v", err)
		}
		if err := session.SeatHuman(domain.NewHuman("p2", "bob"), bob); err != nil {
			t.Fatalf("SeatHuman(bob): %v", err)
		}
		session.SetChallenge(domain.ParseRack("CATSERN"), nil)

		session.Begin()
		alice.waitForEvent(t, domain.EventRoundStart, time.Second)

		session.Leave("p1")

		select {
		case <-closed:
		case <-time.After(time.Second):
			t.Fatal("finish callback never closed the session")
		}

		result := bob.waitForEvent(t, domain.EventMatchResult, time.Second)
		payload := result.Payload.(*domain.MatchResultPayload)
		if !payload.Forfeit || payload.WinnerID != "p2" {
			t.Fatalf("forfeit result %+v, want p2 winning by forfeit", payload)
		}
	}
}

func TestSessionBotPlaysRound(t *testing.T) {
	index := loadTestIndex(t)
	match := domain.NewMatch("m1", fastMode, domain.NewValidator(index), domain.NewScorer())
	session := NewMatchSession(match, domain.NewGenerator(), testLogger(), nil)
	defer session.Close()
	session.SetChallenge(domain.ParseRack("CATSERN"), nil)

	alice := newFakeClient("p1")
	if err := session.SeatHuman(domain.NewHuman("p1", "alice"), alice); err != nil {
		t.Fatalf("SeatHuman: %v", err)
	}

	profile := bot.ProfileHard
	profile.MinDelay = 10 * time.Millisecond
	profile.MaxDelay = 20 * time.Millisecond
	agent := bot.New(bot.NewParticipant("b1"), profile, index, domain.NewScorer())
	if err := session.SeatBot(agent); err != nil {
		t.Fatalf("SeatBot: %v", err)
	}

	session.Begin()
	alice.waitForEvent(t, domain.EventRoundStart, time.Second)
	alice.waitForEvent(t, domain.EventOpponentSubmitted, time.Second)

	if err := session.SubmitWord("p1", "CAT"); err != nil {
		t.Fatalf("SubmitWord: %v", err)
	}

	result := alice.waitForEvent(t, domain.EventRoundResult, time.Second)
	payload := result.Payload.(*domain.RoundResultPayload)
	botSub := payload.Submissions["b1"]
	if botSub == nil {
		t.Fatal("bot left no submission")
	}
	if !botSub.Legal || botSub.Score == 0 {
		t.Errorf("bot submission %+v, want a legal scoring word", botSub)
	}
}
