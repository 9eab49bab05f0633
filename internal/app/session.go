package app

import (
	"log/slog"
	"sync"
	"time"

	"wordclash/internal/bot"
	"wordclash/internal/domain"
)

// ClientConnection represents a connected human participant
type ClientConnection interface {
	Send(message interface{}) error
	GetParticipantID() string
	Close() error
}

// MatchSession wraps one match with concurrency control, timers, the bot
// agent if one is seated, and client fan-out. Every mutation of match
// state happens under the session mutex, and each handler runs to
// completion before the next event touches the match.
type MatchSession struct {
	match *domain.Match
	mu    sync.Mutex

	clients   map[string]ClientConnection // participantID -> client
	clientsMu sync.RWMutex

	gen   *domain.Generator
	agent *bot.Agent // nil in pvp matches

	// Challenge mode: externally supplied deterministic rack used instead
	// of generating one
	fixedRack    domain.Rack
	fixedBonuses []domain.BonusTile

	logger   *slog.Logger
	onFinish func(*domain.MatchOutcome)

	// Timers; cleared explicitly on every exit path so a stale timer can
	// never act on a sealed round or a torn-down match
	deadlineTimer *time.Timer
	startTimer    *time.Timer

	events   chan *domain.MatchEvent
	done     chan struct{}
	loopDone chan struct{}
	closed   bool
}

// NewMatchSession creates a session around a match. onFinish fires once
// when the match reaches its terminal state or is torn down.
func NewMatchSession(match *domain.Match, gen *domain.Generator, logger *slog.Logger, onFinish func(*domain.MatchOutcome)) *MatchSession {
	s := &MatchSession{
		match:    match,
		clients:  make(map[string]ClientConnection),
		gen:      gen,
		logger:   logger.With("matchId", match.ID),
		onFinish: onFinish,
		events:   make(chan *domain.MatchEvent, 100),
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}

	go s.eventLoop()

	return s
}

// MatchID returns the match identity
func (s *MatchSession) MatchID() string {
	return s.match.ID
}

// CreatedAt returns when the match was created
func (s *MatchSession) CreatedAt() time.Time {
	return s.match.CreatedAt
}

// Status returns the current match status
func (s *MatchSession) Status() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match.Status
}

// SetChallenge pins the rack for every round of this match to an
// externally supplied deterministic draw
func (s *MatchSession) SetChallenge(rack domain.Rack, bonuses []domain.BonusTile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixedRack = rack
	s.fixedBonuses = bonuses
}

// SeatHuman seats a human participant and registers their connection
func (s *MatchSession) SeatHuman(p *domain.Participant, client ClientConnection) error {
	s.clientsMu.Lock()
	s.clients[p.ID] = client
	s.clientsMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match.AddParticipant(p)
}

// SeatBot seats a bot agent in the second chair
func (s *MatchSession) SeatBot(agent *bot.Agent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agent = agent
	return s.match.AddParticipant(agent.Participant())
}

// Begin announces the formed match to both participants and schedules the
// first round after the mode's pre-round delay
func (s *MatchSession) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.match.Status != domain.StatusPlaying {
		return
	}

	for _, p := range s.match.Participants {
		opponent := s.match.Opponent(p.ID)
		if opponent == nil {
			continue
		}
		s.queueEvent(domain.NewParticipantEvent(domain.EventMatchFound, s.match.ID, p.ID, &domain.MatchFoundPayload{
			MatchID:  s.match.ID,
			Mode:     s.match.Mode.Name,
			Opponent: opponent.ToInfo(),
		}))
	}

	s.scheduleRoundStartLocked(s.match.Mode.PreRoundDelay)
}

// scheduleRoundStartLocked arms the pre-round or inter-round delay timer.
// Caller must hold the session mutex.
func (s *MatchSession) scheduleRoundStartLocked(delay time.Duration) {
	if s.startTimer != nil {
		s.startTimer.Stop()
	}
	s.startTimer = time.AfterFunc(delay, s.startRound)
}

// startRound opens the next round, arms the deadline timer and, if a bot
// is seated, schedules its submission
func (s *MatchSession) startRound() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.match.Status != domain.StatusPlaying {
		return
	}

	rack, bonuses := s.drawRackLocked()
	round, err := s.match.StartRound(rack, bonuses)
	if err != nil {
		s.logger.Error("failed to start round", "error", err)
		return
	}

	s.queueEvent(domain.NewEvent(domain.EventRoundStart, s.match.ID, &domain.RoundStartPayload{
		Number:      round.Number,
		TotalRounds: s.match.Mode.RoundsPerMatch,
		Letters:     round.Rack.Letters(),
		Bonuses:     round.Bonuses,
		Deadline:    round.Deadline,
		DurationMs:  s.match.Mode.RoundDuration.Milliseconds(),
		PreRoundMs:  s.match.Mode.PreRoundDelay.Milliseconds(),
	}))

	number := round.Number
	if s.deadlineTimer != nil {
		s.deadlineTimer.Stop()
	}
	s.deadlineTimer = time.AfterFunc(s.match.Mode.RoundDuration, func() {
		s.handleDeadline(number)
	})

	if s.agent != nil {
		botID := s.agent.Participant().ID
		s.agent.Schedule(round.Rack, round.Bonuses, round.Deadline, func(word string) {
			if err := s.SubmitWord(botID, word); err != nil {
				s.logger.Debug("bot submission dropped", "error", err)
			}
		})
	}

	s.logger.Info("round started", "round", number, "rack", round.Rack.String())
}

// drawRackLocked generates this round's rack, or reuses the pinned
// challenge rack when one is set
func (s *MatchSession) drawRackLocked() (domain.Rack, []domain.BonusTile) {
	if s.fixedRack != nil {
		return s.fixedRack, s.fixedBonuses
	}
	return s.gen.Generate(s.match.Mode)
}

// SubmitWord records a submission from either a socket message or the bot
// agent's scheduled callback; both arrive on this same path. The caller
// gets a domain error for structural rejections (no active round, second
// submission); an illegal word is a recorded zero-score submission, not
// an error.
func (s *MatchSession) SubmitWord(participantID, word string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, err := s.match.Submit(participantID, word, time.Now())
	if err != nil {
		return err
	}

	s.queueEvent(domain.NewParticipantEvent(domain.EventOpponentSubmitted, s.match.ID,
		opponentID(s.match, participantID), nil))

	if !sub.Legal {
		s.queueEvent(domain.NewParticipantEvent(domain.EventError, s.match.ID, participantID, &domain.ErrorPayload{
			Code:    "ILLEGAL_WORD",
			Message: string(sub.Reason),
		}))
	}

	if s.match.BothSubmitted() {
		s.sealRoundLocked()
	}
	return nil
}

// handleDeadline is the round timer callback. The round number guard and
// the idempotent seal make a late or duplicate firing a no-op.
func (s *MatchSession) handleDeadline(roundNumber int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round := s.match.CurrentRound
	if s.closed || round == nil || round.Number != roundNumber {
		return
	}
	s.sealRoundLocked()
}

// sealRoundLocked seals the active round and routes to the next round or
// the final result. Caller must hold the session mutex. Exactly one of
// the both-submitted path and the deadline path gets past the seal.
func (s *MatchSession) sealRoundLocked() {
	outcome, ok := s.match.SealRound()
	if !ok {
		return
	}

	if s.deadlineTimer != nil {
		s.deadlineTimer.Stop()
		s.deadlineTimer = nil
	}
	if s.agent != nil {
		s.agent.Cancel()
	}

	payload := &domain.RoundResultPayload{
		Number:      outcome.Number,
		TotalRounds: outcome.TotalRounds,
		Submissions: outcome.Submissions,
		WinnerID:    outcome.WinnerID,
		Totals:      outcome.Totals,
	}
	if !outcome.Final {
		next := time.Now().Add(s.match.Mode.InterRoundDelay)
		payload.NextRoundAt = &next
	}
	s.queueEvent(domain.NewEvent(domain.EventRoundResult, s.match.ID, payload))

	if outcome.Final {
		s.finishLocked()
		return
	}
	s.scheduleRoundStartLocked(s.match.Mode.InterRoundDelay)
}

// Leave handles an explicit leave or a transport disconnect. A participant
// leaving mid-match forfeits; the remaining participant wins regardless of
// totals.
func (s *MatchSession) Leave(participantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.match.Status == domain.StatusFinished {
		return
	}
	if _, err := s.match.GetParticipant(participantID); err != nil {
		return
	}

	s.logger.Info("participant left mid-match", "participantId", participantID)
	s.match.Forfeit(participantID)
	s.finishLocked()
}

// finishLocked reports the final outcome and hands the session back to
// the hub for teardown. Caller must hold the session mutex.
func (s *MatchSession) finishLocked() {
	s.stopTimersLocked()

	outcome := s.match.Outcome()
	s.queueEvent(domain.NewEvent(domain.EventMatchResult, s.match.ID, &domain.MatchResultPayload{
		Totals:   outcome.Totals,
		WinnerID: outcome.WinnerID,
		Forfeit:  outcome.Forfeit,
	}))

	if s.onFinish != nil {
		callback := s.onFinish
		s.onFinish = nil
		go callback(outcome)
	}
}

func (s *MatchSession) stopTimersLocked() {
	if s.deadlineTimer != nil {
		s.deadlineTimer.Stop()
		s.deadlineTimer = nil
	}
	if s.startTimer != nil {
		s.startTimer.Stop()
		s.startTimer = nil
	}
	if s.agent != nil {
		s.agent.Cancel()
	}
}

// queueEvent adds an event to the broadcast queue
func (s *MatchSession) queueEvent(event *domain.MatchEvent) {
	select {
	case s.events <- event:
	default:
		s.logger.Warn("event queue full, dropping event", "type", event.Type)
	}
}

// eventLoop drains the queue and fans events out to clients so the match
// handlers never block on a slow socket. On shutdown it flushes whatever
// is still queued; the terminal round_result and match_result are often
// in flight when teardown starts and must still reach the clients.
func (s *MatchSession) eventLoop() {
	defer close(s.loopDone)
	for {
		select {
		case <-s.done:
			for {
				select {
				case event := <-s.events:
					s.broadcastEvent(event)
				default:
					return
				}
			}
		case event := <-s.events:
			s.broadcastEvent(event)
		}
	}
}

// broadcastEvent sends an event to its addressee, or to every connected
// client if it has none. Bot participants have no connection and are
// skipped naturally.
func (s *MatchSession) broadcastEvent(event *domain.MatchEvent) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	if event.ParticipantID != "" {
		if client, ok := s.clients[event.ParticipantID]; ok {
			if err := client.Send(event); err != nil {
				s.logger.Debug("failed to send to client", "participantId", event.ParticipantID, "error", err)
			}
		}
		return
	}

	for participantID, client := range s.clients {
		if err := client.Send(event); err != nil {
			s.logger.Debug("failed to send to client", "participantId", participantID, "error", err)
		}
	}
}

// Close tears the session down: all timers stopped, the bot canceled, all
// clients detached. Clients are detached only after the event loop has
// flushed, so queued terminal events still go out.
func (s *MatchSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTimersLocked()
	s.mu.Unlock()

	close(s.done)
	<-s.loopDone

	s.clientsMu.Lock()
	s.clients = make(map[string]ClientConnection)
	s.clientsMu.Unlock()
}

func opponentID(match *domain.Match, participantID string) string {
	if opp := match.Opponent(participantID); opp != nil {
		return opp.ID
	}
	return ""
}
