package app

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"wordclash/internal/bot"
	"wordclash/internal/daily"
	"wordclash/internal/dict"
	"wordclash/internal/domain"
)

// MatchKind selects how a participant wants to be matched
type MatchKind string

const (
	MatchPvP       MatchKind = "pvp"
	MatchBot       MatchKind = "bot"
	MatchChallenge MatchKind = "challenge"
)

// queueEntry is one participant waiting for a pvp opponent
type queueEntry struct {
	participant *domain.Participant
	client      ClientConnection
	mode        domain.Mode
	queuedAt    time.Time
}

// Hub is the registry and matchmaker: it owns every live session, the
// mode-keyed waiting lists, and the shared read-only engine pieces
// (dictionary index, validator, scorer). Its lifecycle is tied to server
// start and stop; nothing here is ambient package state.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*MatchSession // matchID -> session
	byPlayer map[string]*MatchSession // participantID -> session
	queues   map[string][]*queueEntry // mode name -> FIFO waiting list

	index     *dict.Index
	validator *domain.Validator
	scorer    *domain.Scorer
	daily     *daily.Store
	recorder  MatchRecorder

	staleTimeout time.Duration
	logger       *slog.Logger
	done         chan struct{}
}

// NewHub creates the hub and starts its stale-session sweeper
func NewHub(index *dict.Index, dailyStore *daily.Store, recorder MatchRecorder, staleTimeout time.Duration, logger *slog.Logger) *Hub {
	h := &Hub{
		sessions:     make(map[string]*MatchSession),
		byPlayer:     make(map[string]*MatchSession),
		queues:       make(map[string][]*queueEntry),
		index:        index,
		validator:    domain.NewValidator(index),
		scorer:       domain.NewScorer(),
		daily:        dailyStore,
		recorder:     recorder,
		staleTimeout: staleTimeout,
		logger:       logger,
		done:         make(chan struct{}),
	}

	go h.cleanupLoop()

	return h
}

// Enqueue places a participant into matchmaking. Bot and challenge
// matches seat immediately with a freshly built agent; pvp participants
// wait in a mode-keyed FIFO list until an opponent arrives. A duplicate
// enqueue while already waiting is idempotent.
func (h *Hub) Enqueue(p *domain.Participant, client ClientConnection, modeName string, kind MatchKind, difficulty string) error {
	mode, err := domain.ModeByName(modeName)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, inMatch := h.byPlayer[p.ID]; inMatch {
		return domain.ErrAlreadyInMatch
	}

	switch kind {
	case MatchBot, MatchChallenge:
		h.removeFromQueuesLocked(p.ID)
		return h.startBotMatchLocked(p, client, mode, kind, difficulty)
	default:
		return h.enqueuePvPLocked(p, client, mode)
	}
}

// enqueuePvPLocked adds a participant to the waiting list and pairs the
// two earliest entries when possible
func (h *Hub) enqueuePvPLocked(p *domain.Participant, client ClientConnection, mode domain.Mode) error {
	if entry, pos, waiting := h.queuePositionLocked(p.ID); waiting {
		// Already waiting, possibly in another mode's queue:
		// re-acknowledge the existing entry, do not double-insert
		h.sendQueued(client, entry.mode, pos+1)
		return nil
	}

	queue := h.queues[mode.Name]
	queue = append(queue, &queueEntry{
		participant: p,
		client:      client,
		mode:        mode,
		queuedAt:    time.Now(),
	})
	h.queues[mode.Name] = queue
	h.sendQueued(client, mode, len(queue))

	if len(queue) >= 2 {
		first, second := queue[0], queue[1]
		h.queues[mode.Name] = queue[2:]
		return h.startPvPMatchLocked(first, second, mode)
	}
	return nil
}

// startPvPMatchLocked builds a session for the two earliest waiters
func (h *Hub) startPvPMatchLocked(first, second *queueEntry, mode domain.Mode) error {
	h.removeFromQueuesLocked(first.participant.ID)
	h.removeFromQueuesLocked(second.participant.ID)

	match := domain.NewMatch(uuid.New().String(), mode, h.validator, h.scorer)
	session := h.newSessionLocked(match)

	if err := session.SeatHuman(first.participant, first.client); err != nil {
		return err
	}
	if err := session.SeatHuman(second.participant, second.client); err != nil {
		return err
	}
	h.byPlayer[first.participant.ID] = session
	h.byPlayer[second.participant.ID] = session

	h.logger.Info("pvp match formed",
		"matchId", match.ID,
		"mode", mode.Name,
		"participants", []string{first.participant.ID, second.participant.ID},
	)

	session.Begin()
	return nil
}

// startBotMatchLocked seats the participant against a freshly built bot
// agent, pinning the daily rack in challenge mode
func (h *Hub) startBotMatchLocked(p *domain.Participant, client ClientConnection, mode domain.Mode, kind MatchKind, difficulty string) error {
	match := domain.NewMatch(uuid.New().String(), mode, h.validator, h.scorer)
	session := h.newSessionLocked(match)

	if kind == MatchChallenge {
		challenge := h.daily.GetOrCreate(time.Now(), mode)
		session.SetChallenge(challenge.Rack, challenge.Bonuses)
	}

	profile := bot.ProfileByName(difficulty)
	agent := bot.New(bot.NewParticipant(uuid.New().String()), profile, h.index, h.scorer)

	if err := session.SeatHuman(p, client); err != nil {
		return err
	}
	if err := session.SeatBot(agent); err != nil {
		return err
	}
	h.byPlayer[p.ID] = session

	h.logger.Info("bot match formed",
		"matchId", match.ID,
		"mode", mode.Name,
		"kind", string(kind),
		"difficulty", profile.Name,
		"participantId", p.ID,
	)

	session.Begin()
	return nil
}

// newSessionLocked registers a session whose finish callback records the
// outcome and removes it from the registry
func (h *Hub) newSessionLocked(match *domain.Match) *MatchSession {
	session := NewMatchSession(match, domain.NewGenerator(), h.logger, func(outcome *domain.MatchOutcome) {
		h.recorder.RecordMatch(outcome)
		h.removeSession(outcome.MatchID)
	})
	h.sessions[match.ID] = session
	return session
}

// Dequeue removes a waiting participant with no other side effects
func (h *Hub) Dequeue(participantID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.removeFromQueuesLocked(participantID) {
		return domain.ErrNotQueued
	}
	return nil
}

// queuePositionLocked finds a waiting participant across every mode queue
func (h *Hub) queuePositionLocked(participantID string) (*queueEntry, int, bool) {
	for _, queue := range h.queues {
		for i, entry := range queue {
			if entry.participant.ID == participantID {
				return entry, i, true
			}
		}
	}
	return nil, 0, false
}

func (h *Hub) removeFromQueuesLocked(participantID string) bool {
	removed := false
	for mode, queue := range h.queues {
		kept := queue[:0]
		for _, entry := range queue {
			if entry.participant.ID == participantID {
				removed = true
				continue
			}
			kept = append(kept, entry)
		}
		h.queues[mode] = kept
	}
	return removed
}

// SessionFor returns the live session a participant is seated in
func (h *Hub) SessionFor(participantID string) (*MatchSession, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	session, ok := h.byPlayer[participantID]
	return session, ok
}

// Leave handles an explicit leave or a dropped connection: a waiting
// participant is dequeued, a seated one forfeits
func (h *Hub) Leave(participantID string) {
	h.mu.Lock()
	session, seated := h.byPlayer[participantID]
	if !seated {
		h.removeFromQueuesLocked(participantID)
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	session.Leave(participantID)
}

// removeSession tears down a finished session
func (h *Hub) removeSession(matchID string) {
	h.mu.Lock()
	session, ok := h.sessions[matchID]
	if ok {
		delete(h.sessions, matchID)
		for id, s := range h.byPlayer {
			if s == session {
				delete(h.byPlayer, id)
			}
		}
	}
	h.mu.Unlock()

	if ok {
		session.Close()
		h.logger.Info("match torn down", "matchId", matchID)
	}
}

// ActiveMatches returns the number of live sessions
func (h *Hub) ActiveMatches() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// QueuedParticipants returns the number of participants waiting for a
// pvp opponent
func (h *Hub) QueuedParticipants() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	total := 0
	for _, queue := range h.queues {
		total += len(queue)
	}
	return total
}

// Close shuts down the hub and every session
func (h *Hub) Close() {
	close(h.done)

	h.mu.Lock()
	sessions := make([]*MatchSession, 0, len(h.sessions))
	for _, session := range h.sessions {
		sessions = append(sessions, session)
	}
	h.sessions = make(map[string]*MatchSession)
	h.byPlayer = make(map[string]*MatchSession)
	h.queues = make(map[string][]*queueEntry)
	h.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}

func (h *Hub) sendQueued(client ClientConnection, mode domain.Mode, position int) {
	if client == nil {
		return
	}
	event := domain.NewEvent(domain.EventQueued, "", &domain.QueuedPayload{
		Mode:     mode.Name,
		Position: position,
	})
	if err := client.Send(event); err != nil {
		h.logger.Debug("failed to send queued ack", "error", err)
	}
}

// cleanupLoop periodically closes sessions that finished without teardown
// or went stale
func (h *Hub) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.cleanupStaleSessions()
		}
	}
}

func (h *Hub) cleanupStaleSessions() {
	h.mu.Lock()
	now := time.Now()
	stale := make([]string, 0)
	for matchID, session := range h.sessions {
		if now.Sub(session.CreatedAt()) > h.staleTimeout {
			stale = append(stale, matchID)
		}
	}
	h.mu.Unlock()

	for _, matchID := range stale {
		h.logger.Info("stale match cleaned up", "matchId", matchID)
		h.removeSession(matchID)
	}
}

// Daily exposes the daily challenge store to the HTTP layer
func (h *Hub) Daily() *daily.Store {
	return h.daily
}

// DictionaryWords returns the size of the loaded dictionary
func (h *Hub) DictionaryWords() int {
	return h.index.WordCount()
}
