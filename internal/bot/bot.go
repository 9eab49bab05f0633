package bot

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"wordclash/internal/domain"
)

// WordSource is what the agent needs from the dictionary index
type WordSource interface {
	FindCandidates(rack domain.Rack) []string
}

// Agent plays one seat in a match. It discovers candidate words through
// the dictionary index, scores them, and schedules a delayed submission
// so its play feels human-paced. The scheduled submission is cancelable;
// canceling after the round already sealed has no side effects.
type Agent struct {
	participant *domain.Participant
	profile     Profile
	words       WordSource
	scorer      *domain.Scorer

	mu    sync.Mutex
	timer *time.Timer
}

// New creates an agent for the given participant seat
func New(participant *domain.Participant, profile Profile, words WordSource, scorer *domain.Scorer) *Agent {
	return &Agent{
		participant: participant,
		profile:     profile,
		words:       words,
		scorer:      scorer,
	}
}

// Participant returns the seat this agent plays
func (a *Agent) Participant() *domain.Participant {
	return a.participant
}

// Schedule plans the agent's submission for a round and arms a timer to
// deliver it through the same submit path a human message would take.
// The delay is drawn from the profile's latency range and clamped to
// land before the round deadline.
func (a *Agent) Schedule(rack domain.Rack, bonuses []domain.BonusTile, deadline time.Time, submit func(word string)) {
	word := a.Pick(rack, bonuses)
	delay := a.profile.drawDelay()

	if remaining := time.Until(deadline) - time.Second; remaining > 0 && delay > remaining {
		delay = remaining
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(delay, func() {
		submit(word)
	})
}

// Cancel stops a pending scheduled submission, if any
func (a *Agent) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// Pick selects the word the agent will play for the given rack, or the
// empty string if there are no candidates. Candidates are sorted by
// descending adjusted score and one is drawn from the profile's
// percentile band, so bots vary instead of playing omnisciently.
func (a *Agent) Pick(rack domain.Rack, bonuses []domain.BonusTile) string {
	candidates := a.words.FindCandidates(rack)
	if len(candidates) == 0 {
		return ""
	}

	ranked := a.rank(candidates, rack, bonuses)

	lo, hi := a.profile.bandIndices(len(ranked))
	if a.profile.Risk > 0 && rand.Float64() < a.profile.Risk {
		// Gambling on the strongest word in reach
		lo = 0
	}
	return ranked[lo+rand.Intn(hi-lo)].word
}

type rankedWord struct {
	word  string
	value float64
}

// rank scores every candidate. The base score ignores bonus tiles; the
// profile's bonus affinity decides how much of the bonus upside the agent
// actually chases, and its length preference nudges longer words up.
func (a *Agent) rank(candidates []string, rack domain.Rack, bonuses []domain.BonusTile) []rankedWord {
	ranked := make([]rankedWord, 0, len(candidates))
	for _, w := range candidates {
		base := a.scorer.Calculate(w, rack, nil)
		withBonus := a.scorer.Calculate(w, rack, bonuses)
		value := float64(base) + a.profile.BonusAffinity*float64(withBonus-base)
		if len(w) >= a.profile.PreferLength {
			value += a.profile.LengthBias
		}
		ranked = append(ranked, rankedWord{word: w, value: value})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].value != ranked[j].value {
			return ranked[i].value > ranked[j].value
		}
		return ranked[i].word < ranked[j].word
	})
	return ranked
}

// botNames is the pool of display names given to bot opponents
var botNames = []string{
	"Lexi", "Wordsworth", "Sage", "Quill", "Scrib",
	"Vera", "Pip", "Otto", "Nouna", "Glyph",
}

// RandomName returns a display name for a bot seat
func RandomName() string {
	return botNames[rand.Intn(len(botNames))] + " (bot)"
}

// NewParticipant builds the bot's tagged participant seat
func NewParticipant(id string) *domain.Participant {
	return domain.NewBot(id, RandomName())
}

// ProfileByName resolves a difficulty string to a stock profile,
// defaulting to medium
func ProfileByName(name string) Profile {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "easy":
		return ProfileEasy
	case "hard":
		return ProfileHard
	default:
		return ProfileMedium
	}
}
