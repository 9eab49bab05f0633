package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"sync"
	"time"

	"wordclash/internal/domain"
)

// DateKey returns YYYY-MM-DD in UTC
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed derives a deterministic generator seed for a date and mode using
// HMAC-SHA256(salt, "YYYY-MM-DD:mode"), taking the first 8 bytes. Every
// server instance with the same salt produces the same seed, so all
// players of a mode see the same day's rack.
func Seed(date time.Time, salt, modeName string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date) + ":" + modeName))
	sum := h.Sum(nil)
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

// Challenge is one day's shared puzzle: the rack and bonus tiles every
// player of that date plays against
type Challenge struct {
	Date    string             `json:"date"`
	Mode    string             `json:"mode"`
	Letters []string           `json:"letters"`
	Rack    domain.Rack        `json:"-"`
	Bonuses []domain.BonusTile `json:"bonuses"`
}

// Store hands out daily challenges, generating each date and mode's rack
// at most once with a seeded generator running the exact production
// algorithm.
type Store struct {
	salt string

	mu    sync.Mutex
	byKey map[string]*Challenge
}

// NewStore creates a challenge store for the given salt
func NewStore(salt string) *Store {
	return &Store{
		salt:  salt,
		byKey: make(map[string]*Challenge),
	}
}

// GetOrCreate returns the challenge for the given date and mode,
// generating it on first request. Each mode gets its own rack so a jumbo
// challenge never hands out a classic-sized rack.
func (s *Store) GetOrCreate(date time.Time, mode domain.Mode) *Challenge {
	key := DateKey(date) + "/" + mode.Name

	s.mu.Lock()
	defer s.mu.Unlock()

	if challenge, ok := s.byKey[key]; ok {
		return challenge
	}

	gen := domain.NewSeededGenerator(Seed(date, s.salt, mode.Name))
	rack, bonuses := gen.Generate(mode)

	challenge := &Challenge{
		Date:    DateKey(date),
		Mode:    mode.Name,
		Letters: rack.Letters(),
		Rack:    rack,
		Bonuses: bonuses,
	}
	s.byKey[key] = challenge
	return challenge
}
