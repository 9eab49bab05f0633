package domain

import (
	"strings"
	"time"
)

// Mode holds the per-mode parameters that drive the round loop.
// A single state machine is parameterized by this struct; there are
// no mode-specific code paths.
type Mode struct {
	Name            string        `json:"name"`
	RoundsPerMatch  int           `json:"roundsPerMatch"`
	RoundDuration   time.Duration `json:"roundDuration"`
	PreRoundDelay   time.Duration `json:"preRoundDelay"`
	InterRoundDelay time.Duration `json:"interRoundDelay"`
	RackSize        int           `json:"rackSize"`
	MinVowels       int           `json:"minVowels"`
	MaxRareLetters  int           `json:"maxRareLetters"`
	MinBonusTiles   int           `json:"minBonusTiles"`
	MaxBonusTiles   int           `json:"maxBonusTiles"`
	SafeMode        bool          `json:"safeMode"`
}

// Built-in modes. Kids mode enforces the blocklist strictly and runs a
// smaller rack on a longer clock.
var (
	ModeClassic = Mode{
		Name:            "classic",
		RoundsPerMatch:  3,
		RoundDuration:   60 * time.Second,
		PreRoundDelay:   3 * time.Second,
		InterRoundDelay: 5 * time.Second,
		RackSize:        7,
		MinVowels:       2,
		MaxRareLetters:  2,
		MinBonusTiles:   2,
		MaxBonusTiles:   3,
	}

	ModeBlitz = Mode{
		Name:            "blitz",
		RoundsPerMatch:  5,
		RoundDuration:   30 * time.Second,
		PreRoundDelay:   2 * time.Second,
		InterRoundDelay: 3 * time.Second,
		RackSize:        7,
		MinVowels:       2,
		MaxRareLetters:  1,
		MinBonusTiles:   2,
		MaxBonusTiles:   3,
	}

	ModeJumbo = Mode{
		Name:            "jumbo",
		RoundsPerMatch:  3,
		RoundDuration:   90 * time.Second,
		PreRoundDelay:   3 * time.Second,
		InterRoundDelay: 5 * time.Second,
		RackSize:        10,
		MinVowels:       3,
		MaxRareLetters:  2,
		MinBonusTiles:   2,
		MaxBonusTiles:   3,
	}

	ModeKids = Mode{
		Name:            "kids",
		RoundsPerMatch:  3,
		RoundDuration:   90 * time.Second,
		PreRoundDelay:   3 * time.Second,
		InterRoundDelay: 5 * time.Second,
		RackSize:        7,
		MinVowels:       3,
		MaxRareLetters:  0,
		MinBonusTiles:   2,
		MaxBonusTiles:   2,
		SafeMode:        true,
	}
)

// DefaultMode is used when a client does not request a specific mode
var DefaultMode = ModeClassic

// ModeByName resolves a mode by its name, case-insensitively
func ModeByName(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "classic":
		return ModeClassic, nil
	case "blitz":
		return ModeBlitz, nil
	case "jumbo":
		return ModeJumbo, nil
	case "kids":
		return ModeKids, nil
	}
	return Mode{}, ErrUnknownMode
}
