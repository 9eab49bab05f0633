package bot

import (
	"math/rand"
	"time"
)

// Profile is a bot difficulty and personality: which slice of the
// score-ranked candidate list it draws from, how long it pretends to
// think, and how much it cares about bonus tiles and long words.
type Profile struct {
	Name string

	// Percentile band of the descending score-sorted candidate list the
	// agent samples from. [0, 0.05) means the top five percent.
	BandLow  float64
	BandHigh float64

	// Simulated response latency range
	MinDelay time.Duration
	MaxDelay time.Duration

	// BonusAffinity in [0,1] is how much of the bonus-tile upside the
	// agent values when ranking candidates
	BonusAffinity float64

	// Words of at least PreferLength letters get LengthBias added
	PreferLength int
	LengthBias   float64

	// Risk is the chance the agent abandons its band and goes for the
	// strongest word in reach
	Risk float64
}

// Stock difficulty profiles
var (
	ProfileEasy = Profile{
		Name:          "easy",
		BandLow:       0.5,
		BandHigh:      0.95,
		MinDelay:      8 * time.Second,
		MaxDelay:      20 * time.Second,
		BonusAffinity: 0.2,
		PreferLength:  3,
		LengthBias:    0,
		Risk:          0.05,
	}

	ProfileMedium = Profile{
		Name:          "medium",
		BandLow:       0.15,
		BandHigh:      0.5,
		MinDelay:      5 * time.Second,
		MaxDelay:      14 * time.Second,
		BonusAffinity: 0.6,
		PreferLength:  5,
		LengthBias:    1.5,
		Risk:          0.15,
	}

	ProfileHard = Profile{
		Name:          "hard",
		BandLow:       0,
		BandHigh:      0.05,
		MinDelay:      3 * time.Second,
		MaxDelay:      9 * time.Second,
		BonusAffinity: 1.0,
		PreferLength:  6,
		LengthBias:    3,
		Risk:          0.5,
	}
)

// bandIndices converts the percentile band into index bounds over a
// candidate list of length n, always leaving at least one pick
func (p Profile) bandIndices(n int) (lo, hi int) {
	lo = int(p.BandLow * float64(n))
	hi = int(p.BandHigh * float64(n))
	if lo >= n {
		lo = n - 1
	}
	if hi <= lo {
		hi = lo + 1
	}
	if hi > n {
		hi = n
	}
	return lo, hi
}

// drawDelay returns a random latency within the profile's range
func (p Profile) drawDelay() time.Duration {
	if p.MaxDelay <= p.MinDelay {
		return p.MinDelay
	}
	return p.MinDelay + time.Duration(rand.Int63n(int64(p.MaxDelay-p.MinDelay)))
}
