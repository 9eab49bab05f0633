package domain

import (
	"math/rand"
	"strings"
	"time"
)

// Rack is the ordered set of letters shared by both participants in a round.
// It is fixed for the duration of the round.
type Rack []rune

// String returns the rack as a contiguous string
func (r Rack) String() string {
	return string(r)
}

// Letters returns the rack letters as single-character strings, which is
// how they travel on the wire
func (r Rack) Letters() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = string(c)
	}
	return out
}

// Counts returns the rack as a decrementable letter multiset
func (r Rack) Counts() map[rune]int {
	counts := make(map[rune]int, len(r))
	for _, c := range r {
		counts[c]++
	}
	return counts
}

// BonusType is the kind of multiplier a bonus tile carries
type BonusType string

const (
	BonusDoubleLetter BonusType = "DOUBLE_LETTER"
	BonusTripleLetter BonusType = "TRIPLE_LETTER"
	BonusDoubleWord   BonusType = "DOUBLE_WORD"
)

// BonusTile is a rack position carrying a letter or word multiplier.
// Positions are unique within a round.
type BonusTile struct {
	Position int       `json:"position"`
	Type     BonusType `json:"type"`
}

// Letter pools with weighted frequencies, split into vowels, common
// consonants and rare consonants. The weights follow the classic tile
// distribution so racks feel familiar.
var (
	vowelWeights = map[rune]int{
		'A': 9, 'E': 12, 'I': 9, 'O': 8, 'U': 4,
	}

	commonWeights = map[rune]int{
		'B': 2, 'C': 2, 'D': 4, 'F': 2, 'G': 3, 'H': 2, 'L': 4, 'M': 2,
		'N': 6, 'P': 2, 'R': 6, 'S': 4, 'T': 6, 'W': 2, 'Y': 2,
	}

	rareWeights = map[rune]int{
		'J': 1, 'K': 1, 'Q': 1, 'V': 2, 'X': 1, 'Z': 1,
	}
)

// IsVowel reports whether the letter is a vowel
func IsVowel(c rune) bool {
	_, ok := vowelWeights[c]
	return ok
}

// IsCommonConsonant reports whether the letter is in the common consonant pool
func IsCommonConsonant(c rune) bool {
	_, ok := commonWeights[c]
	return ok
}

// IsRareLetter reports whether the letter is in the rare consonant pool
func IsRareLetter(c rune) bool {
	_, ok := rareWeights[c]
	return ok
}

// weightedPool is a flattened letter pool for cumulative weighted draws
type weightedPool struct {
	letters []rune
	weights []int
	total   int
}

func newWeightedPool(tables ...map[rune]int) *weightedPool {
	p := &weightedPool{}
	for _, table := range tables {
		for c := 'A'; c <= 'Z'; c++ {
			if w, ok := table[c]; ok {
				p.letters = append(p.letters, c)
				p.weights = append(p.weights, w)
				p.total += w
			}
		}
	}
	return p
}

func (p *weightedPool) draw(rng *rand.Rand) rune {
	n := rng.Intn(p.total)
	for i, w := range p.weights {
		if n < w {
			return p.letters[i]
		}
		n -= w
	}
	// Unreachable with a consistent total
	return p.letters[len(p.letters)-1]
}

var (
	fullPool   = newWeightedPool(vowelWeights, commonWeights, rareWeights)
	safePool   = newWeightedPool(vowelWeights, commonWeights)
	vowelPool  = newWeightedPool(vowelWeights)
	commonPool = newWeightedPool(commonWeights)
)

// bonusTypeWeights makes the word multiplier deliberately rarer than the
// two letter multipliers.
var bonusTypeWeights = []struct {
	bonus  BonusType
	weight int
}{
	{BonusDoubleLetter, 40},
	{BonusTripleLetter, 40},
	{BonusDoubleWord, 20},
}

// Generator produces racks and bonus tiles. The random source is injected
// so the daily challenge can run the same algorithm with a fixed seed and
// get an identical rack for every player.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator backed by a time-seeded source
func NewGenerator() *Generator {
	return NewSeededGenerator(time.Now().UnixNano())
}

// NewSeededGenerator returns a generator with a deterministic source
func NewSeededGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate draws a rack and its bonus tiles for the given mode
func (g *Generator) Generate(mode Mode) (Rack, []BonusTile) {
	rack := g.drawLetters(mode)
	g.repairVowels(rack, mode)
	g.repairCommon(rack, mode)

	// The final order must not reveal the generation order
	g.rng.Shuffle(len(rack), func(i, j int) {
		rack[i], rack[j] = rack[j], rack[i]
	})

	return rack, g.drawBonuses(mode, len(rack))
}

// drawLetters performs the raw weighted draw, capping rare letters
func (g *Generator) drawLetters(mode Mode) Rack {
	rack := make(Rack, 0, mode.RackSize)
	rare := 0
	for len(rack) < mode.RackSize {
		var c rune
		if mode.SafeMode || rare >= mode.MaxRareLetters {
			c = safePool.draw(g.rng)
		} else {
			c = fullPool.draw(g.rng)
		}
		if IsRareLetter(c) {
			rare++
		}
		rack = append(rack, c)
	}
	return rack
}

// repairVowels substitutes non-vowel slots until the minimum vowel count holds
func (g *Generator) repairVowels(rack Rack, mode Mode) {
	vowels := 0
	for _, c := range rack {
		if IsVowel(c) {
			vowels++
		}
	}
	for i := range rack {
		if vowels >= mode.MinVowels {
			return
		}
		if !IsVowel(rack[i]) {
			rack[i] = vowelPool.draw(g.rng)
			vowels++
		}
	}
}

// repairCommon swaps a surplus vowel for a common consonant if the rack
// would otherwise contain none
func (g *Generator) repairCommon(rack Rack, mode Mode) {
	vowels := 0
	for _, c := range rack {
		if IsCommonConsonant(c) {
			return
		}
		if IsVowel(c) {
			vowels++
		}
	}
	for i := range rack {
		if IsVowel(rack[i]) && vowels > mode.MinVowels {
			rack[i] = commonPool.draw(g.rng)
			return
		}
	}
	// All-rare rack with no surplus vowel; replace the first rare slot
	for i := range rack {
		if IsRareLetter(rack[i]) {
			rack[i] = commonPool.draw(g.rng)
			return
		}
	}
}

// drawBonuses picks 2-3 unique positions and weighted bonus types
func (g *Generator) drawBonuses(mode Mode, rackSize int) []BonusTile {
	count := mode.MinBonusTiles
	if spread := mode.MaxBonusTiles - mode.MinBonusTiles; spread > 0 {
		count += g.rng.Intn(spread + 1)
	}
	if count > rackSize {
		count = rackSize
	}

	positions := g.rng.Perm(rackSize)[:count]
	tiles := make([]BonusTile, 0, count)
	for _, pos := range positions {
		tiles = append(tiles, BonusTile{Position: pos, Type: g.drawBonusType()})
	}
	return tiles
}

func (g *Generator) drawBonusType() BonusType {
	total := 0
	for _, entry := range bonusTypeWeights {
		total += entry.weight
	}
	n := g.rng.Intn(total)
	for _, entry := range bonusTypeWeights {
		if n < entry.weight {
			return entry.bonus
		}
		n -= entry.weight
	}
	return BonusDoubleLetter
}

// ParseRack converts an uppercase letter string into a Rack
func ParseRack(s string) Rack {
	return Rack(strings.ToUpper(s))
}
