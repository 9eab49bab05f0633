package domain

import "strings"

// letterValues holds the base point value per letter, classic tile scoring:
// common letters are worth 1, rare letters up to 10.
var letterValues = map[rune]int{
	'A': 1, 'B': 3, 'C': 3, 'D': 2, 'E': 1, 'F': 4, 'G': 2, 'H': 4,
	'I': 1, 'J': 8, 'K': 5, 'L': 1, 'M': 3, 'N': 1, 'O': 1, 'P': 3,
	'Q': 10, 'R': 1, 'S': 1, 'T': 1, 'U': 1, 'V': 4, 'W': 4, 'X': 8,
	'Y': 4, 'Z': 10,
}

// lengthBonuses is the flat bonus added after all multipliers for words of
// length >= 6. Words longer than the last entry get the last entry.
var lengthBonuses = map[int]int{
	6:  5,
	7:  10,
	8:  15,
	9:  20,
	10: 25,
}

const maxLengthBonusAt = 10

// LetterValue returns the base point value of a letter, 0 if unknown
func LetterValue(c rune) int {
	return letterValues[c]
}

// LengthBonus returns the flat bonus for a word of the given length
func LengthBonus(length int) int {
	if length < 6 {
		return 0
	}
	if length > maxLengthBonusAt {
		length = maxLengthBonusAt
	}
	return lengthBonuses[length]
}

// Scorer computes deterministic point values for words against a rack and
// its bonus tiles. It is stateless and safe for concurrent use.
type Scorer struct{}

// NewScorer creates a scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate scores a word against the rack and active bonus tiles.
//
// Each character is mapped to the first unused rack index holding that
// letter, which fixes a canonical assignment even when the rack has
// duplicates; that assignment decides which bonus tiles apply. Letter
// multipliers apply in place, word multipliers compound over the summed
// total, and the flat length bonus is added last.
//
// A word that cannot be mapped onto the rack scores 0 rather than failing,
// since bots score unvalidated candidates speculatively.
func (s *Scorer) Calculate(word string, rack Rack, bonuses []BonusTile) int {
	word = strings.ToUpper(strings.TrimSpace(word))
	if word == "" {
		return 0
	}

	positions, ok := assignPositions(word, rack)
	if !ok {
		return 0
	}

	byPosition := make(map[int]BonusType, len(bonuses))
	for _, tile := range bonuses {
		byPosition[tile.Position] = tile.Type
	}

	sum := 0
	wordMultiplier := 1
	for i, c := range word {
		value := letterValues[c]
		switch byPosition[positions[i]] {
		case BonusDoubleLetter:
			value *= 2
		case BonusTripleLetter:
			value *= 3
		case BonusDoubleWord:
			wordMultiplier *= 2
		}
		sum += value
	}

	return sum*wordMultiplier + LengthBonus(len(word))
}

// assignPositions maps each character of the word to a distinct rack index,
// preferring the first unused matching index
func assignPositions(word string, rack Rack) ([]int, bool) {
	positions := make([]int, 0, len(word))
	used := make([]bool, len(rack))
	for _, c := range word {
		found := -1
		for i, r := range rack {
			if !used[i] && r == c {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, false
		}
		used[found] = true
		positions = append(positions, found)
	}
	return positions, true
}
