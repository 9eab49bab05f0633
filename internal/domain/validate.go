package domain

import "strings"

// MinWordLength is the shortest word that can score
const MinWordLength = 3

// RejectReason explains why a submission was ruled illegal
type RejectReason string

const (
	ReasonEmptyWord   RejectReason = "empty word"
	ReasonTooShort    RejectReason = "word too short"
	ReasonNotOnRack   RejectReason = "word cannot be built from the rack"
	ReasonBlocked     RejectReason = "word is not allowed"
	ReasonNotAWord    RejectReason = "not in the dictionary"
	ReasonTimeExpired RejectReason = "time expired"
)

// Lexicon is the read-only word lookup the validator depends on.
// The dictionary index satisfies it.
type Lexicon interface {
	Contains(word string) bool
	Blocked(word string) bool
}

// Verdict is the outcome of validating one submission
type Verdict struct {
	Legal  bool
	Reason RejectReason
}

// Validator decides whether a submitted word is legal for a given rack
type Validator struct {
	lex Lexicon
}

// NewValidator creates a validator over the given lexicon
func NewValidator(lex Lexicon) *Validator {
	return &Validator{lex: lex}
}

// Validate runs the legality checks in order, stopping at the first failure.
// Buildability is checked before any dictionary lookup so that words the
// rack cannot physically produce never hit the lexicon.
func (v *Validator) Validate(word string, rack Rack) Verdict {
	word = strings.ToUpper(strings.TrimSpace(word))

	if word == "" {
		return Verdict{Reason: ReasonEmptyWord}
	}
	if len(word) < MinWordLength {
		return Verdict{Reason: ReasonTooShort}
	}
	if !Buildable(word, rack) {
		return Verdict{Reason: ReasonNotOnRack}
	}
	if v.lex.Blocked(word) {
		return Verdict{Reason: ReasonBlocked}
	}
	if !v.lex.Contains(word) {
		return Verdict{Reason: ReasonNotAWord}
	}
	return Verdict{Legal: true}
}

// Buildable reports whether every letter of the word can be matched
// one-to-one against an available rack letter. Duplicate letters are
// accounted for with a decrementing multiset.
func Buildable(word string, rack Rack) bool {
	counts := rack.Counts()
	for _, c := range strings.ToUpper(word) {
		if counts[c] == 0 {
			return false
		}
		counts[c]--
	}
	return true
}
