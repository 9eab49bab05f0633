package dict

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/golang-lru/simplelru"

	"wordclash/internal/domain"
)

// candidateCacheSize bounds the LRU of rack-signature candidate lookups
const candidateCacheSize = 1024

//go:embed words_default.txt
var embeddedWords string

// Index is the dictionary index: a membership set, length-bucketed lists
// and a signature-keyed candidate map. It is built once at startup and
// read-only afterward, so it is shared across all matches without locking;
// only the candidate cache is internally synchronized.
type Index struct {
	words       map[string]struct{}
	blocked     map[string]struct{}
	byLength    map[int][]string
	bySignature map[string][]string

	candidates candidateCache
}

// Load builds the index. An unreadable word file is fatal; a missing or
// unreadable blocklist degrades to an empty block set with a warning,
// since profanity filtering is a safety feature rather than a core
// dependency. Empty paths fall back to the embedded word list and an
// empty blocklist.
func Load(wordPath, blockPath string, logger *slog.Logger) (*Index, error) {
	var words []string
	if wordPath == "" {
		words = normalizeLines(embeddedWords)
	} else {
		var err error
		words, err = readWordFile(wordPath)
		if err != nil {
			return nil, fmt.Errorf("load word list: %w", err)
		}
	}
	if len(words) == 0 {
		return nil, errors.New("word list is empty")
	}

	idx := &Index{
		words:       make(map[string]struct{}, len(words)),
		blocked:     make(map[string]struct{}),
		byLength:    make(map[int][]string),
		bySignature: make(map[string][]string),
	}
	idx.candidates.init(candidateCacheSize)

	for _, w := range words {
		if _, dup := idx.words[w]; dup {
			continue
		}
		idx.words[w] = struct{}{}
		idx.byLength[len(w)] = append(idx.byLength[len(w)], w)
		sig := Signature(w)
		idx.bySignature[sig] = append(idx.bySignature[sig], w)
	}

	if blockPath != "" {
		blockedWords, err := readWordFile(blockPath)
		if err != nil {
			logger.Warn("blocklist unavailable, continuing without profanity filtering",
				"path", blockPath, "error", err)
		} else {
			for _, w := range blockedWords {
				idx.blocked[w] = struct{}{}
			}
		}
	}

	logger.Info("dictionary loaded",
		"words", len(idx.words),
		"signatures", len(idx.bySignature),
		"blocked", len(idx.blocked),
	)

	return idx, nil
}

// Contains reports whether the word is in the dictionary
func (idx *Index) Contains(word string) bool {
	_, ok := idx.words[strings.ToUpper(word)]
	return ok
}

// Blocked reports whether the word is on the blocklist
func (idx *Index) Blocked(word string) bool {
	_, ok := idx.blocked[strings.ToUpper(word)]
	return ok
}

// WordCount returns the number of indexed words
func (idx *Index) WordCount() int {
	return len(idx.words)
}

// WordsOfLength returns the indexed words of exactly the given length
func (idx *Index) WordsOfLength(n int) []string {
	return idx.byLength[n]
}

// FindCandidates returns every playable dictionary word buildable from
// the rack. Blocklisted words are never candidates.
//
// It enumerates the non-empty letter subsets of the rack as bitmasks over
// the sorted rack, so each subset's signature comes out canonicalized for
// free. With racks capped at 10 letters that is at most 1023 subsets,
// which keeps bot word discovery far below a dictionary scan. Subsets
// shorter than the minimum word length are skipped, repeated signatures
// within one call are deduplicated, and the result is cached by the
// rack's own signature.
func (idx *Index) FindCandidates(rack domain.Rack) []string {
	sorted := []rune(strings.ToUpper(rack.String()))
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	key := string(sorted)

	return idx.candidates.lookup(key, func(key string) []string {
		return idx.scanSubsets([]rune(key))
	})
}

func (idx *Index) scanSubsets(sorted []rune) []string {
	n := len(sorted)
	seen := make(map[string]struct{})
	var result []string

	for mask := 1; mask < 1<<n; mask++ {
		if popcount(mask) < domain.MinWordLength {
			continue
		}
		subset := make([]rune, 0, n)
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				subset = append(subset, sorted[i])
			}
		}
		sig := string(subset)
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}
		for _, w := range idx.bySignature[sig] {
			if _, bad := idx.blocked[w]; bad {
				continue
			}
			result = append(result, w)
		}
	}

	sort.Strings(result)
	return result
}

// Signature returns the sorted-letter canonical form of a word. Two words
// are buildable from the same rack subset iff their signatures match.
func Signature(word string) string {
	letters := []rune(strings.ToUpper(word))
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	return string(letters)
}

func popcount(mask int) int {
	count := 0
	for mask != 0 {
		mask &= mask - 1
		count++
	}
	return count
}

// readWordFile loads one word per line, uppercased and trimmed, keeping
// alphabetic words of at least the minimum word length
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if w, ok := normalizeWord(sc.Text()); ok {
			out = append(out, w)
		}
	}
	return out, sc.Err()
}

func normalizeLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if w, ok := normalizeWord(line); ok {
			out = append(out, w)
		}
	}
	return out
}

func normalizeWord(line string) (string, bool) {
	w := strings.ToUpper(strings.TrimSpace(line))
	if len(w) < domain.MinWordLength || !isAlpha(w) {
		return "", false
	}
	return w, true
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// candidateCache is a mutex-guarded LRU of candidate lookups keyed by
// rack signature
type candidateCache struct {
	mux sync.Mutex
	lru *simplelru.LRU
}

func (cc *candidateCache) init(size int) {
	cc.lru, _ = simplelru.NewLRU(size, nil)
}

func (cc *candidateCache) lookup(key string, fetchFunc func(string) []string) []string {
	cc.mux.Lock()
	defer cc.mux.Unlock()
	if cached, ok := cc.lru.Get(key); ok {
		return cached.([]string)
	}
	result := fetchFunc(key)
	cc.lru.Add(key, result)
	return result
}
