package search

import (
	"strings"

	"github.com/xrash/smetrics"

	"devdash/internal/core/domain"
)

const minFuzzyWordLength = 3

const (
	scoreText = iota
	scoreOther
	scoreFuzzy
)

// Distance is the Levenshtein distance between a and b.
func Distance(a, b string) int {
	return smetrics.WagnerFischer(a, b, 1, 1, 1)
}

// tolerance is the number of edits a query word of length n may be off by.
func tolerance(n int) int {
	if t := n / 4; t > 1 {
		return t
	}
	return 1
}

// Matcher holds a normalized query so it can be applied to many tasks.
type Matcher struct {
	query string
	words []string
}

func NewMatcher(query string) *Matcher {
	normalized := Normalize(query)

	return &Matcher{
		query: normalized,
		words: strings.Fields(normalized),
	}
}

func (m *Matcher) Empty() bool {
	return m.query == ""
}

// Score reports whether task matches and how well; lower is better.
// Substring hits on the text rank first, then hits on the description or
// tags, then typo-tolerant word matches ranked by total edit distance.
func (m *Matcher) Score(task domain.Task) (int, bool) {
	if m.Empty() {
		return 0, true
	}

	text := Normalize(task.Text)

	if strings.Contains(text, m.query) {
		return scoreText, true
	}

	if strings.Contains(Normalize(task.Description), m.query) {
		return scoreOther, true
	}

	for _, tag := range task.Tags {
		if strings.Contains(Normalize(tag), m.query) {
			return scoreOther, true
		}
	}

	candidates := strings.Fields(text)
	if len(candidates) == 0 {
		return 0, false
	}

	total := 0
	for _, word := range m.words {
		if len(word) < minFuzzyWordLength {
			if !containsWord(candidates, word) {
				return 0, false
			}
			continue
		}

		best := -1
		for _, candidate := range candidates {
			d := Distance(word, candidate)
			if best < 0 || d < best {
				best = d
			}
		}

		if best > tolerance(len(word)) {
			return 0, false
		}

		total += best
	}

	return scoreFuzzy + total, true
}

func containsWord(words []string, word string) bool {
	for _, w := range words {
		if strings.HasPrefix(w, word) {
			return true
		}
	}
	return false
}

// Match is a convenience wrapper for one-off checks.
func Match(query string, task domain.Task) bool {
	_, ok := NewMatcher(query).Score(task)
	return ok
}
