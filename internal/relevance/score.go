package relevance

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Scorer computes keyword-overlap relevance of text to a label.
type Scorer struct {
	table *Table
}

// NewScorer returns a scorer over the persona keyword table t.
func NewScorer(t *Table) *Scorer {
	return &Scorer{table: t}
}

// Table returns the vocabulary the scorer uses.
func (s *Scorer) Table() *Table {
	return s.table
}

// Score returns the fraction of the label's keywords found in text, boosted
// by 1.2 for texts longer than 100 characters and capped at 1. Unknown
// labels score 0.
func (s *Scorer) Score(text, label string) float64 {
	if text == "" || label == "" {
		return 0
	}
	keywords := s.table.Keywords(label)
	if len(keywords) == 0 {
		return 0
	}

	lower := strings.ToLower(text)
	matches := 0
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			matches++
		}
	}

	rel := float64(matches) / float64(len(keywords))
	if utf8.RuneCountInString(text) > 100 {
		rel *= 1.2
	}
	if rel > 1 {
		rel = 1
	}
	return rel
}

// MatchedKeywords lists the label's keywords present in text, in table order.
func (s *Scorer) MatchedKeywords(text, label string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, k := range s.table.Keywords(label) {
		if strings.Contains(lower, k) {
			out = append(out, k)
		}
	}
	return out
}

var wordRe = regexp.MustCompile(`\b[a-zA-Z]+\b`)

var stopWords = map[string]bool{}

func init() {
	for _, w := range strings.Fields(`a an and are as at be by for from has he in is it its of on that the
		to was will with this but they have had what said each which she do how their if up out many
		then them these so some her would make like into him time two more go no way could my than
		first been call who now find long down day did get come made may part`) {
		stopWords[w] = true
	}
}

// Tokenize lower-cases text and returns its alphabetic words minus stop words.
func Tokenize(text string) []string {
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	out := words[:0]
	for _, w := range words {
		if !stopWords[w] {
			out = append(out, w)
		}
	}
	return out
}
