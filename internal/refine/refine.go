// Package refine cleans ranked section text for presentation.
package refine

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxLength is the character budget for refined text.
const MaxLength = 2000

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	trailingNumRe = regexp.MustCompile(`\b\d+\s*$`)
	sentenceEndRe = regexp.MustCompile(`[.!?]+`)
)

// Text collapses whitespace, strips a trailing page number and, when the
// result is longer than MaxLength, keeps only the leading whole sentences
// that fit. The result may be empty.
func Text(text string) string {
	text = whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	text = strings.TrimSpace(trailingNumRe.ReplaceAllString(text, ""))
	if utf8.RuneCountInString(text) <= MaxLength {
		return text
	}
	return leadingSentences(text, MaxLength)
}

// leadingSentences greedily packs sentences, each terminated with ".", until
// the next one would push the total past limit.
func leadingSentences(text string, limit int) string {
	var b strings.Builder
	n := 0
	for _, s := range sentenceEndRe.Split(text, -1) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		add := utf8.RuneCountInString(s) + 1
		if n > 0 {
			add++
		}
		if n+add > limit {
			break
		}
		if n > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
		b.WriteByte('.')
		n += add
	}
	return b.String()
}
