package heading

import (
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docrank/internal/span"
)

// Pattern identifies which structural regex a line matched.
type Pattern int

const (
	PatternNone Pattern = iota
	PatternAllCaps
	PatternNumbered
	PatternTitleCase
	PatternChapter
	PatternSection
)

var structuralPatterns = []struct {
	kind Pattern
	re   *regexp.Regexp
}{
	{PatternAllCaps, regexp.MustCompile(`^[A-Z][A-Z\s]{2,}$`)},
	{PatternNumbered, regexp.MustCompile(`^\d+\.\s+[A-Z]`)},
	{PatternTitleCase, regexp.MustCompile(`^[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*$`)},
	{PatternChapter, regexp.MustCompile(`^Chapter\s+\d+`)},
	{PatternSection, regexp.MustCompile(`^Section\s+\d+`)},
}

// MatchPattern returns the first structural pattern text matches.
func MatchPattern(text string) Pattern {
	for _, p := range structuralPatterns {
		if p.re.MatchString(text) {
			return p.kind
		}
	}
	return PatternNone
}

// level returns the level a pattern forces, or "" when it only marks the
// span as heading-like.
func (p Pattern) level() Level {
	switch p {
	case PatternAllCaps:
		return H1
	case PatternNumbered:
		return H2
	}
	return ""
}

// typographyLevel reports whether size or weight alone mark s as a heading,
// and at which level.
func typographyLevel(s span.TextSpan) (Level, bool) {
	if s.FontSize <= 12 && !s.IsBold {
		return "", false
	}
	switch {
	case s.FontSize > 16:
		return H1, true
	case s.FontSize > 14:
		return H2, true
	}
	return H3, true
}

// HeadingLike is the cheap trigger shared by the classifier and the section
// segmenter: heading typography or a structural pattern match.
func HeadingLike(s span.TextSpan) bool {
	if _, ok := typographyLevel(s); ok {
		return true
	}
	return MatchPattern(s.Text) != PatternNone
}

// IsNumeric reports whether text is non-empty and made only of digits.
func IsNumeric(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Len is the length of text in characters.
func Len(text string) int {
	return utf8.RuneCountInString(text)
}
