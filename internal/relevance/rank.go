package relevance

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docrank/internal/section"
)

// Weights of the importance components.
const (
	personaWeight = 0.4
	taskWeight    = 0.3
	lengthWeight  = 0.2
	headingWeight = 0.1
)

// RankedSection is a Section enriched with its scores.
type RankedSection struct {
	section.Section
	ImportanceScore  float64 `json:"importance_score"`
	PersonaRelevance float64 `json:"persona_relevance"`
	TaskRelevance    float64 `json:"task_relevance"`
}

// Rank scores every non-empty section against persona and task and returns
// them by descending importance. Ties keep their input order.
func (s *Scorer) Rank(sections []section.Section, persona, task string) []RankedSection {
	ranked := make([]RankedSection, 0, len(sections))
	for _, sec := range sections {
		if strings.TrimSpace(sec.Text) == "" {
			continue
		}
		pr := s.Score(sec.Text, persona)
		tr := s.Score(sec.Text, task)
		ranked = append(ranked, RankedSection{
			Section:          sec,
			ImportanceScore:  importance(sec, pr, tr),
			PersonaRelevance: pr,
			TaskRelevance:    tr,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ImportanceScore > ranked[j].ImportanceScore
	})
	return ranked
}

func importance(sec section.Section, persona, task float64) float64 {
	length := math.Min(float64(utf8.RuneCountInString(sec.Text))/1000, 1)

	headingFactor := 1.0
	if sec.IsHeading {
		headingFactor = 1.5
	}

	fontFactor := 1.0
	if mean, ok := sec.MeanFontSize(); ok {
		fontFactor = math.Min(mean/12, 2)
	}

	return (persona*personaWeight + task*taskWeight + length*lengthWeight + headingFactor*headingWeight) * fontFactor
}
