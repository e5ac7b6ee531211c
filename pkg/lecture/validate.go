package lecture

import (
	"fmt"
	"math"
	"strings"

	"github.com/eternnoir/gollmlecture/pkg/logger"
)

// largeDeviationThreshold is the word-count deviation above which the
// result is logged at error severity.
const largeDeviationThreshold = 0.20

// ValidateWordCount checks the realized word count against the budget and
// logs the outcome. It is a pure observer: content is accepted regardless,
// and no error is ever returned or raised.
func ValidateWordCount(totalWords, targetWords, minWords, maxWords int) {
	log := logger.WithComponent("validator")
	if targetWords <= 0 {
		return
	}

	deviation := math.Abs(float64(totalWords-targetWords)) / float64(targetWords)

	switch {
	case deviation > largeDeviationThreshold:
		log.Error().
			Int("words", totalWords).
			Int("min", minWords).
			Int("max", maxWords).
			Str("deviation", fmt.Sprintf("%.2f%%", deviation*100)).
			Msg("Word count significantly outside target range")
	case totalWords < minWords || totalWords > maxWords:
		log.Warn().
			Int("words", totalWords).
			Int("min", minWords).
			Int("max", maxWords).
			Str("deviation", fmt.Sprintf("%.2f%%", deviation*100)).
			Msg("Word count slightly outside target range")
	}
}

// CoherenceValidator scans assembled lecture text against the structure
// and reports coverage gaps. All checks are advisory; gaps are logged as
// warnings and never fail a transformation.
type CoherenceValidator struct{}

// Validate runs all coherence checks and returns the warnings it logged:
// one per learning objective with no matching token in the text, one per
// key term used fewer than twice, and one per topic with none of its key
// concepts present. Checks are independent and cumulative.
func (CoherenceValidator) Validate(fullText string, s *Structure) []string {
	log := logger.WithComponent("validator")
	lower := strings.ToLower(fullText)

	var warnings []string
	warn := func(format string, args ...interface{}) {
		msg := fmt.Sprintf(format, args...)
		warnings = append(warnings, msg)
		log.Warn().Msg(msg)
	}

	for _, objective := range s.LearningObjectives {
		found := false
		for _, token := range strings.Fields(objective) {
			if strings.Contains(lower, strings.ToLower(token)) {
				found = true
				break
			}
		}
		if !found {
			warn("Learning objective not well covered: %s", objective)
		}
	}

	for _, term := range s.KeyTerms {
		if term == "" {
			continue
		}
		if strings.Count(lower, strings.ToLower(term)) < 2 {
			warn("Key term underutilized: %s", term)
		}
	}

	for _, topic := range s.Topics {
		found := false
		for _, concept := range topic.KeyConcepts {
			if concept != "" && strings.Contains(lower, strings.ToLower(concept)) {
				found = true
				break
			}
		}
		if !found {
			warn("Topic concepts not well covered: %s", topic.Title)
		}
	}

	return warnings
}
