package lecture

import (
	"fmt"
	"sort"
)

// Narrative tail lengths carried between section generations, in characters.
const (
	narrativeTailLen = 1000
	summaryTailLen   = 500
)

// NarrativeContext is the rolling state threaded through section
// generations to keep later sections coherent with earlier ones. It is
// exclusively owned by one transformation; never share an instance across
// concurrent transformations.
type NarrativeContext struct {
	CurrentSection     string
	CoveredTopics      []string
	PendingTopics      []string
	CurrentNarrative   string
	LearningObjectives []string

	keyTerms map[string]struct{}
}

// NewNarrativeContext seeds a context from the structure and the trailing
// excerpt of the introduction. Pending topics start as all topic titles in
// structure order.
func NewNarrativeContext(s *Structure, introTail string) *NarrativeContext {
	return &NarrativeContext{
		CurrentSection:     SectionIntroduction,
		PendingTopics:      s.TopicTitles(),
		CurrentNarrative:   introTail,
		LearningObjectives: append([]string(nil), s.LearningObjectives...),
		keyTerms:           make(map[string]struct{}),
	}
}

// CoverTopic marks a topic as covered: appends it to the covered list,
// removes it from pending, and accumulates its key concepts. Returns an
// error if the topic is not pending; under normal flow that cannot happen
// since the pending list is seeded from the same structure.
func (nc *NarrativeContext) CoverTopic(t Topic) error {
	idx := -1
	for i, title := range nc.PendingTopics {
		if title == t.Title {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("topic %q is not pending", t.Title)
	}

	nc.PendingTopics = append(nc.PendingTopics[:idx], nc.PendingTopics[idx+1:]...)
	nc.CoveredTopics = append(nc.CoveredTopics, t.Title)
	for _, concept := range t.KeyConcepts {
		nc.keyTerms[concept] = struct{}{}
	}
	return nil
}

// AdvanceSection records that a section has completed and updates the
// trailing narrative excerpt used as the continuity cue.
func (nc *NarrativeContext) AdvanceSection(section, narrativeTail string) {
	nc.CurrentSection = section
	nc.CurrentNarrative = narrativeTail
}

// KeyTerms returns the accumulated key terms in sorted order.
func (nc *NarrativeContext) KeyTerms() []string {
	terms := make([]string, 0, len(nc.keyTerms))
	for term := range nc.keyTerms {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// tail returns the last n runes of s without splitting UTF-8 sequences.
func tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

// head returns the first n runes of s without splitting UTF-8 sequences.
func head(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
