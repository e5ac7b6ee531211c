package lecture

// Section names used for quota lookup and context labels.
const (
	SectionIntroduction = "introduction"
	SectionMain         = "main"
	SectionPractical    = "practical"
	SectionSummary      = "summary"
)

// DefaultWordsPerMinute is the speaking pace used to convert a target
// duration into a word budget.
const DefaultWordsPerMinute = 130

// WordBudget is the target and acceptable range of word counts for the
// whole lecture and its sections.
type WordBudget struct {
	TotalTarget   int
	MinAcceptable int
	MaxAcceptable int
	SectionQuotas map[string]int
}

// AllocateBudget converts a target duration into a total word target and
// per-section quotas: introduction 10%, main 70%, practical 15%, summary 5%,
// each independently rounded down. The acceptable range is
// [floor(0.95*total), ceil(1.05*total)]. Pure function; a non-positive
// duration simply degrades the quotas toward zero.
func AllocateBudget(targetDurationMinutes, wordsPerMinute int) WordBudget {
	total := wordsPerMinute * targetDurationMinutes

	return WordBudget{
		TotalTarget:   total,
		MinAcceptable: total * 95 / 100,
		MaxAcceptable: (total*105 + 99) / 100,
		SectionQuotas: map[string]int{
			SectionIntroduction: total * 10 / 100,
			SectionMain:         total * 70 / 100,
			SectionPractical:    total * 15 / 100,
			SectionSummary:      total * 5 / 100,
		},
	}
}

// TopicQuotas splits the main-section quota across topics proportionally to
// their durations. When the total topic duration is zero (a degenerate
// planner fallback can produce zero-minute topics) the quota is split
// equally instead.
func TopicQuotas(s *Structure, mainQuota int) map[string]int {
	quotas := make(map[string]int, len(s.Topics))
	if len(s.Topics) == 0 {
		return quotas
	}

	totalDuration := s.TotalTopicDuration()
	if totalDuration <= 0 {
		equal := mainQuota / len(s.Topics)
		for _, t := range s.Topics {
			quotas[t.Title] = equal
		}
		return quotas
	}

	for _, t := range s.Topics {
		quotas[t.Title] = mainQuota * t.DurationMinutes / totalDuration
	}
	return quotas
}
