package lecture

// Structure is the planned outline of a lecture: title, objectives,
// topics, practical application ideas, and key terms to track.
type Structure struct {
	Title                 string   `json:"title"`
	LearningObjectives    []string `json:"learning_objectives"`
	Topics                []Topic  `json:"topics"`
	PracticalApplications []string `json:"practical_applications"`
	KeyTerms              []string `json:"key_terms"`
}

// Topic is one thematic unit within the main content, with an allotted
// duration and the key concepts it must cover.
type Topic struct {
	Title           string   `json:"title"`
	KeyConcepts     []string `json:"key_concepts"`
	Subtopics       []string `json:"subtopics"`
	DurationMinutes int      `json:"duration_minutes"`
	ObjectiveLinks  []int    `json:"objective_links"`
}

// TopicTitles returns the topic titles in structure order.
func (s *Structure) TopicTitles() []string {
	titles := make([]string, 0, len(s.Topics))
	for _, t := range s.Topics {
		titles = append(titles, t.Title)
	}
	return titles
}

// TotalTopicDuration returns the sum of all topic durations in minutes.
func (s *Structure) TotalTopicDuration() int {
	total := 0
	for _, t := range s.Topics {
		total += t.DurationMinutes
	}
	return total
}
