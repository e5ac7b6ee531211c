package lecture

import (
	"reflect"
	"testing"
)

func testStructure() *Structure {
	return &Structure{
		Title:              "Test Lecture",
		LearningObjectives: []string{"obj1", "obj2"},
		Topics: []Topic{
			{Title: "A", KeyConcepts: []string{"alpha", "beta"}},
			{Title: "B", KeyConcepts: []string{"gamma"}},
			{Title: "C", KeyConcepts: []string{"beta", "delta"}},
		},
	}
}

func TestNewNarrativeContext(t *testing.T) {
	nc := NewNarrativeContext(testStructure(), "intro tail")

	if nc.CurrentSection != SectionIntroduction {
		t.Errorf("CurrentSection = %q, want %q", nc.CurrentSection, SectionIntroduction)
	}
	if want := []string{"A", "B", "C"}; !reflect.DeepEqual(nc.PendingTopics, want) {
		t.Errorf("PendingTopics = %v, want %v", nc.PendingTopics, want)
	}
	if len(nc.CoveredTopics) != 0 {
		t.Errorf("CoveredTopics = %v, want empty", nc.CoveredTopics)
	}
	if nc.CurrentNarrative != "intro tail" {
		t.Errorf("CurrentNarrative = %q, want %q", nc.CurrentNarrative, "intro tail")
	}
	if len(nc.KeyTerms()) != 0 {
		t.Errorf("KeyTerms() = %v, want empty", nc.KeyTerms())
	}
}

func TestCoverTopic(t *testing.T) {
	s := testStructure()
	nc := NewNarrativeContext(s, "")

	if err := nc.CoverTopic(s.Topics[0]); err != nil {
		t.Fatalf("CoverTopic(A) error = %v", err)
	}

	if want := []string{"A"}; !reflect.DeepEqual(nc.CoveredTopics, want) {
		t.Errorf("CoveredTopics = %v, want %v", nc.CoveredTopics, want)
	}
	if want := []string{"B", "C"}; !reflect.DeepEqual(nc.PendingTopics, want) {
		t.Errorf("PendingTopics = %v, want %v", nc.PendingTopics, want)
	}
	if want := []string{"alpha", "beta"}; !reflect.DeepEqual(nc.KeyTerms(), want) {
		t.Errorf("KeyTerms() = %v, want %v", nc.KeyTerms(), want)
	}
}

func TestCoverTopicAccumulatesTermsAsSet(t *testing.T) {
	s := testStructure()
	nc := NewNarrativeContext(s, "")

	for _, topic := range s.Topics {
		if err := nc.CoverTopic(topic); err != nil {
			t.Fatalf("CoverTopic(%s) error = %v", topic.Title, err)
		}
	}

	// "beta" appears in topics A and C but must be reported once, sorted.
	if want := []string{"alpha", "beta", "delta", "gamma"}; !reflect.DeepEqual(nc.KeyTerms(), want) {
		t.Errorf("KeyTerms() = %v, want %v", nc.KeyTerms(), want)
	}
	if len(nc.PendingTopics) != 0 {
		t.Errorf("PendingTopics = %v, want empty", nc.PendingTopics)
	}
	if want := []string{"A", "B", "C"}; !reflect.DeepEqual(nc.CoveredTopics, want) {
		t.Errorf("CoveredTopics = %v, want %v", nc.CoveredTopics, want)
	}
}

func TestCoverTopicNotPending(t *testing.T) {
	s := testStructure()
	nc := NewNarrativeContext(s, "")

	if err := nc.CoverTopic(s.Topics[1]); err != nil {
		t.Fatalf("CoverTopic(B) error = %v", err)
	}
	if err := nc.CoverTopic(s.Topics[1]); err == nil {
		t.Error("CoverTopic(B) twice succeeded, want error")
	}
	if err := nc.CoverTopic(Topic{Title: "unknown"}); err == nil {
		t.Error("CoverTopic(unknown) succeeded, want error")
	}
}

func TestAdvanceSection(t *testing.T) {
	nc := NewNarrativeContext(testStructure(), "intro")

	nc.AdvanceSection(SectionMain, "main tail")

	if nc.CurrentSection != SectionMain {
		t.Errorf("CurrentSection = %q, want %q", nc.CurrentSection, SectionMain)
	}
	if nc.CurrentNarrative != "main tail" {
		t.Errorf("CurrentNarrative = %q, want %q", nc.CurrentNarrative, "main tail")
	}
}

func TestTailAndHead(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		n        int
		wantTail string
		wantHead string
	}{
		{
			name:     "shorter than n",
			s:        "abc",
			n:        10,
			wantTail: "abc",
			wantHead: "abc",
		},
		{
			name:     "exact length",
			s:        "abc",
			n:        3,
			wantTail: "abc",
			wantHead: "abc",
		},
		{
			name:     "truncated",
			s:        "abcdef",
			n:        3,
			wantTail: "def",
			wantHead: "abc",
		},
		{
			name:     "multibyte runes not split",
			s:        "日本語テキスト",
			n:        3,
			wantTail: "キスト",
			wantHead: "日本語",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tail(tt.s, tt.n); got != tt.wantTail {
				t.Errorf("tail(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.wantTail)
			}
			if got := head(tt.s, tt.n); got != tt.wantHead {
				t.Errorf("head(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.wantHead)
			}
		})
	}
}
