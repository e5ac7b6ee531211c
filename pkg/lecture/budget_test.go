package lecture

import (
	"testing"
)

func TestAllocateBudget(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		wpm      int
		want     WordBudget
	}{
		{
			name:     "30 minutes at default pace",
			duration: 30,
			wpm:      130,
			want: WordBudget{
				TotalTarget:   3900,
				MinAcceptable: 3705,
				MaxAcceptable: 4095,
				SectionQuotas: map[string]int{
					SectionIntroduction: 390,
					SectionMain:         2730,
					SectionPractical:    585,
					SectionSummary:      195,
				},
			},
		},
		{
			name:     "non-divisible total rounds down per section",
			duration: 7,
			wpm:      131,
			want: WordBudget{
				TotalTarget:   917,
				MinAcceptable: 871,
				MaxAcceptable: 963,
				SectionQuotas: map[string]int{
					SectionIntroduction: 91,
					SectionMain:         641,
					SectionPractical:    137,
					SectionSummary:      45,
				},
			},
		},
		{
			name:     "zero duration degrades to zero",
			duration: 0,
			wpm:      130,
			want: WordBudget{
				TotalTarget:   0,
				MinAcceptable: 0,
				MaxAcceptable: 0,
				SectionQuotas: map[string]int{
					SectionIntroduction: 0,
					SectionMain:         0,
					SectionPractical:    0,
					SectionSummary:      0,
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AllocateBudget(tt.duration, tt.wpm)
			if got.TotalTarget != tt.want.TotalTarget {
				t.Errorf("TotalTarget = %d, want %d", got.TotalTarget, tt.want.TotalTarget)
			}
			if got.MinAcceptable != tt.want.MinAcceptable {
				t.Errorf("MinAcceptable = %d, want %d", got.MinAcceptable, tt.want.MinAcceptable)
			}
			if got.MaxAcceptable != tt.want.MaxAcceptable {
				t.Errorf("MaxAcceptable = %d, want %d", got.MaxAcceptable, tt.want.MaxAcceptable)
			}
			for section, want := range tt.want.SectionQuotas {
				if got.SectionQuotas[section] != want {
					t.Errorf("SectionQuotas[%s] = %d, want %d", section, got.SectionQuotas[section], want)
				}
			}
		})
	}
}

func TestAllocateBudgetIdempotent(t *testing.T) {
	a := AllocateBudget(45, 130)
	b := AllocateBudget(45, 130)

	if a.TotalTarget != b.TotalTarget || a.MinAcceptable != b.MinAcceptable || a.MaxAcceptable != b.MaxAcceptable {
		t.Errorf("AllocateBudget not deterministic: %+v vs %+v", a, b)
	}
	for section, quota := range a.SectionQuotas {
		if b.SectionQuotas[section] != quota {
			t.Errorf("SectionQuotas[%s] differs between calls", section)
		}
	}
}

func TestTopicQuotas(t *testing.T) {
	tests := []struct {
		name      string
		topics    []Topic
		mainQuota int
		want      map[string]int
	}{
		{
			name: "proportional split",
			topics: []Topic{
				{Title: "A", DurationMinutes: 10},
				{Title: "B", DurationMinutes: 10},
				{Title: "C", DurationMinutes: 10},
			},
			mainQuota: 210,
			want:      map[string]int{"A": 70, "B": 70, "C": 70},
		},
		{
			name: "uneven durations",
			topics: []Topic{
				{Title: "A", DurationMinutes: 15},
				{Title: "B", DurationMinutes: 5},
			},
			mainQuota: 1000,
			want:      map[string]int{"A": 750, "B": 250},
		},
		{
			name: "zero durations split equally",
			topics: []Topic{
				{Title: "A", DurationMinutes: 0},
				{Title: "B", DurationMinutes: 0},
			},
			mainQuota: 500,
			want:      map[string]int{"A": 250, "B": 250},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Structure{Topics: tt.topics}
			got := TopicQuotas(s, tt.mainQuota)
			if len(got) != len(tt.want) {
				t.Fatalf("TopicQuotas() returned %d entries, want %d", len(got), len(tt.want))
			}
			for title, want := range tt.want {
				if got[title] != want {
					t.Errorf("TopicQuotas()[%s] = %d, want %d", title, got[title], want)
				}
			}
		})
	}
}

func TestTopicQuotasEmptyTopics(t *testing.T) {
	got := TopicQuotas(&Structure{}, 1000)
	if len(got) != 0 {
		t.Errorf("TopicQuotas() with no topics = %v, want empty", got)
	}
}
