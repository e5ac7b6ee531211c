package lecture

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/eternnoir/gollmlecture/pkg/logger"
	"github.com/eternnoir/gollmlecture/pkg/providers"
)

const (
	// Input excerpt lengths fed to the planner prompts, in characters.
	structuredExcerptLen = 2000
	lineExcerptLen       = 1000

	// Output token budgets for the planner calls.
	structuredPlanTokens = 2000
	linePlanTokens       = 1000
)

const plannerSystemPrompt = "You are an expert educator. Output ONLY valid JSON, no other text."

// StructurePlanner produces a lecture Structure from source text using the
// completion provider, with a tiered fallback chain: structured JSON output,
// JSON extraction from prose, line-oriented output, and finally a hardcoded
// minimal structure. Plan never fails outward.
type StructurePlanner struct {
	provider    providers.CompletionProvider
	temperature float32
}

// NewStructurePlanner creates a planner using the given provider.
func NewStructurePlanner(provider providers.CompletionProvider, temperature float32) *StructurePlanner {
	return &StructurePlanner{provider: provider, temperature: temperature}
}

// Plan analyzes the cleaned source text and returns a lecture structure
// for the target duration. Always returns a usable structure with at
// least one topic, regardless of provider or parsing failures.
func (p *StructurePlanner) Plan(ctx context.Context, text string, targetDurationMinutes int) *Structure {
	log := logger.WithComponent("planner")
	log.Info().Int("target_minutes", targetDurationMinutes).Msg("Generating lecture structure")

	raw, err := p.provider.Complete(ctx, &providers.CompletionRequest{
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: plannerSystemPrompt},
			{Role: providers.RoleUser, Content: p.structuredPrompt(text, targetDurationMinutes)},
		},
		Temperature:     p.temperature,
		MaxOutputTokens: structuredPlanTokens,
	})
	if err != nil {
		log.Error().Err(err).Msg("Structured planning call failed")
		return p.linePlan(ctx, text, targetDurationMinutes)
	}

	if s, err := parseStructure(raw); err == nil {
		log.Info().Strs("topics", s.TopicTitles()).Msg("Structure parsed successfully")
		return s
	} else {
		log.Warn().Err(err).Msg("Failed to parse structure directly")
	}

	// The model may have wrapped the JSON in prose; try the outermost
	// brace-delimited span.
	if span, ok := extractJSON(raw); ok {
		if s, err := parseStructure(span); err == nil {
			log.Info().Strs("topics", s.TopicTitles()).Msg("Structure extracted and parsed")
			return s
		}
		log.Warn().Msg("Failed to parse extracted JSON")
	}

	log.Warn().Msg("Falling back to line-oriented structure")
	return p.linePlan(ctx, text, targetDurationMinutes)
}

// structuredPrompt asks the provider for a JSON object matching the
// Structure schema, using the leading excerpt of the input as context.
func (p *StructurePlanner) structuredPrompt(text string, targetDurationMinutes int) string {
	var b strings.Builder
	b.WriteString("You are an expert educator creating a detailed lecture outline.\n")
	b.WriteString("Analyze this transcript and create a structured JSON output with the following:\n\n")
	b.WriteString("1. Title of the lecture\n")
	b.WriteString("2. 3-5 clear learning objectives\n")
	b.WriteString("3. 3-4 main topics, each with:\n")
	b.WriteString("   - Title\n")
	b.WriteString("   - Key concepts\n")
	b.WriteString("   - Subtopics\n")
	b.WriteString("   - Time allocation (in minutes)\n")
	b.WriteString("   - Connection to learning objectives\n")
	b.WriteString("4. Practical application ideas\n")
	b.WriteString("5. Key terms to track\n\n")
	b.WriteString("IMPORTANT: Response MUST be valid JSON. Format exactly like this, with no additional text:\n")
	b.WriteString(`{
    "title": "string",
    "learning_objectives": ["string"],
    "topics": [
        {
            "title": "string",
            "key_concepts": ["string"],
            "subtopics": ["string"],
            "duration_minutes": number,
            "objective_links": [number]
        }
    ],
    "practical_applications": ["string"],
    "key_terms": ["string"]
}`)
	fmt.Fprintf(&b, "\n\nTarget duration: %d minutes\n\nTranscript excerpt:\n%s",
		targetDurationMinutes, head(text, structuredExcerptLen))
	return b.String()
}

// linePlan issues a simpler line-oriented prompt and assembles a structure
// from the response lines. If even this call fails, a hardcoded minimal
// structure is returned.
func (p *StructurePlanner) linePlan(ctx context.Context, text string, targetDurationMinutes int) *Structure {
	log := logger.WithComponent("planner")
	log.Info().Msg("Generating fallback structure")

	prompt := fmt.Sprintf(`Analyze this text and provide:
1. A title (one line)
2. Three learning objectives (one per line)
3. Three main topics (one per line)
4. Three key terms (one per line)

Text: %s`, head(text, lineExcerptLen))

	raw, err := p.provider.Complete(ctx, &providers.CompletionRequest{
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: "You are an expert educator. Provide concise, line-by-line responses."},
			{Role: providers.RoleUser, Content: prompt},
		},
		Temperature:     p.temperature,
		MaxOutputTokens: linePlanTokens,
	})
	if err != nil {
		log.Error().Err(err).Msg("Fallback structure call failed")
		return minimalStructure(targetDurationMinutes)
	}

	s := structureFromLines(raw, targetDurationMinutes)
	if len(s.Topics) == 0 {
		log.Warn().Msg("Fallback response contained no topic lines")
		return minimalStructure(targetDurationMinutes)
	}

	log.Info().Strs("topics", s.TopicTitles()).Msg("Fallback structure assembled")
	return s
}

// structureFromLines builds a structure from a line-oriented response:
// line 0 title, lines 1-3 objectives, 4-6 topics, 7-9 key terms. Missing
// lines produce shorter lists.
func structureFromLines(raw string, targetDurationMinutes int) *Structure {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	title := "Lecture"
	if len(lines) > 0 {
		title = lines[0]
	}

	objectives := sliceRange(lines, 1, 4)
	topicTitles := sliceRange(lines, 4, 7)
	terms := sliceRange(lines, 7, 10)

	s := &Structure{
		Title:              title,
		LearningObjectives: objectives,
		PracticalApplications: []string{
			"Real-world application example",
			"Interactive exercise",
			"Case study",
		},
		KeyTerms: terms,
	}

	if len(topicTitles) == 0 {
		return s
	}

	mainTime := targetDurationMinutes * 7 / 10
	topicMinutes := mainTime / len(topicTitles)
	for _, t := range topicTitles {
		s.Topics = append(s.Topics, Topic{
			Title:           t,
			KeyConcepts:     []string{t},
			Subtopics:       []string{"Overview", "Details", "Examples"},
			DurationMinutes: topicMinutes,
			ObjectiveLinks:  []int{1},
		})
	}
	return s
}

// minimalStructure is the last-resort structure when every planner tier fails.
func minimalStructure(targetDurationMinutes int) *Structure {
	return &Structure{
		Title:              "Lecture Overview",
		LearningObjectives: []string{"Understand key concepts", "Apply knowledge", "Analyze examples"},
		Topics: []Topic{
			{
				Title:           "Main Topic",
				KeyConcepts:     []string{"Core concept"},
				Subtopics:       []string{"Overview"},
				DurationMinutes: targetDurationMinutes / 2,
				ObjectiveLinks:  []int{1},
			},
		},
		PracticalApplications: []string{"Practical example"},
		KeyTerms:              []string{"Key term"},
	}
}

// parseStructure decodes raw JSON into a Structure and checks that it is
// structurally usable.
func parseStructure(raw string) (*Structure, error) {
	var s Structure
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &s); err != nil {
		return nil, fmt.Errorf("invalid structure JSON: %w", err)
	}
	if len(s.Topics) == 0 {
		return nil, fmt.Errorf("structure has no topics")
	}
	return &s, nil
}

// extractJSON returns the outermost brace-delimited span of raw.
func extractJSON(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// sliceRange returns lines[start:end] clamped to the slice bounds.
func sliceRange(lines []string, start, end int) []string {
	if start >= len(lines) {
		return nil
	}
	if end > len(lines) {
		end = len(lines)
	}
	return append([]string(nil), lines[start:end]...)
}
