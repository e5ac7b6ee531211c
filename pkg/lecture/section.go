package lecture

import (
	"context"
	"fmt"
	"strings"

	"github.com/eternnoir/gollmlecture/pkg/logger"
	"github.com/eternnoir/gollmlecture/pkg/providers"
	"github.com/eternnoir/gollmlecture/pkg/textproc"
)

// mainTopicPrefix marks per-topic generation roles within the main section.
const mainTopicPrefix = "main_topic_"

const generatorSystemPrompt = "You are an expert educator creating a coherent lecture transcript."

// SectionGenerator produces the text of one lecture section per call by
// assembling a role-specific prompt and invoking the completion provider.
type SectionGenerator struct {
	provider    providers.CompletionProvider
	pre         *textproc.Preprocessor
	temperature float32
	maxTokens   int
}

// NewSectionGenerator creates a generator using the given provider.
// maxTokens is the fixed output-token ceiling for every section call.
func NewSectionGenerator(provider providers.CompletionProvider, temperature float32, maxTokens int) *SectionGenerator {
	return &SectionGenerator{
		provider:    provider,
		pre:         textproc.NewPreprocessor(),
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Generate builds the prompt for the given section role and returns the
// provider's output verbatim. The word quota is advisory to the provider
// only; the result is never trimmed locally. Provider errors propagate.
func (g *SectionGenerator) Generate(
	ctx context.Context,
	role string,
	s *Structure,
	quotaWords int,
	includeExamples bool,
	nctx *NarrativeContext,
	isFirst, isLast bool,
) (string, error) {
	log := logger.WithComponent("generator").WithField("section", role)
	log.Info().Int("quota_words", quotaWords).Bool("first", isFirst).Bool("last", isLast).Msg("Generating section")

	prompt := g.buildPrompt(role, s, quotaWords, includeExamples, nctx)

	content, err := g.provider.Complete(ctx, &providers.CompletionRequest{
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: generatorSystemPrompt},
			{Role: providers.RoleUser, Content: prompt},
		},
		Temperature:     g.temperature,
		MaxOutputTokens: g.maxTokens,
	})
	if err != nil {
		return "", err
	}

	log.Info().Int("words", g.pre.CountWords(content)).Msg("Section generated")
	return content, nil
}

// buildPrompt assembles the base framing, role guidance, optional context
// block, and the closing requirements checklist.
func (g *SectionGenerator) buildPrompt(role string, s *Structure, quotaWords int, includeExamples bool, nctx *NarrativeContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert educator creating a detailed lecture transcript.\n")
	fmt.Fprintf(&b, "Generate the %s section with EXACTLY %d words.\n\n", role, quotaWords)
	fmt.Fprintf(&b, "Lecture Title: %s\n", s.Title)
	fmt.Fprintf(&b, "Learning Objectives: %s\n\n", strings.Join(s.LearningObjectives, ", "))
	b.WriteString("Current section purpose:\n")
	b.WriteString(roleGuidance(role, s))

	if nctx != nil {
		fmt.Fprintf(&b, "\nContext:\n")
		fmt.Fprintf(&b, "- Covered topics: %s\n", strings.Join(nctx.CoveredTopics, ", "))
		fmt.Fprintf(&b, "- Pending topics: %s\n", strings.Join(nctx.PendingTopics, ", "))
		fmt.Fprintf(&b, "- Key terms used: %s\n", strings.Join(nctx.KeyTerms(), ", "))
		fmt.Fprintf(&b, "- Recent narrative: %s\n", nctx.CurrentNarrative)
	}

	fmt.Fprintf(&b, `
Requirements:
1. STRICT word count: Generate EXACTLY %d words
2. Include practical examples: %t
3. Use clear transitions
4. Include engagement points
5. Use time markers [MM:SS]
6. Reference specific content from transcript
7. Maintain narrative flow
8. Use key terms consistently
`, quotaWords, includeExamples)

	return b.String()
}

// roleGuidance returns the fixed guidance checklist for a section role.
// Per-topic main roles share the main-section guidance.
func roleGuidance(role string, s *Structure) string {
	if strings.HasPrefix(role, mainTopicPrefix) {
		role = SectionMain
	}

	switch role {
	case SectionIntroduction:
		return `- Start with an engaging hook
- Present clear learning objectives
- Preview main topics
- Set expectations for the lecture
`
	case SectionMain:
		return fmt.Sprintf(`- Cover these topics: %s
- Build progressively on concepts
- Include clear transitions
- Reference previous concepts
`, strings.Join(s.TopicTitles(), ", "))
	case SectionPractical:
		return `- Apply concepts to real-world scenarios
- Connect to previous topics
- Include interactive elements
- Reinforce key learning points
`
	case SectionSummary:
		return `- Reinforce key takeaways
- Connect back to objectives
- Provide next steps
- End with a strong conclusion
`
	default:
		return ""
	}
}
