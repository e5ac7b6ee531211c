package lecture

import (
	"context"
	"strings"

	"github.com/eternnoir/gollmlecture/pkg/logger"
	"github.com/eternnoir/gollmlecture/pkg/providers"
	"github.com/eternnoir/gollmlecture/pkg/textproc"
)

// Default generation parameters.
const (
	defaultTemperature   = 0.7
	defaultSectionTokens = 8000
)

// Transformer turns a raw conversational transcript into a structured
// lecture transcript of a target spoken duration. The pipeline runs
// strictly sequentially: plan, introduction, per-topic main content,
// practical applications, summary, then advisory validation.
type Transformer struct {
	planner        *StructurePlanner
	generator      *SectionGenerator
	pre            *textproc.Preprocessor
	coherence      CoherenceValidator
	wordsPerMinute int
}

// TransformerOption configures a Transformer.
type TransformerOption func(*transformerSettings)

type transformerSettings struct {
	wordsPerMinute int
	temperature    float32
	sectionTokens  int
}

// WithWordsPerMinute sets the speaking pace used for word budgeting.
func WithWordsPerMinute(wpm int) TransformerOption {
	return func(s *transformerSettings) {
		if wpm > 0 {
			s.wordsPerMinute = wpm
		}
	}
}

// WithTemperature sets the sampling temperature for all provider calls.
func WithTemperature(t float32) TransformerOption {
	return func(s *transformerSettings) {
		s.temperature = t
	}
}

// WithSectionTokens sets the output-token ceiling for section generation.
func WithSectionTokens(n int) TransformerOption {
	return func(s *transformerSettings) {
		if n > 0 {
			s.sectionTokens = n
		}
	}
}

// NewTransformer creates a transformer backed by the given provider.
func NewTransformer(provider providers.CompletionProvider, opts ...TransformerOption) *Transformer {
	settings := &transformerSettings{
		wordsPerMinute: DefaultWordsPerMinute,
		temperature:    defaultTemperature,
		sectionTokens:  defaultSectionTokens,
	}
	for _, opt := range opts {
		opt(settings)
	}

	return &Transformer{
		planner:        NewStructurePlanner(provider, settings.temperature),
		generator:      NewSectionGenerator(provider, settings.temperature, settings.sectionTokens),
		pre:            textproc.NewPreprocessor(),
		wordsPerMinute: settings.wordsPerMinute,
	}
}

// TransformToLecture transforms the input transcript into a lecture of the
// target duration. The contract is best-effort: if generation fails after
// at least one section has completed, the partial concatenation of the
// completed sections is returned with a nil error; a failure before any
// content exists propagates to the caller.
func (t *Transformer) TransformToLecture(ctx context.Context, text string, targetDurationMinutes int, includeExamples bool) (string, error) {
	log := logger.WithComponent("transformer")
	log.Info().Int("target_minutes", targetDurationMinutes).Msg("Starting transformation")

	cleaned := t.pre.Clean(text)
	log.Info().Int("input_words", t.pre.CountWords(cleaned)).Msg("Input text cleaned")

	budget := AllocateBudget(targetDurationMinutes, t.wordsPerMinute)
	log.Info().
		Int("target_words", budget.TotalTarget).
		Int("min_words", budget.MinAcceptable).
		Int("max_words", budget.MaxAcceptable).
		Msg("Word budget allocated")

	structure := t.planner.Plan(ctx, cleaned, targetDurationMinutes)
	log.Info().Strs("topics", structure.TopicTitles()).Msg("Lecture structure planned")

	// Completed section texts, in order. Once this is non-empty a later
	// failure degrades to a partial result instead of propagating.
	var completed []string

	intro, err := t.generator.Generate(ctx, SectionIntroduction, structure,
		budget.SectionQuotas[SectionIntroduction], includeExamples, nil, true, false)
	if err != nil {
		log.Error().Err(err).Msg("Introduction generation failed with no content to return")
		return "", err
	}
	completed = append(completed, intro)

	nctx := NewNarrativeContext(structure, tail(intro, narrativeTailLen))

	mainContent, err := t.generateMainContent(ctx, structure, budget.SectionQuotas[SectionMain], includeExamples, nctx)
	if mainContent != "" {
		completed = append(completed, mainContent)
	}
	if err != nil {
		return t.partial(completed, err)
	}

	nctx.AdvanceSection(SectionMain, tail(mainContent, narrativeTailLen))

	practical, err := t.generator.Generate(ctx, SectionPractical, structure,
		budget.SectionQuotas[SectionPractical], includeExamples, nctx, false, false)
	if err != nil {
		return t.partial(completed, err)
	}
	completed = append(completed, practical)

	nctx.AdvanceSection(SectionPractical, tail(practical, summaryTailLen))

	summary, err := t.generator.Generate(ctx, SectionSummary, structure,
		budget.SectionQuotas[SectionSummary], includeExamples, nctx, false, true)
	if err != nil {
		return t.partial(completed, err)
	}
	completed = append(completed, summary)

	full := strings.Join(completed, "\n\n")
	totalWords := t.pre.CountWords(full)
	log.Info().Int("total_words", totalWords).Msg("Lecture content generated")

	ValidateWordCount(totalWords, budget.TotalTarget, budget.MinAcceptable, budget.MaxAcceptable)
	t.coherence.Validate(full, structure)

	return full, nil
}

// generateMainContent expands the main section into one generation per
// topic in structure order, splitting the main quota proportionally to
// topic durations and threading the narrative context between calls.
// On failure it returns the text of the topics that completed.
func (t *Transformer) generateMainContent(ctx context.Context, s *Structure, mainQuota int, includeExamples bool, nctx *NarrativeContext) (string, error) {
	log := logger.WithComponent("transformer")

	quotas := TopicQuotas(s, mainQuota)
	log.Info().Interface("topic_quotas", quotas).Msg("Main content quotas allocated")

	var topicTexts []string
	for _, topic := range s.Topics {
		if err := nctx.CoverTopic(topic); err != nil {
			return strings.Join(topicTexts, "\n\n"), err
		}

		text, err := t.generator.Generate(ctx, mainTopicPrefix+topic.Title, s,
			quotas[topic.Title], includeExamples, nctx, false, false)
		if err != nil {
			return strings.Join(topicTexts, "\n\n"), err
		}

		topicTexts = append(topicTexts, text)
		nctx.CurrentNarrative = tail(text, narrativeTailLen)
	}

	return strings.Join(topicTexts, "\n\n"), nil
}

// partial returns whatever sections completed before err, or propagates
// err when no content exists.
func (t *Transformer) partial(completed []string, err error) (string, error) {
	log := logger.WithComponent("transformer")
	if len(completed) == 0 {
		return "", err
	}
	log.Error().Err(err).Msg("Error during content generation")
	log.Warn().Int("sections", len(completed)).Msg("Returning partial content despite errors")
	return strings.Join(completed, "\n\n"), nil
}
