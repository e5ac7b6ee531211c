package providers

// Bounds for the derived output-token ceiling.
const (
	minOutputTokens = 100
	maxOutputTokens = 8000

	// Conservative estimate of characters per token for mixed prose.
	charsPerToken = 3
)

// ModelContextLimits maps known model names to their context window in tokens.
// Models not listed here fall back to DefaultContextLimit.
var ModelContextLimits = map[string]int{
	// Local models
	"phi-4":       16384,
	"sky-t1-32b":  4096,
	"deepseek-v3": 8192,
	// OpenAI models
	"gpt-3.5-turbo": 4096,
	"gpt-4":         8192,
	"gpt-4-turbo":   128000,
	"gpt-4o-mini":   8192,
	// Gemini models
	"gemini-pro":           32768,
	"gemini-2.0-flash-exp": 128000,
}

// DefaultContextLimit is used when a model is not in ModelContextLimits.
const DefaultContextLimit = 4096

// ContextLimit returns the context window for the given model.
func ContextLimit(model string) int {
	if limit, ok := ModelContextLimits[model]; ok {
		return limit
	}
	return DefaultContextLimit
}

// EstimateTokens gives a rough token count for a piece of text.
func EstimateTokens(text string) int {
	return len(text) / charsPerToken
}

// SafeMaxOutputTokens derives an output-token ceiling that leaves the prompt
// plus a 10% safety margin inside the model's context window. The result is
// clamped to [100, 8000].
func SafeMaxOutputTokens(contextLimit, promptTokens int) int {
	available := contextLimit - promptTokens
	safe := int(float64(available) * 0.9)
	if safe < minOutputTokens {
		return minOutputTokens
	}
	if safe > maxOutputTokens {
		return maxOutputTokens
	}
	return safe
}
